package doctext

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// HarvestCandidates extracts interactive form widgets from a PDF's AcroForm
// dictionary. Documents without an AcroForm yield an empty slice; individual
// malformed fields are skipped rather than failing the whole harvest.
func HarvestCandidates(filePath string) ([]CandidateField, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return harvestFromContext(ctx)
}

// harvestFromContext walks the AcroForm Fields array
func harvestFromContext(ctx *model.Context) ([]CandidateField, error) {
	candidates := []CandidateField{}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return candidates, nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return candidates, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return candidates, nil
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	for i, fieldRef := range fieldsArray {
		candidate, err := harvestField(ctx, fieldRef, i)
		if err != nil {
			continue
		}
		if candidate != nil {
			candidates = append(candidates, *candidate)
		}
	}

	return candidates, nil
}

// harvestField converts a single field dictionary into a CandidateField
func harvestField(ctx *model.Context, fieldObj types.Object, index int) (*CandidateField, error) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	candidate := &CandidateField{Page: 1}

	if nameObj, found := fieldDict.Find("T"); found {
		if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			candidate.Name = name
		}
	}
	if candidate.Name == "" {
		candidate.Name = fmt.Sprintf("field_%d", index)
	}

	candidate.Kind = harvestFieldKind(ctx, fieldDict)

	if valueObj, found := fieldDict.Find("V"); found {
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			candidate.Value = val
		} else if name, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			candidate.Value = string(name)
		}
	}

	if flagsObj, found := fieldDict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			candidate.Required = (*flags & 2) != 0 // Bit 2
		}
	}

	if candidate.Kind == CandidateKindSelect || candidate.Kind == CandidateKindRadio {
		candidate.Options = harvestFieldOptions(ctx, fieldDict)
	}

	return candidate, nil
}

// harvestFieldKind determines the widget kind from the FT entry
func harvestFieldKind(ctx *model.Context, fieldDict types.Dict) string {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		// FT may be inherited from the parent field
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return harvestFieldKind(ctx, parentDict)
			}
		}
		return CandidateKindUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return CandidateKindUnknown
	}

	switch ftName {
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				if (*flags & (1 << 15)) != 0 { // Bit 16: Radio
					return CandidateKindRadio
				}
				if (*flags & (1 << 16)) != 0 { // Bit 17: Pushbutton
					return CandidateKindButton
				}
			}
		}
		return CandidateKindCheckbox
	case "Tx":
		return CandidateKindText
	case "Ch":
		return CandidateKindSelect
	case "Sig":
		return CandidateKindSignature
	default:
		return CandidateKindUnknown
	}
}

// harvestFieldOptions extracts the Opt array for choice widgets
func harvestFieldOptions(ctx *model.Context, fieldDict types.Dict) []string {
	var options []string

	optObj, found := fieldDict.Find("Opt")
	if !found {
		return options
	}

	optArray, err := ctx.DereferenceArray(optObj)
	if err != nil {
		return options
	}

	for _, opt := range optArray {
		// Entries are strings or [export_value, display_value] pairs
		if str, err := ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, str)
		} else if arr, err := ctx.DereferenceArray(opt); err == nil && len(arr) >= 2 {
			if displayVal, err := ctx.DereferenceStringOrHexLiteral(arr[1], model.V10, nil); err == nil {
				options = append(options, displayVal)
			}
		}
	}

	return options
}
