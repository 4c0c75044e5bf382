package fields

import "strings"

// Signer roles that never become patient-facing fields. Matching is a
// lowercase substring check; apostrophe variants are listed explicitly.
var witnessIndicators = []string{
	"witness signature", "witness printed name", "witness name", "witness date",
	"witnessed by", "witness:", "witness relationship", "witness's", "witness’s",
}

var doctorIndicators = []string{
	"doctor signature", "dentist signature", "physician signature",
	"dr. signature", "practitioner signature", "provider signature",
	"clinician signature", "doctor's", "doctor’s",
}

var guardianSignatureIndicators = []string{
	"parent signature", "guardian signature",
	"parent's signature", "parent’s signature",
	"guardian's signature", "guardian’s signature",
	"legal guardian's", "legal guardian’s",
}

// Blank-fill thresholds for dropping ruled signature lines
const (
	blankFillMinChars = 10
	blankFillRatio    = 0.7
)

// SignatureRoleFilter removes witness and doctor signature artifacts,
// promotes parent/guardian name fields, and guarantees that signable
// documents end with exactly one signature and date pair.
type SignatureRoleFilter struct{}

// NewSignatureRoleFilter creates the role filtering stage
func NewSignatureRoleFilter() *SignatureRoleFilter {
	return &SignatureRoleFilter{}
}

// Apply runs role filtering over records and narrative, then synthesizes
// the mandatory signature elements for consent and patient info documents.
func (f *SignatureRoleFilter) Apply(pc *Context) {
	f.filterRecords(pc)
	f.filterNarrative(pc)
	f.promoteGuardianNames(pc)
	f.ensureSignatureElements(pc)
}

// filterRecords drops role-excluded records together with date records
// extracted from the same line, and folds extra signatures into the first.
func (f *SignatureRoleFilter) filterRecords(pc *Context) {
	droppedOrdinals := make(map[int]bool)

	kept := pc.Records[:0]
	for _, rec := range pc.Records {
		lowerKey := strings.ToLower(rec.Key)
		excluded := strings.Contains(lowerKey, "witness") ||
			strings.Contains(lowerKey, "doctor") ||
			isRoleExcluded(strings.ToLower(rec.Title+" "+rec.Key))
		if excluded {
			if rec.Type == FieldSignature {
				droppedOrdinals[rec.Ordinal] = true
			}
			continue
		}
		kept = append(kept, rec)
	}
	pc.Records = kept

	kept = pc.Records[:0]
	sawSignature := false
	for _, rec := range pc.Records {
		if rec.Type == FieldDate && droppedOrdinals[rec.Ordinal] {
			continue
		}
		if rec.Type == FieldSignature {
			if sawSignature {
				droppedOrdinals[rec.Ordinal] = true
				continue
			}
			sawSignature = true
		}
		kept = append(kept, rec)
	}
	pc.Records = kept

	// Companion dates of folded signatures go with them
	if len(droppedOrdinals) > 0 {
		kept = pc.Records[:0]
		for _, rec := range pc.Records {
			if rec.Type == FieldDate && rec.Key == KeyDateSigned && droppedOrdinals[rec.Ordinal] {
				continue
			}
			kept = append(kept, rec)
		}
		pc.Records = kept
	}
}

// filterNarrative drops role-excluded narrative lines and ruled lines that
// are mostly blank fill.
func (f *SignatureRoleFilter) filterNarrative(pc *Context) {
	kept := pc.Narrative[:0]
	for _, nl := range pc.Narrative {
		text := strings.TrimSpace(nl.Line.Text)
		if text == "" {
			continue
		}
		if isRoleExcluded(strings.ToLower(text)) {
			continue
		}
		if isBlankFillLine(text) {
			continue
		}
		kept = append(kept, nl)
	}
	pc.Narrative = kept
}

// isRoleExcluded reports whether lowercased field or line text belongs to a
// witness, doctor, or guardian signature block.
func isRoleExcluded(lower string) bool {
	for _, indicator := range witnessIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	for _, indicator := range doctorIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	for _, indicator := range guardianSignatureIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	if strings.Contains(lower, "patient/parent/guardian") {
		return true
	}
	if strings.Contains(lower, "legally authorized representative") {
		return true
	}
	if strings.Contains(lower, "printed name") {
		for _, context := range []string{"witness", "guardian", "parent"} {
			if strings.Contains(lower, context) {
				return true
			}
		}
	}
	return false
}

// isBlankFillLine reports whether a line is mostly underscore fill
func isBlankFillLine(text string) bool {
	if len(text) < blankFillMinChars {
		return false
	}
	underscores := 0
	for _, run := range shortBlankRunRe.FindAllString(text, -1) {
		underscores += len(run)
	}
	return underscores >= blankFillMinChars &&
		float64(underscores)/float64(len(text)) > blankFillRatio
}

// promoteGuardianNames rekeys parent/guardian name fields onto the
// canonical parent_guardian_name input.
func (f *SignatureRoleFilter) promoteGuardianNames(pc *Context) {
	for i := range pc.Records {
		rec := &pc.Records[i]
		if !guardianKeyRe.MatchString(rec.Title) {
			continue
		}
		rec.Key = KeyParentGuardianName
		if rec.Type != FieldInput {
			rec.Type = FieldInput
			rec.Control = InputControl(InputTypeName)
		}
	}
}

// Synthesized signature elements sort after every extracted line
const (
	syntheticSignatureOrdinal = 1 << 30
	syntheticDateOrdinal      = 1<<30 + 1
)

// ensureSignatureElements appends the mandatory signature and date pair
// when a signable document lacks them.
func (f *SignatureRoleFilter) ensureSignatureElements(pc *Context) {
	if pc.Shape != ShapeConsent && pc.Shape != ShapePatientInfo {
		return
	}

	hasSignature := false
	hasDateSigned := false
	for _, rec := range pc.Records {
		if rec.Type == FieldSignature {
			hasSignature = true
		}
		if rec.Key == KeyDateSigned {
			hasDateSigned = true
		}
	}

	if !hasSignature {
		pc.AddRecord(FieldRecord{
			Key:     KeySignature,
			Title:   "Signature",
			Section: "Signature",
			Type:    FieldSignature,
			Control: SignatureControl(),
			Ordinal: syntheticSignatureOrdinal,
		})
	}
	if !hasDateSigned {
		pc.AddRecord(FieldRecord{
			Key:     KeyDateSigned,
			Title:   "Date Signed",
			Section: "Signature",
			Type:    FieldDate,
			Control: DateControl(DatePast),
			Ordinal: syntheticDateOrdinal,
		})
	}
}
