package fields

import (
	"encoding/json"
	"fmt"

	"github.com/a3tai/mcp-form-converter/internal/schema"
)

// ValidationState is the document's position in the check/repair lifecycle
type ValidationState string

const (
	StateChecked   ValidationState = "checked"
	StateRepaired  ValidationState = "repaired"
	StateFinalPass ValidationState = "final_pass"
	StateAccepted  ValidationState = "accepted"
	StateRejected  ValidationState = "rejected"
)

// ValidationReport records the outcome of validating one document. Trail
// holds every state the document passed through, State the final one.
type ValidationReport struct {
	State      ValidationState
	Trail      []ValidationState
	Violations []Violation
	Repaired   []Violation
	Remaining  []Violation
}

func (r *ValidationReport) advance(s ValidationState) {
	r.State = s
	r.Trail = append(r.Trail, s)
}

var validInputTypes = map[string]bool{
	InputTypeText:     true,
	InputTypeEmail:    true,
	InputTypePhone:    true,
	InputTypeSSN:      true,
	InputTypeZip:      true,
	InputTypeInitials: true,
	InputTypeNumber:   true,
	InputTypeName:     true,
}

// Validator is the final pipeline gate. Structural invariants are checked
// first; a structurally sound document is then serialized and checked
// against the embedded downstream schema. Repairable violations get one
// repair pass and exactly one re-check before the document is accepted or
// rejected as a whole.
type Validator struct {
	gate    *schema.Validator
	lenient bool
}

// NewValidator creates the validation stage with the embedded schema gate
func NewValidator() *Validator {
	return &Validator{gate: schema.Default()}
}

// Validate runs the check/repair/re-check cycle over the context's records
func (v *Validator) Validate(pc *Context) ValidationReport {
	report := ValidationReport{}
	report.advance(StateChecked)

	report.Violations = v.check(pc)
	if len(report.Violations) == 0 {
		report.advance(StateAccepted)
		return report
	}

	report.Repaired = v.repair(pc, report.Violations)
	report.advance(StateRepaired)

	report.Remaining = v.check(pc)
	report.advance(StateFinalPass)
	if len(report.Remaining) == 0 {
		report.advance(StateAccepted)
	} else {
		report.advance(StateRejected)
	}
	return report
}

// check collects every violated invariant. The schema gate only runs once
// the structural checks pass, so its findings are never redundant.
func (v *Validator) check(pc *Context) []Violation {
	var violations []Violation

	counts := make(map[string]int, len(pc.Records))
	for _, rec := range pc.Records {
		counts[rec.Key]++
	}

	reportedDup := make(map[string]bool)
	for _, rec := range pc.Records {
		if rec.Key == "" {
			violations = append(violations, Violation{
				Rule:       RuleEmptyKey,
				Detail:     fmt.Sprintf("field titled %q has no key", rec.Title),
				Repairable: true,
			})
		} else if counts[rec.Key] > 1 && !reportedDup[rec.Key] {
			reportedDup[rec.Key] = true
			violations = append(violations, Violation{
				Key:    rec.Key,
				Rule:   RuleDuplicateKey,
				Detail: fmt.Sprintf("%d fields share this key", counts[rec.Key]),
			})
		}

		if rec.Type == "" {
			violations = append(violations, Violation{
				Key:    rec.Key,
				Rule:   RuleEmptyType,
				Detail: "field has no type",
			})
			continue
		}

		if rec.Section == "" {
			violations = append(violations, Violation{
				Key:        rec.Key,
				Rule:       RuleEmptySection,
				Detail:     "field has no section",
				Repairable: true,
			})
		}

		violations = append(violations, checkControl(rec)...)
	}

	violations = append(violations, checkSignatureElements(pc)...)

	if len(violations) == 0 {
		violations = v.checkSchema(pc)
	}
	return violations
}

// checkControl verifies one record's control against its field type
func checkControl(rec FieldRecord) []Violation {
	var violations []Violation

	switch rec.Type {
	case FieldDate:
		switch rec.Control.InputType {
		case DatePast, DateFuture:
		case "":
			violations = append(violations, Violation{
				Key:        rec.Key,
				Rule:       RuleMissingHint,
				Detail:     "date control has no direction",
				Repairable: true,
			})
		default:
			violations = append(violations, Violation{
				Key:    rec.Key,
				Rule:   RuleMalformedControl,
				Detail: fmt.Sprintf("date control has invalid direction %q", rec.Control.InputType),
			})
		}
	case FieldRadio, FieldCheckbox:
		if len(rec.Control.Options) == 0 {
			violations = append(violations, Violation{
				Key:    rec.Key,
				Rule:   RuleEmptyOptions,
				Detail: string(rec.Type) + " control has no options",
			})
		}
		for _, opt := range rec.Control.Options {
			if opt.Label == "" {
				violations = append(violations, Violation{
					Key:    rec.Key,
					Rule:   RuleMalformedControl,
					Detail: "option has an empty label",
				})
			}
		}
	case FieldText:
		if rec.Control.HTMLText == "" {
			violations = append(violations, Violation{
				Key:    rec.Key,
				Rule:   RuleMalformedControl,
				Detail: "text control has no content",
			})
		}
	case FieldInput:
		if !validInputTypes[rec.Control.InputType] {
			violations = append(violations, Violation{
				Key:    rec.Key,
				Rule:   RuleMalformedControl,
				Detail: fmt.Sprintf("input control has invalid input_type %q", rec.Control.InputType),
			})
		}
	case FieldSignature, FieldStates:
		// empty control, nothing to verify
	default:
		violations = append(violations, Violation{
			Key:    rec.Key,
			Rule:   RuleMalformedControl,
			Detail: fmt.Sprintf("unknown field type %q", rec.Type),
		})
	}
	return violations
}

// checkSignatureElements enforces the mandatory signature and date pair on
// signable document shapes.
func checkSignatureElements(pc *Context) []Violation {
	if pc.Shape != ShapeConsent && pc.Shape != ShapePatientInfo {
		return nil
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

	var violations []Violation
	if !hasSignature {
		violations = append(violations, Violation{
			Key:        KeySignature,
			Rule:       RuleMissingSignature,
			Detail:     "signable document has no signature field",
			Repairable: true,
		})
	}
	if !hasDateSigned {
		violations = append(violations, Violation{
			Key:        KeyDateSigned,
			Rule:       RuleMissingDate,
			Detail:     "signable document has no date_signed field",
			Repairable: true,
		})
	}
	return violations
}

// checkSchema serializes the candidate document and runs the embedded
// schema gate. Lenient mode trusts the structural checks alone.
func (v *Validator) checkSchema(pc *Context) []Violation {
	if v.gate == nil || v.lenient {
		return nil
	}

	candidate := &SchemaDocument{
		Title:   pc.Title,
		Section: pc.Section,
		Shape:   pc.Shape,
		Fields:  pc.Records,
	}
	payload, err := json.Marshal(candidate)
	if err != nil {
		return []Violation{{Rule: RuleMalformedControl, Detail: err.Error()}}
	}

	issues, err := v.gate.Validate(payload)
	if err != nil {
		return []Violation{{Rule: RuleSchemaMismatch, Detail: err.Error()}}
	}

	violations := make([]Violation, 0, len(issues))
	for _, issue := range issues {
		violations = append(violations, Violation{
			Key:    issue.Field,
			Rule:   RuleSchemaMismatch,
			Detail: issue.Description,
		})
	}
	return violations
}

// repair applies the fix for every repairable violation and returns the
// ones acted on. Unrepairable violations are left for the re-check.
func (v *Validator) repair(pc *Context, violations []Violation) []Violation {
	var repaired []Violation
	renumber := false

	for _, viol := range violations {
		if !viol.Repairable {
			continue
		}

		switch viol.Rule {
		case RuleEmptyKey:
			for i := range pc.Records {
				if pc.Records[i].Key == "" {
					pc.Records[i].Key = GenerateFieldKey(pc.Records[i].Title)
					renumber = true
				}
			}
		case RuleEmptySection:
			section := pc.Title
			if section == "" {
				section = FallbackTitle
			}
			for i := range pc.Records {
				if pc.Records[i].Section == "" {
					pc.Records[i].Section = section
				}
			}
		case RuleMissingHint:
			for i := range pc.Records {
				if pc.Records[i].Type == FieldDate && pc.Records[i].Control.InputType == "" {
					pc.Records[i].Control.InputType = DatePast
				}
			}
		case RuleMissingSignature, RuleMissingDate:
			(&SignatureRoleFilter{}).ensureSignatureElements(pc)
		default:
			continue
		}
		repaired = append(repaired, viol)
	}

	if renumber {
		(&Normalizer{}).numberCollisions(pc)
	}
	return repaired
}
