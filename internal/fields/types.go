package fields

import (
	"encoding/json"
	"fmt"
)

// FieldType identifies the semantic kind of a form field
type FieldType string

const (
	FieldInput     FieldType = "input"
	FieldRadio     FieldType = "radio"
	FieldDate      FieldType = "date"
	FieldSignature FieldType = "signature"
	FieldText      FieldType = "text"
	FieldStates    FieldType = "states"
	FieldCheckbox  FieldType = "checkbox"
)

// Input control subtypes
const (
	InputTypeText     = "text"
	InputTypeEmail    = "email"
	InputTypePhone    = "phone"
	InputTypeSSN      = "ssn"
	InputTypeZip      = "zip"
	InputTypeInitials = "initials"
	InputTypeNumber   = "number"
	InputTypeName     = "name"
)

// Date control directions
const (
	DatePast   = "past"
	DateFuture = "future"
)

// Well-known field keys
const (
	KeySignature          = "signature"
	KeyDateSigned         = "date_signed"
	KeyParentGuardianName = "parent_guardian_name"
)

// defaultPhonePrefix is attached to every phone input control
const defaultPhonePrefix = "+1"

// FormShape classifies the document for shape-dependent invariants.
// Consent and patient-info documents must close with exactly one signature
// field and one date_signed field; generic documents are exempt.
type FormShape string

const (
	ShapeConsent     FormShape = "consent"
	ShapePatientInfo FormShape = "patient_info"
	ShapeGeneric     FormShape = "generic"
)

// Option is one selectable choice of a radio or checkbox control. Value is
// a string except for yes/no questions, which use boolean values.
type Option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Control is the type-discriminated payload of a FieldRecord. Which members
// are meaningful depends on the owning record's FieldType; serialization
// renders only the members defined for that type (see FieldRecord.MarshalJSON).
type Control struct {
	InputType   string
	Hint        *string
	Options     []Option
	HTMLText    string
	PhonePrefix string
}

// Hint wraps a string for assignment to a control's nullable hint member
func Hint(s string) *string {
	return &s
}

// InputControl returns an input control of the given subtype
func InputControl(inputType string) Control {
	c := Control{InputType: inputType}
	if inputType == InputTypePhone {
		c.PhonePrefix = defaultPhonePrefix
	}
	return c
}

// DateControl returns a date control pointing into the past or future
func DateControl(direction string) Control {
	return Control{InputType: direction}
}

// ChoiceControl returns a radio/checkbox control with the given options
func ChoiceControl(options []Option) Control {
	return Control{Options: options}
}

// TextControl returns a narrative text control
func TextControl(htmlText string) Control {
	return Control{HTMLText: htmlText}
}

// SignatureControl returns the empty signature control
func SignatureControl() Control {
	return Control{}
}

// StatesControl returns the empty US-state selection control
func StatesControl() Control {
	return Control{}
}

// encode renders the control as the canonical JSON object for a field type.
// Controls that carry a hint emit it explicitly, null when absent.
func (c Control) encode(t FieldType) (json.RawMessage, error) {
	m := map[string]any{}

	switch t {
	case FieldSignature, FieldStates:
		// empty control object
	case FieldText:
		m["html_text"] = c.HTMLText
	case FieldDate:
		if c.InputType != DatePast && c.InputType != DateFuture {
			return nil, fmt.Errorf("date control has invalid input_type %q", c.InputType)
		}
		m["input_type"] = c.InputType
		m["hint"] = c.Hint
	case FieldRadio, FieldCheckbox:
		if len(c.Options) == 0 {
			return nil, fmt.Errorf("%s control has no options", t)
		}
		m["options"] = c.Options
		m["hint"] = c.Hint
	case FieldInput:
		inputType := c.InputType
		if inputType == "" {
			inputType = InputTypeText
		}
		m["input_type"] = inputType
		if c.PhonePrefix != "" {
			m["phone_prefix"] = c.PhonePrefix
		}
		m["hint"] = c.Hint
	default:
		return nil, fmt.Errorf("unknown field type %q", t)
	}

	return json.Marshal(m)
}

// FieldRecord is one semantic form field of the output schema. Ordinal is
// the extraction position used for deterministic tie-breaking; it is not
// part of the serialized record.
type FieldRecord struct {
	Key      string
	Title    string
	Section  string
	Optional bool
	Type     FieldType
	Control  Control
	Ordinal  int `json:"-"`
}

// MarshalJSON serializes the record as the fixed downstream schema shape
// {key, title, section, optional, type, control}.
func (f FieldRecord) MarshalJSON() ([]byte, error) {
	control, err := f.Control.encode(f.Type)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Key, err)
	}

	return json.Marshal(struct {
		Key      string          `json:"key"`
		Title    string          `json:"title"`
		Section  string          `json:"section"`
		Optional bool            `json:"optional"`
		Type     FieldType       `json:"type"`
		Control  json.RawMessage `json:"control"`
	}{f.Key, f.Title, f.Section, f.Optional, f.Type, control})
}

// SchemaDocument is the finalized ordered sequence of field records
type SchemaDocument struct {
	Title    string        `json:"title"`
	Section  string        `json:"section"`
	Shape    FormShape     `json:"shape,omitempty"`
	Fields   []FieldRecord `json:"fields"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Keys returns the document's field keys in order
func (d *SchemaDocument) Keys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Placeholder is a registered template token substituted into narrative
// text in place of blank-fill runs.
type Placeholder string

const (
	PlaceholderProvider             Placeholder = "provider"
	PlaceholderPatientName          Placeholder = "patient_name"
	PlaceholderPatientDOB           Placeholder = "patient_dob"
	PlaceholderTodayDate            Placeholder = "today_date"
	PlaceholderToothOrSite          Placeholder = "tooth_or_site"
	PlaceholderPlannedProcedure     Placeholder = "planned_procedure"
	PlaceholderDiagnosis            Placeholder = "diagnosis"
	PlaceholderAlternativeTreatment Placeholder = "alternative_treatment"
)

// Token renders the placeholder as its {{name}} template marker
func (p Placeholder) Token() string {
	return "{{" + string(p) + "}}"
}

// Placeholders returns the full registry in substitution order
func Placeholders() []Placeholder {
	return []Placeholder{
		PlaceholderProvider,
		PlaceholderPatientName,
		PlaceholderPatientDOB,
		PlaceholderTodayDate,
		PlaceholderToothOrSite,
		PlaceholderPlannedProcedure,
		PlaceholderDiagnosis,
		PlaceholderAlternativeTreatment,
	}
}
