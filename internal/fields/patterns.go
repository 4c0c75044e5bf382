package fields

import "regexp"

// Blank-fill and option mark shapes shared by the matcher rules
var (
	blankRunRe      = regexp.MustCompile(`_{3,}`)
	shortBlankRunRe = regexp.MustCompile(`_{2,}`)
	checkboxMarkRe  = regexp.MustCompile(`[□■☐☑✅◉●○◯]|\[\s*[xX]?\s*\]|\(\s*[xX]?\s*\)`)
	bulletPrefixRe  = regexp.MustCompile(`^\s*([□■☐☑✅◉●○◯•·\-–*]|\[\s*[xX]?\s*\]|\(\s*[xX]?\s*\)|\d+[.)]|[a-z][.)])\s+`)
	initialsMarkRe  = regexp.MustCompile(`(?i)\(\s*initials?\s*\)\s*_*\s*$`)
)

// Signature and date line shapes
var (
	signatureLabelRe = regexp.MustCompile(`(?i)\b(signature\s*:|sign(ed)?\s*:|patient\s+signature|signature\s+of\s+\w+|x\s*_{3,})`)
	signatureLineRe  = regexp.MustCompile(`(?i)\b[\w/' ]*signature\b[\s:]*_{0,}`)
	signatureDateRe  = regexp.MustCompile(`(?i)signature\s*:?\s*_{3,}.{0,40}?\bdate\s*:?\s*_{2,}`)
	dateLabelRe      = regexp.MustCompile(`(?i)^([\w' /()]*?\b(?:date|birth\s*date|birthdate|dob)\b[\w' /()]*?)\s*:?\s*_{0,}\s*$`)
	bareDateLabelRe  = regexp.MustCompile(`(?i)^date\s*:?\s*_*\s*$`)
)

// Date qualifier vocabularies deciding past/future direction
var (
	pastDateRe   = regexp.MustCompile(`(?i)\b(birth|born|dob|signed|sign date|today)\b`)
	futureDateRe = regexp.MustCompile(`(?i)\b(appointment|scheduled?|follow[- ]?up|next visit|due)\b`)
	dateSignedRe = regexp.MustCompile(`(?i)\b(date\s+signed|signed\s+date|signature\s+date)\b`)
	birthDateRe  = regexp.MustCompile(`(?i)\b(date\s+of\s+birth|birth\s*date|birthdate|dob)\b`)
	todayDateRe  = regexp.MustCompile(`(?i)\btoday\W{0,3}s\s+date\b`)
)

// Generic label field shapes
var (
	labelBlankRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9'’/&#.\- ]{1,40}?)\s*:?\s*_{3,}`)
	labelColonRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9'’/&#.\- ]{1,40}):\s*$`)
	statesLineRe = regexp.MustCompile(`(?i)^state\s*:?\s*_*\s*$`)
)

// nonFieldIndicators disqualify a matched label from becoming an input
// field; such lines read as instructions or structure, not data entry.
var nonFieldIndicators = []string{
	"section", "part", "page", "instructions", "please", "note",
	"form", "information", "check", "circle", "complete",
}

// placeholderContextRe recognizes labels owned by the placeholder registry.
// On consent-shaped documents these stay in narrative text for substitution
// instead of becoming input fields.
var placeholderContextRe = regexp.MustCompile(
	`(?i)^(dr\.?|doctor|provider|patient\s*name|name\s+of\s+patient|tooth\s*(#|no\.?|number)?|site|procedure|planned\s+procedure|diagnosis|alternative(\s+treatment)?)$`)

// compoundField is one field produced by a compound row match
type compoundField struct {
	key       string
	title     string
	fieldType FieldType
	inputType string
}

// compoundRule recognizes a single line laying out several labeled blanks
type compoundRule struct {
	name   string
	re     *regexp.Regexp
	fields []compoundField
}

// Compound rows as they appear on intake packets. Ordered most-specific
// first; each expands into its known field sequence with canonical keys.
var compoundRules = []compoundRule{
	{
		name: "name_row",
		re:   regexp.MustCompile(`(?i)first\s*_{3,}\s*.{0,10}?mi\s*_{2,}\s*.{0,10}?last\s*_{3,}\s*.{0,10}?nickname\s*_{2,}`),
		fields: []compoundField{
			{"first_name", "First Name", FieldInput, InputTypeName},
			{"mi", "Middle Initial", FieldInput, InputTypeInitials},
			{"last_name", "Last Name", FieldInput, InputTypeName},
			{"nickname", "Nickname", FieldInput, InputTypeName},
		},
	},
	{
		name: "street_row",
		re:   regexp.MustCompile(`(?i)street\s*_{3,}\s*.{0,10}?apt\s*/?\s*unit\s*/?\s*suite\s*_{2,}`),
		fields: []compoundField{
			{"street", "Street", FieldInput, InputTypeName},
			{"apt_unit_suite", "Apt/Unit/Suite", FieldInput, InputTypeText},
		},
	},
	{
		name: "city_state_zip_row",
		re:   regexp.MustCompile(`(?i)city\s*_{3,}\s*.{0,10}?state\s*_{2,}\s*.{0,10}?zip\s*_{2,}`),
		fields: []compoundField{
			{"city", "City", FieldInput, InputTypeName},
			{"state", "State", FieldStates, ""},
			{"zip", "Zip", FieldInput, InputTypeZip},
		},
	},
	{
		name: "phones_row",
		re:   regexp.MustCompile(`(?i)mobile\s*_{3,}\s*.{0,10}?home\s*_{3,}\s*.{0,10}?work\s*_{2,}`),
		fields: []compoundField{
			{"mobile", "Mobile", FieldInput, InputTypePhone},
			{"home", "Home", FieldInput, InputTypePhone},
			{"work", "Work", FieldInput, InputTypePhone},
		},
	},
	{
		name: "email_license_row",
		re:   regexp.MustCompile(`(?i)e-?mail\s*_{3,}\s*.{0,10}?drivers\s*license\s*#?\s*_{2,}`),
		fields: []compoundField{
			{"e_mail", "E-Mail", FieldInput, InputTypeEmail},
			{"drivers_license", "Drivers License #", FieldInput, InputTypeName},
		},
	},
}

// radioRule recognizes a known multiple-choice question and carries its
// canonical key and option set. Yes/no questions use boolean values.
type radioRule struct {
	name    string
	re      *regexp.Regexp
	key     string
	title   string
	options []Option
}

var yesNoOptions = []Option{
	{Value: true, Label: "Yes"},
	{Value: false, Label: "No"},
}

var radioQuestionRules = []radioRule{
	{
		name:  "sex",
		re:    regexp.MustCompile(`(?i)^sex\b`),
		key:   "sex",
		title: "Sex",
		options: []Option{
			{Value: "male", Label: "Male"},
			{Value: "female", Label: "Female"},
		},
	},
	{
		name:  "marital_status",
		re:    regexp.MustCompile(`(?i)\bmarital\s+status\b`),
		key:   "marital_status",
		title: "Marital Status",
		options: []Option{
			{Value: "Married", Label: "Married"},
			{Value: "Single", Label: "Single"},
			{Value: "Divorced", Label: "Divorced"},
			{Value: "Separated", Label: "Separated"},
			{Value: "Widowed", Label: "Widowed"},
		},
	},
	{
		name:    "patient_minor",
		re:      regexp.MustCompile(`(?i)\bis\s+the\s+patient\s+a\s+minor\b`),
		key:     "is_the_patient_a_minor",
		title:   "Is the patient a minor?",
		options: yesNoOptions,
	},
	{
		name:    "full_time_student",
		re:      regexp.MustCompile(`(?i)\bfull[- ]time\s+student\b`),
		key:     "full_time_student",
		title:   "Full Time Student",
		options: yesNoOptions,
	},
	{
		name:  "preferred_contact",
		re:    regexp.MustCompile(`(?i)\bpreferred\s+method\s+of\s+contact\b`),
		key:   "what_is_your_preferred_method_of_contact",
		title: "What is your preferred method of contact",
		options: []Option{
			{Value: "Mobile Phone", Label: "Mobile Phone"},
			{Value: "Home Phone", Label: "Home Phone"},
			{Value: "Work Phone", Label: "Work Phone"},
			{Value: "E-mail", Label: "E-mail"},
		},
	},
	{
		name:  "relationship_to_patient",
		re:    regexp.MustCompile(`(?i)\brelationship\s+to\s+(the\s+)?patient\b`),
		key:   "relationship_to_patient",
		title: "Relationship to Patient",
		options: []Option{
			{Value: "Self", Label: "Self"},
			{Value: "Spouse", Label: "Spouse"},
			{Value: "Parent", Label: "Parent"},
			{Value: "Other", Label: "Other"},
		},
	},
	{
		name:  "primary_residence",
		re:    regexp.MustCompile(`(?i)\bprimary\s+residence\b`),
		key:   "primary_residence",
		title: "Primary Residence",
		options: []Option{
			{Value: "Both Parents", Label: "Both Parents"},
			{Value: "Mom", Label: "Mom"},
			{Value: "Dad", Label: "Dad"},
			{Value: "Step Parent", Label: "Step Parent"},
			{Value: "Shared Custody", Label: "Shared Custody"},
			{Value: "Guardian", Label: "Guardian"},
		},
	},
	{
		name:    "insurance_authorization",
		re:      regexp.MustCompile(`(?i)\bauthorize\b.{0,80}\binsurance\b`),
		key:     "",
		title:   "",
		options: yesNoOptions,
	},
}

// Inline option runs recognized on a question line
var (
	inlineYesNoRe   = regexp.MustCompile(`(?i)\byes\s*/\s*no\b`)
	inlineMaleRe    = regexp.MustCompile(`(?i)\bmale\s*/\s*female\b`)
	inlineMaritalRe = regexp.MustCompile(`(?i)\bmarried\s*/\s*single(\s*/\s*divorced)?\b`)
	radioCueRe      = regexp.MustCompile(`(?i)\b(check\s+one|circle\s+one|select\s+one)\b`)
	checkboxCueRe   = regexp.MustCompile(`(?i)\b(check\s+all|select\s+all|all\s+that\s+apply)\b`)
)

// inputTypeRule infers an input control subtype from its label. Rules apply
// in order; the first hit wins.
type inputTypeRule struct {
	name      string
	re        *regexp.Regexp
	exclude   *regexp.Regexp
	inputType string
}

var inputTypeRules = []inputTypeRule{
	{"email", regexp.MustCompile(`(?i)\be-?mail\b`), nil, InputTypeEmail},
	{"phone", regexp.MustCompile(`(?i)\b(phone|mobile|cell|fax)\b`), nil, InputTypePhone},
	{"ssn", regexp.MustCompile(`(?i)\b(ssn|social\s+security)\b`), nil, InputTypeSSN},
	{"zip", regexp.MustCompile(`(?i)\bzip\b`), nil, InputTypeZip},
	{"initials", regexp.MustCompile(`(?i)\binitials?\b`), regexp.MustCompile(`(?i)\bmiddle\b`), InputTypeInitials},
	{"number", regexp.MustCompile(`(?i)(\bnumber\b|\bid\b|#)`), regexp.MustCompile(`(?i)\b(license|phone)\b`), InputTypeNumber},
}

// inferInputType maps a field label to its input control subtype
func inferInputType(label string) string {
	for _, rule := range inputTypeRules {
		if !rule.re.MatchString(label) {
			continue
		}
		if rule.exclude != nil && rule.exclude.MatchString(label) {
			continue
		}
		return rule.inputType
	}
	return InputTypeName
}

// Signer role indicator families (apostrophe variants included)
var (
	witnessRoleRe = regexp.MustCompile(`(?i)\bwitness(ed)?('?s)?\b`)
	doctorRoleRe  = regexp.MustCompile(`(?i)\b(doctor|dentist|physician|provider)('?s)?\s+(signature|name)\b`)
	guardianRe    = regexp.MustCompile(`(?i)\b(parent|guardian)(\s*/\s*(parent|guardian))?('?s)?\b`)
	guardianKeyRe = regexp.MustCompile(`(?i)\b(patient\s*/\s*)?(parent|guardian)(\s*/\s*(parent|guardian))?('?s)?\s+name\b`)
)

// Contextual hint phrases carried onto the following field's control
var hintPhraseRe = regexp.MustCompile(`(?i)\(?\s*(if different from (the )?(patient|above)[^)]*|insurance company|name of responsible party)\s*\)?`)
