package fields

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugTransformer folds diacritics so accented labels slug cleanly
var slugTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	possessiveSRe   = regexp.MustCompile(`s's\b`)
	possessiveRe    = regexp.MustCompile(`'s\b`)
	multiSpaceRe    = regexp.MustCompile(`\s{2,}`)
	boldSpanRe      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicSpanRe    = regexp.MustCompile(`\*([^*]+)\*`)
	unicodeEscapeRe = regexp.MustCompile(`\\u[0-9a-fA-F]{4}`)
	orphanMarkerRe  = regexp.MustCompile(`\*\*|#{2,}`)
)

// typographicReplacer maps typographic punctuation onto plain equivalents
var typographicReplacer = strings.NewReplacer(
	"’", "'", "‘", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	" ", " ",
)

// stripExtractionArtifacts drops markdown underscore escapes, literal
// unicode escape sequences, and private use glyphs left behind by text
// extraction.
func stripExtractionArtifacts(s string) string {
	s = strings.ReplaceAll(s, `\_`, "")
	s = unicodeEscapeRe.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if r >= 0xE000 && r <= 0xF8FF {
			return -1
		}
		return r
	}, s)
}

// slugify lowercases a label into an underscore key. Possessives keep their
// s ("Today's Date" yields todays_date); diacritics fold to ASCII.
func slugify(s string) string {
	s = stripExtractionArtifacts(strings.TrimSpace(s))
	s = strings.ToLower(typographicReplacer.Replace(s))
	s = possessiveSRe.ReplaceAllString(s, "s")
	s = possessiveRe.ReplaceAllString(s, "s")
	s = strings.ReplaceAll(s, "'", "")
	if folded, _, err := transform.String(slugTransformer, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// canonicalAliases folds label variants onto the intake form vocabulary
var canonicalAliases = map[string]string{
	"email":                         "e_mail",
	"email_address":                 "e_mail",
	"e_mail_address":                "e_mail",
	"cell":                          "mobile",
	"cell_phone":                    "mobile",
	"mobile_phone":                  "mobile",
	"home_phone":                    "home",
	"work_phone":                    "work",
	"birth_date":                    "date_of_birth",
	"birthdate":                     "date_of_birth",
	"dob":                           "date_of_birth",
	"social_security":               "ssn",
	"social_security_number":        "ssn",
	"social_security_no":            "ssn",
	"zip_code":                      "zip",
	"postal_code":                   "zip",
	"middle_initial":                "mi",
	"street_address":                "street",
	"drivers_license_number":        "drivers_license",
	"drivers_license_no":            "drivers_license",
	"apt_unit_suite_number":         "apt_unit_suite",
	"parent_guardians_name":         KeyParentGuardianName,
	"patient_parent_guardians_name": KeyParentGuardianName,
	"guardians_name":                KeyParentGuardianName,
	"patient_signature":             KeySignature,
	"signature_of_patient":          KeySignature,
	"sign":                          KeySignature,
	"signed":                        KeySignature,
}

// GenerateFieldKey derives the schema key for a field label
func GenerateFieldKey(label string) string {
	slug := slugify(label)
	if slug == "" {
		return "field"
	}
	if canonical, ok := canonicalAliases[slug]; ok {
		return canonical
	}
	return slug
}

// canonicalTitles maps observed label spellings onto the display titles the
// downstream forms system expects.
var canonicalTitles = map[string]string{
	"mi":                     "Middle Initial",
	"m.i.":                   "Middle Initial",
	"middle initial":         "Middle Initial",
	"ssn":                    "Social Security No.",
	"social security":        "Social Security No.",
	"social security no.":    "Social Security No.",
	"social security number": "Social Security No.",
	"dob":                    "Date of Birth",
	"date of birth":          "Date of Birth",
	"birth date":             "Date of Birth",
	"birthdate":              "Date of Birth",
	"email":                  "E-Mail",
	"e-mail":                 "E-Mail",
	"email address":          "E-Mail",
	"e-mail address":         "E-Mail",
	"todays date":            "Today's Date",
	"today's date":           "Today's Date",
	"zip":                    "Zip",
	"zip code":               "Zip",
	"drivers license":        "Drivers License #",
	"driver's license":       "Drivers License #",
	"drivers license #":      "Drivers License #",
	"date signed":            "Date Signed",
}

// narrativePolicy is the sanitizer for assembled narrative markup
var narrativePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "em", "strong", "br")
	return p
}()

// Normalizer enforces key uniqueness and canonical control shape, and
// assembles leftover narrative into per-section text fields.
type Normalizer struct{}

// NewNormalizer creates the normalization stage
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize finalizes keys, titles, and controls. After it runs every
// record has a unique key and a control encodable for its type.
func (n *Normalizer) Normalize(pc *Context) error {
	n.assembleNarrative(pc)

	if len(pc.Records) == 0 {
		return &MalformedInputError{Reason: "document produced no fields or narrative text"}
	}

	for i := range pc.Records {
		n.canonicalizeRecord(&pc.Records[i])
	}
	n.numberCollisions(pc)
	return nil
}

// assembleNarrative folds the narrative residue into one text field per
// section, keyed form_1, form_2, ... in section appearance order.
func (n *Normalizer) assembleNarrative(pc *Context) {
	if len(pc.Narrative) == 0 {
		return
	}

	var order []string
	grouped := make(map[string][]NarrativeLine)
	for _, nl := range pc.Narrative {
		if _, seen := grouped[nl.Section]; !seen {
			order = append(order, nl.Section)
		}
		grouped[nl.Section] = append(grouped[nl.Section], nl)
	}

	for idx, section := range order {
		lines := grouped[section]
		body := renderNarrativeHTML(lines)
		if body == "" {
			continue
		}
		pc.AddRecord(FieldRecord{
			Key:     fmt.Sprintf("form_%d", idx+1),
			Title:   section,
			Section: section,
			Type:    FieldText,
			Control: TextControl(body),
			Ordinal: lines[0].Line.Ordinal,
		})
	}
	pc.Narrative = nil
}

// renderNarrativeHTML escapes narrative lines into sanitized paragraph
// markup, preserving emphasis carried by markdown or bold spans.
func renderNarrativeHTML(lines []NarrativeLine) string {
	var b strings.Builder
	for _, nl := range lines {
		text := strings.TrimSpace(typographicReplacer.Replace(stripExtractionArtifacts(nl.Line.Text)))
		if text == "" {
			continue
		}
		text = html.EscapeString(multiSpaceRe.ReplaceAllString(text, " "))
		text = boldSpanRe.ReplaceAllString(text, "<strong>$1</strong>")
		text = italicSpanRe.ReplaceAllString(text, "<em>$1</em>")
		text = orphanMarkerRe.ReplaceAllString(text, " ")
		text = strings.TrimSpace(multiSpaceRe.ReplaceAllString(text, " "))
		if text == "" {
			continue
		}
		if nl.Line.Bold && !strings.Contains(text, "<strong>") {
			text = "<strong>" + text + "</strong>"
		}
		b.WriteString("<p>")
		b.WriteString(text)
		b.WriteString("</p>")
	}
	return narrativePolicy.Sanitize(b.String())
}

// canonicalizeRecord brings one record to its schema-canonical form
func (n *Normalizer) canonicalizeRecord(rec *FieldRecord) {
	if rec.Key == "" {
		rec.Key = GenerateFieldKey(rec.Title)
	} else if canonical, ok := canonicalAliases[rec.Key]; ok {
		rec.Key = canonical
	}

	rec.Title = strings.TrimSpace(typographicReplacer.Replace(stripExtractionArtifacts(rec.Title)))
	rec.Title = strings.TrimRight(multiSpaceRe.ReplaceAllString(rec.Title, " "), ":")
	if rec.Title == "" {
		rec.Title = titleFromKey(rec.Key)
	}
	if canonical, ok := canonicalTitles[strings.ToLower(rec.Title)]; ok {
		rec.Title = canonical
	}
	rec.Section = strings.TrimSpace(rec.Section)

	switch rec.Type {
	case FieldSignature, FieldStates:
		// these controls carry no members
		rec.Control = Control{}
	case FieldInput:
		if rec.Control.InputType == "" {
			rec.Control.InputType = InputTypeText
		}
		if rec.Control.InputType == InputTypePhone && rec.Control.PhonePrefix == "" {
			rec.Control.PhonePrefix = defaultPhonePrefix
		}
		if rec.Control.InputType != InputTypePhone {
			rec.Control.PhonePrefix = ""
		}
	case FieldRadio, FieldCheckbox:
		rec.Control.Options = pruneOptions(rec.Control.Options)
	case FieldText:
		rec.Control.Hint = nil
	}
}

// pruneOptions drops blank labels and duplicate entries kept by looser
// earlier merging, preserving first-seen order.
func pruneOptions(options []Option) []Option {
	pruned := options[:0]
	for _, opt := range options {
		opt.Label = strings.TrimSpace(opt.Label)
		if opt.Label == "" {
			continue
		}
		dup := false
		for _, kept := range pruned {
			if strings.EqualFold(kept.Label, opt.Label) {
				dup = true
				break
			}
		}
		if !dup {
			pruned = append(pruned, opt)
		}
	}
	return pruned
}

// titleFromKey reconstructs a display title from an underscore key
func titleFromKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// numberCollisions gives repeated keys numeric suffixes. The first
// occurrence keeps the bare key; later ones become key_2, key_3, ...
func (n *Normalizer) numberCollisions(pc *Context) {
	used := make(map[string]bool, len(pc.Records))
	next := make(map[string]int)
	for i := range pc.Records {
		base := pc.Records[i].Key
		key := base
		for used[key] {
			next[base]++
			key = fmt.Sprintf("%s_%d", base, next[base]+1)
		}
		used[key] = true
		pc.Records[i].Key = key
	}
}
