package fields

import (
	"regexp"
	"strings"
)

// placeholderPattern binds one registry token to the label shapes it fills.
// labeled matches a label with its blank run; bare matches the label alone.
// repl is the canonical text spliced in, token included. vetoBefore lists
// words that cancel the substitution when they immediately precede a match.
type placeholderPattern struct {
	placeholder Placeholder
	labeled     *regexp.Regexp
	bare        *regexp.Regexp
	repl        string
	vetoBefore  []string
}

// Substitution table in registry order. Every token gets up to two passes
// per line: first labels with blank runs, then bare labels. A label already
// followed by a token is left alone, so re-running is harmless.
var placeholderPatterns = []placeholderPattern{
	{
		placeholder: PlaceholderProvider,
		labeled:     regexp.MustCompile(`(?i)\bdr\.?\s*_{2,}`),
		repl:        "Dr. {{provider}}",
	},
	{
		placeholder: PlaceholderProvider,
		bare:        regexp.MustCompile(`(?i)\bdr\.\s+to\s+perform`),
		repl:        "Dr. {{provider}} to perform",
	},
	{
		placeholder: PlaceholderPatientName,
		labeled:     regexp.MustCompile(`(?i)\bpatient\s*name\s*:?\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\bpatient\s+name\s*:`),
		repl:        "Patient Name: {{patient_name}}",
	},
	{
		placeholder: PlaceholderPatientName,
		labeled:     regexp.MustCompile(`(?i)\bi\s*,?\s*_{2,}\s*\(?\s*print\s+name\s*\)?`),
		repl:        "I, {{patient_name}} (print name)",
	},
	{
		placeholder: PlaceholderPatientDOB,
		labeled:     regexp.MustCompile(`(?i)\bdate\s+of\s+birth\s*:?\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\bdate\s+of\s+birth\s*:`),
		repl:        "Date of Birth: {{patient_dob}}",
	},
	{
		placeholder: PlaceholderPatientDOB,
		labeled:     regexp.MustCompile(`(?i)\bdob\s*:?\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\bdob\s*:`),
		repl:        "DOB: {{patient_dob}}",
	},
	{
		placeholder: PlaceholderToothOrSite,
		labeled:     regexp.MustCompile(`(?i)\btooth\s*(?:number|no\(?s?\)?\.?|#)\s*:?\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\btooth\s*(?:number|no\(?s?\)?\.?|#)\s*:`),
		repl:        "Tooth Number: {{tooth_or_site}}",
	},
	{
		placeholder: PlaceholderToothOrSite,
		labeled:     regexp.MustCompile(`(?i)\bsite\s*:\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\bsite\s*:`),
		repl:        "Site: {{tooth_or_site}}",
	},
	{
		placeholder: PlaceholderPlannedProcedure,
		labeled:     regexp.MustCompile(`(?i)\bplanned\s+procedure\s*:?\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\bplanned\s+procedure\s*:`),
		repl:        "Planned Procedure: {{planned_procedure}}",
	},
	{
		placeholder: PlaceholderDiagnosis,
		labeled:     regexp.MustCompile(`(?i)\bdiagnosis\s*:\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\bdiagnosis\s*:`),
		repl:        "Diagnosis: {{diagnosis}}",
	},
	{
		placeholder: PlaceholderAlternativeTreatment,
		labeled:     regexp.MustCompile(`(?i)\balternative\s+treatment\s*:?\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\balternative\s+treatment\s*:`),
		repl:        "Alternative Treatment: {{alternative_treatment}}",
	},
	{
		placeholder: PlaceholderTodayDate,
		labeled:     regexp.MustCompile(`(?i)\bdate\s*:\s*_{2,}`),
		bare:        regexp.MustCompile(`(?i)\bdate\s*:`),
		repl:        "Date: {{today_date}}",
		vetoBefore:  []string{"of", "birth", "signed"},
	},
}

// Substitutor fills remaining blank runs in narrative text with template
// tokens from the placeholder registry.
type Substitutor struct {
	patterns []placeholderPattern
}

// NewSubstitutor creates the substitution stage with the full registry
func NewSubstitutor() *Substitutor {
	return &Substitutor{patterns: placeholderPatterns}
}

// Substitute rewrites every narrative line in place and tallies the tokens
// used on the context.
func (s *Substitutor) Substitute(pc *Context) {
	for i := range pc.Narrative {
		pc.Narrative[i].Line.Text = s.substituteLine(pc, pc.Narrative[i].Line.Text)
	}
}

func (s *Substitutor) substituteLine(pc *Context, text string) string {
	for _, p := range s.patterns {
		text = s.splice(pc, text, p, p.labeled, false)
		text = s.splice(pc, text, p, p.bare, true)
	}
	return text
}

// splice replaces matches of re with the pattern's canonical text, scanning
// right to left so earlier offsets stay valid. With skipSubstituted set,
// matches already followed by a token are left untouched.
func (s *Substitutor) splice(pc *Context, text string, p placeholderPattern, re *regexp.Regexp, skipSubstituted bool) string {
	if re == nil {
		return text
	}
	locs := re.FindAllStringIndex(text, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		start, end := locs[i][0], locs[i][1]
		if precededByWord(text[:start], p.vetoBefore) {
			continue
		}
		if skipSubstituted {
			rest := strings.TrimLeft(text[end:], " \t")
			if strings.HasPrefix(rest, "{{") {
				continue
			}
		}
		text = text[:start] + p.repl + text[end:]
		pc.PlaceholdersUsed[p.placeholder]++
	}
	return text
}

// precededByWord reports whether the text leading up to a match ends with
// one of the veto words on a word boundary.
func precededByWord(prefix string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	trimmed := strings.ToLower(strings.TrimRight(prefix, " \t"))
	for _, w := range words {
		if !strings.HasSuffix(trimmed, w) {
			continue
		}
		if len(trimmed) == len(w) {
			return true
		}
		if !isWordByte(trimmed[len(trimmed)-len(w)-1]) {
			return true
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
