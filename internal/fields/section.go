package fields

import (
	"regexp"
	"strings"
)

// Title detection guards
const (
	maxTitleLength = 150
	titleScanLimit = 10
)

// FallbackTitle is used when no title rule matches
const FallbackTitle = "Form"

var (
	markdownHeaderRe  = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	boldWrapRe        = regexp.MustCompile(`^\*\*(.+)\*\*$`)
	consentSuffixRe   = regexp.MustCompile(`(?i)\binformed consent\s*$`)
	consentPrefixRe   = regexp.MustCompile(`(?i)^informed consent for\s+\S`)
	allCapsKeywordRe  = regexp.MustCompile(`(?i)\b(consent|authorization|release|agreement|acknowledgment|warranty)\b`)
	trailingMarkersRe = regexp.MustCompile(`[:\s]+$`)
)

// ShapeRule scores one document shape from keyword and pattern indicators.
// A rule matches when at least MinMatches distinct indicators appear in the
// document text; the highest-priority matching rule decides the shape.
type ShapeRule struct {
	Name            string
	Shape           FormShape
	Keywords        []string
	KeywordPatterns []string
	MinMatches      int
	Priority        int
	Enabled         bool
	Description     string
}

// DefaultShapeRules returns the built-in document shape rules
func DefaultShapeRules() []ShapeRule {
	return []ShapeRule{
		{
			Name:  "consent_language",
			Shape: ShapeConsent,
			Keywords: []string{
				"i understand", "i acknowledge", "i agree", "i consent",
				"i authorize", "informed consent",
			},
			KeywordPatterns: []string{
				`i have been (fully )?informed`,
				`risks?\W.{0,40}benefits?`,
				`alternative\W.{0,30}treatment`,
				`financial\W.{0,30}responsibilit`,
			},
			MinMatches:  2,
			Priority:    10,
			Enabled:     true,
			Description: "First-person consent language and risk disclosure",
		},
		{
			Name:  "new_patient_form",
			Shape: ShapePatientInfo,
			Keywords: []string{
				"preferred method of contact", "marital status", "employed by",
				"in case of emergency", "is the patient a minor",
			},
			MinMatches:  2,
			Priority:    6,
			Enabled:     true,
			Description: "Signals unique to new patient intake packets",
		},
		{
			Name:  "patient_demographics",
			Shape: ShapePatientInfo,
			Keywords: []string{
				"patient name", "first name", "last name", "date of birth",
				"address", "phone", "insurance", "dental plan", "emergency contact",
			},
			MinMatches:  3,
			Priority:    5,
			Enabled:     true,
			Description: "General demographic and coverage field labels",
		},
	}
}

// SectionClassifier derives the document title and classifies the document
// shape. The title becomes the section value of every field record; the
// title-bearing line is consumed and never reaches narrative output.
type SectionClassifier struct {
	shapeRules    []ShapeRule
	shapePatterns map[string]*regexp.Regexp
}

// NewSectionClassifier creates a classifier with the default shape rules
func NewSectionClassifier() *SectionClassifier {
	return NewSectionClassifierWithRules(DefaultShapeRules())
}

// NewSectionClassifierWithRules creates a classifier with custom shape rules
func NewSectionClassifierWithRules(rules []ShapeRule) *SectionClassifier {
	patterns := make(map[string]*regexp.Regexp)
	for _, rule := range rules {
		for _, p := range rule.KeywordPatterns {
			if _, ok := patterns[p]; ok {
				continue
			}
			if re, err := regexp.Compile(`(?i)` + p); err == nil {
				patterns[p] = re
			}
		}
	}
	return &SectionClassifier{shapeRules: rules, shapePatterns: patterns}
}

// Classify sets the context's title, section, and shape
func (s *SectionClassifier) Classify(pc *Context) {
	title, consumed := s.detectTitle(pc)
	pc.Title = title
	pc.Section = title

	if consumed >= 0 {
		pc.Lines = append(pc.Lines[:consumed], pc.Lines[consumed+1:]...)
	}

	pc.Shape = s.classifyShape(pc)
}

// titleRule recognizes one title line pattern; rules apply in order and the
// first match wins.
type titleRule struct {
	name  string
	match func(line string, bold bool) (string, bool)
}

var titleRules = []titleRule{
	{"markdown_header", func(line string, _ bool) (string, bool) {
		m := markdownHeaderRe.FindStringSubmatch(line)
		if m == nil {
			return "", false
		}
		return m[1], true
	}},
	{"bold_title", func(line string, bold bool) (string, bool) {
		if m := boldWrapRe.FindStringSubmatch(line); m != nil {
			if len(m[1]) < maxTitleLength {
				return m[1], true
			}
			return "", false
		}
		if bold && len(line) < maxTitleLength {
			return line, true
		}
		return "", false
	}},
	{"all_caps_keyword", func(line string, _ bool) (string, bool) {
		if len(line) >= maxTitleLength || !isAllCaps(line) {
			return "", false
		}
		if !allCapsKeywordRe.MatchString(line) {
			return "", false
		}
		return line, true
	}},
	{"consent_suffix", func(line string, _ bool) (string, bool) {
		if len(line) < maxTitleLength && consentSuffixRe.MatchString(line) &&
			len(strings.TrimSpace(consentSuffixRe.ReplaceAllString(line, ""))) > 0 {
			return line, true
		}
		return "", false
	}},
	{"consent_prefix", func(line string, _ bool) (string, bool) {
		if len(line) < maxTitleLength && consentPrefixRe.MatchString(line) {
			return line, true
		}
		return "", false
	}},
}

// detectTitle applies the title rules in priority order over the leading
// content lines. Returns the cleaned title and the consumed line index,
// or -1 when the fallback title applies.
func (s *SectionClassifier) detectTitle(pc *Context) (string, int) {
	limit := titleScanLimit
	if limit > len(pc.Lines) {
		limit = len(pc.Lines)
	}

	for _, rule := range titleRules {
		for i := 0; i < limit; i++ {
			line := strings.TrimSpace(pc.Lines[i].Text)
			if line == "" {
				continue
			}
			if title, ok := rule.match(line, pc.Lines[i].Bold); ok {
				return cleanTitle(title), i
			}
		}
	}

	return FallbackTitle, -1
}

// cleanTitle strips residual markup and trailing separators from a title
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if m := boldWrapRe.FindStringSubmatch(title); m != nil {
		title = m[1]
	}
	title = strings.ReplaceAll(title, "**", "")
	title = strings.ReplaceAll(title, "__", "")
	title = strings.TrimLeft(title, "# ")
	title = trailingMarkersRe.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// isAllCaps reports whether a line has letters and none of them lowercase
func isAllCaps(line string) bool {
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// classifyShape evaluates the shape rules against the document text
func (s *SectionClassifier) classifyShape(pc *Context) FormShape {
	var builder strings.Builder
	builder.WriteString(strings.ToLower(pc.Title))
	for _, line := range pc.Lines {
		builder.WriteString("\n")
		builder.WriteString(strings.ToLower(line.Text))
	}
	text := builder.String()

	best := ShapeGeneric
	bestPriority := -1
	for _, rule := range s.shapeRules {
		if !rule.Enabled {
			continue
		}
		if s.countIndicators(rule, text) < rule.MinMatches {
			continue
		}
		if rule.Priority > bestPriority {
			best = rule.Shape
			bestPriority = rule.Priority
		}
	}
	return best
}

// countIndicators counts distinct matching keywords and patterns for a rule
func (s *SectionClassifier) countIndicators(rule ShapeRule, text string) int {
	count := 0
	for _, kw := range rule.Keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	for _, p := range rule.KeywordPatterns {
		if re, ok := s.shapePatterns[p]; ok && re.MatchString(text) {
			count++
		}
	}
	return count
}
