package fields

import (
	"testing"

	"github.com/a3tai/mcp-form-converter/internal/doctext"
)

func classifyLines(lines []doctext.DocumentLine) *Context {
	pc := NewContext(lines)
	NewSectionClassifier().Classify(pc)
	return pc
}

func TestSectionClassifier_TitleDetection(t *testing.T) {
	tests := []struct {
		name     string
		lines    []doctext.DocumentLine
		expected string
	}{
		{
			name:     "markdown header",
			lines:    plainLines("# Patient Information Form", "First Name: ____"),
			expected: "Patient Information Form",
		},
		{
			name:     "bold wrapped line",
			lines:    plainLines("**Tooth Extraction Consent**", "I consent to treatment."),
			expected: "Tooth Extraction Consent",
		},
		{
			name: "bold extraction flag",
			lines: []doctext.DocumentLine{
				{Ordinal: 0, Text: "Financial Policy", Bold: true},
				{Ordinal: 1, Text: "Payment is due at time of service."},
			},
			expected: "Financial Policy",
		},
		{
			name:     "all caps with keyword",
			lines:    plainLines("TOOTH EXTRACTION CONSENT", "I consent to treatment."),
			expected: "TOOTH EXTRACTION CONSENT",
		},
		{
			name:     "informed consent suffix",
			lines:    plainLines("Tooth Extraction Informed Consent", "I consent to treatment."),
			expected: "Tooth Extraction Informed Consent",
		},
		{
			name:     "informed consent prefix",
			lines:    plainLines("Informed Consent for Dental Implants", "I consent to treatment."),
			expected: "Informed Consent for Dental Implants",
		},
		{
			name:     "trailing colon stripped",
			lines:    plainLines("# Emergency Contact:", "Name: ____"),
			expected: "Emergency Contact",
		},
		{
			name:     "blank leading lines skipped",
			lines:    plainLines("", "  ", "# Medical History"),
			expected: "Medical History",
		},
		{
			name:     "no rule matches",
			lines:    plainLines("Please arrive fifteen minutes early.", "Bring your insurance card."),
			expected: FallbackTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := classifyLines(tt.lines)
			if pc.Title != tt.expected {
				t.Errorf("Expected title %q, got %q", tt.expected, pc.Title)
			}
			if pc.Section != tt.expected {
				t.Errorf("Expected section %q, got %q", tt.expected, pc.Section)
			}
		})
	}
}

func TestSectionClassifier_TitleLineConsumed(t *testing.T) {
	pc := classifyLines(plainLines("# Consent Form", "I agree to the procedure."))

	if len(pc.Lines) != 1 {
		t.Fatalf("Expected title line to be consumed, got %d lines", len(pc.Lines))
	}
	if pc.Lines[0].Text != "I agree to the procedure." {
		t.Errorf("Expected remaining content line, got %q", pc.Lines[0].Text)
	}
}

func TestSectionClassifier_FallbackKeepsAllLines(t *testing.T) {
	pc := classifyLines(plainLines("no title here", "just text"))

	if pc.Title != FallbackTitle {
		t.Errorf("Expected fallback title %q, got %q", FallbackTitle, pc.Title)
	}
	if len(pc.Lines) != 2 {
		t.Errorf("Expected no line consumed on fallback, got %d lines", len(pc.Lines))
	}
}

func TestSectionClassifier_RulePriorityOverLineOrder(t *testing.T) {
	// The bold rule outranks the consent prefix rule even when the consent
	// line appears first in the document.
	pc := classifyLines(plainLines(
		"Informed Consent for Implants",
		"**Implant Consent**",
	))

	if pc.Title != "Implant Consent" {
		t.Errorf("Expected bold rule to win, got title %q", pc.Title)
	}
}

func TestSectionClassifier_ShapeConsent(t *testing.T) {
	pc := classifyLines(plainLines(
		"# Extraction Consent",
		"I understand that there are risks involved with this procedure.",
		"I consent to the extraction described above.",
	))

	if pc.Shape != ShapeConsent {
		t.Errorf("Expected shape %q, got %q", ShapeConsent, pc.Shape)
	}
}

func TestSectionClassifier_ShapePatientInfo(t *testing.T) {
	tests := []struct {
		name  string
		lines []doctext.DocumentLine
	}{
		{
			name: "demographic labels",
			lines: plainLines(
				"# Patient Registration",
				"First Name: ____________",
				"Last Name: ____________",
				"Date of Birth: ____________",
			),
		},
		{
			name: "intake packet signals",
			lines: plainLines(
				"# New Patient Form",
				"Marital Status: ____________",
				"Is the patient a minor?  Yes / No",
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := classifyLines(tt.lines)
			if pc.Shape != ShapePatientInfo {
				t.Errorf("Expected shape %q, got %q", ShapePatientInfo, pc.Shape)
			}
		})
	}
}

func TestSectionClassifier_ShapeGeneric(t *testing.T) {
	pc := classifyLines(plainLines(
		"# Office Warranty Statement",
		"All crown and bridge work is warranted for five years.",
	))

	if pc.Shape != ShapeGeneric {
		t.Errorf("Expected shape %q, got %q", ShapeGeneric, pc.Shape)
	}
}

func TestSectionClassifier_ConsentOutranksDemographics(t *testing.T) {
	pc := classifyLines(plainLines(
		"# Treatment Consent",
		"First Name: ____________",
		"Last Name: ____________",
		"Date of Birth: ____________",
		"I understand the risks of treatment.",
		"I consent to the procedure.",
	))

	if pc.Shape != ShapeConsent {
		t.Errorf("Expected consent to outrank demographics, got %q", pc.Shape)
	}
}

func TestSectionClassifier_CustomRules(t *testing.T) {
	rules := []ShapeRule{
		{
			Name:       "warranty",
			Shape:      ShapeGeneric,
			Keywords:   []string{"warranty"},
			MinMatches: 1,
			Priority:   20,
			Enabled:    true,
		},
		{
			Name:       "disabled rule",
			Shape:      ShapeConsent,
			Keywords:   []string{"warranty"},
			MinMatches: 1,
			Priority:   30,
			Enabled:    false,
		},
	}
	classifier := NewSectionClassifierWithRules(rules)

	pc := NewContext(plainLines("# Warranty Terms", "This warranty covers remakes."))
	classifier.Classify(pc)

	if pc.Shape != ShapeGeneric {
		t.Errorf("Expected enabled rule to decide shape, got %q", pc.Shape)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**Bold Title**", "Bold Title"},
		{"  Spaced Out  ", "Spaced Out"},
		{"Trailing Colon:", "Trailing Colon"},
		{"# Header Text", "Header Text"},
		{"__Underlined__", "Underlined"},
		{"Mixed **emphasis** here", "Mixed emphasis here"},
	}

	for _, tt := range tests {
		if got := cleanTitle(tt.input); got != tt.expected {
			t.Errorf("cleanTitle(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestIsAllCaps(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"TOOTH EXTRACTION", true},
		{"CONSENT 2024", true},
		{"Mixed Case", false},
		{"12345", false},
		{"", false},
		{"RELEASE-FORM!", true},
	}

	for _, tt := range tests {
		if got := isAllCaps(tt.input); got != tt.expected {
			t.Errorf("isAllCaps(%q): expected %t, got %t", tt.input, tt.expected, got)
		}
	}
}
