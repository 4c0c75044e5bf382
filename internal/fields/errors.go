package fields

import (
	"fmt"
	"strings"
)

// MalformedInputError indicates the pipeline received an empty or nil line
// stream. No document is produced.
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return "malformed input: " + e.Reason
}

// PatternAmbiguityWarning records that more than one matcher rule claimed a
// line. The conflict is resolved by rule priority and never fails the
// document; the warning surfaces on the finalized SchemaDocument.
type PatternAmbiguityWarning struct {
	Ordinal int
	Line    string
	Winner  string
	Losers  []string
}

func (w PatternAmbiguityWarning) String() string {
	return fmt.Sprintf("line %d %q matched by %s, also claimed by %s",
		w.Ordinal, truncateForLog(w.Line), w.Winner, strings.Join(w.Losers, ", "))
}

// Violation describes one failed document invariant
type Violation struct {
	Key        string `json:"key,omitempty"`
	Rule       string `json:"rule"`
	Detail     string `json:"detail"`
	Repairable bool   `json:"repairable"`
}

func (v Violation) String() string {
	if v.Key != "" {
		return fmt.Sprintf("%s (%s): %s", v.Rule, v.Key, v.Detail)
	}
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

// Violation rule identifiers
const (
	RuleDuplicateKey     = "duplicate_key"
	RuleEmptyKey         = "empty_key"
	RuleEmptyType        = "empty_type"
	RuleEmptySection     = "empty_section"
	RuleEmptyOptions     = "empty_options"
	RuleMissingHint      = "missing_hint"
	RuleMissingSignature = "missing_signature"
	RuleMissingDate      = "missing_date_signed"
	RuleMalformedControl = "malformed_control"
	RuleSchemaMismatch   = "schema_mismatch"
)

// SchemaViolationError reports that a document still violates invariants
// after the single repair pass. The document is rejected as a whole.
type SchemaViolationError struct {
	Title      string
	Violations []Violation
}

func (e *SchemaViolationError) Error() string {
	details := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		details[i] = v.String()
	}
	return fmt.Sprintf("document %q failed schema validation: %s", e.Title, strings.Join(details, "; "))
}

func truncateForLog(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
