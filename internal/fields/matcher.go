package fields

import (
	"log"
	"strings"

	"github.com/a3tai/mcp-form-converter/internal/doctext"
)

// Option collection limits for question lookahead
const (
	maxLookaheadOptions = 6
	maxOptionLength     = 80
	maxQuestionLength   = 200
)

// matchRule is one entry in the ordered dispatch table. claims reports
// whether the rule recognizes the line at index i without side effects;
// apply emits records and returns how many lines it consumed (>= 1).
// Rules are evaluated top to bottom and the first claim wins; additional
// claimants are surfaced as pattern ambiguity warnings.
type matchRule struct {
	name   string
	claims func(m *Matcher, pc *Context, i int) bool
	apply  func(m *Matcher, pc *Context, i int) int
}

var matcherRules = []matchRule{
	{"section_header", (*Matcher).claimsSectionHeader, (*Matcher).applySectionHeader},
	{"signature_date_row", (*Matcher).claimsSignatureDateRow, (*Matcher).applySignatureDateRow},
	{"signature", (*Matcher).claimsSignature, (*Matcher).applySignature},
	{"date", (*Matcher).claimsDate, (*Matcher).applyDate},
	{"initials_marker", (*Matcher).claimsInitialsMarker, (*Matcher).applyInitialsMarker},
	{"compound_row", (*Matcher).claimsCompoundRow, (*Matcher).applyCompoundRow},
	{"radio_question", (*Matcher).claimsRadioQuestion, (*Matcher).applyRadioQuestion},
	{"option_lookahead", (*Matcher).claimsOptionLookahead, (*Matcher).applyOptionLookahead},
	{"options_same_line", (*Matcher).claimsOptionsSameLine, (*Matcher).applyOptionsSameLine},
	{"inline_options", (*Matcher).claimsInlineOptions, (*Matcher).applyInlineOptions},
	{"states", (*Matcher).claimsStates, (*Matcher).applyStates},
	{"checkbox_run", (*Matcher).claimsCheckboxRun, (*Matcher).applyCheckboxRun},
	{"label_input", (*Matcher).claimsLabelInput, (*Matcher).applyLabelInput},
}

// Matcher turns content lines into candidate field records, leaving
// everything unmatched as narrative residue.
type Matcher struct {
	debug bool
}

// NewMatcher creates a matcher with the pipeline's tuning
func NewMatcher(cfg PipelineConfig) *Matcher {
	return &Matcher{debug: cfg.Debug}
}

// Match consumes the context's line stream. Lines matched by a rule become
// field records; the rest accumulate as narrative residue attributed to the
// current section.
func (m *Matcher) Match(pc *Context) error {
	for i := 0; i < len(pc.Lines); {
		winner := -1
		var claimants []string
		for r := range matcherRules {
			if matcherRules[r].claims(m, pc, i) {
				if winner < 0 {
					winner = r
				}
				claimants = append(claimants, matcherRules[r].name)
			}
		}

		if winner < 0 {
			pc.AddNarrative(pc.Lines[i])
			i++
			continue
		}

		if len(claimants) > 1 {
			pc.Warn(PatternAmbiguityWarning{
				Ordinal: pc.Lines[i].Ordinal,
				Line:    pc.Lines[i].Text,
				Winner:  claimants[0],
				Losers:  claimants[1:],
			})
		}

		m.debugf("line %d matched by %s: %q", pc.Lines[i].Ordinal, matcherRules[winner].name, pc.Lines[i].Text)
		consumed := matcherRules[winner].apply(m, pc, i)
		if consumed < 1 {
			consumed = 1
		}
		i += consumed
	}

	pc.Lines = nil
	return nil
}

// emit adds a record unless the same conceptual key was already extracted
// in the current section (idempotent extraction).
func (m *Matcher) emit(pc *Context, rec FieldRecord) bool {
	if pc.Processed(rec.Section, rec.Key) {
		m.debugf("skipping already processed key %q in section %q", rec.Key, rec.Section)
		return false
	}
	pc.MarkProcessed(rec.Section, rec.Key)
	pc.AddRecord(rec)
	return true
}

func (m *Matcher) debugf(format string, args ...any) {
	if m.debug {
		log.Printf("matcher: "+format, args...)
	}
}

// --- section headers ---

func (m *Matcher) claimsSectionHeader(pc *Context, i int) bool {
	return markdownHeaderRe.MatchString(strings.TrimSpace(pc.Lines[i].Text))
}

func (m *Matcher) applySectionHeader(pc *Context, i int) int {
	header := cleanTitle(strings.TrimSpace(pc.Lines[i].Text))
	if header != "" {
		pc.Section = header
	}
	return 1
}

// --- signatures ---

func (m *Matcher) claimsSignatureDateRow(pc *Context, i int) bool {
	return signatureDateRe.MatchString(pc.Lines[i].Text)
}

func (m *Matcher) applySignatureDateRow(pc *Context, i int) int {
	line := pc.Lines[i]
	sigKey := signatureKeyFor(line.Text)
	m.emit(pc, FieldRecord{
		Key:     sigKey,
		Title:   "Signature",
		Section: pc.Section,
		Type:    FieldSignature,
		Control: SignatureControl(),
		Ordinal: line.Ordinal,
	})
	m.emit(pc, FieldRecord{
		Key:     KeyDateSigned,
		Title:   "Date Signed",
		Section: pc.Section,
		Type:    FieldDate,
		Control: DateControl(DatePast),
		Ordinal: line.Ordinal,
	})
	return 1
}

func (m *Matcher) claimsSignature(pc *Context, i int) bool {
	text := strings.TrimSpace(pc.Lines[i].Text)
	if len(text) > 100 {
		return false
	}
	if signatureLabelRe.MatchString(text) {
		return true
	}
	return signatureLineRe.MatchString(text) &&
		(blankRunRe.MatchString(text) || len(text) < 60)
}

func (m *Matcher) applySignature(pc *Context, i int) int {
	line := pc.Lines[i]
	m.emit(pc, FieldRecord{
		Key:     signatureKeyFor(line.Text),
		Title:   "Signature",
		Section: pc.Section,
		Type:    FieldSignature,
		Control: SignatureControl(),
		Ordinal: line.Ordinal,
	})
	return 1
}

// signatureKeyFor keys a signature by signer role. Witness and doctor
// variants keep their role in the key so the role filter can remove them;
// patient and parent/guardian signatures fold into the document signature.
func signatureKeyFor(text string) string {
	switch {
	case witnessRoleRe.MatchString(text):
		return "witness_signature"
	case doctorRoleRe.MatchString(text):
		return "doctor_signature"
	case guardianRe.MatchString(text):
		// guardians sign on the patient's behalf
		return KeySignature
	default:
		return KeySignature
	}
}

// --- dates ---

func (m *Matcher) claimsDate(pc *Context, i int) bool {
	text := strings.TrimSpace(pc.Lines[i].Text)
	if len(text) > 60 || bareDateLabelRe.MatchString(text) {
		return false
	}
	return dateLabelRe.MatchString(text)
}

func (m *Matcher) applyDate(pc *Context, i int) int {
	line := pc.Lines[i]
	label := strings.TrimSpace(blankRunRe.ReplaceAllString(line.Text, ""))
	label = strings.TrimRight(strings.TrimSpace(label), ":")

	rec := FieldRecord{
		Section: pc.Section,
		Type:    FieldDate,
		Ordinal: line.Ordinal,
	}

	switch {
	case birthDateRe.MatchString(label):
		rec.Key = "date_of_birth"
		rec.Title = "Date of Birth"
		rec.Control = DateControl(DatePast)
	case dateSignedRe.MatchString(label):
		rec.Key = KeyDateSigned
		rec.Title = "Date Signed"
		rec.Control = DateControl(DatePast)
	case todayDateRe.MatchString(label):
		rec.Key = "todays_date"
		rec.Title = "Today's Date"
		rec.Control = DateControl(DatePast)
	case futureDateRe.MatchString(label):
		rec.Key = GenerateFieldKey(label)
		rec.Title = label
		rec.Control = DateControl(DateFuture)
	case pastDateRe.MatchString(label):
		rec.Key = GenerateFieldKey(label)
		rec.Title = label
		rec.Control = DateControl(DatePast)
	default:
		// Qualified date with unknown direction; past covers intake forms
		rec.Key = GenerateFieldKey(label)
		rec.Title = label
		rec.Control = DateControl(DatePast)
	}

	m.emit(pc, rec)
	return 1
}

// --- initials markers ---

func (m *Matcher) claimsInitialsMarker(pc *Context, i int) bool {
	return initialsMarkRe.MatchString(pc.Lines[i].Text)
}

func (m *Matcher) applyInitialsMarker(pc *Context, i int) int {
	line := pc.Lines[i]
	// Every marker is a distinct field; key numbering separates repeats
	pc.AddRecord(FieldRecord{
		Key:     "initials",
		Title:   "Initials",
		Section: pc.Section,
		Type:    FieldInput,
		Control: InputControl(InputTypeInitials),
		Ordinal: line.Ordinal,
	})

	// The statement being initialed stays in the narrative
	remainder := strings.TrimSpace(initialsMarkRe.ReplaceAllString(line.Text, ""))
	if remainder != "" {
		line.Text = remainder
		pc.AddNarrative(line)
	}
	return 1
}

// --- compound rows ---

func (m *Matcher) claimsCompoundRow(pc *Context, i int) bool {
	for _, rule := range compoundRules {
		if rule.re.MatchString(pc.Lines[i].Text) {
			return true
		}
	}
	return false
}

func (m *Matcher) applyCompoundRow(pc *Context, i int) int {
	line := pc.Lines[i]
	for _, rule := range compoundRules {
		if !rule.re.MatchString(line.Text) {
			continue
		}
		for _, f := range rule.fields {
			rec := FieldRecord{
				Key:     f.key,
				Title:   f.title,
				Section: pc.Section,
				Type:    f.fieldType,
				Ordinal: line.Ordinal,
			}
			switch f.fieldType {
			case FieldStates:
				rec.Control = StatesControl()
			default:
				rec.Control = InputControl(f.inputType)
			}
			m.emit(pc, rec)
		}
		return 1
	}
	return 1
}

// --- radio questions with canonical option sets ---

func (m *Matcher) claimsRadioQuestion(pc *Context, i int) bool {
	text := pc.Lines[i].Text
	if len(text) > maxQuestionLength {
		return false
	}
	for _, rule := range radioQuestionRules {
		if rule.re.MatchString(text) {
			return true
		}
	}
	return false
}

func (m *Matcher) applyRadioQuestion(pc *Context, i int) int {
	line := pc.Lines[i]
	for _, rule := range radioQuestionRules {
		if !rule.re.MatchString(line.Text) {
			continue
		}

		key, title := rule.key, rule.title
		if key == "" {
			title = cleanQuestionText(line.Text)
			key = GenerateFieldKey(title)
		}

		m.emit(pc, FieldRecord{
			Key:     key,
			Title:   title,
			Section: pc.Section,
			Type:    FieldRadio,
			Control: ChoiceControl(rule.options),
			Ordinal: line.Ordinal,
		})

		// Swallow any option lines restating the canonical choices
		return 1 + m.countOptionLines(pc, i+1)
	}
	return 1
}

// countOptionLines counts adjacent option-shaped lines following index i
func (m *Matcher) countOptionLines(pc *Context, start int) int {
	count := 0
	for j := start; j < len(pc.Lines) && count < maxLookaheadOptions; j++ {
		if !isOptionLine(pc.Lines[j].Text) {
			break
		}
		count++
	}
	return count
}

// --- question followed by option lines ---

func (m *Matcher) claimsOptionLookahead(pc *Context, i int) bool {
	text := strings.TrimSpace(pc.Lines[i].Text)
	if len(text) < 5 || len(text) > maxQuestionLength {
		return false
	}
	questionish := strings.HasSuffix(text, "?") || strings.HasSuffix(text, ":") ||
		radioCueRe.MatchString(text) || checkboxCueRe.MatchString(text)
	if !questionish {
		return false
	}
	return m.countOptionLines(pc, i+1) >= 2
}

func (m *Matcher) applyOptionLookahead(pc *Context, i int) int {
	line := pc.Lines[i]
	question := cleanQuestionText(line.Text)

	var options []Option
	consumed := 0
	for j := i + 1; j < len(pc.Lines) && len(options) < maxLookaheadOptions; j++ {
		label, ok := optionLabel(pc.Lines[j].Text)
		if !ok {
			break
		}
		consumed++
		options = appendOption(options, label)
	}

	fieldType := FieldRadio
	if checkboxCueRe.MatchString(line.Text) {
		fieldType = FieldCheckbox
	}

	m.emit(pc, FieldRecord{
		Key:     GenerateFieldKey(question),
		Title:   question,
		Section: pc.Section,
		Type:    fieldType,
		Control: ChoiceControl(options),
		Ordinal: line.Ordinal,
	})
	return 1 + consumed
}

// --- question and options on one line ---

func (m *Matcher) claimsOptionsSameLine(pc *Context, i int) bool {
	text := pc.Lines[i].Text
	marks := checkboxMarkRe.FindAllStringIndex(text, -1)
	if len(marks) < 2 {
		return false
	}
	question := strings.TrimSpace(text[:marks[0][0]])
	return len(question) >= 5
}

func (m *Matcher) applyOptionsSameLine(pc *Context, i int) int {
	line := pc.Lines[i]
	marks := checkboxMarkRe.FindAllStringIndex(line.Text, -1)
	question := cleanQuestionText(line.Text[:marks[0][0]])

	var options []Option
	for k, mark := range marks {
		end := len(line.Text)
		if k+1 < len(marks) {
			end = marks[k+1][0]
		}
		label := strings.TrimSpace(line.Text[mark[1]:end])
		if label == "" || len(label) > maxOptionLength {
			continue
		}
		options = appendOption(options, label)
	}
	if len(options) == 0 {
		pc.AddNarrative(line)
		return 1
	}

	fieldType := FieldRadio
	if checkboxCueRe.MatchString(line.Text) {
		fieldType = FieldCheckbox
	}

	m.emit(pc, FieldRecord{
		Key:     GenerateFieldKey(question),
		Title:   question,
		Section: pc.Section,
		Type:    fieldType,
		Control: ChoiceControl(options),
		Ordinal: line.Ordinal,
	})
	return 1
}

// --- inline option shorthand (Yes/No, Male/Female, ...) ---

func (m *Matcher) claimsInlineOptions(pc *Context, i int) bool {
	text := strings.TrimSpace(pc.Lines[i].Text)
	if len(text) > 100 {
		return false
	}
	if !inlineYesNoRe.MatchString(text) && !inlineMaleRe.MatchString(text) && !inlineMaritalRe.MatchString(text) {
		return false
	}
	// Require a question part beyond the option shorthand itself
	stripped := inlineYesNoRe.ReplaceAllString(text, "")
	stripped = inlineMaleRe.ReplaceAllString(stripped, "")
	stripped = inlineMaritalRe.ReplaceAllString(stripped, "")
	return len(strings.TrimSpace(strings.Trim(stripped, ":?_ "))) >= 3
}

func (m *Matcher) applyInlineOptions(pc *Context, i int) int {
	line := pc.Lines[i]
	text := line.Text

	var options []Option
	switch {
	case inlineMaleRe.MatchString(text):
		options = []Option{{Value: "male", Label: "Male"}, {Value: "female", Label: "Female"}}
		text = inlineMaleRe.ReplaceAllString(text, "")
	case inlineMaritalRe.MatchString(text):
		options = []Option{
			{Value: "Married", Label: "Married"},
			{Value: "Single", Label: "Single"},
			{Value: "Divorced", Label: "Divorced"},
		}
		text = inlineMaritalRe.ReplaceAllString(text, "")
	default:
		options = yesNoOptions
		text = inlineYesNoRe.ReplaceAllString(text, "")
	}

	question := cleanQuestionText(text)
	m.emit(pc, FieldRecord{
		Key:     GenerateFieldKey(question),
		Title:   question,
		Section: pc.Section,
		Type:    FieldRadio,
		Control: ChoiceControl(options),
		Ordinal: line.Ordinal,
	})
	return 1
}

// --- state selection ---

func (m *Matcher) claimsStates(pc *Context, i int) bool {
	return statesLineRe.MatchString(strings.TrimSpace(pc.Lines[i].Text))
}

func (m *Matcher) applyStates(pc *Context, i int) int {
	line := pc.Lines[i]
	m.emit(pc, FieldRecord{
		Key:     "state",
		Title:   "State",
		Section: pc.Section,
		Type:    FieldStates,
		Control: StatesControl(),
		Ordinal: line.Ordinal,
	})
	return 1
}

// --- bare checkbox runs ---

func (m *Matcher) claimsCheckboxRun(pc *Context, i int) bool {
	if !isOptionLine(pc.Lines[i].Text) {
		return false
	}
	return i+1 < len(pc.Lines) && isOptionLine(pc.Lines[i+1].Text)
}

func (m *Matcher) applyCheckboxRun(pc *Context, i int) int {
	line := pc.Lines[i]

	var options []Option
	consumed := 0
	for j := i; j < len(pc.Lines); j++ {
		label, ok := optionLabel(pc.Lines[j].Text)
		if !ok {
			break
		}
		consumed++
		options = appendOption(options, label)
	}

	title, key := m.checkboxRunTitle(pc)
	m.emit(pc, FieldRecord{
		Key:     key,
		Title:   title,
		Section: pc.Section,
		Type:    FieldCheckbox,
		Control: ChoiceControl(options),
		Ordinal: line.Ordinal,
	})
	return consumed
}

// checkboxRunTitle reclaims a trailing short narrative line as the run's
// question when one reads like a lead-in; otherwise a generic title is used.
func (m *Matcher) checkboxRunTitle(pc *Context) (string, string) {
	if n := len(pc.Narrative); n > 0 {
		last := pc.Narrative[n-1]
		text := strings.TrimSpace(last.Line.Text)
		if len(text) <= 60 && (strings.HasSuffix(text, ":") || strings.HasSuffix(text, "following")) {
			pc.Narrative = pc.Narrative[:n-1]
			title := cleanQuestionText(text)
			return title, GenerateFieldKey(title)
		}
	}
	return "Check all that apply", GenerateFieldKey("Check all that apply")
}

// --- labeled inputs ---

func (m *Matcher) claimsLabelInput(pc *Context, i int) bool {
	text := strings.TrimSpace(pc.Lines[i].Text)

	if match := labelColonRe.FindStringSubmatch(text); match != nil {
		return m.acceptableLabel(pc, match[1])
	}

	for _, match := range labelBlankRe.FindAllStringSubmatch(text, -1) {
		if m.acceptableLabel(pc, match[1]) {
			return true
		}
	}
	return false
}

// acceptableLabel filters out instructions, bare dates, and labels that
// belong to the placeholder registry on consent documents.
func (m *Matcher) acceptableLabel(pc *Context, label string) bool {
	label = strings.TrimSpace(label)
	if len(label) < 3 || len(label) > 40 {
		return false
	}

	lower := strings.ToLower(label)
	for _, indicator := range nonFieldIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}

	// Ambiguous bare "Date" is narrative; placeholder substitution owns it
	if lower == "date" {
		return false
	}

	if pc.Shape == ShapeConsent && placeholderContextRe.MatchString(label) {
		return false
	}

	return true
}

func (m *Matcher) applyLabelInput(pc *Context, i int) int {
	line := pc.Lines[i]
	text := strings.TrimSpace(line.Text)
	consumed := 1

	var labels []string
	if match := labelColonRe.FindStringSubmatch(text); match != nil {
		labels = append(labels, match[1])
	} else {
		for _, match := range labelBlankRe.FindAllStringSubmatch(text, -1) {
			if m.acceptableLabel(pc, match[1]) {
				labels = append(labels, match[1])
			}
		}
	}

	// A following line that is nothing but a hint phrase annotates the
	// last field from this row.
	var trailingHint *string
	if i+1 < len(pc.Lines) {
		next := strings.TrimSpace(pc.Lines[i+1].Text)
		if loc := hintPhraseRe.FindStringIndex(next); loc != nil && loc[0] == 0 && loc[1] == len(next) {
			trailingHint = Hint(cleanHintText(next))
			consumed++
		}
	}

	for idx, rawLabel := range labels {
		label, inlineHint := splitHint(rawLabel)
		if !m.acceptableLabel(pc, label) {
			continue
		}

		rec := m.buildLabeledRecord(pc, label, line.Ordinal)
		if inlineHint != nil {
			rec.Control.Hint = inlineHint
		}
		if trailingHint != nil && idx == len(labels)-1 && rec.Control.Hint == nil {
			rec.Control.Hint = trailingHint
		}
		m.emit(pc, rec)
	}
	return consumed
}

// buildLabeledRecord creates the record for a labeled blank, consulting
// AcroForm candidates when the label corresponds to a harvested widget.
func (m *Matcher) buildLabeledRecord(pc *Context, label string, ordinal int) FieldRecord {
	title := strings.TrimSpace(strings.TrimRight(label, ": "))
	rec := FieldRecord{
		Key:     GenerateFieldKey(title),
		Title:   title,
		Section: pc.Section,
		Ordinal: ordinal,
	}

	if candidate := m.lookupCandidate(pc, title); candidate != nil {
		switch candidate.Kind {
		case doctext.CandidateKindSignature:
			rec.Type = FieldSignature
			rec.Control = SignatureControl()
			return rec
		case doctext.CandidateKindRadio, doctext.CandidateKindSelect:
			if len(candidate.Options) > 0 {
				options := make([]Option, 0, len(candidate.Options))
				for _, o := range candidate.Options {
					options = appendOption(options, o)
				}
				rec.Type = FieldRadio
				rec.Control = ChoiceControl(options)
				return rec
			}
		case doctext.CandidateKindCheckbox:
			rec.Type = FieldCheckbox
			rec.Control = ChoiceControl([]Option{{Value: true, Label: title}})
			return rec
		}
	}

	rec.Type = FieldInput
	rec.Control = InputControl(inferInputType(title))
	return rec
}

// lookupCandidate finds a harvested AcroForm widget matching a label
func (m *Matcher) lookupCandidate(pc *Context, label string) *doctext.CandidateField {
	want := slugify(label)
	for idx := range pc.Candidates {
		if slugify(pc.Candidates[idx].Name) == want {
			return &pc.Candidates[idx]
		}
	}
	return nil
}

// --- shared helpers ---

// isOptionLine reports whether a line reads as one option of a choice group
func isOptionLine(text string) bool {
	_, ok := optionLabel(text)
	return ok
}

// optionLabel extracts the option label from a bullet or checkbox line
func optionLabel(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	loc := bulletPrefixRe.FindStringIndex(trimmed)
	if loc == nil {
		return "", false
	}
	label := strings.TrimSpace(trimmed[loc[1]:])
	if label == "" || len(label) > maxOptionLength {
		return "", false
	}
	if strings.HasSuffix(label, "?") || strings.HasPrefix(label, "#") {
		return "", false
	}
	return label, true
}

// appendOption adds an option, deduplicating labels case-insensitively
// while preserving source order.
func appendOption(options []Option, label string) []Option {
	for _, existing := range options {
		if strings.EqualFold(existing.Label, label) {
			return options
		}
	}
	return append(options, Option{Value: optionValue(label), Label: label})
}

// optionValue derives the stored value for an option label. Yes/no options
// become booleans; everything else stores the label itself.
func optionValue(label string) any {
	switch strings.ToLower(label) {
	case "yes", "true":
		return true
	case "no", "false":
		return false
	}
	return label
}

// cleanQuestionText strips markers, cue phrases, and blanks from a question
func cleanQuestionText(text string) string {
	text = blankRunRe.ReplaceAllString(text, "")
	text = radioCueRe.ReplaceAllString(text, "")
	text = checkboxCueRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.Trim(strings.TrimSpace(text), ":?()")
	return strings.TrimSpace(text)
}

// splitHint separates a parenthesized hint phrase from a field label
func splitHint(label string) (string, *string) {
	loc := hintPhraseRe.FindStringIndex(label)
	if loc == nil {
		return strings.TrimSpace(label), nil
	}
	hint := cleanHintText(label[loc[0]:loc[1]])
	rest := strings.TrimSpace(label[:loc[0]] + label[loc[1]:])
	if rest == "" {
		return strings.TrimSpace(label), nil
	}
	return rest, Hint(hint)
}

// cleanHintText normalizes a hint phrase for storage on a control
func cleanHintText(hint string) string {
	hint = strings.Trim(strings.TrimSpace(hint), "()")
	return strings.TrimSpace(hint)
}
