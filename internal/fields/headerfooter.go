package fields

import (
	"regexp"
	"strings"

	"github.com/a3tai/mcp-form-converter/internal/doctext"
)

// boilerplateSignal is one independent practice-letterhead indicator
type boilerplateSignal struct {
	name string
	re   *regexp.Regexp
}

// Each entry is a distinct signal family; a line accumulates at most one
// match per family when counting signal strength.
var boilerplateSignals = []boilerplateSignal{
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"url", regexp.MustCompile(`(?i)(https?://|www\.)\S+|\b\S+\.(com|org|net)\b`)},
	{"phone", regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}|\b\d{3}[-.]\d{3}[-.]\d{4}\b`)},
	{"street", regexp.MustCompile(`(?i)\b\d{1,5}\s+[A-Za-z0-9.' ]+\b(street|st|avenue|ave|road|rd|drive|dr|boulevard|blvd|suite|ste|parkway|pkwy|lane|ln|way|circle|court|ct)\.?\b`)},
	{"city_state_zip", regexp.MustCompile(`,\s*[A-Z]{2}\.?\s+\d{5}(-\d{4})?\b`)},
	{"zip_only", regexp.MustCompile(`^\s*\d{5}(-\d{4})?\s*$`)},
	{"page_marker", regexp.MustCompile(`(?i)^\s*(page\s+\d+(\s+of\s+\d+)?|\d+\s*(of|/)\s*\d+)\s*$`)},
	{"copyright", regexp.MustCompile(`(?i)(©|\(c\)\s|copyright\s)\s*\d{4}|all rights reserved`)},
	{"form_revision", regexp.MustCompile(`(?i)^\s*(form\s*(id|no|number|#)\s*\S*|rev(ised)?\.?:?\s*\d{1,2}[-/]\d{2,4}|version\s+\d[\d.]*)\s*$`)},
	{"practice_keyword", regexp.MustCompile(`(?i)\b(family dental|dental care|dental group|dental associates|dental center|general dentistry|cosmetic dentistry|pediatric dentistry|orthodontics|oral surgery)\b`)},
}

// segmentSplitter breaks a line into independently classifiable fragments
var segmentSplitter = regexp.MustCompile(`\s*\|\s*|\s{3,}|\t+`)

// HeaderFooterFilter strips practice and office boilerplate from the line
// stream. Inside the positional window at either end of the document a
// single boilerplate signal drops a line; elsewhere at least two independent
// signals are required, so a lone phone-shaped patient contact field in the
// body is never filtered. Mixed lines are split and the content fragment
// retained at the same ordinal.
type HeaderFooterFilter struct {
	windowFraction float64
	minWindow      int
}

// NewHeaderFooterFilter creates the filter with the pipeline's window tuning
func NewHeaderFooterFilter(cfg PipelineConfig) *HeaderFooterFilter {
	return &HeaderFooterFilter{
		windowFraction: cfg.HeaderFooterWindow,
		minWindow:      cfg.MinWindowLines,
	}
}

// Filter removes boilerplate lines from the context's line stream
func (f *HeaderFooterFilter) Filter(pc *Context) {
	n := len(pc.Lines)
	if n == 0 {
		return
	}
	window := f.windowSize(n)

	kept := make([]doctext.DocumentLine, 0, n)
	for i, line := range pc.Lines {
		inWindow := i < window || i >= n-window

		// Bold and markdown-header lines are title candidates for the
		// section classifier and are never treated as letterhead, even
		// when they carry a practice name.
		trimmed := strings.TrimSpace(line.Text)
		if line.Bold || strings.HasPrefix(trimmed, "#") || boldWrapRe.MatchString(trimmed) {
			kept = append(kept, line)
			continue
		}

		switch f.classify(line.Text, inWindow) {
		case lineDrop:
			continue
		case lineSplit:
			remainder := f.stripBoilerplate(line.Text, inWindow)
			if remainder == "" {
				continue
			}
			line.Text = remainder
			kept = append(kept, line)
		default:
			kept = append(kept, line)
		}
	}

	pc.Lines = kept
}

type lineVerdict int

const (
	lineKeep lineVerdict = iota
	lineDrop
	lineSplit
)

// classify decides a line's fate given its position
func (f *HeaderFooterFilter) classify(text string, inWindow bool) lineVerdict {
	required := 2
	if inWindow {
		required = 1
	}

	segments := splitSegments(text)
	boilerplate := 0
	for _, seg := range segments {
		if countSignals(seg) >= required {
			boilerplate++
		}
	}

	switch {
	case boilerplate == 0:
		return lineKeep
	case boilerplate == len(segments):
		return lineDrop
	default:
		return lineSplit
	}
}

// stripBoilerplate rebuilds a mixed line from its content fragments
func (f *HeaderFooterFilter) stripBoilerplate(text string, inWindow bool) string {
	required := 2
	if inWindow {
		required = 1
	}

	var content []string
	for _, seg := range splitSegments(text) {
		if countSignals(seg) < required {
			content = append(content, seg)
		}
	}
	return strings.TrimSpace(strings.Join(content, " "))
}

// windowSize computes the header/footer line window for a document length
func (f *HeaderFooterFilter) windowSize(n int) int {
	window := int(float64(n)*f.windowFraction + 0.999)
	if window < f.minWindow {
		window = f.minWindow
	}
	return window
}

// splitSegments breaks a line into fragments on table separators and
// wide whitespace gaps.
func splitSegments(text string) []string {
	parts := segmentSplitter.Split(text, -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return segments
}

// countSignals counts distinct boilerplate signal families matching a fragment
func countSignals(text string) int {
	count := 0
	for _, sig := range boilerplateSignals {
		if sig.re.MatchString(text) {
			count++
		}
	}
	return count
}
