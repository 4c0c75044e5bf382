package doctext

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupIntoRows(t *testing.T) {
	texts := []pdf.Text{
		{S: "right", X: 200, Y: 700.5},
		{S: "left", X: 20, Y: 701},
		{S: "below", X: 20, Y: 650},
	}

	rows := groupIntoRows(texts)
	require.Len(t, rows, 2)

	require.Len(t, rows[0], 2)
	assert.Equal(t, "left", rows[0][0].S, "rows read left to right")
	assert.Equal(t, "right", rows[0][1].S)

	require.Len(t, rows[1], 1)
	assert.Equal(t, "below", rows[1][0].S, "higher Y comes first on the page")
}

func TestGroupIntoRows_YTolerance(t *testing.T) {
	sameRow := groupIntoRows([]pdf.Text{
		{S: "a", Y: 100},
		{S: "b", Y: 98},
	})
	assert.Len(t, sameRow, 1, "2pt drift stays within one visual row")

	splitRows := groupIntoRows([]pdf.Text{
		{S: "a", Y: 100},
		{S: "b", Y: 97.9},
	})
	assert.Len(t, splitRows, 2)
}

func TestRenderRow(t *testing.T) {
	tests := []struct {
		name     string
		row      []pdf.Text
		expected string
		bold     bool
	}{
		{
			name: "gap_inserts_space",
			row: []pdf.Text{
				{S: "First", X: 0, W: 30, FontSize: 10},
				{S: "Name", X: 33, FontSize: 10},
			},
			expected: "First Name",
		},
		{
			name: "adjacent_runs_concatenate",
			row: []pdf.Text{
				{S: "Under", X: 0, W: 30, FontSize: 10},
				{S: "score", X: 30.5, FontSize: 10},
			},
			expected: "Underscore",
		},
		{
			name: "zero_font_size_uses_fallback_threshold",
			row: []pdf.Text{
				{S: "a", X: 0, W: 10},
				{S: "b", X: 11.5},
			},
			expected: "a b",
		},
		{
			name: "single_bold_run",
			row: []pdf.Text{
				{S: "Informed Consent", Font: "Helvetica-Bold"},
			},
			expected: "Informed Consent",
			bold:     true,
		},
		{
			name: "bold_majority_wins",
			row: []pdf.Text{
				{S: "Bold", X: 0, W: 20, FontSize: 10, Font: "Arial-BoldMT"},
				{S: "pln", X: 23, FontSize: 10, Font: "Arial"},
			},
			expected: "Bold pln",
			bold:     true,
		},
		{
			name: "plain_majority_wins",
			row: []pdf.Text{
				{S: "B", X: 0, W: 5, FontSize: 10, Font: "Arial-Bold"},
				{S: "mostly plain", X: 8, FontSize: 10, Font: "Arial"},
			},
			expected: "B mostly plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, bold := renderRow(tt.row)
			assert.Equal(t, tt.expected, text)
			assert.Equal(t, tt.bold, bold)
		})
	}
}

func TestNeedsSpace(t *testing.T) {
	assert.True(t, needsSpace(10, pdf.Text{X: 13, FontSize: 10}))
	assert.False(t, needsSpace(10, pdf.Text{X: 11.5, FontSize: 10}))

	// Zero font size falls back to a 1pt threshold
	assert.True(t, needsSpace(10, pdf.Text{X: 11.5}))
	assert.False(t, needsSpace(10, pdf.Text{X: 10.5}))
}

func TestIsBoldFont(t *testing.T) {
	assert.True(t, isBoldFont("Helvetica-Bold"))
	assert.True(t, isBoldFont("Arial-Black"))
	assert.True(t, isBoldFont("SourceSans-Heavy"))
	assert.True(t, isBoldFont("TIMES-BOLD"))
	assert.False(t, isBoldFont("Times-Roman"))
	assert.False(t, isBoldFont(""))
}

func TestClassifyContent(t *testing.T) {
	longLine := strings.Repeat("x", minMeaningfulTextLength)

	tests := []struct {
		name      string
		lines     []DocumentLine
		hasImages bool
		expected  string
	}{
		{"images_without_text", nil, true, ContentTypeScannedImages},
		{"no_text_no_images", nil, false, ContentTypeNoContent},
		{"short_text_with_images", []DocumentLine{{Text: "stub"}}, true, ContentTypeScannedImages},
		{"text_with_images", []DocumentLine{{Text: longLine}}, true, ContentTypeMixed},
		{"text_only", []DocumentLine{{Text: longLine}}, false, ContentTypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{Lines: tt.lines}
			assert.Equal(t, tt.expected, classifyContent(doc, tt.hasImages))
		})
	}
}
