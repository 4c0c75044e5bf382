package doctext

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Row grouping and content analysis thresholds
const (
	rowYTolerance           = 2.0
	minMeaningfulTextLength = 50
)

// extractPDF populates doc with per-line text from a PDF file. Text runs are
// grouped into visual rows by Y coordinate so bold flags survive extraction;
// pages whose positioned content is unavailable fall back to plain text.
func (e *Extractor) extractPDF(ctx context.Context, path string, doc *Document) error {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	doc.Pages = pdfReader.NumPage()

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		if !e.extractPageRows(page, doc) {
			e.extractPagePlain(page, doc)
		}
	}

	hasImages := detectImages(pdfReader)
	doc.ContentType = classifyContent(doc, hasImages)

	// Interactive form widgets are advisory input for downstream matching
	candidates, err := HarvestCandidates(path)
	if err == nil {
		doc.Candidates = candidates
	}

	return nil
}

// extractPageRows builds lines from positioned text runs. Returns false when
// the page exposes no positioned content.
func (e *Extractor) extractPageRows(page pdf.Page, doc *Document) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	content := page.Content()
	if len(content.Text) == 0 {
		return false
	}

	rows := groupIntoRows(content.Text)
	for _, row := range rows {
		text, bold := renderRow(row)
		appendLine(doc, text, bold)
	}
	return true
}

// extractPagePlain falls back to unpositioned plain text for the page
func (e *Extractor) extractPagePlain(page pdf.Page, doc *Document) {
	defer func() {
		_ = recover()
	}()

	text, err := page.GetPlainText(nil)
	if err != nil {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		appendLine(doc, line, false)
	}
}

// groupIntoRows buckets text runs into visual rows by Y coordinate and
// orders them top-to-bottom, left-to-right.
func groupIntoRows(texts []pdf.Text) [][]pdf.Text {
	var rows [][]pdf.Text
	for _, t := range texts {
		placed := false
		for i := range rows {
			if absFloat(rows[i][0].Y-t.Y) <= rowYTolerance {
				rows[i] = append(rows[i], t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []pdf.Text{t})
		}
	}

	// PDF coordinates grow upward, so higher Y means earlier on the page
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][0].Y > rows[j][0].Y
	})
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})
	}
	return rows
}

// renderRow joins a row's text runs into one line and reports whether the
// line is predominantly bold.
func renderRow(row []pdf.Text) (string, bool) {
	var builder strings.Builder
	boldChars := 0
	totalChars := 0
	prevEnd := 0.0

	for i, t := range row {
		if i > 0 && needsSpace(prevEnd, t) && !strings.HasSuffix(builder.String(), " ") {
			builder.WriteString(" ")
		}
		builder.WriteString(t.S)
		prevEnd = t.X + t.W

		n := len(strings.TrimSpace(t.S))
		totalChars += n
		if isBoldFont(t.Font) {
			boldChars += n
		}
	}

	bold := totalChars > 0 && boldChars*2 >= totalChars
	return builder.String(), bold
}

// needsSpace reports whether a horizontal gap between runs implies a word break
func needsSpace(prevEnd float64, t pdf.Text) bool {
	gap := t.X - prevEnd
	threshold := t.FontSize * 0.2
	if threshold <= 0 {
		threshold = 1.0
	}
	return gap > threshold
}

func isBoldFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "bold") || strings.Contains(f, "black") || strings.Contains(f, "heavy")
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// classifyContent determines whether a PDF carried usable text
func classifyContent(doc *Document, hasImages bool) string {
	textLength := 0
	for _, line := range doc.Lines {
		textLength += len(line.Text)
	}

	if textLength < minMeaningfulTextLength {
		if hasImages {
			return ContentTypeScannedImages
		}
		return ContentTypeNoContent
	}
	if hasImages {
		return ContentTypeMixed
	}
	return ContentTypeText
}

// detectImages scans page resources for image XObjects
func detectImages(pdfReader *pdf.Reader) bool {
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		if countImagesOnPage(pdfReader, pageNum) > 0 {
			return true
		}
	}
	return false
}

// countImagesOnPage counts image XObjects on a specific page
func countImagesOnPage(pdfReader *pdf.Reader, pageNum int) int {
	defer func() {
		// Malformed resource dictionaries must not abort extraction
		_ = recover()
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return 0
	}

	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return 0
	}

	xObjects := resources.Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return 0
	}

	imageCount := 0
	for _, key := range xObjects.Keys() {
		obj := xObjects.Key(key)
		if obj.IsNull() {
			continue
		}
		subtype := obj.Key("Subtype")
		if subtype.IsNull() || subtype.Name() != "Image" {
			continue
		}
		imageCount++
	}
	return imageCount
}
