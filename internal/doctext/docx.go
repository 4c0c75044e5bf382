package doctext

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX populates doc with paragraph and table text from a DOCX file.
// Paragraphs and tables are emitted in document order; table rows become
// single lines with cells joined by " | ". A paragraph whose runs are all
// bold is flagged bold.
func (e *Extractor) extractDOCX(ctx context.Context, path string, doc *Document) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open DOCX archive: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("failed to open document.xml: %w", err)
		}
		defer rc.Close()

		if err := ctx.Err(); err != nil {
			return err
		}
		return parseDocumentXML(rc, doc)
	}

	return fmt.Errorf("not a valid DOCX file: missing word/document.xml")
}

// docxParser tracks position inside the WordprocessingML token stream
type docxParser struct {
	doc *Document

	para      strings.Builder
	boldRuns  int
	totalRuns int

	inRunProps bool
	inTextElem bool
	runBold    bool

	tableDepth int
	cells      []string
	cell       strings.Builder
}

// parseDocumentXML walks document.xml emitting lines in document order
func parseDocumentXML(r io.Reader, doc *Document) error {
	decoder := xml.NewDecoder(r)
	p := &docxParser{doc: doc}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			p.startElement(t)
		case xml.EndElement:
			p.endElement(t)
		case xml.CharData:
			p.charData(t)
		}
	}

	return nil
}

func (p *docxParser) startElement(t xml.StartElement) {
	switch t.Name.Local {
	case "tbl":
		p.tableDepth++
	case "tr":
		if p.tableDepth > 0 {
			p.cells = p.cells[:0]
		}
	case "tc":
		if p.tableDepth > 0 {
			p.cell.Reset()
		}
	case "p":
		if p.tableDepth == 0 {
			p.para.Reset()
			p.boldRuns = 0
			p.totalRuns = 0
		}
	case "r":
		p.runBold = false
	case "rPr":
		p.inRunProps = true
	case "b":
		if p.inRunProps {
			p.runBold = boldAttrValue(t)
		}
	case "t":
		p.inTextElem = true
	case "tab", "br":
		p.writeText(" ")
	}
}

func (p *docxParser) endElement(t xml.EndElement) {
	switch t.Name.Local {
	case "tbl":
		p.tableDepth--
	case "tr":
		if p.tableDepth > 0 {
			p.emitRow()
		}
	case "tc":
		if p.tableDepth > 0 {
			p.cells = append(p.cells, strings.TrimSpace(p.cell.String()))
		}
	case "p":
		if p.tableDepth == 0 {
			bold := p.totalRuns > 0 && p.boldRuns == p.totalRuns
			appendLine(p.doc, p.para.String(), bold)
		} else {
			// Paragraph breaks inside a cell become spaces
			p.cell.WriteString(" ")
		}
	case "rPr":
		p.inRunProps = false
	case "t":
		p.inTextElem = false
	}
}

func (p *docxParser) charData(t xml.CharData) {
	if !p.inTextElem {
		return
	}
	text := string(t)
	p.writeText(text)
	if strings.TrimSpace(text) == "" {
		return
	}
	p.totalRuns++
	if p.runBold {
		p.boldRuns++
	}
}

func (p *docxParser) writeText(text string) {
	if p.tableDepth > 0 {
		p.cell.WriteString(text)
		return
	}
	p.para.WriteString(text)
}

// emitRow joins the collected cells into one table-row line
func (p *docxParser) emitRow() {
	nonEmpty := make([]string, 0, len(p.cells))
	for _, c := range p.cells {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 0 {
		return
	}
	appendLine(p.doc, strings.Join(nonEmpty, " | "), false)
}

// boldAttrValue interprets the optional w:val attribute on a <w:b> element
func boldAttrValue(t xml.StartElement) bool {
	for _, attr := range t.Attr {
		if attr.Name.Local != "val" {
			continue
		}
		switch strings.ToLower(attr.Value) {
		case "false", "0", "none":
			return false
		}
	}
	return true
}
