package doctext

// SourceFormat identifies which extraction path produced a document's lines.
type SourceFormat string

const (
	FormatPDF      SourceFormat = "pdf"
	FormatDOCX     SourceFormat = "docx"
	FormatMarkdown SourceFormat = "markdown"
	FormatText     SourceFormat = "text"
)

// Content type classification for extracted documents
const (
	ContentTypeText          = "text"
	ContentTypeScannedImages = "scanned_images"
	ContentTypeMixed         = "mixed"
	ContentTypeNoContent     = "no_content"
)

// DocumentLine is one extracted line of document text. Lines are produced
// once by an extractor and never mutated afterwards; Ordinal is the 0-based
// position of the line in the extracted stream.
type DocumentLine struct {
	Ordinal int          `json:"ordinal"`
	Text    string       `json:"text"`
	Bold    bool         `json:"bold,omitempty"`
	Format  SourceFormat `json:"format,omitempty"`
}

// CandidateField is an interactive form widget harvested from a PDF
// AcroForm dictionary. Candidates are advisory: downstream matching may
// consult them when a text line is ambiguous.
type CandidateField struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Value    string   `json:"value,omitempty"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
	Page     int      `json:"page"`
}

// Widget kinds reported by the AcroForm harvest
const (
	CandidateKindText      = "text"
	CandidateKindCheckbox  = "checkbox"
	CandidateKindRadio     = "radio"
	CandidateKindSelect    = "select"
	CandidateKindButton    = "button"
	CandidateKindSignature = "signature"
	CandidateKindUnknown   = "unknown"
)

// Document is the full extraction result for one source file.
type Document struct {
	Path        string           `json:"path"`
	Format      SourceFormat     `json:"format"`
	Lines       []DocumentLine   `json:"lines"`
	Candidates  []CandidateField `json:"candidates,omitempty"`
	ContentType string           `json:"content_type"`
	Pages       int              `json:"pages,omitempty"`
	Size        int64            `json:"size"`
}

// Text returns the extracted lines joined back into a single string.
func (d *Document) Text() string {
	if len(d.Lines) == 0 {
		return ""
	}
	n := 0
	for _, ln := range d.Lines {
		n += len(ln.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, ln := range d.Lines {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, ln.Text...)
	}
	return string(buf)
}
