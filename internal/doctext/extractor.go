package doctext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor converts source documents into ordered DocumentLine streams.
// It dispatches on file extension to the format-specific extraction path;
// everything downstream is format-agnostic once lines exist.
type Extractor struct {
	maxFileSize int64
	debugMode   bool
}

// NewExtractor creates a new extractor with the given file size limit
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
	}
}

// NewExtractorWithDebug creates a new extractor with debug output enabled
func NewExtractorWithDebug(maxFileSize int64, debugMode bool) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
		debugMode:   debugMode,
	}
}

// SupportedExtensions returns the file extensions the extractor understands
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".md", ".markdown", ".txt"}
}

// IsSupportedFile reports whether the path has a supported extension
func IsSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// DetectFormat determines the source format from the file extension
func DetectFormat(path string) (SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}

// Extract reads the file at path and produces its DocumentLine stream.
// PDF extraction also harvests AcroForm candidate fields when present.
func (e *Extractor) Extract(ctx context.Context, path string) (*Document, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file does not exist: %s", path)
		}
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	if fileInfo.Size() > e.maxFileSize {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed size %d", fileInfo.Size(), e.maxFileSize)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &Document{
		Path:   path,
		Format: format,
		Size:   fileInfo.Size(),
	}

	switch format {
	case FormatPDF:
		err = e.extractPDF(ctx, path, doc)
	case FormatDOCX:
		err = e.extractDOCX(ctx, path, doc)
	case FormatMarkdown, FormatText:
		err = e.extractPlain(path, doc)
	}
	if err != nil {
		return nil, err
	}

	if doc.ContentType == "" {
		if len(doc.Lines) == 0 {
			doc.ContentType = ContentTypeNoContent
		} else {
			doc.ContentType = ContentTypeText
		}
	}

	return doc, nil
}

// appendLine trims and appends a line to the document, skipping blanks.
// Ordinals count emitted lines; blank source lines never occupy a slot.
func appendLine(doc *Document, text string, bold bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	doc.Lines = append(doc.Lines, DocumentLine{
		Ordinal: len(doc.Lines),
		Text:    text,
		Bold:    bold,
		Format:  doc.Format,
	})
}
