package doctext

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validate checks that the file at path is a readable source document
// without extracting it. A nil return means the file can be converted.
func (e *Extractor) Validate(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist")
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file")
	}

	if !IsSupportedFile(path) {
		return fmt.Errorf("unsupported file extension %q (supported: %s)",
			filepath.Ext(path), strings.Join(SupportedExtensions(), ", "))
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty")
	}

	if fileInfo.Size() > e.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), e.maxFileSize)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	// Probe the container formats; plain text needs no structural check
	switch format {
	case FormatPDF:
		f, _, err := pdf.Open(path)
		if err != nil {
			return fmt.Errorf("cannot parse PDF file: %w", err)
		}
		_ = f.Close()
	case FormatDOCX:
		r, err := zip.OpenReader(path)
		if err != nil {
			return fmt.Errorf("cannot parse DOCX file: %w", err)
		}
		_ = r.Close()
	}

	return nil
}

// ValidateFileInfo checks file metadata without opening the file. Used by
// directory scans where opening every file would be too expensive.
func (e *Extractor) ValidateFileInfo(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory")
	}
	if !IsSupportedFile(path) {
		return fmt.Errorf("unsupported file extension")
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty")
	}
	if fileInfo.Size() > e.maxFileSize {
		return fmt.Errorf("file too large")
	}
	return nil
}
