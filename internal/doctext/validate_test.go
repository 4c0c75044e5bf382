package doctext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fixture func(t *testing.T) string
		maxSize int64
		wantErr string
	}{
		{
			name:    "empty_path",
			fixture: func(t *testing.T) string { return "" },
			wantErr: "path cannot be empty",
		},
		{
			name: "missing_file",
			fixture: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "gone.txt")
			},
			wantErr: "file does not exist",
		},
		{
			name:    "directory",
			fixture: func(t *testing.T) string { return t.TempDir() },
			wantErr: "path is a directory",
		},
		{
			name: "unsupported_extension",
			fixture: func(t *testing.T) string {
				return writeFixture(t, "scan.tiff", "data")
			},
			wantErr: "unsupported file extension",
		},
		{
			name: "empty_file",
			fixture: func(t *testing.T) string {
				return writeFixture(t, "empty.txt", "")
			},
			wantErr: "file is empty",
		},
		{
			name: "oversized_file",
			fixture: func(t *testing.T) string {
				return writeFixture(t, "big.txt", strings.Repeat("x", 64))
			},
			maxSize: 16,
			wantErr: "file too large",
		},
		{
			name: "valid_text_file",
			fixture: func(t *testing.T) string {
				return writeFixture(t, "intake.txt", "Patient Name: John")
			},
		},
		{
			name: "valid_markdown_file",
			fixture: func(t *testing.T) string {
				return writeFixture(t, "consent.md", "**Informed Consent**")
			},
		},
		{
			name: "corrupt_pdf",
			fixture: func(t *testing.T) string {
				return writeFixture(t, "broken.pdf", "this is not a pdf")
			},
			wantErr: "cannot parse PDF file",
		},
		{
			name: "corrupt_docx",
			fixture: func(t *testing.T) string {
				return writeFixture(t, "broken.docx", "this is not a zip")
			},
			wantErr: "cannot parse DOCX file",
		},
		{
			name: "valid_docx_container",
			fixture: func(t *testing.T) string {
				return writeDOCX(t, `<w:p><w:r><w:t>Consent</w:t></w:r></w:p>`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxSize := tt.maxSize
			if maxSize == 0 {
				maxSize = testMaxFileSize
			}
			err := NewExtractor(maxSize).Validate(tt.fixture(t))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExtractor_ValidateFileInfo(t *testing.T) {
	extractor := NewExtractor(16)

	statFixture := func(t *testing.T, name, content string) (string, os.FileInfo) {
		t.Helper()
		path := writeFixture(t, name, content)
		info, err := os.Stat(path)
		require.NoError(t, err)
		return path, info
	}

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		info, err := os.Stat(dir)
		require.NoError(t, err)
		err = extractor.ValidateFileInfo(dir, info)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path is a directory")
	})

	t.Run("unsupported_extension", func(t *testing.T) {
		path, info := statFixture(t, "scan.tiff", "data")
		err := extractor.ValidateFileInfo(path, info)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file extension")
	})

	t.Run("empty_file", func(t *testing.T) {
		path, info := statFixture(t, "empty.txt", "")
		err := extractor.ValidateFileInfo(path, info)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file is empty")
	})

	t.Run("oversized_file", func(t *testing.T) {
		path, info := statFixture(t, "big.txt", strings.Repeat("x", 64))
		err := extractor.ValidateFileInfo(path, info)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file too large")
	})

	t.Run("valid_file", func(t *testing.T) {
		path, info := statFixture(t, "small.txt", "ok")
		assert.NoError(t, extractor.ValidateFileInfo(path, info))
	})
}
