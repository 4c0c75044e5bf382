package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-form-converter/internal/doctext"
	"github.com/a3tai/mcp-form-converter/internal/fields"
)

const (
	// DefaultMaxConcurrency is the batch worker count used when the
	// configured value is zero or negative
	DefaultMaxConcurrency = 4

	// SummaryFileName is the batch artifact written to the output directory
	SummaryFileName = "conversion_summary.json"

	outputDirPerm  = 0o750
	outputFilePerm = 0o600
)

// Converter runs the extraction and field pipeline over documents
type Converter struct {
	extractor      *doctext.Extractor
	pipeline       *fields.Pipeline
	search         *Search
	maxConcurrency int
}

// NewConverter creates a converter from its component parts
func NewConverter(extractor *doctext.Extractor, pipeline *fields.Pipeline, search *Search, maxConcurrency int) *Converter {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Converter{
		extractor:      extractor,
		pipeline:       pipeline,
		search:         search,
		maxConcurrency: maxConcurrency,
	}
}

// ConvertFile extracts one document and runs it through the pipeline.
// When OutputPath is set the resulting document is also written to disk.
func (c *Converter) ConvertFile(ctx context.Context, req FormConvertFileRequest) (*FormConvertFileResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	doc, err := c.extractor.Extract(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	schemaDoc, err := c.pipeline.ConvertDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	result := &FormConvertFileResult{
		Path:       req.Path,
		Title:      schemaDoc.Title,
		Shape:      string(schemaDoc.Shape),
		FieldCount: len(schemaDoc.Fields),
		Document:   schemaDoc,
	}

	if req.OutputPath != "" {
		if err := writeDocument(schemaDoc, req.OutputPath); err != nil {
			return nil, err
		}
		result.OutputPath = req.OutputPath
	}

	return result, nil
}

// ValidateFile runs the full pipeline without writing output. Conversion
// failures land in the result message, not in the returned error.
func (c *Converter) ValidateFile(ctx context.Context, req FormValidateFileRequest) (*FormValidateFileResult, error) {
	result := &FormValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	if req.Path == "" {
		result.Message = "path cannot be empty"
		return result, nil
	}

	doc, err := c.extractor.Extract(ctx, req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	schemaDoc, err := c.pipeline.ConvertDocument(ctx, doc)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	result.FieldCount = len(schemaDoc.Fields)
	return result, nil
}

// ConvertDirectory converts every supported document under the directory.
// Documents are isolated from each other: a failed conversion is recorded
// in the summary and never aborts its siblings.
func (c *Converter) ConvertDirectory(ctx context.Context, req FormConvertDirectoryRequest) (*FormConvertDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if req.OutputDirectory == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}

	files, err := c.search.FindFormsInDirectory(req.Directory)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(req.OutputDirectory, outputDirPerm); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	started := time.Now()
	summary := &ConversionSummary{
		RunID:           uuid.NewString(),
		Directory:       req.Directory,
		OutputDirectory: req.OutputDirectory,
		StartedAt:       started.UTC().Format(time.RFC3339),
		TotalFiles:      len(files),
		Entries:         make([]ConversionEntry, len(files)),
	}

	// Document IDs are assigned at intake so a failed conversion still has
	// a stable identity in the summary
	for i, f := range files {
		summary.Entries[i] = ConversionEntry{
			ID:   uuid.NewString(),
			Path: f.Path,
		}
	}

	sem := make(chan struct{}, c.maxConcurrency)
	var wg sync.WaitGroup
	for i := range summary.Entries {
		wg.Add(1)
		go func(entry *ConversionEntry) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				entry.Status = StatusFailed
				entry.Error = ctx.Err().Error()
				return
			}

			c.convertEntry(ctx, entry, req.OutputDirectory)
		}(&summary.Entries[i])
	}
	wg.Wait()

	for i := range summary.Entries {
		switch summary.Entries[i].Status {
		case StatusConverted:
			summary.Converted++
		case StatusFailed:
			summary.Failed++
		}
	}
	summary.ElapsedSeconds = time.Since(started).Seconds()

	summaryPath := filepath.Join(req.OutputDirectory, SummaryFileName)
	if err := writeJSON(summary, summaryPath); err != nil {
		return nil, fmt.Errorf("failed to write conversion summary: %w", err)
	}

	return &FormConvertDirectoryResult{
		Summary:     summary,
		SummaryPath: summaryPath,
	}, nil
}

func (c *Converter) convertEntry(ctx context.Context, entry *ConversionEntry, outputDirectory string) {
	outputPath := OutputPathFor(entry.Path, outputDirectory)

	result, err := c.ConvertFile(ctx, FormConvertFileRequest{
		Path:       entry.Path,
		OutputPath: outputPath,
	})
	if err != nil {
		entry.Status = StatusFailed
		entry.Error = err.Error()
		return
	}

	entry.Status = StatusConverted
	entry.OutputPath = result.OutputPath
	entry.Shape = result.Shape
	entry.FieldCount = result.FieldCount
	entry.Warnings = len(result.Document.Warnings)
}

// OutputPathFor places the converted document in the output directory,
// mirroring the input basename with a .json extension
func OutputPathFor(inputPath, outputDirectory string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
	return filepath.Join(outputDirectory, base)
}

func writeDocument(doc *fields.SchemaDocument, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, outputDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	return writeJSON(doc, outputPath)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, outputFilePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
