package forms

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/a3tai/mcp-form-converter/internal/doctext"
	"github.com/a3tai/mcp-form-converter/internal/fields"
)

// Options configures a Service
type Options struct {
	MaxFileSize         int64
	ConfiguredDirectory string
	OutputDirectory     string
	MaxConcurrency      int
	StrictSchema        bool
	Debug               bool
}

// Service provides the form conversion operations exposed over MCP and
// the CLI. Every file operation is path-validated against the configured
// directory before any component touches the filesystem.
type Service struct {
	extractor           *doctext.Extractor
	converter           *Converter
	search              *Search
	stats               *Stats
	pathValidator       *PathValidator
	maxFileSize         int64
	configuredDirectory string
	outputDirectory     string
}

// NewService creates a fully wired conversion service
func NewService(opts Options) (*Service, error) {
	pathValidator, err := NewPathValidator(opts.ConfiguredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	extractor := doctext.NewExtractorWithDebug(opts.MaxFileSize, opts.Debug)

	cfg := fields.DefaultPipelineConfig()
	cfg.LenientSchema = !opts.StrictSchema
	cfg.Debug = opts.Debug
	pipeline := fields.NewPipeline(cfg)

	search := NewSearch(extractor)

	return &Service{
		extractor:           extractor,
		converter:           NewConverter(extractor, pipeline, search, opts.MaxConcurrency),
		search:              search,
		stats:               NewStats(extractor),
		pathValidator:       pathValidator,
		maxFileSize:         opts.MaxFileSize,
		configuredDirectory: opts.ConfiguredDirectory,
		outputDirectory:     opts.OutputDirectory,
	}, nil
}

// FormConvertFile converts a single document with path validation
func (s *Service) FormConvertFile(ctx context.Context, req FormConvertFileRequest) (*FormConvertFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.converter.ConvertFile(ctx, req)
}

// FormValidateFile dry-runs the pipeline over a document with path validation
func (s *Service) FormValidateFile(ctx context.Context, req FormValidateFileRequest) (*FormValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.converter.ValidateFile(ctx, req)
}

// FormConvertDirectory batch-converts a directory with path validation.
// An empty directory falls back to the configured documents directory; an
// empty output directory falls back to the configured output directory,
// then to a converted/ directory beside the input.
func (s *Service) FormConvertDirectory(ctx context.Context, req FormConvertDirectoryRequest) (*FormConvertDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.configuredDirectory
	}
	if req.OutputDirectory == "" {
		req.OutputDirectory = s.outputDirectory
	}
	if req.OutputDirectory == "" {
		req.OutputDirectory = filepath.Join(req.Directory, "converted")
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.converter.ConvertDirectory(ctx, req)
}

// FormSearchDirectory searches for form documents with directory validation
func (s *Service) FormSearchDirectory(req FormSearchDirectoryRequest) (*FormSearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.configuredDirectory
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.SearchDirectory(req)
}

// FormStatsDirectory gathers directory statistics with directory validation
func (s *Service) FormStatsDirectory(req FormStatsDirectoryRequest) (*FormStatsDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.configuredDirectory
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.stats.GetDirectoryStats(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// OutputDirectory returns the configured output directory
func (s *Service) OutputDirectory() string {
	return s.outputDirectory
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be positive, got %d", s.maxFileSize)
	}

	// 1GB seems reasonable as an upper limit
	maxReasonableSize := int64(1024 * 1024 * 1024)
	if s.maxFileSize > maxReasonableSize {
		return fmt.Errorf("maxFileSize %d exceeds reasonable limit of %d", s.maxFileSize, maxReasonableSize)
	}

	return nil
}
