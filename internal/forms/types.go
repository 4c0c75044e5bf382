package forms

import "github.com/a3tai/mcp-form-converter/internal/fields"

// FileInfo represents information about a form document on disk
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Format       string `json:"format"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// FormConvertFileRequest represents a request to convert one document
type FormConvertFileRequest struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
}

// FormValidateFileRequest represents a request to validate a document
// without writing any output
type FormValidateFileRequest struct {
	Path string `json:"path"`
}

// FormConvertDirectoryRequest represents a request to convert every
// supported document in a directory
type FormConvertDirectoryRequest struct {
	Directory       string `json:"directory"`
	OutputDirectory string `json:"output_directory,omitempty"`
}

// FormSearchDirectoryRequest represents a request to search for form
// documents in a directory
type FormSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// FormStatsDirectoryRequest represents a request for directory statistics
type FormStatsDirectoryRequest struct {
	Directory string `json:"directory"`
}

// FormServerInfoRequest represents a request for server information and capabilities
type FormServerInfoRequest struct {
	// No parameters needed for server info
}

// Response Types

// FormConvertFileResult represents the result of a single conversion
type FormConvertFileResult struct {
	Path       string                 `json:"path"`
	OutputPath string                 `json:"output_path,omitempty"`
	Title      string                 `json:"title"`
	Shape      string                 `json:"shape,omitempty"`
	FieldCount int                    `json:"field_count"`
	Document   *fields.SchemaDocument `json:"document"`
}

// FormValidateFileResult represents the result of a validation run.
// Validation failures land in Message, not in the returned error.
type FormValidateFileResult struct {
	Valid      bool   `json:"valid"`
	Path       string `json:"path"`
	FieldCount int    `json:"field_count,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Conversion entry statuses recorded in the batch summary
const (
	StatusConverted = "converted"
	StatusFailed    = "failed"
)

// ConversionEntry is the per-document record of a batch run. The ID is
// assigned at batch intake, before any worker touches the file.
type ConversionEntry struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
	Status     string `json:"status"`
	Shape      string `json:"shape,omitempty"`
	FieldCount int    `json:"field_count,omitempty"`
	Warnings   int    `json:"warnings,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ConversionSummary is the batch artifact written to
// conversion_summary.json in the output directory.
type ConversionSummary struct {
	RunID           string            `json:"run_id"`
	Directory       string            `json:"directory"`
	OutputDirectory string            `json:"output_directory"`
	StartedAt       string            `json:"started_at"`
	ElapsedSeconds  float64           `json:"elapsed_seconds"`
	TotalFiles      int               `json:"total_files"`
	Converted       int               `json:"converted"`
	Failed          int               `json:"failed"`
	Entries         []ConversionEntry `json:"entries"`
}

// FormConvertDirectoryResult represents the result of a batch conversion
type FormConvertDirectoryResult struct {
	Summary     *ConversionSummary `json:"summary"`
	SummaryPath string             `json:"summary_path,omitempty"`
}

// FormSearchDirectoryResult represents the result of a directory search
type FormSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// FormStatsDirectoryResult represents statistics about the form documents
// in a directory
type FormStatsDirectoryResult struct {
	Directory        string         `json:"directory"`
	TotalFiles       int            `json:"total_files"`
	TotalSize        int64          `json:"total_size"`
	CountsByFormat   map[string]int `json:"counts_by_format,omitempty"`
	LargestFileSize  int64          `json:"largest_file_size"`
	LargestFileName  string         `json:"largest_file_name"`
	SmallestFileSize int64          `json:"smallest_file_size"`
	SmallestFileName string         `json:"smallest_file_name"`
	AverageFileSize  int64          `json:"average_file_size"`
}

// FormServerInfoResult represents server information and usage guidance
type FormServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	OutputDirectory   string     `json:"output_directory,omitempty"`
	MaxFileSize       int64      `json:"max_file_size"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
	SupportedFormats  []string   `json:"supported_formats"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
