package forms

import (
	"fmt"
	"time"

	"github.com/a3tai/mcp-form-converter/internal/descriptions"
	"github.com/a3tai/mcp-form-converter/internal/doctext"
)

// FormServerInfo returns comprehensive server information and usage guidance
func (s *Service) FormServerInfo(req FormServerInfoRequest, serverName, version,
	defaultDirectory string,
) (*FormServerInfoResult, error) {
	// Validate the default directory is within bounds
	validatedDir := defaultDirectory
	if err := s.pathValidator.ValidateDirectory(defaultDirectory); err != nil {
		// Use the configured directory if validation fails
		validatedDir = s.pathValidator.ConfiguredDirectory()
	}

	// Get directory contents with a timeout to prevent hanging
	// Limit to first 100 files for performance
	directoryContents := []FileInfo{}

	resultChan := make(chan []FileInfo, 1)
	errorChan := make(chan error, 1)

	go func() {
		files, err := s.search.FindFormsInDirectoryLimited(validatedDir, 100)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- files
	}()

	select {
	case files := <-resultChan:
		directoryContents = files
	case <-errorChan:
		// Don't fail completely if directory scan fails, just return empty contents
		directoryContents = []FileInfo{}
	case <-time.After(5 * time.Second):
		directoryContents = []FileInfo{}
	}

	result := &FormServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  validatedDir,
		OutputDirectory:   s.outputDirectory,
		MaxFileSize:       s.maxFileSize,
		AvailableTools:    s.availableTools(),
		DirectoryContents: directoryContents,
		UsageGuidance:     s.usageGuidance(),
		SupportedFormats:  doctext.SupportedExtensions(),
	}

	return result, nil
}

func (s *Service) availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "form_convert_file",
			Description: descriptions.GetToolDescription("form_convert_file"),
			Usage: "Use this tool to convert a single intake or consent form into its " +
				"schema-compliant field document. Works on text-based PDF, DOCX, Markdown and plain text files.",
			Parameters: "path (required): Full absolute path to the document, " +
				"output_path (optional): Where to write the converted JSON document",
		},
		{
			Name:        "form_validate_file",
			Description: descriptions.GetToolDescription("form_validate_file"),
			Usage: "Use this tool to check whether a document converts cleanly before running a batch. " +
				"Runs the full pipeline without writing any output.",
			Parameters: "path (required): Full absolute path to the document",
		},
		{
			Name:        "form_convert_directory",
			Description: descriptions.GetToolDescription("form_convert_directory"),
			Usage: "Use this tool to convert every supported document in a directory. Failed documents " +
				"are recorded in the conversion summary and never abort the batch.",
			Parameters: "directory (optional): Directory to convert (uses default if empty), " +
				"output_directory (optional): Where converted documents and the summary are written",
		},
		{
			Name:        "form_search_directory",
			Description: descriptions.GetToolDescription("form_search_directory"),
			Usage: "Use this tool to find form documents in the default directory or any specified " +
				"directory. Supports fuzzy search by filename.",
			Parameters: "directory (optional): Directory path to search (uses default if empty), " +
				"query (optional): Search query for fuzzy matching",
		},
		{
			Name:        "form_stats_directory",
			Description: descriptions.GetToolDescription("form_stats_directory"),
			Usage: "Use this tool to get an overview of the form documents in a directory including " +
				"per-format counts and sizes.",
			Parameters: "directory (optional): Directory path to analyze (uses default if empty)",
		},
		{
			Name:        "form_server_info",
			Description: descriptions.GetToolDescription("form_server_info"),
			Usage:       "Use this tool to discover server capabilities, directory contents, and usage guidance.",
			Parameters:  "none",
		},
	}
}

func (s *Service) usageGuidance() string {
	return `Form Converter MCP Server Usage Guide:

1. START WITH DISCOVERY:
   - Use 'form_search_directory' to find available form documents
   - Use 'form_stats_directory' to get an overview of the directory

2. VALIDATE FILES:
   - Use 'form_validate_file' to check if a document converts cleanly before processing

3. CONVERT DOCUMENTS:
   - Use 'form_convert_file' for a single document
   - Use 'form_convert_directory' for a whole directory; results land in the
     output directory along with conversion_summary.json

4. READ THE RESULTS:
   - Converted documents carry an ordered 'fields' array; each field has a
     unique key, a section, and a typed control
   - Consent and patient-info forms always end with 'signature' and
     'date_signed' fields
   - Narrative paragraphs are preserved as sanitized HTML text fields
   - Warnings on the document record ambiguous lines that were resolved by
     rule priority

IMPORTANT NOTES:
- Always use absolute file paths
- The server can handle files up to ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB
- Scanned PDFs have no extractable text and are rejected; run OCR upstream first
- Supported extensions: .pdf, .docx, .md, .markdown, .txt`
}
