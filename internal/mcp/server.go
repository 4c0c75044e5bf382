package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-form-converter/internal/config"
	"github.com/a3tai/mcp-form-converter/internal/forms"
)

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	formService *forms.Service
	mcpServer   *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, formService *forms.Service) (*Server, error) {
	if formService == nil {
		return nil, fmt.Errorf("formService cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:      cfg,
		formService: formService,
		mcpServer:   mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register form convert file tool
	formConvertFileTool := mcp.NewTool(
		"form_convert_file",
		mcp.WithDescription("Convert a form document into a schema-compliant field document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the form document (.pdf, .docx, .md, .txt)"),
		),
		mcp.WithString("output_path",
			mcp.Description("Optional path to write the converted JSON document"),
		),
	)
	s.mcpServer.AddTool(formConvertFileTool, s.handleFormConvertFile)

	// Register form validate file tool
	formValidateFileTool := mcp.NewTool(
		"form_validate_file",
		mcp.WithDescription("Check whether a form document converts cleanly without writing output"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the form document"),
		),
	)
	s.mcpServer.AddTool(formValidateFileTool, s.handleFormValidateFile)

	// Register form convert directory tool
	formConvertDirectoryTool := mcp.NewTool(
		"form_convert_directory",
		mcp.WithDescription("Convert every supported form document in a directory"),
		mcp.WithString("directory",
			mcp.Description("Directory to convert (uses default if empty)"),
		),
		mcp.WithString("output_directory",
			mcp.Description("Directory for converted documents and the conversion summary"),
		),
	)
	s.mcpServer.AddTool(formConvertDirectoryTool, s.handleFormConvertDirectory)

	// Register form search directory tool
	formSearchDirectoryTool := mcp.NewTool(
		"form_search_directory",
		mcp.WithDescription("Search for form documents in a directory with optional fuzzy search"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	)
	s.mcpServer.AddTool(formSearchDirectoryTool, s.handleFormSearchDirectory)

	// Register form stats directory tool
	formStatsDirectoryTool := mcp.NewTool(
		"form_stats_directory",
		mcp.WithDescription("Get statistics about form documents in a directory"),
		mcp.WithString("directory",
			mcp.Description("Directory path to analyze (uses default if empty)"),
		),
	)
	s.mcpServer.AddTool(formStatsDirectoryTool, s.handleFormStatsDirectory)

	// Register form server info tool
	formServerInfoTool := mcp.NewTool(
		"form_server_info",
		mcp.WithDescription("Get server information, available tools, directory contents, and usage guidance"),
	)
	s.mcpServer.AddTool(formServerInfoTool, s.handleFormServerInfo)
}

// Handler functions
func (s *Server) handleFormConvertFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outputPath := ""
	if op, ok := request.GetArguments()["output_path"].(string); ok {
		outputPath = op
	}

	req := forms.FormConvertFileRequest{Path: path, OutputPath: outputPath}
	result, err := s.formService.FormConvertFile(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormConvertFileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := forms.FormValidateFileRequest{Path: path}
	result, err := s.formService.FormValidateFile(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Document %s converts cleanly (%d fields)", result.Path, result.FieldCount)
	} else {
		responseText = fmt.Sprintf("Validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormConvertDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := ""
	if dir, ok := args["directory"].(string); ok {
		directory = dir
	}

	outputDirectory := ""
	if dir, ok := args["output_directory"].(string); ok {
		outputDirectory = dir
	}

	req := forms.FormConvertDirectoryRequest{
		Directory:       directory,
		OutputDirectory: outputDirectory,
	}

	result, err := s.formService.FormConvertDirectory(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormConvertDirectoryResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.FormDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	req := forms.FormSearchDirectoryRequest{
		Directory: directory,
		Query:     query,
	}

	result, err := s.formService.FormSearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No form documents found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatFormSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormStatsDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.FormDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	req := forms.FormStatsDirectoryRequest{Directory: directory}
	result, err := s.formService.FormStatsDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormStatsDirectoryResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := forms.FormServerInfoRequest{}
	result, err := s.formService.FormServerInfo(req, s.config.ServerName, s.config.Version, s.config.FormDirectory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFormServerInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatFormConvertFileResult(result *forms.FormConvertFileResult) string {
	text := fmt.Sprintf("Successfully converted document: %s\n", result.Path)
	text += fmt.Sprintf("Title: %s\n", result.Title)
	if result.Shape != "" {
		text += fmt.Sprintf("Shape: %s\n", result.Shape)
	}
	text += fmt.Sprintf("Fields: %d\n", result.FieldCount)
	if len(result.Document.Warnings) > 0 {
		text += fmt.Sprintf("Warnings: %d\n", len(result.Document.Warnings))
		for _, w := range result.Document.Warnings {
			text += fmt.Sprintf("  - %s\n", w)
		}
	}
	if result.OutputPath != "" {
		text += fmt.Sprintf("Written to: %s\n", result.OutputPath)
	}

	if data, err := json.MarshalIndent(result.Document, "", "  "); err == nil {
		text += "\nDocument:\n"
		text += string(data)
	}

	return text
}

func (s *Server) formatFormConvertDirectoryResult(result *forms.FormConvertDirectoryResult) string {
	summary := result.Summary
	text := "Form Directory Conversion\n"
	text += fmt.Sprintf("Directory: %s\n", summary.Directory)
	text += fmt.Sprintf("Output directory: %s\n", summary.OutputDirectory)
	text += fmt.Sprintf("Total files: %d\n", summary.TotalFiles)
	text += fmt.Sprintf("Converted: %d\n", summary.Converted)
	text += fmt.Sprintf("Failed: %d\n", summary.Failed)
	if result.SummaryPath != "" {
		text += fmt.Sprintf("Summary written to: %s\n", result.SummaryPath)
	}

	if summary.Failed > 0 {
		text += "\nFailures:\n"
		for _, entry := range summary.Entries {
			if entry.Status == forms.StatusFailed {
				text += fmt.Sprintf("  %s: %s\n", entry.Path, entry.Error)
			}
		}
	}

	return text
}

func (s *Server) formatFormSearchDirectoryResult(result *forms.FormSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d form document(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Format: %s\n", file.Format)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatFormStatsDirectoryResult(result *forms.FormStatsDirectoryResult) string {
	text := "Form Directory Statistics\n"
	text += fmt.Sprintf("Directory: %s\n", result.Directory)
	text += fmt.Sprintf("Total form documents: %d\n", result.TotalFiles)
	text += fmt.Sprintf("Total size: %d bytes\n", result.TotalSize)

	if result.TotalFiles > 0 {
		for format, count := range result.CountsByFormat {
			text += fmt.Sprintf("  %s: %d\n", format, count)
		}
		text += fmt.Sprintf("Average file size: %d bytes\n", result.AverageFileSize)
		if result.LargestFileName != "" {
			text += fmt.Sprintf("Largest file: %s (%d bytes)\n", result.LargestFileName, result.LargestFileSize)
		}
		if result.SmallestFileName != "" {
			text += fmt.Sprintf("Smallest file: %s (%d bytes)\n", result.SmallestFileName, result.SmallestFileSize)
		}
	}

	return text
}

func (s *Server) formatFormServerInfoResult(result *forms.FormServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	if result.OutputDirectory != "" {
		text += fmt.Sprintf("📤 Output Directory: %s\n", result.OutputDirectory)
	}
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	// Directory contents
	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d form documents found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No form documents found in default directory\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	// Supported formats
	if len(result.SupportedFormats) > 0 {
		text += "\n📄 Supported Document Formats:\n"
		for _, format := range result.SupportedFormats {
			text += fmt.Sprintf("  • %s\n", format)
		}
	}

	// Usage guidance
	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	} else {
		return s.runStdioMode(ctx)
	}
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting form converter MCP server in stdio mode")
		log.Printf("Form directory: %s", s.config.FormDirectory)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// For now, we'll just use stdio mode since the mark3labs library
	// handles the transport differently
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
