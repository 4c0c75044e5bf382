package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/mcp-form-converter/internal/config"
	"github.com/a3tai/mcp-form-converter/internal/fields"
	"github.com/a3tai/mcp-form-converter/internal/forms"
)

// Helper to build a form service rooted at dir
func newTestFormService(t *testing.T, dir string) *forms.Service {
	t.Helper()
	svc, err := forms.NewService(forms.Options{
		MaxFileSize:         1024 * 1024,
		ConfiguredDirectory: dir,
		MaxConcurrency:      2,
		StrictSchema:        true,
	})
	if err != nil {
		t.Fatalf("failed to create form service: %v", err)
	}
	return svc
}

func TestNewServer(t *testing.T) {
	// Create temp directory for test
	tempDir, err := os.MkdirTemp("", "mcp_server_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	formService := newTestFormService(t, tempDir)

	tests := []struct {
		name        string
		config      *config.Config
		expectError bool
	}{
		{
			name: "valid stdio mode config",
			config: &config.Config{
				Mode:          "stdio",
				Host:          "127.0.0.1",
				Port:          8080,
				FormDirectory: tempDir,
				Version:       "1.0.0",
				ServerName:    "test-server",
				LogLevel:      "info",
				MaxFileSize:   1024 * 1024,
			},
			expectError: false,
		},
		{
			name: "valid server mode config",
			config: &config.Config{
				Mode:          "server",
				Host:          "127.0.0.1",
				Port:          8080,
				FormDirectory: tempDir,
				Version:       "1.0.0",
				ServerName:    "test-server",
				LogLevel:      "info",
				MaxFileSize:   1024 * 1024,
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.config, formService)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.expectError {
				if server == nil {
					t.Fatal("server should not be nil")
				}
				if server.config != tt.config {
					t.Error("server config not set correctly")
				}
				if server.formService != formService {
					t.Error("server formService not set correctly")
				}
				if server.mcpServer == nil {
					t.Error("mcpServer should be initialized")
				}
			}
		})
	}
}

func TestServer_HandleFormValidateFile(t *testing.T) {
	// Create temp directory for test files
	tempDir, err := os.MkdirTemp("", "mcp_server_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Create a file that claims to be a PDF but is not
	testFile := filepath.Join(tempDir, "test.pdf")
	if err := os.WriteFile(testFile, []byte(strings.Repeat("x", 1024)), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	// Setup server
	cfg := &config.Config{
		Mode:          "stdio",
		FormDirectory: tempDir,
		Version:       "1.0.0",
		ServerName:    "test-server",
		MaxFileSize:   1024 * 1024,
	}
	server, err := NewServer(cfg, newTestFormService(t, tempDir))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	// Create request with real CallToolRequest
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": testFile,
			},
		},
	}

	// Test the handler
	result, err := server.handleFormValidateFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if result == nil {
		t.Fatal("result should not be nil")
	}

	// The file should fail validation since it is not a real PDF
	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Validation failed") {
		t.Errorf("expected validation to fail, got: %s", resultText)
	}
}

func TestServer_HandleFormConvertFile(t *testing.T) {
	// Create temp directory with a small markdown intake form
	tempDir, err := os.MkdirTemp("", "mcp_convert_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	formText := "# Patient Information Form\n\n" +
		"First Name: ____________\n\n" +
		"Last Name: ____________\n\n" +
		"Date of Birth: ____________\n"
	testFile := filepath.Join(tempDir, "intake.md")
	if err := os.WriteFile(testFile, []byte(formText), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	cfg := &config.Config{
		Mode:          "stdio",
		FormDirectory: tempDir,
		Version:       "1.0.0",
		ServerName:    "test-server",
		MaxFileSize:   1024 * 1024,
	}
	server, err := NewServer(cfg, newTestFormService(t, tempDir))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": testFile,
			},
		},
	}

	result, err := server.handleFormConvertFile(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if result == nil {
		t.Fatal("result should not be nil")
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Successfully converted document") {
		t.Errorf("expected conversion success, got: %s", resultText)
	}
	if !strings.Contains(resultText, "Patient Information Form") {
		t.Errorf("expected document title in response, got: %s", resultText)
	}
	if !strings.Contains(resultText, "first_name") {
		t.Errorf("expected converted field keys in response, got: %s", resultText)
	}
}

func TestServer_HandleFormSearchDirectory(t *testing.T) {
	// Create temp directory with form documents
	tempDir, err := os.MkdirTemp("", "mcp_search_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Two supported documents and one unsupported
	testFiles := []string{"intake_form.md", "consent.txt", "scan.xyz"}
	for _, filename := range testFiles {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, []byte("Patient Name: ____\n"), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	cfg := &config.Config{
		Mode:          "stdio",
		FormDirectory: tempDir,
		Version:       "1.0.0",
		ServerName:    "test-server",
		MaxFileSize:   1024 * 1024,
	}
	server, err := NewServer(cfg, newTestFormService(t, tempDir))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"directory": tempDir,
				"query":     "",
			},
		},
	}

	result, err := server.handleFormSearchDirectory(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if result == nil {
		t.Fatal("result should not be nil")
	}

	// Only the supported documents should be counted
	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Found 2 form document(s)") {
		t.Errorf("content should mention 2 form documents, got: %s", resultText)
	}
}

func TestServer_HandleFormStatsDirectory(t *testing.T) {
	// Create temp directory with form documents of different sizes
	tempDir, err := os.MkdirTemp("", "mcp_stats_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	testFiles := map[string]int{
		"small.md":   512,
		"medium.txt": 1024,
		"large.md":   2048,
	}

	for filename, size := range testFiles {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, []byte(strings.Repeat("a", size)), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	cfg := &config.Config{
		Mode:          "stdio",
		FormDirectory: tempDir,
		Version:       "1.0.0",
		ServerName:    "test-server",
		MaxFileSize:   1024 * 1024,
	}
	server, err := NewServer(cfg, newTestFormService(t, tempDir))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"directory": tempDir,
			},
		},
	}

	result, err := server.handleFormStatsDirectory(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if result == nil {
		t.Fatal("result should not be nil")
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Total form documents: 3") {
		t.Errorf("content should mention 3 form documents, got: %s", resultText)
	}
}

func TestServer_DefaultDirectory(t *testing.T) {
	// Create temp directory
	tempDir, err := os.MkdirTemp("", "form-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	cfg := &config.Config{
		Mode:          "stdio",
		FormDirectory: tempDir,
		Version:       "1.0.0",
		ServerName:    "test-server",
		MaxFileSize:   1024 * 1024,
	}
	server, err := NewServer(cfg, newTestFormService(t, tempDir))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	// Create request without directory (should use default)
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"query": "",
			},
		},
	}

	// Test search directory handler
	result, err := server.handleFormSearchDirectory(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if result == nil {
		t.Fatal("result should not be nil")
	}

	// Verify it used the default directory
	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, tempDir) {
		t.Errorf("content should mention default directory %s, got: %s", tempDir, resultText)
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "mcp_args_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Setup server
	cfg := &config.Config{
		Mode:          "stdio",
		FormDirectory: tempDir,
		Version:       "1.0.0",
		ServerName:    "test-server",
		MaxFileSize:   1024 * 1024,
	}
	server, err := NewServer(cfg, newTestFormService(t, tempDir))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	// Test with missing required arguments
	emptyRequest := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{},
		},
	}

	// Test each handler that requires arguments
	handlers := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"FormConvertFile", server.handleFormConvertFile},
		{"FormValidateFile", server.handleFormValidateFile},
	}

	for _, h := range handlers {
		t.Run(h.name, func(t *testing.T) {
			result, err := h.handler(context.Background(), emptyRequest)
			if err != nil {
				t.Errorf("handler should not return error, got: %v", err)
			}
			if result == nil {
				t.Fatal("result should not be nil")
			}

			// Check if it's an error result
			resultText := extractTextFromResult(result)
			if !strings.Contains(resultText, "required") && !strings.Contains(resultText, "missing") && !strings.Contains(resultText, "error") {
				t.Errorf("expected error message for missing arguments, got: %s", resultText)
			}
		})
	}
}

func TestFormatMethods(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "mcp_format_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Setup server
	cfg := &config.Config{
		Mode:          "stdio",
		FormDirectory: tempDir,
		Version:       "1.0.0",
		ServerName:    "test-server",
		MaxFileSize:   1024 * 1024,
	}
	server, err := NewServer(cfg, newTestFormService(t, tempDir))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	// Test formatFormSearchDirectoryResult
	searchResult := &forms.FormSearchDirectoryResult{
		Files: []forms.FileInfo{
			{
				Name:         "intake.md",
				Path:         "/tmp/intake.md",
				Size:         1024,
				Format:       "markdown",
				ModifiedTime: "2023-01-01 12:00:00",
			},
		},
		TotalCount:  1,
		Directory:   "/tmp",
		SearchQuery: "intake",
	}

	formatted := server.formatFormSearchDirectoryResult(searchResult)
	if !strings.Contains(formatted, "Found 1 form document(s)") {
		t.Error("formatted result should contain file count")
	}
	if !strings.Contains(formatted, "intake.md") {
		t.Error("formatted result should contain filename")
	}

	// Test formatFormStatsDirectoryResult
	statsResult := &forms.FormStatsDirectoryResult{
		Directory:        "/tmp",
		TotalFiles:       2,
		TotalSize:        2048,
		CountsByFormat:   map[string]int{"markdown": 2},
		LargestFileSize:  1024,
		LargestFileName:  "large.md",
		SmallestFileSize: 512,
		SmallestFileName: "small.md",
		AverageFileSize:  1024,
	}

	formatted = server.formatFormStatsDirectoryResult(statsResult)
	if !strings.Contains(formatted, "Total form documents: 2") {
		t.Error("formatted result should contain total files")
	}
	if !strings.Contains(formatted, "large.md") {
		t.Error("formatted result should contain largest filename")
	}

	// Test formatFormConvertFileResult
	convertResult := &forms.FormConvertFileResult{
		Path:       "/tmp/consent.md",
		Title:      "Consent for Treatment",
		Shape:      "consent",
		FieldCount: 2,
		Document: &fields.SchemaDocument{
			Title:   "Consent for Treatment",
			Section: "Consent for Treatment",
			Shape:   fields.ShapeConsent,
			Fields: []fields.FieldRecord{
				{
					Key:     "signature",
					Title:   "Signature",
					Section: "Consent for Treatment",
					Type:    fields.FieldSignature,
					Control: fields.SignatureControl(),
				},
				{
					Key:     "date_signed",
					Title:   "Date Signed",
					Section: "Consent for Treatment",
					Type:    fields.FieldDate,
					Control: fields.DateControl(fields.DatePast),
				},
			},
		},
	}

	formatted = server.formatFormConvertFileResult(convertResult)
	if !strings.Contains(formatted, "Title: Consent for Treatment") {
		t.Error("formatted result should contain title")
	}
	if !strings.Contains(formatted, "Fields: 2") {
		t.Error("formatted result should contain field count")
	}
	if !strings.Contains(formatted, "date_signed") {
		t.Error("formatted result should embed the converted document")
	}

	// Test formatFormConvertDirectoryResult
	directoryResult := &forms.FormConvertDirectoryResult{
		Summary: &forms.ConversionSummary{
			RunID:           "7c9f7a52-2fd7-4a14-8f14-1f6a489a2f2e",
			Directory:       "/tmp/forms",
			OutputDirectory: "/tmp/forms/converted",
			TotalFiles:      3,
			Converted:       2,
			Failed:          1,
			Entries: []forms.ConversionEntry{
				{ID: "a", Path: "/tmp/forms/ok1.md", Status: forms.StatusConverted},
				{ID: "b", Path: "/tmp/forms/ok2.md", Status: forms.StatusConverted},
				{ID: "c", Path: "/tmp/forms/bad.pdf", Status: forms.StatusFailed, Error: "failed to open PDF"},
			},
		},
		SummaryPath: "/tmp/forms/converted/conversion_summary.json",
	}

	formatted = server.formatFormConvertDirectoryResult(directoryResult)
	if !strings.Contains(formatted, "Converted: 2") {
		t.Error("formatted result should contain converted count")
	}
	if !strings.Contains(formatted, "Failed: 1") {
		t.Error("formatted result should contain failed count")
	}
	if !strings.Contains(formatted, "bad.pdf") {
		t.Error("formatted result should list failed documents")
	}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	// Try to extract text content
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		// Handle pointer to TextContent as well
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
