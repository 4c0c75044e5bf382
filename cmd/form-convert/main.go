package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/a3tai/mcp-form-converter/internal/forms"
)

var (
	outputPath   = flag.String("output", "", "Output file (single document) or output directory (directory mode)")
	outputFormat = flag.String("format", "text", "Output format: text, json")
	lenient      = flag.Bool("lenient", false, "Report schema violations as warnings instead of failing")
	verbose      = flag.Bool("verbose", false, "Enable verbose output")
	help         = flag.Bool("help", false, "Show help message")
)

const defaultMaxFileSize = 100 * 1024 * 1024

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: document or directory path required\n\n")
		printUsage()
		os.Exit(1)
	}

	target := flag.Arg(0)
	info, err := os.Stat(target)
	if os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: path not found: %s\n", target)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot access %s: %v\n", target, err)
		os.Exit(1)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve path: %v\n", err)
		os.Exit(1)
	}

	// The service validates every path against its configured directory,
	// so root it at the directory being converted.
	configuredDir := absTarget
	if !info.IsDir() {
		configuredDir = filepath.Dir(absTarget)
	}

	svc, err := forms.NewService(forms.Options{
		MaxFileSize:         defaultMaxFileSize,
		ConfiguredDirectory: configuredDir,
		MaxConcurrency:      4,
		StrictSchema:        !*lenient,
		Debug:               *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create conversion service: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if info.IsDir() {
		if err := convertDirectory(ctx, svc, absTarget); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := convertFile(ctx, svc, absTarget); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func convertFile(ctx context.Context, svc *forms.Service, path string) error {
	req := forms.FormConvertFileRequest{
		Path:       path,
		OutputPath: *outputPath,
	}

	result, err := svc.FormConvertFile(ctx, req)
	if err != nil {
		return err
	}

	switch *outputFormat {
	case "json":
		return outputJSON(result)
	case "text":
		return outputFileText(result)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func convertDirectory(ctx context.Context, svc *forms.Service, directory string) error {
	req := forms.FormConvertDirectoryRequest{
		Directory:       directory,
		OutputDirectory: *outputPath,
	}

	result, err := svc.FormConvertDirectory(ctx, req)
	if err != nil {
		return err
	}

	switch *outputFormat {
	case "json":
		return outputJSON(result)
	case "text":
		return outputDirectoryText(result)
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func outputJSON(result any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputFileText(result *forms.FormConvertFileResult) error {
	fmt.Printf("✅ Converted %s\n", filepath.Base(result.Path))
	fmt.Printf("Title: %s\n", result.Title)
	if result.Shape != "" {
		fmt.Printf("Shape: %s\n", result.Shape)
	}
	fmt.Printf("Fields: %d\n", result.FieldCount)
	if result.OutputPath != "" {
		fmt.Printf("Written to: %s\n", result.OutputPath)
	}

	if result.Document != nil && len(result.Document.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range result.Document.Warnings {
			fmt.Printf("  ⚠️  %s\n", w)
		}
	}

	if *verbose && result.Document != nil {
		fmt.Println()
		for i, field := range result.Document.Fields {
			fmt.Printf("[%d] %s\n", i+1, field.Key)
			fmt.Printf("    Title: %s\n", field.Title)
			fmt.Printf("    Section: %s\n", field.Section)
			fmt.Printf("    Type: %s\n", field.Type)
			fmt.Println()
		}
	}

	return nil
}

func outputDirectoryText(result *forms.FormConvertDirectoryResult) error {
	summary := result.Summary

	if summary.Failed == 0 {
		fmt.Printf("✅ Converted %d of %d documents\n", summary.Converted, summary.TotalFiles)
	} else {
		fmt.Printf("⚠️  Converted %d of %d documents (%d failed)\n",
			summary.Converted, summary.TotalFiles, summary.Failed)
	}
	fmt.Printf("Directory: %s\n", summary.Directory)
	fmt.Printf("Output directory: %s\n", summary.OutputDirectory)
	fmt.Printf("Elapsed: %.2fs\n", summary.ElapsedSeconds)
	if result.SummaryPath != "" {
		fmt.Printf("Summary: %s\n", result.SummaryPath)
	}

	if summary.Failed > 0 {
		fmt.Println("\nFailures:")
		for _, entry := range summary.Entries {
			if entry.Status == forms.StatusFailed {
				fmt.Printf("  ❌ %s: %s\n", filepath.Base(entry.Path), entry.Error)
			}
		}
	}

	if *verbose {
		fmt.Println("\nDocuments:")
		for _, entry := range summary.Entries {
			if entry.Status != forms.StatusConverted {
				continue
			}
			fmt.Printf("  %s -> %s (%d fields", filepath.Base(entry.Path), filepath.Base(entry.OutputPath), entry.FieldCount)
			if entry.Warnings > 0 {
				fmt.Printf(", %d warnings", entry.Warnings)
			}
			fmt.Println(")")
		}
	}

	return nil
}

func printHelp() {
	fmt.Println("Form Convert - Convert form documents into schema field documents")
	fmt.Println()
	fmt.Println("This tool extracts text from form documents (PDF, DOCX, Markdown, plain text),")
	fmt.Println("detects fill-in fields, and emits ordered, schema-validated field documents as JSON.")
	fmt.Println("Point it at a single document or at a directory to convert in batch.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -output        Output file for a single document, output directory for batch runs")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -lenient       Report schema violations as warnings instead of failing")
	fmt.Println("  -verbose       Enable verbose output")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("DIRECTORY MODE:")
	fmt.Println("  When the path is a directory, every supported document in it is converted.")
	fmt.Println("  Converted documents land in the output directory (default: <dir>/converted)")
	fmt.Println("  together with a conversion_summary.json describing the whole run. A document")
	fmt.Println("  that fails to convert is recorded in the summary without aborting the batch.")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  form-convert consent.pdf")
	fmt.Println("  form-convert -format json intake.docx")
	fmt.Println("  form-convert -output fields.json patient-registration.md")
	fmt.Println("  form-convert -output /data/converted -verbose /data/forms")
	fmt.Println()
	fmt.Println("SUPPORTED DOCUMENT FORMATS:")
	fmt.Println("  • PDF (text extraction with AcroForm field harvesting)")
	fmt.Println("  • DOCX (Word documents, including tables)")
	fmt.Println("  • Markdown (.md, .markdown)")
	fmt.Println("  • Plain text (.txt)")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  form-convert [OPTIONS] <document_or_directory>")
}

func init() {
	// Custom flag usage
	flag.Usage = func() {
		printHelp()
	}
}
