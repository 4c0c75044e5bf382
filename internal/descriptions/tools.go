package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	FormConvertFileDescription = `Convert a form document into a schema-compliant field document.

**When to use:** Need to turn an intake, consent, or registration form into structured, validated form-field JSON for a downstream forms system.

**Why it's useful:** Classifies every line of the document, extracts labeled inputs, choice groups, signature and date elements, substitutes template placeholders into consent narrative, and emits fields in a reviewed ordering with unique keys.

**Examples:**
• Digitize an intake packet: "Convert new-patient-intake.pdf so the registration flow can render it"
• Prepare a consent template: "Convert extraction-consent.docx and keep the narrative paragraphs with {{placeholders}}"
• One-off conversion: "Convert warranty.md and write the JSON next to my other converted forms"

**Common workflows:**
1. Single Form Onboarding: Validate file → Convert file → Review field keys → Load into forms system
2. Template Authoring: Convert file → Inspect narrative placeholders → Adjust source document → Reconvert
3. Spot Checking: Convert file without output_path → Inspect inline document → Decide on batch run

**Best practices:** Validate the file first; check the document's warnings array for lines that matched more than one pattern.`

	FormValidateFileDescription = `Verify a document converts cleanly before processing.

**When to use:** Before converting any document, especially in automated workflows or ahead of a large batch run.

**Why it's useful:** Runs the entire conversion pipeline (extraction, field matching, normalization, and schema validation) without writing output, so problems surface early with a concrete message.

**Examples:**
• Batch safety: "Validate all documents in /forms/ before bulk conversion"
• Upload verification: "Check user-uploaded consent.pdf converts before accepting it"
• Regression check: "Verify revised-intake.docx still produces a valid field document"

**Common workflows:**
1. Automated Processing: Validate → Convert if valid → Handle failures gracefully
2. Quality Control: Validate → Report issues → Fix source documents → Revalidate
3. Pre-batch Screening: Validate each file → Exclude failures → Run directory conversion

**Best practices:** A scanned PDF fails validation with "no extractable text"; run OCR upstream before retrying.`

	FormConvertDirectoryDescription = `Convert every supported form document in a directory.

**When to use:** Migrating a folder of intake and consent forms into structured field documents in one run.

**Why it's useful:** Walks the directory, converts files concurrently with per-document isolation, and writes a conversion_summary.json recording counts, per-file status, and failure messages. One bad document never aborts the batch.

**Examples:**
• Practice migration: "Convert everything under /forms/legacy/ into /forms/converted/"
• Nightly sync: "Reconvert the intake folder after the document management export"
• Vendor handoff: "Produce field documents plus a summary for the integration team"

**Common workflows:**
1. Bulk Migration: Stats directory → Convert directory → Review summary failures → Fix and reconvert stragglers
2. Scheduled Conversion: Convert directory → Parse conversion_summary.json → Alert on failed entries
3. Incremental Cleanup: Convert directory → Triage failures by error message → Repair source files

**Best practices:** Read conversion_summary.json rather than scraping tool output; each entry carries a stable run-assigned ID.`

	FormSearchDirectoryDescription = `Find form documents in a directory with optional fuzzy search.

**When to use:** Need to discover which convertible documents exist, or locate a specific form by partial name.

**Why it's useful:** Filters to supported formats (.pdf, .docx, .md, .txt), skips unreadable and oversized files, and matches queries word-by-word so "patient intake" finds "new_patient_intake_2024.pdf".

**Examples:**
• Discovery: "List all form documents in the default directory"
• Targeted lookup: "Find files matching 'consent' under /forms/"
• Pre-batch inventory: "See what a directory conversion would pick up"

**Common workflows:**
1. Exploration: Search directory → Pick files → Validate → Convert
2. Lookup: Search with query → Confirm single match → Convert file
3. Audit: Search directory → Compare against converted output → Identify gaps

**Best practices:** The same file filter drives directory conversion, so the search result is exactly the batch intake list.`

	FormStatsDirectoryDescription = `Get statistics about the form documents in a directory.

**When to use:** Sizing up a directory before conversion, or monitoring a drop folder.

**Why it's useful:** Reports total count, per-format counts, aggregate size, and the largest/smallest files without opening any document.

**Examples:**
• Capacity check: "How many documents are waiting in /forms/inbox/?"
• Format survey: "How many DOCX versus PDF forms does the legacy folder hold?"
• Outlier hunt: "Which file is the 80MB one that keeps failing?"

**Common workflows:**
1. Pre-batch Sizing: Stats directory → Estimate run time → Convert directory
2. Monitoring: Stats directory on schedule → Alert when counts grow
3. Troubleshooting: Stats directory → Spot oversized files → Adjust max file size or split documents

**Best practices:** Counts include only files that pass the cheap validation used by search and batch conversion.`

	FormServerInfoDescription = `Get server information, available tools, directory contents, and usage guidance.

**When to use:** First contact with the server, or when deciding which tool fits a task.

**Why it's useful:** Returns the server version, configured directories, file size limit, supported formats, a listing of the default directory, and per-tool usage guidance in one call.

**Examples:**
• Orientation: "What can this server do and what's in its directory?"
• Debugging: "Confirm the server sees /forms/ and the 100MB limit"
• Tool selection: "Check parameters for form_convert_directory before calling it"

**Common workflows:**
1. Session Start: Server info → Search directory → Validate → Convert
2. Integration Setup: Server info → Record capabilities → Wire downstream system
3. Support: Server info → Compare configuration against expectations → Adjust flags or environment

**Best practices:** The directory listing is capped at 100 files and skipped after five seconds; use form_search_directory for a full listing.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"form_convert_file":      FormConvertFileDescription,
	"form_validate_file":     FormValidateFileDescription,
	"form_convert_directory": FormConvertDirectoryDescription,
	"form_search_directory":  FormSearchDirectoryDescription,
	"form_stats_directory":   FormStatsDirectoryDescription,
	"form_server_info":       FormServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
