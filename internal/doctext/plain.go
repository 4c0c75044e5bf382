package doctext

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// extractPlain populates doc from a markdown or plain text file. Markdown
// lines fully wrapped in ** markers are flagged bold; the markers stay in
// the line text for downstream markup handling.
func (e *Extractor) extractPlain(path string, doc *Document) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		bold := doc.Format == FormatMarkdown && isBoldWrapped(strings.TrimSpace(line))
		appendLine(doc, line, bold)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return nil
}

// isBoldWrapped reports whether a line is entirely wrapped in ** markers
func isBoldWrapped(line string) bool {
	if len(line) < 5 {
		return false
	}
	if !strings.HasPrefix(line, "**") || !strings.HasSuffix(line, "**") {
		return false
	}
	inner := line[2 : len(line)-2]
	return inner != "" && !strings.Contains(inner, "**")
}
