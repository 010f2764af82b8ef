package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads the plain-text layer of every page in order, dropping
// blank lines left by layout artifacts and trimming each remaining line.
func extractPDF(path string) (Content, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Content{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	totalPages := r.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Content{}, fmt.Errorf("extract page %d text: %w", i, err)
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
	}

	return newContent(strings.Join(lines, "\n")), nil
}
