package extract

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractDOCX reads paragraph runs from a .docx package and joins them with
// newlines, trimming surrounding whitespace.
func extractDOCX(path string) (Content, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	text := r.Editable().GetContent()
	text = stripDocxMarkup(text)

	return newContent(strings.TrimSpace(text)), nil
}

var docxTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripDocxMarkup turns the document XML that nguyenthenguyen/docx returns
// from GetContent into plain text: every closing paragraph tag becomes a
// newline, all other XML tags are removed, and XML entities are decoded,
// keeping only the textual content and paragraph breaks.
func stripDocxMarkup(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	return html.UnescapeString(docxTagPattern.ReplaceAllString(s, ""))
}
