// Package extract dispatches to format-specific backends that turn a file on
// disk into plain text, independent of how that text ends up stored.
package extract

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
)

// Content is the normalized result of extracting a file.
type Content struct {
	Text       string
	WordCount  int
	Summary    string
	HasSummary bool
	Warnings   []string
}

const summaryMaxCodeUnits = 200

func newContent(text string, warnings ...string) Content {
	c := Content{
		Text:      text,
		WordCount: len(strings.Fields(text)),
		Warnings:  warnings,
	}
	c.Summary, c.HasSummary = summarize(text)
	return c
}

// summarize returns the first non-empty line, truncated to 200 code units
// with a trailing ellipsis if cut.
func summarize(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if utf8.RuneCountInString(trimmed) <= summaryMaxCodeUnits {
			return trimmed, true
		}
		runes := []rune(trimmed)
		return string(runes[:summaryMaxCodeUnits]) + "...", true
	}
	return "", false
}

// Extract dispatches by the lowercased extension of path to one of the four
// format backends, falling back to the Text backend for unrecognized
// extensions.
func Extract(path string) (Content, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	var content Content
	var err error

	switch ext {
	case "md", "markdown":
		content, err = extractMarkdown(path)
	case "docx":
		content, err = extractDOCX(path)
	case "pdf":
		content, err = extractPDF(path)
	default:
		content, err = extractText(path)
	}

	if err != nil {
		return Content{}, cortexerr.NewExtractionFailed(path, err.Error())
	}
	return content, nil
}
