package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf16LEBOM = []byte{0xFF, 0xFE}
)

// extractText reads raw bytes, detects a byte-order mark, and decodes
// accordingly. Invalid sequences fall back to a best-effort decode with
// replacement characters and a warning naming the encoding used.
func extractText(path string) (Content, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("read file: %w", err)
	}

	switch {
	case hasPrefix(raw, utf16LEBOM):
		return decodeUTF16(raw, unicode.LittleEndian)
	case hasPrefix(raw, utf16BEBOM):
		return decodeUTF16(raw, unicode.BigEndian)
	}

	body := raw
	if hasPrefix(raw, utf8BOM) {
		body = raw[len(utf8BOM):]
	}

	if utf8.Valid(body) {
		return newContent(string(body)), nil
	}

	// Each run of invalid bytes is replaced with one U+FFFD.
	return newContent(strings.ToValidUTF8(string(body), "�"),
		"file decoded as UTF-8 with replacement characters for invalid sequences"), nil
}

func decodeUTF16(raw []byte, order unicode.Endianness) (Content, error) {
	decoder := unicode.UTF16(order, unicode.ExpectBOM).NewDecoder()
	decoded, err := decoder.String(string(raw))
	if err != nil {
		return Content{}, fmt.Errorf("decode UTF-16: %w", err)
	}
	return newContent(decoded), nil
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if b[i] != p {
			return false
		}
	}
	return true
}
