package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
)

// Test plan:
// - plain text extraction handles UTF-8, UTF-8 BOM, and invalid bytes
// - UTF-16 LE/BE BOM content decodes to the same text
// - markdown extraction strips formatting and keeps list/paragraph breaks
// - an unrecognized extension falls back to the text backend
// - extraction failures return a cortexerr ExtractionFailed

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtractText_PlainUTF8(t *testing.T) {
	path := writeTemp(t, "note.txt", []byte("hello world\nsecond line"))
	c, err := Extract(path)
	require.NoError(t, err)
	require.Equal(t, "hello world\nsecond line", c.Text)
	require.Equal(t, 4, c.WordCount)
	require.True(t, c.HasSummary)
	require.Equal(t, "hello world", c.Summary)
}

func TestExtractText_UTF8BOMStripped(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("bom text")...)
	path := writeTemp(t, "bom.txt", data)
	c, err := Extract(path)
	require.NoError(t, err)
	require.Equal(t, "bom text", c.Text)
}

func TestExtractText_InvalidUTF8FallsBackWithWarning(t *testing.T) {
	data := []byte{'h', 'i', 0xFF, 0xFE, 0xFD, 'x'}
	path := writeTemp(t, "invalid.txt", data)
	c, err := Extract(path)
	require.NoError(t, err)
	require.NotEmpty(t, c.Warnings)
	require.Contains(t, c.Warnings[0], "replacement characters")
}

func TestExtractText_UTF16LEDecodes(t *testing.T) {
	// "hi" as UTF-16 LE with BOM.
	data := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	path := writeTemp(t, "utf16le.txt", data)
	c, err := Extract(path)
	require.NoError(t, err)
	require.Equal(t, "hi", c.Text)
}

func TestExtractText_UTF16BEDecodes(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}
	path := writeTemp(t, "utf16be.txt", data)
	c, err := Extract(path)
	require.NoError(t, err)
	require.Equal(t, "hi", c.Text)
}

func TestExtractMarkdown_StripsFormattingKeepsStructure(t *testing.T) {
	md := "# Title\n\nA paragraph with `code` inline.\n\n- one\n- two\n"
	path := writeTemp(t, "doc.md", []byte(md))
	c, err := Extract(path)
	require.NoError(t, err)
	require.Contains(t, c.Text, "Title")
	require.Contains(t, c.Text, "A paragraph with code inline.")
	require.Contains(t, c.Text, "• one")
	require.Contains(t, c.Text, "• two")
	require.NotContains(t, c.Text, "#")
	require.NotContains(t, c.Text, "`")
}

func TestExtract_UnknownExtensionFallsBackToText(t *testing.T) {
	path := writeTemp(t, "data.xyz", []byte("raw contents"))
	c, err := Extract(path)
	require.NoError(t, err)
	require.Equal(t, "raw contents", c.Text)
}

func TestExtract_MissingFileReturnsExtractionFailed(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	require.True(t, cortexerr.Is(err, cortexerr.KindExtractionFailed))
	require.True(t, strings.Contains(err.Error(), "missing.txt") || strings.Contains(err.Error(), "no such file"))
}
