package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractMarkdown parses a CommonMark-like event stream with goldmark and
// renders it to plain text: paragraph breaks preserved, list items become
// "• " prefixed lines, heading/emphasis/code-fence markers stripped, inline
// code keeps its literal text, soft breaks become spaces and hard breaks
// become newlines.
func extractMarkdown(path string) (Content, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("read file: %w", err)
	}

	doc := goldmark.DefaultParser().Parse(text.NewReader(raw))

	var out strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				if out.Len() > 0 {
					out.WriteByte('\n')
				}
			} else {
				out.WriteByte('\n')
			}
		case *ast.Paragraph:
			if entering {
				if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
					out.WriteByte('\n')
				}
			} else {
				out.WriteByte('\n')
			}
		case *ast.List:
			if entering && out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
				out.WriteByte('\n')
			}
		case *ast.ListItem:
			if entering {
				out.WriteString("• ")
			} else {
				out.WriteByte('\n')
			}
		case *ast.Text:
			if entering {
				out.Write(node.Segment.Value(raw))
				switch {
				case node.HardLineBreak():
					out.WriteByte('\n')
				case node.SoftLineBreak():
					out.WriteByte(' ')
				}
			}
		case *ast.CodeSpan:
			if entering {
				out.Write(nodeLiteral(node, raw))
				return ast.WalkSkipChildren, nil
			}
		case *ast.FencedCodeBlock:
			if entering {
				writeCodeBlockLines(&out, node, raw)
				out.WriteByte('\n')
			}
		case *ast.CodeBlock:
			if entering {
				writeCodeBlockLines(&out, node, raw)
				out.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return Content{}, fmt.Errorf("walk markdown ast: %w", err)
	}

	return newContent(strings.TrimSpace(out.String())), nil
}

func writeCodeBlockLines(out *strings.Builder, n ast.Node, source []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out.Write(seg.Value(source))
	}
}

// nodeLiteral extracts the literal text of a CodeSpan, whose content is
// split across child Text segments.
func nodeLiteral(n *ast.CodeSpan, source []byte) []byte {
	var buf []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf = append(buf, t.Segment.Value(source)...)
		}
	}
	return buf
}
