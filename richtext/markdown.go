package richtext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FromMarkdown parses Markdown-styled paste input into per-line run lists.
// Only the inline emphasis the block model can represent survives: *em*
// becomes italic, **strong** becomes bold. Block boundaries and line breaks
// start new lines; everything else flattens to plain text.
func FromMarkdown(source string) [][]Run {
	src := []byte(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	p := &markdownWalker{src: src}
	p.walk(doc, false, false)
	p.flush()
	return p.lines
}

// FromMarkdownLine parses a single-line Markdown fragment. Additional lines
// in the input are ignored.
func FromMarkdownLine(source string) []Run {
	lines := FromMarkdown(source)
	if len(lines) == 0 {
		return nil
	}
	return lines[0]
}

type markdownWalker struct {
	src     []byte
	lines   [][]Run
	current []Run
}

func (p *markdownWalker) flush() {
	if runs := Normalize(p.current); len(runs) > 0 {
		p.lines = append(p.lines, runs)
	}
	p.current = nil
}

func (p *markdownWalker) walk(node ast.Node, bold, italic bool) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			p.current = append(p.current, Run{
				Text:   string(n.Segment.Value(p.src)),
				Bold:   bold,
				Italic: italic,
			})
			if n.SoftLineBreak() || n.HardLineBreak() {
				p.flush()
			}
		case *ast.Emphasis:
			b, i := bold, italic
			if n.Level >= 2 {
				b = true
			} else {
				i = true
			}
			p.walk(n, b, i)
		case *ast.CodeSpan:
			p.walk(n, bold, italic)
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.TextBlock:
			p.walk(n, bold, italic)
			p.flush()
		default:
			p.walk(n, bold, italic)
		}
	}
}
