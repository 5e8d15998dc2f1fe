package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FromHTML parses an HTML fragment, the usual shape of clipboard paste data,
// into per-line run lists. b/strong map to bold, i/em to italic, br and
// block elements start new lines; all other markup is flattened away.
func FromHTML(fragment string) ([][]Run, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, err
	}
	p := &htmlWalker{}
	for _, n := range nodes {
		p.walk(n, false, false)
	}
	p.flush()
	return p.lines, nil
}

type htmlWalker struct {
	lines   [][]Run
	current []Run
}

func (p *htmlWalker) flush() {
	if runs := Normalize(p.current); len(runs) > 0 {
		p.lines = append(p.lines, runs)
	}
	p.current = nil
}

func (p *htmlWalker) walk(n *html.Node, bold, italic bool) {
	switch n.Type {
	case html.TextNode:
		if text := collapseSpace(n.Data); text != "" {
			p.current = append(p.current, Run{Text: text, Bold: bold, Italic: italic})
		}
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			p.flush()
			return
		case atom.B, atom.Strong:
			bold = true
		case atom.I, atom.Em:
			italic = true
		case atom.Script, atom.Style:
			return
		}
	}
	block := n.Type == html.ElementNode && isBlock(n.DataAtom)
	if block {
		p.flush()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, bold, italic)
	}
	if block {
		p.flush()
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Tr:
		return true
	}
	return false
}

// collapseSpace folds runs of whitespace into single spaces, matching how
// rendered HTML is read back from the clipboard.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if strings.Contains(s, " ") || strings.Contains(s, "\t") {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if s[0] == ' ' || s[0] == '\t' {
		out = " " + out
	}
	if last := s[len(s)-1]; last == ' ' || last == '\t' {
		out += " "
	}
	return out
}
