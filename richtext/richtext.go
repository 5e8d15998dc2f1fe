// Package richtext is the small explicit rich-text model behind the editable
// overlay: an ordered list of styled runs per line, mutated by discrete
// commands (insert or delete at a cursor, toggle emphasis over a selection)
// instead of a platform editable-region abstraction. Offsets are rune
// offsets into the flattened line text.
package richtext

import "strings"

// Run is a span of uniformly styled text.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// Plain wraps unstyled text as a single-run line.
func Plain(text string) []Run {
	if text == "" {
		return nil
	}
	return []Run{{Text: text}}
}

// TextOf flattens a run list to its plain text.
func TextOf(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Len returns the rune length of the flattened text.
func Len(runs []Run) int {
	n := 0
	for _, r := range runs {
		n += len([]rune(r.Text))
	}
	return n
}

// Equal reports whether two run lists render identically, ignoring how the
// text happens to be split across runs.
func Equal(a, b []Run) bool {
	ca, cb := chars(a), chars(b)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i] != cb[i] {
			return false
		}
	}
	return true
}

// Normalize merges adjacent same-style runs and drops empty ones.
func Normalize(runs []Run) []Run {
	var out []Run
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Bold == r.Bold && out[n-1].Italic == r.Italic {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// styledChar is the per-rune working form the editing commands operate on.
type styledChar struct {
	r      rune
	bold   bool
	italic bool
}

func chars(runs []Run) []styledChar {
	var out []styledChar
	for _, run := range runs {
		for _, r := range run.Text {
			out = append(out, styledChar{r: r, bold: run.Bold, italic: run.Italic})
		}
	}
	return out
}

func rebuild(cs []styledChar) []Run {
	var out []Run
	for _, c := range cs {
		if n := len(out); n > 0 && out[n-1].Bold == c.bold && out[n-1].Italic == c.italic {
			out[n-1].Text += string(c.r)
			continue
		}
		out = append(out, Run{Text: string(c.r), Bold: c.bold, Italic: c.italic})
	}
	return out
}

func clampRange(n, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return start, end
}

// Insert places text at the cursor position. The inserted text inherits the
// style of the character before the cursor, or of the first character when
// inserting at the start.
func Insert(runs []Run, pos int, text string) []Run {
	if text == "" {
		return runs
	}
	cs := chars(runs)
	if pos < 0 {
		pos = 0
	}
	if pos > len(cs) {
		pos = len(cs)
	}
	var bold, italic bool
	switch {
	case pos > 0:
		bold, italic = cs[pos-1].bold, cs[pos-1].italic
	case len(cs) > 0:
		bold, italic = cs[0].bold, cs[0].italic
	}
	var ins []styledChar
	for _, r := range text {
		ins = append(ins, styledChar{r: r, bold: bold, italic: italic})
	}
	cs = append(cs[:pos:pos], append(ins, cs[pos:]...)...)
	return rebuild(cs)
}

// Delete removes the rune range [start,end).
func Delete(runs []Run, start, end int) []Run {
	cs := chars(runs)
	start, end = clampRange(len(cs), start, end)
	return rebuild(append(cs[:start:start], cs[end:]...))
}

// ToggleBold toggles bold over [start,end): if every rune in the selection
// is already bold the selection is unbolded, otherwise it becomes bold.
func ToggleBold(runs []Run, start, end int) []Run {
	return toggle(runs, start, end, func(c styledChar) bool { return c.bold },
		func(c *styledChar, v bool) { c.bold = v })
}

// ToggleItalic toggles italic over [start,end) with the same all-or-nothing
// rule as ToggleBold.
func ToggleItalic(runs []Run, start, end int) []Run {
	return toggle(runs, start, end, func(c styledChar) bool { return c.italic },
		func(c *styledChar, v bool) { c.italic = v })
}

func toggle(runs []Run, start, end int, get func(styledChar) bool, set func(*styledChar, bool)) []Run {
	cs := chars(runs)
	start, end = clampRange(len(cs), start, end)
	if start == end {
		return rebuild(cs)
	}
	all := true
	for i := start; i < end; i++ {
		if !get(cs[i]) {
			all = false
			break
		}
	}
	for i := start; i < end; i++ {
		set(&cs[i], !all)
	}
	return rebuild(cs)
}
