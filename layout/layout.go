// Package layout reconstructs logical text structure from the unordered run
// stream a renderer reports: duplicate suppression, column detection, line
// grouping within vertical bands and paragraph grouping across lines. The
// resulting paragraphs are the clickable editing blocks; nothing here
// reflows text.
package layout

import (
	"math"
	"sort"

	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/extract"
)

// Line is a reading-order group of runs sharing one vertical band inside one
// column.
type Line struct {
	Text             string
	Runs             []extract.Run
	ScreenBBox       coords.Rect
	DocBBox          coords.Rect
	DominantFontID   string
	DominantFontSize float64
}

// Paragraph groups consecutive lines into one editable block.
type Paragraph struct {
	Lines []Line
}

// ScreenBBox returns the union of the paragraph's line boxes in screen space.
func (p Paragraph) ScreenBBox() coords.Rect {
	var box coords.Rect
	for i, ln := range p.Lines {
		if i == 0 {
			box = ln.ScreenBBox
			continue
		}
		box = box.Union(ln.ScreenBBox)
	}
	return box
}

// Reconstructor runs the full pipeline for one page.
type Reconstructor struct {
	cfg Config
	vp  coords.Viewport
}

// NewReconstructor creates a reconstructor for a page viewport.
func NewReconstructor(vp coords.Viewport, cfg Config) *Reconstructor {
	return &Reconstructor{cfg: cfg, vp: vp}
}

// Reconstruct turns extracted runs into paragraphs in final reading order.
// Zero runs yield an empty result; the caller may then try OCR.
func (r *Reconstructor) Reconstruct(runs []extract.Run) []Paragraph {
	runs = Dedup(runs)
	if len(runs) == 0 {
		return nil
	}

	pageWidth := r.vp.ScreenPageWidth()
	if pageWidth <= 0 {
		for _, run := range runs {
			pageWidth = math.Max(pageWidth, run.ScreenLeft+run.ScreenWidth)
		}
	}

	var columns [][]extract.Run
	if splitX, ok := DetectColumnSplit(runs, pageWidth, r.cfg); ok {
		var left, right []extract.Run
		for _, run := range runs {
			if run.ScreenLeft+run.ScreenWidth/2 < splitX {
				left = append(left, run)
			} else {
				right = append(right, run)
			}
		}
		columns = [][]extract.Run{left, right}
	} else {
		columns = [][]extract.Run{runs}
	}

	var paras []Paragraph
	for _, col := range columns {
		lines := r.groupLines(col)
		paras = append(paras, groupParagraphs(lines, r.cfg)...)
	}

	// Merge column results into reading order: top first, then left.
	sort.SliceStable(paras, func(i, j int) bool {
		bi, bj := paras[i].ScreenBBox(), paras[j].ScreenBBox()
		if bi.Y != bj.Y {
			return bi.Y < bj.Y
		}
		return bi.X < bj.X
	})
	return paras
}

// Dedup removes runs whose rounded screen position collides with a later
// run. A committed edit leaves the covered original run in the extracted
// data; the run drawn later is the visible truth, so the later one wins.
func Dedup(runs []extract.Run) []extract.Run {
	type key struct{ x, y int }
	last := make(map[key]int, len(runs))
	for i, run := range runs {
		k := key{int(math.Round(run.ScreenLeft)), int(math.Round(run.ScreenTop))}
		last[k] = i
	}
	out := make([]extract.Run, 0, len(last))
	for i, run := range runs {
		k := key{int(math.Round(run.ScreenLeft)), int(math.Round(run.ScreenTop))}
		if last[k] == i {
			out = append(out, run)
		}
	}
	return out
}

// groupLines splits one column's runs into lines: sort by (top, left), then
// break on vertical offset beyond the tolerance or on a horizontal gap wide
// enough to be a table-cell boundary.
func (r *Reconstructor) groupLines(runs []extract.Run) []Line {
	if len(runs) == 0 {
		return nil
	}
	sorted := make([]extract.Run, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].ScreenTop-sorted[j].ScreenTop) > r.cfg.LineTolerance {
			return sorted[i].ScreenTop < sorted[j].ScreenTop
		}
		return sorted[i].ScreenLeft < sorted[j].ScreenLeft
	})

	var lines []Line
	var current []extract.Run
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, r.buildLine(current))
			current = nil
		}
	}
	for _, run := range sorted {
		if len(current) > 0 {
			prev := current[len(current)-1]
			sameBand := math.Abs(run.ScreenTop-prev.ScreenTop) <= r.cfg.LineTolerance
			if !sameBand {
				flush()
			} else {
				gap := run.ScreenLeft - (prev.ScreenLeft + prev.ScreenWidth)
				cellGap := math.Max(r.cfg.GapFontFactor*prev.ScreenHeight, r.cfg.MinHorizontalGap)
				if gap > cellGap {
					flush()
				}
			}
		}
		current = append(current, run)
	}
	flush()
	return lines
}

func (r *Reconstructor) buildLine(runs []extract.Run) Line {
	var box coords.Rect
	text := ""
	sizeWeight := map[float64]int{}
	fontWeight := map[string]int{}
	for i, run := range runs {
		rect := coords.Rect{X: run.ScreenLeft, Y: run.ScreenTop, W: run.ScreenWidth, H: run.ScreenHeight}
		if i == 0 {
			box = rect
		} else {
			box = box.Union(rect)
		}
		text += run.Text
		sizeWeight[run.DocFontSize] += len(run.Text)
		fontWeight[run.NominalFontID] += len(run.Text)
	}

	var fontID string
	best := -1
	for id, w := range fontWeight {
		if w > best || (w == best && id < fontID) {
			best, fontID = w, id
		}
	}
	var fontSize float64
	best = -1
	for size, w := range sizeWeight {
		if w > best || (w == best && size > fontSize) {
			best, fontSize = w, size
		}
	}

	return Line{
		Text:             text,
		Runs:             runs,
		ScreenBBox:       box,
		DocBBox:          r.vp.RectToDoc(box),
		DominantFontID:   fontID,
		DominantFontSize: fontSize,
	}
}

// groupParagraphs merges consecutive lines of one column when their spacing,
// alignment, width and typography say they belong to the same block.
func groupParagraphs(lines []Line, cfg Config) []Paragraph {
	if len(lines) == 0 {
		return nil
	}
	var paras []Paragraph
	current := Paragraph{Lines: []Line{lines[0]}}
	for _, ln := range lines[1:] {
		prev := current.Lines[len(current.Lines)-1]
		if sameParagraph(prev, ln, cfg) {
			current.Lines = append(current.Lines, ln)
			continue
		}
		paras = append(paras, current)
		current = Paragraph{Lines: []Line{ln}}
	}
	return append(paras, current)
}

func sameParagraph(prev, next Line, cfg Config) bool {
	prevH := prev.ScreenBBox.H
	gap := next.ScreenBBox.Y - (prev.ScreenBBox.Y + prevH)
	if gap >= cfg.ParaGapFactor*prevH {
		return false
	}
	lineH := math.Max(prevH, next.ScreenBBox.H)
	if math.Abs(next.ScreenBBox.X-prev.ScreenBBox.X) >= cfg.ParaIndentFactor*lineH {
		return false
	}
	wider := math.Max(prev.ScreenBBox.W, next.ScreenBBox.W)
	if wider > 0 && math.Abs(next.ScreenBBox.W-prev.ScreenBBox.W) >= cfg.ParaWidthRatio*wider {
		return false
	}
	if prev.DominantFontID != next.DominantFontID {
		return false
	}
	if math.Abs(prev.DominantFontSize-next.DominantFontSize) > cfg.FontSizeTolerance {
		return false
	}
	return true
}
