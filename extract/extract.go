// Package extract normalizes a rendered page's positioned content into the
// engine's working form: glyph runs carrying both document and screen
// geometry, and image placements derived from the page's content-stream
// operators under transform tracking.
package extract

import (
	"context"

	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/provider"
	"github.com/wudi/pdfedit/style"
)

// Run is a single positioned span of same-style text. Runs are immutable
// once extracted; layout reconstruction consumes them read-only.
type Run struct {
	Text          string
	NominalFontID string
	Hint          style.Hint

	DocX, DocY  float64
	DocFontSize float64

	ScreenLeft   float64
	ScreenTop    float64
	ScreenWidth  float64
	ScreenHeight float64
}

// Placement is the document-space rectangle an image paints into.
type Placement struct {
	DocX, DocY, DocW, DocH float64
}

// Rect returns the placement as a rectangle.
func (p Placement) Rect() coords.Rect {
	return coords.Rect{X: p.DocX, Y: p.DocY, W: p.DocW, H: p.DocH}
}

// MinPlacementSize is the smallest edge, in document points, for an image
// placement to count as editable content. Smaller placements are decorative
// artifacts or soft masks.
const MinPlacementSize = 4.0

// Extractor pulls runs and image placements from rendered pages.
type Extractor struct {
	log observability.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger routes extraction diagnostics to the given logger.
func WithLogger(log observability.Logger) Option {
	return func(e *Extractor) { e.log = log }
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Runs extracts positioned text from the page and normalizes it into runs
// with both coordinate spaces populated. Extraction failure degrades to an
// empty result; the caller decides whether to try OCR.
func (e *Extractor) Runs(ctx context.Context, page provider.RenderedPage) []Run {
	records, err := page.PositionedText(ctx)
	if err != nil {
		e.log.Warn("positioned text extraction failed", observability.Error("err", err))
		return nil
	}
	vp := page.Viewport()
	runs := make([]Run, 0, len(records))
	for _, rec := range records {
		if rec.Text == "" {
			continue
		}
		runs = append(runs, normalize(rec, vp))
	}
	return runs
}

func normalize(rec provider.TextRecord, vp coords.Viewport) Run {
	height := rec.Height
	if height == 0 {
		height = rec.FontSize
	}
	screen := vp.RectToScreen(coords.Rect{X: rec.X, Y: rec.Y, W: rec.Width, H: height})
	return Run{
		Text:          rec.Text,
		NominalFontID: rec.FontID,
		Hint:          rec.Hint,
		DocX:          rec.X,
		DocY:          rec.Y,
		DocFontSize:   rec.FontSize,
		ScreenLeft:    screen.X,
		ScreenTop:     screen.Y,
		ScreenWidth:   screen.W,
		ScreenHeight:  screen.H,
	}
}

// Placements walks the page's content-stream operators while maintaining the
// transform stack and records where each image paints. The painted region is
// the unit square mapped through the transform active at the paint operator.
func (e *Extractor) Placements(ctx context.Context, page provider.RenderedPage) []Placement {
	ops, err := page.ContentStreamOps(ctx)
	if err != nil {
		e.log.Warn("content stream walk failed", observability.Error("err", err))
		return nil
	}
	return PlacementsFromOps(ops)
}

// PlacementsFromOps derives image placements from an operator list. Degenerate
// input (unbalanced restores, short operand lists) is tolerated; the walk
// keeps whatever state it has.
func PlacementsFromOps(ops []provider.ContentOp) []Placement {
	stack := coords.NewStack()
	var out []Placement
	for _, op := range ops {
		switch op.Operator {
		case provider.OpSave:
			stack.Save()
		case provider.OpRestore:
			// Tolerated: a malformed stream may restore past its saves.
			_ = stack.Restore()
		case provider.OpTransform:
			if len(op.Operands) == 6 {
				var m coords.Matrix
				copy(m[:], op.Operands)
				stack.Concat(m)
			}
		case provider.OpPaintX:
			r := coords.UnitSquareBounds(stack.Current())
			if r.W < MinPlacementSize || r.H < MinPlacementSize {
				continue
			}
			out = append(out, Placement{DocX: r.X, DocY: r.Y, DocW: r.W, DocH: r.H})
		}
	}
	return out
}
