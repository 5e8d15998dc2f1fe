// Package provider declares the ports through which the editing engine talks
// to its external collaborators: the page rendering pipeline on the way in
// and the document mutation backend on the way out. The engine owns no file
// format; it consumes positioned content from a RenderedPage and emits draw
// calls against a Doc/Page pair, exchanging plain byte buffers with the host.
package provider

import (
	"context"
	"errors"

	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/raster"
	"github.com/wudi/pdfedit/style"
)

// ErrNoMutator is returned by commit paths when no mutation backend is
// configured. Callers treat it as "nothing committed", not as a failure.
var ErrNoMutator = errors.New("no mutation provider available")

// TextRecord is one positioned glyph run as reported by the renderer, in
// document space. The engine never mutates records; it normalizes them into
// extraction runs.
type TextRecord struct {
	Text     string
	FontID   string
	Hint     style.Hint
	X, Y     float64 // baseline origin, document points
	Width    float64
	Height   float64
	FontSize float64
}

// ContentOp is one drawing operator from a page's content stream, reduced to
// what transform tracking needs. Operand layout follows the operator: cm
// carries six numbers, Do carries the XObject name.
type ContentOp struct {
	Operator string
	Operands []float64
	Name     string
}

// Content-stream operators consumed by image placement extraction.
const (
	OpSave      = "q"
	OpRestore   = "Q"
	OpTransform = "cm"
	OpPaintX    = "Do"
)

// RenderedPage is the per-page handle supplied by the rendering pipeline.
// RasterSurface may fail with raster.ErrNoSurface; the engine then edits
// with default colors instead of sampled ones.
type RenderedPage interface {
	PositionedText(ctx context.Context) ([]TextRecord, error)
	ContentStreamOps(ctx context.Context) ([]ContentOp, error)
	RasterSurface() (raster.Surface, error)
	Viewport() coords.Viewport
}

// FontHandle is an opaque reference to a font embedded in a mutable document.
type FontHandle interface{}

// ImageHandle is an opaque reference to an embedded raster image.
type ImageHandle interface{}

// Mutator loads a document into a mutable in-memory form.
type Mutator interface {
	LoadMutable(ctx context.Context, data []byte) (Doc, error)
}

// Doc is a loaded mutable document. Embedding operations may block on font
// or image processing and therefore take a context.
type Doc interface {
	Page(index int) (Page, error)
	EmbedStandardFont(ctx context.Context, v style.Variant) (FontHandle, error)
	EmbedFontBytes(ctx context.Context, data []byte) (FontHandle, error)
	EmbedRasterImage(ctx context.Context, data []byte) (ImageHandle, error)
	MeasureTextWidth(font FontHandle, text string, size float64) (float64, error)
	Save(ctx context.Context) ([]byte, error)
}

// Page accepts the draw calls the commit engine produces. Coordinates are in
// document space.
type Page interface {
	DrawRectangle(rect coords.Rect, fill raster.Color) error
	DrawText(text string, pos coords.Point, font FontHandle, fill raster.Color, size float64) error
	DrawImage(img ImageHandle, rect coords.Rect) error
}
