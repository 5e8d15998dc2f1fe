package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/layout"
	"github.com/wudi/pdfedit/provider"
	"github.com/wudi/pdfedit/raster"
)

// Fallback recovers line structure for pages whose native extraction came
// back empty, by recognizing the rendered raster. Line geometry from the
// recognizer is in raster pixels, which is the engine's screen space.
type Fallback struct {
	engine Engine
}

// NewFallback wraps an engine; a nil engine selects the default one.
func NewFallback(engine Engine) *Fallback {
	if engine == nil {
		engine = DefaultEngine()
	}
	return &Fallback{engine: engine}
}

// InputFromSurface encodes a page raster into a recognition input.
func InputFromSurface(s raster.Surface, pageIndex int, opts ...InputOption) (Input, error) {
	img, err := s.ReadRegion(s.Bounds())
	if err != nil {
		return Input{}, fmt.Errorf("read raster: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode raster: %w", err)
	}
	in := Input{
		ID:        fmt.Sprintf("page-%d", pageIndex),
		Image:     buf.Bytes(),
		Format:    ImageFormatPNG,
		PageIndex: pageIndex,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}

// Lines recognizes the page raster and converts the result into layout
// lines. It returns nil when no raster is available or recognition fails;
// the caller then reports "no editable content".
func (f *Fallback) Lines(ctx context.Context, page provider.RenderedPage, pageIndex int, opts ...InputOption) ([]layout.Line, error) {
	surface, err := page.RasterSurface()
	if err != nil {
		return nil, err
	}
	in, err := InputFromSurface(surface, pageIndex, opts...)
	if err != nil {
		return nil, err
	}
	res, err := f.engine.Recognize(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("ocr recognize: %w", err)
	}
	return LinesToLayout(res.Lines, page.Viewport()), nil
}

// LinesToLayout converts recognized lines into layout lines. Each OCR line
// becomes a single-run line; style hints are unknown, so runs carry only
// text and geometry.
func LinesToLayout(lines []Line, vp coords.Viewport) []layout.Line {
	out := make([]layout.Line, 0, len(lines))
	for _, ln := range lines {
		if ln.Text == "" {
			continue
		}
		screen := coords.Rect{X: ln.Bounds.X, Y: ln.Bounds.Y, W: ln.Bounds.Width, H: ln.Bounds.Height}
		doc := vp.RectToDoc(screen)
		out = append(out, layout.Line{
			Text:             ln.Text,
			ScreenBBox:       screen,
			DocBBox:          doc,
			DominantFontSize: doc.H,
		})
	}
	return out
}
