// Package commit applies dirty edit records to a mutable document: one
// cover rectangle per edited line in the sampled background color, then one
// text draw per style run with the x cursor advanced by measured width, and
// cover/replace/delete handling for image regions.
package commit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/provider"
	"github.com/wudi/pdfedit/raster"
	"github.com/wudi/pdfedit/richtext"
	"github.com/wudi/pdfedit/session"
	"github.com/wudi/pdfedit/style"
	"github.com/wudi/pdfedit/textmetrics"
)

// CoverPadding is the fixed document-space padding added around a line's
// glyph bounding box before the cover rectangle is drawn.
const CoverPadding = 2.0

// Action is what an image region edit does at commit time.
type Action int

const (
	ActionNone Action = iota
	ActionDelete
	ActionReplace
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionDelete:
		return "delete"
	case ActionReplace:
		return "replace"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ImageEdit is a committed image-region record.
type ImageEdit struct {
	Rect        coords.Rect
	Action      Action
	Replacement []byte
	Background  raster.Color
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log observability.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithTracer sets the engine tracer.
func WithTracer(tr observability.Tracer) Option {
	return func(e *Engine) { e.tracer = tr }
}

// WithEmbeddedFont registers real font bytes for an output variant. Runs
// resolved to that variant embed through EmbedFontBytes, and when the
// provider cannot measure, their width comes from shaping the face instead
// of the built-in variant tables.
func WithEmbeddedFont(v style.Variant, data []byte) Option {
	return func(e *Engine) { e.embedded[v] = data }
}

// Engine draws dirty records into a document loaded through the mutation
// provider. A nil mutator is not an error: Commit returns a nil byte slice
// and the caller treats it as nothing committed.
type Engine struct {
	mutator  provider.Mutator
	log      observability.Logger
	tracer   observability.Tracer
	embedded map[style.Variant][]byte
	faces    map[style.Variant]*textmetrics.FaceMeasurer
}

// New builds a commit engine over a mutation provider.
func New(mutator provider.Mutator, opts ...Option) *Engine {
	e := &Engine{
		mutator:  mutator,
		log:      observability.NopLogger{},
		tracer:   observability.NopTracer(),
		embedded: make(map[style.Variant][]byte),
		faces:    make(map[style.Variant]*textmetrics.FaceMeasurer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Commit applies every dirty block and image edit to the page and returns
// the saved document bytes. A nil result with a nil error means no mutation
// provider was available.
func (e *Engine) Commit(ctx context.Context, original []byte, pageIndex int, blocks []*session.BlockState, images []ImageEdit) ([]byte, error) {
	if e.mutator == nil {
		e.log.Warn("commit skipped: no mutation provider")
		return nil, nil
	}
	ctx, span := e.tracer.StartSpan(ctx, observability.MetricCommitTime)
	defer span.Finish()
	start := time.Now()

	doc, err := e.mutator.LoadMutable(ctx, original)
	if err != nil {
		if errors.Is(err, provider.ErrNoMutator) {
			e.log.Warn("commit skipped: no mutation provider")
			return nil, nil
		}
		span.SetError(err)
		return nil, fmt.Errorf("commit: load mutable document: %w", err)
	}
	page, err := doc.Page(pageIndex)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("commit: page %d: %w", pageIndex, err)
	}

	fonts := newFontCache(doc, e.embedded)
	skipped := 0
	for _, b := range blocks {
		for i := range b.Lines {
			ln := &b.Lines[i]
			if !ln.Changed() {
				continue
			}
			if err := e.commitLine(ctx, doc, page, fonts, ln); err != nil {
				skipped++
				e.log.Warn("line commit skipped",
					observability.String("block", b.Key),
					observability.Int("line", i),
					observability.Error("err", err))
			}
		}
	}
	for i, img := range images {
		if img.Action == ActionNone {
			continue
		}
		if err := e.commitImage(ctx, doc, page, img); err != nil {
			skipped++
			e.log.Warn("image commit skipped",
				observability.Int("region", i),
				observability.Error("err", err))
		}
	}

	out, err := doc.Save(ctx)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("commit: save document: %w", err)
	}
	e.log.Info("commit finished",
		observability.Int("blocks", len(blocks)),
		observability.Int("images", len(images)),
		observability.Int("skipped", skipped),
		observability.Float64("seconds", time.Since(start).Seconds()))
	span.SetTag(observability.MetricCommitSkipped, skipped)
	return out, nil
}

// commitLine draws one cover rectangle and one text draw per style run.
func (e *Engine) commitLine(ctx context.Context, doc provider.Doc, page provider.Page, fonts *fontCache, ln *session.LineState) error {
	cover := ln.DocBBox.Expand(CoverPadding)
	if err := page.DrawRectangle(cover, ln.MatchedBackground); err != nil {
		return fmt.Errorf("cover rectangle: %w", err)
	}

	runs := richtext.Normalize(ln.Runs)
	if richtext.TextOf(runs) == "" {
		return nil
	}

	size := ln.FontSize
	if ln.FontSizeOverride > 0 {
		size = ln.FontSizeOverride
	}
	fill := ln.MatchedForeground
	if ln.ColorOverride != nil {
		fill = *ln.ColorOverride
	}
	family := ln.FontID
	if ln.FontFamilyOverride != "" {
		family = ln.FontFamilyOverride
	}

	x := ln.DocBBox.X
	baseline := ln.DocBBox.Y
	for _, r := range runs {
		variant := style.OutputFont(family, r.Bold, r.Italic)
		handle, err := fonts.handle(ctx, variant)
		if err != nil {
			// Font resolution never blocks a commit: fall back to
			// the plain sans face.
			e.log.Warn("font embed failed, using sans fallback",
				observability.String("variant", string(variant)),
				observability.Error("err", err))
			variant = style.Sans
			if handle, err = fonts.handle(ctx, variant); err != nil {
				return fmt.Errorf("embed fallback font: %w", err)
			}
		}
		if err := page.DrawText(r.Text, coords.Point{X: x, Y: baseline}, handle, fill, size); err != nil {
			return fmt.Errorf("draw text run: %w", err)
		}
		x += e.runWidth(doc, handle, variant, r.Text, size)
	}
	return nil
}

// runWidth measures through the provider first, then by shaping registered
// font bytes, then through the built-in metrics tables.
func (e *Engine) runWidth(doc provider.Doc, handle provider.FontHandle, variant style.Variant, text string, size float64) float64 {
	if w, err := doc.MeasureTextWidth(handle, text, size); err == nil {
		return w
	}
	if m := e.faceFor(variant); m != nil {
		if w, err := m.Width(text, size); err == nil {
			return w
		}
	}
	w, err := textmetrics.ForVariant(variant).Width(text, size)
	if err != nil {
		return 0
	}
	return w
}

// faceFor parses the registered font bytes for a variant once and caches
// the shaping measurer, nil included so a bad font parses only once.
func (e *Engine) faceFor(v style.Variant) *textmetrics.FaceMeasurer {
	if m, ok := e.faces[v]; ok {
		return m
	}
	data, ok := e.embedded[v]
	if !ok {
		e.faces[v] = nil
		return nil
	}
	m, err := textmetrics.NewFaceMeasurer(data)
	if err != nil {
		e.log.Warn("embedded font parse failed",
			observability.String("variant", string(v)),
			observability.Error("err", err))
		m = nil
	}
	e.faces[v] = m
	return m
}

// fontCache embeds each variant at most once per commit pass, preferring
// registered font bytes over the standard built-ins.
type fontCache struct {
	doc      provider.Doc
	embedded map[style.Variant][]byte
	handles  map[style.Variant]provider.FontHandle
}

func newFontCache(doc provider.Doc, embedded map[style.Variant][]byte) *fontCache {
	return &fontCache{
		doc:      doc,
		embedded: embedded,
		handles:  make(map[style.Variant]provider.FontHandle),
	}
}

func (c *fontCache) handle(ctx context.Context, v style.Variant) (provider.FontHandle, error) {
	if h, ok := c.handles[v]; ok {
		return h, nil
	}
	var (
		h   provider.FontHandle
		err error
	)
	if data, ok := c.embedded[v]; ok {
		h, err = c.doc.EmbedFontBytes(ctx, data)
	} else {
		h, err = c.doc.EmbedStandardFont(ctx, v)
	}
	if err != nil {
		return nil, err
	}
	c.handles[v] = h
	return h, nil
}
