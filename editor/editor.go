// Package editor is the host-facing facade. It owns the single editing
// session, arbitrates between the text and image modes, runs the
// extraction-to-layout pipeline on mode entry with an OCR fallback for
// pages without native text, and hands dirty records to the commit engine.
package editor

import (
	"context"
	"time"

	"github.com/wudi/pdfedit/commit"
	"github.com/wudi/pdfedit/extract"
	"github.com/wudi/pdfedit/imageedit"
	"github.com/wudi/pdfedit/layout"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/ocr"
	"github.com/wudi/pdfedit/provider"
	"github.com/wudi/pdfedit/raster"
	"github.com/wudi/pdfedit/session"
	"github.com/wudi/pdfedit/style"
)

type mode int

const (
	modeNone mode = iota
	modeText
	modeImage
)

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the editor logger.
func WithLogger(log observability.Logger) Option {
	return func(e *Editor) { e.log = log }
}

// WithTracer sets the editor tracer.
func WithTracer(tr observability.Tracer) Option {
	return func(e *Editor) { e.tracer = tr }
}

// WithLayoutConfig overrides the layout reconstruction thresholds.
func WithLayoutConfig(cfg layout.Config) Option {
	return func(e *Editor) { e.layoutCfg = cfg }
}

// WithOCR sets the OCR engine used when a page has no native text.
func WithOCR(engine ocr.Engine) Option {
	return func(e *Editor) { e.ocr = ocr.NewFallback(engine) }
}

// WithEmbeddedFont hands real font bytes to the commit engine for one
// output variant; see commit.WithEmbeddedFont.
func WithEmbeddedFont(v style.Variant, data []byte) Option {
	return func(e *Editor) {
		e.commitOpts = append(e.commitOpts, commit.WithEmbeddedFont(v, data))
	}
}

// Editor drives the editing engine for one page at a time. At most one
// mode, text or image, is active; entering either discards the other.
type Editor struct {
	log       observability.Logger
	tracer    observability.Tracer
	mutator   provider.Mutator
	layoutCfg layout.Config
	ocr       *ocr.Fallback

	mode       mode
	pageIndex  int
	commitOpts []commit.Option

	text  *session.Session
	image *imageedit.Session
	bg    raster.Color
}

// New builds an editor. The mutator may be nil; commits then return a nil
// result meaning nothing was committed.
func New(mutator provider.Mutator, opts ...Option) *Editor {
	e := &Editor{
		log:       observability.NopLogger{},
		tracer:    observability.NopTracer(),
		mutator:   mutator,
		layoutCfg: layout.DefaultConfig(),
		ocr:       ocr.NewFallback(nil),
		bg:        raster.White,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnterTextEditMode extracts the page's text, reconstructs editable blocks
// and opens a text session. It returns false when the page yields no
// editable content even after the OCR fallback.
func (e *Editor) EnterTextEditMode(ctx context.Context, page provider.RenderedPage, pageIndex int) (bool, error) {
	e.exitImage()
	e.exitText()

	start := time.Now()
	vp := page.Viewport()

	ctx, span := e.tracer.StartSpan(ctx, observability.MetricExtractTime)
	runs := extract.New(extract.WithLogger(e.log)).Runs(ctx, page)
	span.SetTag(observability.MetricRunCount, len(runs))
	span.Finish()

	_, lspan := e.tracer.StartSpan(ctx, observability.MetricLayoutTime)
	paras := layout.NewReconstructor(vp, e.layoutCfg).Reconstruct(runs)
	lspan.SetTag(observability.MetricBlockCount, len(paras))
	lspan.Finish()

	if len(paras) == 0 {
		lines, err := e.ocr.Lines(ctx, page, pageIndex)
		if err != nil {
			e.log.Warn("ocr fallback failed", observability.Error("err", err))
		} else if len(lines) > 0 {
			e.log.Info("ocr fallback produced lines",
				observability.String("metric", observability.MetricOCRFallback),
				observability.Int("lines", len(lines)))
			paras = paragraphsFromLines(lines)
		}
	}
	if len(paras) == 0 {
		e.log.Info("no editable content", observability.Int("page", pageIndex))
		return false, nil
	}

	surface, err := page.RasterSurface()
	if err != nil {
		// Rendering-provider absence: sampling degrades to white/black.
		e.log.Warn("no raster surface", observability.Error("err", err))
		surface = nil
	}

	e.text = session.New(paras, surface, vp, session.WithLogger(e.log))
	e.mode = modeText
	e.pageIndex = pageIndex
	e.log.Info("text edit mode entered",
		observability.Int("page", pageIndex),
		observability.Int("runs", len(runs)),
		observability.Int("blocks", len(paras)),
		observability.Float64("seconds", time.Since(start).Seconds()))
	return true, nil
}

// ExitTextEditMode discards the live block's in-progress edits and leaves
// text mode. Deactivated dirty records survive until the next mode entry so
// a commit can still pick them up.
func (e *Editor) ExitTextEditMode() {
	e.exitText()
}

func (e *Editor) exitText() {
	if e.text == nil {
		return
	}
	if e.mode == modeText {
		e.text.Close()
		e.mode = modeNone
	}
}

// HasTextEditChanges reports whether any text block is dirty, the live
// active block included.
func (e *Editor) HasTextEditChanges() bool {
	return e.text != nil && e.text.HasChanges()
}

// CommitTextEdits applies every dirty text record to the document and
// returns the saved bytes. A nil result with nil error means nothing was
// committed: no dirty records, or no mutation provider.
func (e *Editor) CommitTextEdits(ctx context.Context, original []byte) ([]byte, error) {
	if e.text == nil {
		return nil, nil
	}
	blocks := e.text.DirtyBlocks()
	if len(blocks) == 0 {
		return nil, nil
	}
	e.log.Info("committing text edits",
		observability.Int(observability.MetricDirtyBlocks, len(blocks)))
	out, err := e.newCommitEngine().Commit(ctx, original, e.pageIndex, blocks, nil)
	if err != nil {
		return nil, err
	}
	if out != nil {
		e.text.ClearDirty()
	}
	return out, nil
}

// Session exposes the live text session for overlay interaction, or nil
// when text mode is not active.
func (e *Editor) Session() *session.Session {
	if e.mode != modeText {
		return nil
	}
	return e.text
}

// EnterImageEditMode derives image regions from the page's content stream
// and opens an image session. It returns false when the page has no image
// placements.
func (e *Editor) EnterImageEditMode(ctx context.Context, page provider.RenderedPage, pageIndex int) (bool, error) {
	e.exitText()
	e.text = nil
	e.exitImage()

	placements := extract.New(extract.WithLogger(e.log)).Placements(ctx, page)
	if len(placements) == 0 {
		return false, nil
	}
	e.bg = raster.White
	if surface, err := page.RasterSurface(); err == nil && surface != nil {
		e.bg = raster.SampleBackground(surface, surface.Bounds())
	}
	e.image = imageedit.New(placements, imageedit.WithLogger(e.log))
	e.mode = modeImage
	e.pageIndex = pageIndex
	e.log.Info("image edit mode entered",
		observability.Int("page", pageIndex),
		observability.Int("regions", len(placements)))
	return true, nil
}

// ExitImageEditMode discards unsaved region actions and leaves image mode.
func (e *Editor) ExitImageEditMode() {
	e.exitImage()
}

func (e *Editor) exitImage() {
	if e.image == nil {
		return
	}
	if e.mode == modeImage {
		e.image.Discard()
		e.mode = modeNone
	}
	e.image = nil
}

// HasImageEditChanges reports whether any region has a pending action.
func (e *Editor) HasImageEditChanges() bool {
	return e.image != nil && e.image.HasChanges()
}

// CommitImageEdits applies pending region actions to the document and
// returns the saved bytes, nil when there is nothing to commit.
func (e *Editor) CommitImageEdits(ctx context.Context, original []byte) ([]byte, error) {
	if e.image == nil {
		return nil, nil
	}
	edits := e.image.Edits(e.bg)
	if len(edits) == 0 {
		return nil, nil
	}
	out, err := e.newCommitEngine().Commit(ctx, original, e.pageIndex, nil, edits)
	if err != nil {
		return nil, err
	}
	if out != nil {
		e.image.Discard()
	}
	return out, nil
}

func (e *Editor) newCommitEngine() *commit.Engine {
	opts := append([]commit.Option{
		commit.WithLogger(e.log),
		commit.WithTracer(e.tracer),
	}, e.commitOpts...)
	return commit.New(e.mutator, opts...)
}

// ImageSession exposes the live image session, or nil when image mode is
// not active.
func (e *Editor) ImageSession() *imageedit.Session {
	if e.mode != modeImage {
		return nil
	}
	return e.image
}

// paragraphsFromLines wraps OCR lines as single-line paragraphs; OCR output
// carries no font identity so paragraph merging heuristics do not apply.
func paragraphsFromLines(lines []layout.Line) []layout.Paragraph {
	paras := make([]layout.Paragraph, 0, len(lines))
	for _, ln := range lines {
		paras = append(paras, layout.Paragraph{Lines: []layout.Line{ln}})
	}
	return paras
}
