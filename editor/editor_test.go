package editor

import (
	"context"
	"testing"

	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/ocr"
	"github.com/wudi/pdfedit/provider"
	"github.com/wudi/pdfedit/raster"
	"github.com/wudi/pdfedit/richtext"
	"github.com/wudi/pdfedit/style"
)

type fakeRendered struct {
	records []provider.TextRecord
	ops     []provider.ContentOp
	surface raster.Surface
	vp      coords.Viewport
}

func (p *fakeRendered) PositionedText(context.Context) ([]provider.TextRecord, error) {
	return p.records, nil
}

func (p *fakeRendered) ContentStreamOps(context.Context) ([]provider.ContentOp, error) {
	return p.ops, nil
}

func (p *fakeRendered) RasterSurface() (raster.Surface, error) {
	if p.surface == nil {
		return nil, raster.ErrNoSurface
	}
	return p.surface, nil
}

func (p *fakeRendered) Viewport() coords.Viewport { return p.vp }

type drawRect struct {
	rect coords.Rect
	fill raster.Color
}

type drawText struct {
	text string
	pos  coords.Point
	size float64
}

type recordingPage struct {
	rects  []drawRect
	texts  []drawText
	images int
}

func (p *recordingPage) DrawRectangle(rect coords.Rect, fill raster.Color) error {
	p.rects = append(p.rects, drawRect{rect, fill})
	return nil
}

func (p *recordingPage) DrawText(text string, pos coords.Point, _ provider.FontHandle, _ raster.Color, size float64) error {
	p.texts = append(p.texts, drawText{text, pos, size})
	return nil
}

func (p *recordingPage) DrawImage(provider.ImageHandle, coords.Rect) error {
	p.images++
	return nil
}

type recordingDoc struct {
	page *recordingPage
}

func (d *recordingDoc) Page(int) (provider.Page, error) { return d.page, nil }

func (d *recordingDoc) EmbedStandardFont(_ context.Context, v style.Variant) (provider.FontHandle, error) {
	return string(v), nil
}

func (d *recordingDoc) EmbedFontBytes(context.Context, []byte) (provider.FontHandle, error) {
	return "custom", nil
}

func (d *recordingDoc) EmbedRasterImage(context.Context, []byte) (provider.ImageHandle, error) {
	return "img", nil
}

func (d *recordingDoc) MeasureTextWidth(_ provider.FontHandle, text string, size float64) (float64, error) {
	return float64(len(text)) * size * 0.5, nil
}

func (d *recordingDoc) Save(context.Context) ([]byte, error) { return []byte("saved"), nil }

type recordingMutator struct {
	doc *recordingDoc
}

func (m *recordingMutator) LoadMutable(context.Context, []byte) (provider.Doc, error) {
	return m.doc, nil
}

func textPage() *fakeRendered {
	return &fakeRendered{
		records: []provider.TextRecord{{
			Text:     "Hello World",
			FontID:   "Helvetica",
			X:        50,
			Y:        700,
			Width:    110,
			Height:   12,
			FontSize: 12,
		}},
		vp: coords.Viewport{Zoom: 1, PageWidth: 600, PageHeight: 800},
	}
}

func TestEditAndCommitRoundTrip(t *testing.T) {
	page := &recordingPage{}
	ed := New(&recordingMutator{doc: &recordingDoc{page: page}})

	ok, err := ed.EnterTextEditMode(context.Background(), textPage(), 0)
	if err != nil {
		t.Fatalf("EnterTextEditMode: %v", err)
	}
	if !ok {
		t.Fatal("edit mode refused a page with text")
	}

	s := ed.Session()
	if s == nil {
		t.Fatal("Session returned nil in text mode")
	}
	if err := s.Activate(s.Blocks()[0]); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.DeleteText(0, 0, 5); err != nil {
		t.Fatalf("DeleteText: %v", err)
	}
	if err := s.InsertText(0, 0, "Goodbye"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	s.Deactivate()

	if !ed.HasTextEditChanges() {
		t.Fatal("dirty block not reported")
	}

	out, err := ed.CommitTextEdits(context.Background(), []byte("pdf"))
	if err != nil {
		t.Fatalf("CommitTextEdits: %v", err)
	}
	if string(out) != "saved" {
		t.Fatalf("out = %q", out)
	}
	if len(page.rects) != 1 {
		t.Fatalf("cover rects = %d, want 1", len(page.rects))
	}
	if len(page.texts) != 1 {
		t.Fatalf("text draws = %d, want 1", len(page.texts))
	}
	got := page.texts[0]
	if got.text != "Goodbye World" {
		t.Fatalf("text = %q, want %q", got.text, "Goodbye World")
	}
	if got.pos.X != 50 || got.pos.Y != 700 {
		t.Fatalf("pos = %+v, want original baseline (50, 700)", got.pos)
	}
	cover := page.rects[0].rect
	if cover.X >= 50 || cover.Y >= 700 || cover.X+cover.W <= 160 {
		t.Fatalf("cover = %+v does not pad the original bbox", cover)
	}

	if ed.HasTextEditChanges() {
		t.Fatal("dirty store not cleared after commit")
	}
}

func TestCommitAfterReactivation(t *testing.T) {
	page := &recordingPage{}
	ed := New(&recordingMutator{doc: &recordingDoc{page: page}})
	if ok, _ := ed.EnterTextEditMode(context.Background(), textPage(), 0); !ok {
		t.Fatal("enter failed")
	}

	s := ed.Session()
	if err := s.Activate(s.Blocks()[0]); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.DeleteText(0, 0, 5); err != nil {
		t.Fatalf("DeleteText: %v", err)
	}
	if err := s.InsertText(0, 0, "Goodbye"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	s.Deactivate()

	// Opening and releasing the block again must not launder the edit.
	if err := s.Activate(s.Blocks()[0]); err != nil {
		t.Fatalf("re-Activate: %v", err)
	}
	s.Deactivate()

	out, err := ed.CommitTextEdits(context.Background(), []byte("pdf"))
	if err != nil {
		t.Fatalf("CommitTextEdits: %v", err)
	}
	if string(out) != "saved" {
		t.Fatalf("out = %q, want %q", out, "saved")
	}
	if len(page.rects) != 1 {
		t.Fatalf("cover rects = %d, want 1", len(page.rects))
	}
	if len(page.texts) != 1 {
		t.Fatalf("text draws = %d, want 1", len(page.texts))
	}
	if got := page.texts[0].text; got != "Goodbye World" {
		t.Fatalf("text = %q, want %q", got, "Goodbye World")
	}
}

func TestCommitWithoutChangesReturnsNil(t *testing.T) {
	ed := New(&recordingMutator{doc: &recordingDoc{page: &recordingPage{}}})
	if ok, _ := ed.EnterTextEditMode(context.Background(), textPage(), 0); !ok {
		t.Fatal("enter failed")
	}
	out, err := ed.CommitTextEdits(context.Background(), []byte("pdf"))
	if err != nil {
		t.Fatalf("CommitTextEdits: %v", err)
	}
	if out != nil {
		t.Fatalf("out = %q, want nil for nothing committed", out)
	}
}

func TestEnterRefusedWithoutContent(t *testing.T) {
	ed := New(nil)
	empty := &fakeRendered{vp: coords.Viewport{Zoom: 1, PageWidth: 600, PageHeight: 800}}
	ok, err := ed.EnterTextEditMode(context.Background(), empty, 0)
	if err != nil {
		t.Fatalf("EnterTextEditMode: %v", err)
	}
	if ok {
		t.Fatal("edit mode entered a page with no content")
	}
	if ed.Session() != nil {
		t.Fatal("session exists without edit mode")
	}
}

type scriptedOCR struct{}

func (scriptedOCR) Name() string { return "scripted" }

func (scriptedOCR) Recognize(context.Context, ocr.Input) (ocr.Result, error) {
	return ocr.Result{Lines: []ocr.Line{{
		Text:   "Scanned text",
		Bounds: ocr.Region{X: 40, Y: 100, Width: 200, Height: 14},
	}}}, nil
}

func TestOCRFallbackForScannedPage(t *testing.T) {
	surf := raster.NewSoftwareSurface(600, 800)
	scanned := &fakeRendered{
		surface: surf,
		vp:      coords.Viewport{Zoom: 1, PageWidth: 600, PageHeight: 800},
	}
	ed := New(nil, WithOCR(scriptedOCR{}))
	ok, err := ed.EnterTextEditMode(context.Background(), scanned, 2)
	if err != nil {
		t.Fatalf("EnterTextEditMode: %v", err)
	}
	if !ok {
		t.Fatal("OCR fallback did not enable edit mode")
	}
	s := ed.Session()
	if got := len(s.Blocks()); got != 1 {
		t.Fatalf("blocks = %d, want 1", got)
	}
	if err := s.Activate(s.Blocks()[0]); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	ln, err := s.Line(0)
	if err != nil {
		t.Fatalf("Line: %v", err)
	}
	if got := richtext.TextOf(ln.Runs); got != "Scanned text" {
		t.Fatalf("overlay text = %q", got)
	}
}

type recordedSpan struct {
	name string
	tags map[string]interface{}
}

func (s *recordedSpan) SetTag(key string, value interface{}) { s.tags[key] = value }
func (s *recordedSpan) SetError(error)                       {}
func (s *recordedSpan) Finish()                              {}

type recordingTracer struct {
	spans []*recordedSpan
}

func (tr *recordingTracer) StartSpan(ctx context.Context, name string) (context.Context, observability.Span) {
	span := &recordedSpan{name: name, tags: map[string]interface{}{}}
	tr.spans = append(tr.spans, span)
	return ctx, span
}

func (tr *recordingTracer) span(name string) *recordedSpan {
	for _, s := range tr.spans {
		if s.name == name {
			return s
		}
	}
	return nil
}

func TestPipelineMetricsEmitted(t *testing.T) {
	tracer := &recordingTracer{}
	ed := New(&recordingMutator{doc: &recordingDoc{page: &recordingPage{}}}, WithTracer(tracer))
	if ok, _ := ed.EnterTextEditMode(context.Background(), textPage(), 0); !ok {
		t.Fatal("enter failed")
	}

	extractSpan := tracer.span(observability.MetricExtractTime)
	if extractSpan == nil {
		t.Fatal("no extract span")
	}
	if got := extractSpan.tags[observability.MetricRunCount]; got != 1 {
		t.Fatalf("run count tag = %v, want 1", got)
	}
	layoutSpan := tracer.span(observability.MetricLayoutTime)
	if layoutSpan == nil {
		t.Fatal("no layout span")
	}
	if got := layoutSpan.tags[observability.MetricBlockCount]; got != 1 {
		t.Fatalf("block count tag = %v, want 1", got)
	}

	s := ed.Session()
	if err := s.Activate(s.Blocks()[0]); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.InsertText(0, 0, "x"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	s.Deactivate()
	if _, err := ed.CommitTextEdits(context.Background(), []byte("pdf")); err != nil {
		t.Fatalf("CommitTextEdits: %v", err)
	}
	if tracer.span(observability.MetricCommitTime) == nil {
		t.Fatal("no commit span")
	}
}

func TestModeExclusivity(t *testing.T) {
	imagePage := &fakeRendered{
		ops: []provider.ContentOp{
			{Operator: provider.OpSave},
			{Operator: provider.OpTransform, Operands: []float64{100, 0, 0, 80, 40, 300}},
			{Operator: provider.OpPaintX, Name: "Im1"},
			{Operator: provider.OpRestore},
		},
		vp: coords.Viewport{Zoom: 1, PageWidth: 600, PageHeight: 800},
	}
	ed := New(&recordingMutator{doc: &recordingDoc{page: &recordingPage{}}})
	if ok, _ := ed.EnterTextEditMode(context.Background(), textPage(), 0); !ok {
		t.Fatal("text enter failed")
	}
	if ok, _ := ed.EnterImageEditMode(context.Background(), imagePage, 0); !ok {
		t.Fatal("image enter failed")
	}
	if ed.Session() != nil {
		t.Fatal("text session alive in image mode")
	}
	if ed.ImageSession() == nil {
		t.Fatal("image session missing in image mode")
	}
	if ed.HasTextEditChanges() {
		t.Fatal("text changes survived mode switch")
	}
}

func TestImageEditCommit(t *testing.T) {
	page := &recordingPage{}
	imagePage := &fakeRendered{
		ops: []provider.ContentOp{
			{Operator: provider.OpSave},
			{Operator: provider.OpTransform, Operands: []float64{100, 0, 0, 80, 40, 300}},
			{Operator: provider.OpPaintX, Name: "Im1"},
			{Operator: provider.OpRestore},
		},
		vp: coords.Viewport{Zoom: 1, PageWidth: 600, PageHeight: 800},
	}
	ed := New(&recordingMutator{doc: &recordingDoc{page: page}})
	ok, err := ed.EnterImageEditMode(context.Background(), imagePage, 0)
	if err != nil || !ok {
		t.Fatalf("EnterImageEditMode = (%v, %v)", ok, err)
	}
	is := ed.ImageSession()
	idx, err := is.RegionAt(coords.Point{X: 90, Y: 340})
	if err != nil {
		t.Fatalf("RegionAt: %v", err)
	}
	if err := is.MarkDelete(idx); err != nil {
		t.Fatalf("MarkDelete: %v", err)
	}
	if !ed.HasImageEditChanges() {
		t.Fatal("pending region action not reported")
	}
	out, err := ed.CommitImageEdits(context.Background(), []byte("pdf"))
	if err != nil {
		t.Fatalf("CommitImageEdits: %v", err)
	}
	if string(out) != "saved" {
		t.Fatalf("out = %q", out)
	}
	if len(page.rects) != 1 {
		t.Fatalf("cover rects = %d, want 1", len(page.rects))
	}
	want := coords.Rect{X: 40, Y: 300, W: 100, H: 80}
	if page.rects[0].rect != want {
		t.Fatalf("cover = %+v, want %+v", page.rects[0].rect, want)
	}
	if page.images != 0 {
		t.Fatalf("image draws = %d, want 0 for delete", page.images)
	}
}
