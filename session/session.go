// Package session implements the block editing session: paragraph blocks as
// a Zone -> Active -> Deactivated state machine over a page raster, with an
// editable rich-text overlay, pre-erase color sampling, bounded undo, and a
// dirty store the commit engine consumes.
package session

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/layout"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/raster"
	"github.com/wudi/pdfedit/richtext"
)

const defaultUndoDepth = 50

// coverPadding is the fixed padding, in screen pixels, added around a
// block's bounding box for raster snapshots and commit cover rectangles.
const coverPadding = 2.0

var (
	// ErrNoActiveBlock is returned by editing commands when no block is
	// active.
	ErrNoActiveBlock = errors.New("session: no active block")
	// ErrNoBlockAt is returned by ActivateAt when the point hits no zone.
	ErrNoBlockAt = errors.New("session: no block at point")
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log observability.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithUndoDepth bounds the per-activation undo history.
func WithUndoDepth(depth int) Option {
	return func(s *Session) { s.undoDepth = depth }
}

// Session owns the editable blocks of one page. At most one block is active
// at a time; activating another block synchronously deactivates the current
// one.
type Session struct {
	log       observability.Logger
	surface   raster.Surface
	vp        coords.Viewport
	blocks    []*Block
	active    *Block
	dirty     map[string]*BlockState
	undo      *undoStack
	undoDepth int
	closed    bool
}

// New builds a session from reconstructed paragraphs. The surface may be
// nil when the page has no raster; sampling and erase are skipped and
// committed text falls back to black on white.
func New(paras []layout.Paragraph, surface raster.Surface, vp coords.Viewport, opts ...Option) *Session {
	s := &Session{
		log:       observability.NopLogger{},
		surface:   surface,
		vp:        vp,
		dirty:     make(map[string]*BlockState),
		undoDepth: defaultUndoDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.blocks = make([]*Block, 0, len(paras))
	for _, p := range paras {
		s.blocks = append(s.blocks, &Block{para: p, state: StateZone})
	}
	s.log.Debug("session opened", observability.Int("blocks", len(s.blocks)))
	return s
}

// Blocks returns every block in reading order.
func (s *Session) Blocks() []*Block { return s.blocks }

// Active returns the active block, or nil.
func (s *Session) Active() *Block { return s.active }

// BlockAt returns the first block whose zone contains the screen point.
func (s *Session) BlockAt(p coords.Point) *Block {
	for _, b := range s.blocks {
		if b.Zone().Contains(p) {
			return b
		}
	}
	return nil
}

// ActivateAt activates the block under the screen point.
func (s *Session) ActivateAt(p coords.Point) (*Block, error) {
	b := s.BlockAt(p)
	if b == nil {
		return nil, ErrNoBlockAt
	}
	if err := s.Activate(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Activate transitions the block to Active. Any currently active block is
// deactivated first, so the single-active invariant holds at every point an
// observer could see.
func (s *Session) Activate(b *Block) error {
	if s.closed {
		return errors.New("session: closed")
	}
	if b == nil {
		return errors.New("session: nil block")
	}
	if s.active == b {
		return nil
	}
	if s.active != nil {
		s.Deactivate()
	}

	if st, ok := s.dirty[b.Key()]; ok {
		// Re-activation resumes the persisted dirty state. The captured
		// originals stay as the diff baseline so the resumed edits still
		// read as changes, and a block reverted by hand can become clean.
		b.st = st.clone()
	} else {
		b.st = captureState(b.para, b.Key())
	}

	s.snapshotBlock(b)
	s.sampleAndErase(b)

	b.state = StateActive
	s.active = b
	s.undo = newUndoStack(s.undoDepth)
	s.log.Debug("block activated",
		observability.String("key", b.Key()),
		observability.Int("lines", len(b.st.Lines)))
	return nil
}

// snapshotBlock captures the raster under the block so deactivation can
// restore the page pixels exactly.
func (s *Session) snapshotBlock(b *Block) {
	if s.surface == nil {
		return
	}
	region := b.Zone().Expand(coverPadding)
	snap, err := raster.Capture(s.surface, region)
	if err != nil {
		s.log.Warn("raster snapshot failed", observability.Error("err", err))
		return
	}
	b.st.snapshot = snap
}

// sampleAndErase samples each line's colors from the untouched raster, then
// erases the line region to the sampled background. Sampling must finish
// before the first erase or later lines would read painted-over pixels.
func (s *Session) sampleAndErase(b *Block) {
	if s.surface == nil {
		for i := range b.st.Lines {
			b.st.Lines[i].MatchedBackground = raster.White
			b.st.Lines[i].MatchedForeground = raster.Black
		}
		b.st.MatchedBackgroundColor = raster.White
		b.st.MatchedTextColor = raster.Black
		return
	}
	for i := range b.st.Lines {
		ln := &b.st.Lines[i]
		ln.MatchedBackground = raster.SampleBackground(s.surface, ln.ScreenBBox)
		ln.MatchedForeground = raster.SampleForeground(s.surface, ln.ScreenBBox, ln.MatchedBackground)
	}
	if len(b.st.Lines) > 0 {
		b.st.MatchedBackgroundColor = b.st.Lines[0].MatchedBackground
		b.st.MatchedTextColor = b.st.Lines[0].MatchedForeground
	}
	for i := range b.st.Lines {
		ln := &b.st.Lines[i]
		if err := raster.Fill(s.surface, ln.ScreenBBox, ln.MatchedBackground); err != nil {
			s.log.Warn("line erase failed", observability.Error("err", err))
		}
	}
}

// Deactivate releases the active block: the text and formatting diff against
// the captured originals decides dirtiness, a dirty state is persisted to
// the store, the raster snapshot is restored, and undo history is discarded.
func (s *Session) Deactivate() {
	b := s.active
	if b == nil {
		return
	}
	s.active = nil
	s.undo = nil

	dirty := false
	for i := range b.st.Lines {
		if b.st.Lines[i].Changed() {
			dirty = true
			break
		}
	}
	b.st.Dirty = dirty

	if s.surface != nil && b.st.snapshot.Pixels != nil {
		if err := raster.Restore(s.surface, b.st.snapshot); err != nil {
			s.log.Warn("raster restore failed", observability.Error("err", err))
		}
	}
	b.st.snapshot = raster.Snapshot{}

	if b.st.Dirty {
		s.dirty[b.st.Key] = b.st.clone()
		b.state = StateDeactivated
	} else {
		delete(s.dirty, b.st.Key)
		b.state = StateZone
	}
	s.log.Debug("block deactivated",
		observability.String("key", b.Key()),
		observability.Bool("dirty", b.st.Dirty))
	b.st = nil
}

// Discard drops the active block's in-progress edits without persisting
// them. Previously deactivated dirty records are untouched.
func (s *Session) Discard() {
	b := s.active
	if b == nil {
		return
	}
	s.active = nil
	s.undo = nil
	if s.surface != nil && b.st.snapshot.Pixels != nil {
		if err := raster.Restore(s.surface, b.st.snapshot); err != nil {
			s.log.Warn("raster restore failed", observability.Error("err", err))
		}
	}
	b.st = nil
	if _, ok := s.dirty[b.Key()]; ok {
		b.state = StateDeactivated
	} else {
		b.state = StateZone
	}
}

// Close ends the session, discarding the live block's edits. The dirty
// store survives until the session value itself is dropped so a commit that
// ran just before Close can still observe it.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.Discard()
	s.closed = true
	s.log.Debug("session closed", observability.Int("dirty", len(s.dirty)))
}

// HasChanges reports whether any dirty record exists, including the live
// active block's unpersisted edits.
func (s *Session) HasChanges() bool {
	for key := range s.dirty {
		if s.active == nil || key != s.active.Key() {
			return true
		}
	}
	if s.active != nil {
		for i := range s.active.st.Lines {
			if s.active.st.Lines[i].Changed() {
				return true
			}
		}
	}
	return false
}

// DirtyBlocks returns clones of every dirty record, the live active block's
// current state included when it differs from its originals.
func (s *Session) DirtyBlocks() []*BlockState {
	var out []*BlockState
	seen := map[string]bool{}
	if b := s.active; b != nil {
		// The live state supersedes any store record for the same block,
		// even when the user reverted it back to the original.
		seen[b.Key()] = true
		changed := false
		for i := range b.st.Lines {
			if b.st.Lines[i].Changed() {
				changed = true
				break
			}
		}
		if changed {
			st := b.st.clone()
			st.Dirty = true
			st.snapshot = raster.Snapshot{}
			out = append(out, st)
		}
	}
	for _, b := range s.blocks {
		st, ok := s.dirty[b.Key()]
		if !ok || seen[st.Key] {
			continue
		}
		out = append(out, st.clone())
		seen[st.Key] = true
	}
	return out
}

// ClearDirty empties the dirty store, typically after a successful commit.
func (s *Session) ClearDirty() {
	s.dirty = make(map[string]*BlockState)
	for _, b := range s.blocks {
		if b.state == StateDeactivated {
			b.state = StateZone
		}
	}
}

// line returns the active block's line by index.
func (s *Session) line(i int) (*LineState, error) {
	if s.active == nil {
		return nil, ErrNoActiveBlock
	}
	if i < 0 || i >= len(s.active.st.Lines) {
		return nil, fmt.Errorf("session: line %d out of range", i)
	}
	return &s.active.st.Lines[i], nil
}

// Line exposes the active block's line state for rendering the overlay.
func (s *Session) Line(i int) (*LineState, error) { return s.line(i) }

func (s *Session) mutate(i int, fn func(*LineState)) error {
	ln, err := s.line(i)
	if err != nil {
		return err
	}
	s.undo.push(s.active.st.Lines)
	fn(ln)
	return nil
}

// InsertText inserts plain text at a rune position, inheriting the style of
// the character before the insertion point.
func (s *Session) InsertText(line, pos int, text string) error {
	return s.mutate(line, func(ln *LineState) {
		ln.Runs = richtext.Insert(ln.Runs, pos, text)
	})
}

// InsertRuns inserts styled runs, e.g. from a Markdown or HTML paste.
func (s *Session) InsertRuns(line, pos int, runs []richtext.Run) error {
	return s.mutate(line, func(ln *LineState) {
		before := richtext.Delete(append([]richtext.Run(nil), ln.Runs...), pos, richtext.Len(ln.Runs))
		after := richtext.Delete(append([]richtext.Run(nil), ln.Runs...), 0, pos)
		merged := append(before, runs...)
		merged = append(merged, after...)
		ln.Runs = richtext.Normalize(merged)
	})
}

// DeleteText removes the rune range [start, end).
func (s *Session) DeleteText(line, start, end int) error {
	return s.mutate(line, func(ln *LineState) {
		ln.Runs = richtext.Delete(ln.Runs, start, end)
	})
}

// ToggleBold toggles bold over the rune range [start, end).
func (s *Session) ToggleBold(line, start, end int) error {
	return s.mutate(line, func(ln *LineState) {
		ln.Runs = richtext.ToggleBold(ln.Runs, start, end)
	})
}

// ToggleItalic toggles italic over the rune range [start, end).
func (s *Session) ToggleItalic(line, start, end int) error {
	return s.mutate(line, func(ln *LineState) {
		ln.Runs = richtext.ToggleItalic(ln.Runs, start, end)
	})
}

// SetFontSize overrides the line's committed font size. Zero restores the
// original.
func (s *Session) SetFontSize(line int, size float64) error {
	return s.mutate(line, func(ln *LineState) {
		ln.FontSizeOverride = size
	})
}

// SetColor overrides the line's committed text color. Nil restores the
// sampled foreground.
func (s *Session) SetColor(line int, c *raster.Color) error {
	return s.mutate(line, func(ln *LineState) {
		if c == nil {
			ln.ColorOverride = nil
			return
		}
		cc := *c
		ln.ColorOverride = &cc
	})
}

// SetFontFamily overrides the line's committed display family. Empty
// restores the original.
func (s *Session) SetFontFamily(line int, family string) error {
	return s.mutate(line, func(ln *LineState) {
		ln.FontFamilyOverride = family
	})
}

// Undo reverts the most recent edit to the active block.
func (s *Session) Undo() bool {
	if s.active == nil || s.undo == nil {
		return false
	}
	lines, ok := s.undo.undo(s.active.st.Lines)
	if !ok {
		return false
	}
	s.active.st.Lines = lines
	return true
}

// Redo reapplies the most recently undone edit.
func (s *Session) Redo() bool {
	if s.active == nil || s.undo == nil {
		return false
	}
	lines, ok := s.undo.redo(s.active.st.Lines)
	if !ok {
		return false
	}
	s.active.st.Lines = lines
	return true
}
