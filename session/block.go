package session

import (
	"fmt"

	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/layout"
	"github.com/wudi/pdfedit/raster"
	"github.com/wudi/pdfedit/richtext"
	"github.com/wudi/pdfedit/style"
)

// State is a block's position in the Zone -> Active -> Deactivated machine.
type State int

const (
	// StateZone is the initial inert state: a clickable placeholder over
	// the paragraph's bounding box.
	StateZone State = iota
	// StateActive means the block owns the raster region and shows the
	// editable overlay.
	StateActive
	// StateDeactivated means the block was edited and released; its dirty
	// state lives in the session store.
	StateDeactivated
)

func (s State) String() string {
	switch s {
	case StateZone:
		return "zone"
	case StateActive:
		return "active"
	case StateDeactivated:
		return "deactivated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// LineState is the live editable state of one line inside an active block,
// plus the captured originals the deactivation diff runs against.
type LineState struct {
	// Runs is the live rich-text content of the overlay.
	Runs []richtext.Run

	// FontSizeOverride, ColorOverride and FontFamilyOverride are user-set;
	// zero values mean "keep the original".
	FontSizeOverride   float64
	ColorOverride      *raster.Color
	FontFamilyOverride string

	// MatchedBackground and MatchedForeground are sampled from the raster
	// before the line was erased, never user-set.
	MatchedBackground raster.Color
	MatchedForeground raster.Color

	// Original geometry and typography, captured at activation.
	DocBBox    coords.Rect
	ScreenBBox coords.Rect
	FontID     string
	FontSize   float64

	origRuns []richtext.Run
}

// Changed reports whether the line differs from its captured original.
func (l *LineState) Changed() bool {
	if !richtext.Equal(l.Runs, l.origRuns) {
		return true
	}
	return l.FontSizeOverride != 0 || l.ColorOverride != nil || l.FontFamilyOverride != ""
}

// clone deep-copies the line state for undo snapshots and dirty records.
func (l *LineState) clone() LineState {
	out := *l
	out.Runs = append([]richtext.Run(nil), l.Runs...)
	out.origRuns = append([]richtext.Run(nil), l.origRuns...)
	if l.ColorOverride != nil {
		c := *l.ColorOverride
		out.ColorOverride = &c
	}
	return out
}

// BlockState is the persisted editable state of one block. It is created on
// first activation, mutated only while the block is active, and consumed by
// the commit engine.
type BlockState struct {
	Key   string
	Dirty bool
	Lines []LineState

	// Block-level matched colors, taken from the first line's samples.
	MatchedTextColor       raster.Color
	MatchedBackgroundColor raster.Color

	snapshot raster.Snapshot
}

func (b *BlockState) clone() *BlockState {
	out := &BlockState{
		Key:                    b.Key,
		Dirty:                  b.Dirty,
		MatchedTextColor:       b.MatchedTextColor,
		MatchedBackgroundColor: b.MatchedBackgroundColor,
		Lines:                  make([]LineState, len(b.Lines)),
	}
	for i := range b.Lines {
		out.Lines[i] = b.Lines[i].clone()
	}
	return out
}

// Block ties a reconstructed paragraph to its editing state machine.
type Block struct {
	para  layout.Paragraph
	state State
	st    *BlockState
}

// State returns the block's current machine state.
func (b *Block) State() State { return b.state }

// Paragraph returns the reconstructed paragraph this block edits.
func (b *Block) Paragraph() layout.Paragraph { return b.para }

// Zone returns the clickable screen-space bounding box.
func (b *Block) Zone() coords.Rect { return b.para.ScreenBBox() }

// Key identifies the block across activations by its document geometry.
func (b *Block) Key() string {
	box := b.para.ScreenBBox()
	return fmt.Sprintf("%.1f:%.1f:%.1f:%.1f", box.X, box.Y, box.W, box.H)
}

// captureState builds the initial block state from the paragraph: each
// line's runs become rich-text runs with emphasis resolved from the nominal
// font identity and style hints.
func captureState(para layout.Paragraph, key string) *BlockState {
	st := &BlockState{Key: key, Lines: make([]LineState, 0, len(para.Lines))}
	for _, ln := range para.Lines {
		var runs []richtext.Run
		for _, r := range ln.Runs {
			bold, italic := style.ResolveStyle(r.NominalFontID, r.Hint)
			runs = append(runs, richtext.Run{Text: r.Text, Bold: bold, Italic: italic})
		}
		if runs == nil && ln.Text != "" {
			runs = richtext.Plain(ln.Text)
		}
		runs = richtext.Normalize(runs)
		st.Lines = append(st.Lines, LineState{
			Runs:       runs,
			origRuns:   append([]richtext.Run(nil), runs...),
			DocBBox:    ln.DocBBox,
			ScreenBBox: ln.ScreenBBox,
			FontID:     ln.DominantFontID,
			FontSize:   ln.DominantFontSize,
		})
	}
	return st
}
