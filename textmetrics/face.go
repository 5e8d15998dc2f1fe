package textmetrics

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// FaceMeasurer measures text by shaping it against a parsed font face, for
// hosts that hand the engine real font bytes instead of a standard variant.
type FaceMeasurer struct {
	face   *gofont.Face
	shaper shaping.HarfbuzzShaper
}

// NewFaceMeasurer parses TTF/OTF font bytes into a measurer.
func NewFaceMeasurer(fontBytes []byte) (*FaceMeasurer, error) {
	face, err := gofont.ParseTTF(bytes.NewReader(fontBytes))
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FaceMeasurer{face: face}, nil
}

// Width shapes the text at 1000 units per em and scales the advance sum to
// the requested size.
func (m *FaceMeasurer) Width(text string, size float64) (float64, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0, nil
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      m.face,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    language.Latin,
		Language:  language.DefaultLanguage(),
	}
	output := m.shaper.Shape(input)
	total := 0.0
	for _, g := range output.Glyphs {
		total += float64(g.XAdvance) / 64.0
	}
	return total / 1000.0 * size, nil
}
