// Package textmetrics measures replacement-text widths for the commit pass.
// The mutation provider's own measurement is preferred when a font handle is
// available; this package supplies the fallbacks: AFM-derived tables for the
// standard output variants and a shaping-based measurer for embedded font
// bytes.
package textmetrics

import "github.com/wudi/pdfedit/style"

// Measurer returns the width of text drawn at a font size, in document
// points.
type Measurer interface {
	Width(text string, size float64) (float64, error)
}

// variantMeasurer measures with a 1/1000-em width table.
type variantMeasurer struct {
	widths *[95]int // runes 0x20..0x7E
	fixed  int      // nonzero for monospaced variants
}

func (m variantMeasurer) Width(text string, size float64) (float64, error) {
	total := 0
	for _, r := range text {
		if m.fixed != 0 {
			total += m.fixed
			continue
		}
		if r >= 0x20 && r <= 0x7E {
			total += m.widths[r-0x20]
		} else {
			total += defaultGlyphWidth
		}
	}
	return float64(total) / 1000.0 * size, nil
}

const defaultGlyphWidth = 556

// ForVariant returns the built-in measurer for an output font variant.
// Serif variants reuse the sans tables; the commit pass draws and measures
// with the same tables, so advances stay self-consistent.
func ForVariant(v style.Variant) Measurer {
	switch v {
	case style.Mono, style.MonoBold, style.MonoItalic, style.MonoBoldItalic:
		return variantMeasurer{fixed: 600}
	case style.SansBold, style.SansBoldItalic, style.SerifBold, style.SerifBoldItalic:
		return variantMeasurer{widths: &sansBoldWidths}
	default:
		return variantMeasurer{widths: &sansWidths}
	}
}

// Helvetica AFM advance widths for runes 0x20..0x7E.
var sansWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

// Helvetica-Bold AFM advance widths for runes 0x20..0x7E.
var sansBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}
