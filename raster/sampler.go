package raster

import (
	"image"

	"github.com/wudi/pdfedit/coords"
)

// Sampling thresholds. These are tuned on typical prose and table layouts
// and are exposed so hosts can adjust them for unusual material.
const (
	// LightLuminance is the minimum luminance for a pixel to count as
	// background.
	LightLuminance = 150.0
	// ForegroundMargin is subtracted from the background luminance to get
	// the cutoff below which pixels count as text. The margin keeps
	// anti-aliased edge pixels out of the foreground histogram.
	ForegroundMargin = 40.0
)

// histogram buckets colors by their high nibbles so near-identical shades
// collapse into one bucket. The first exact color seen in a bucket is kept
// as its representative.
type histogram struct {
	counts map[uint32]int
	rep    map[uint32]Color
	best   uint32
	max    int
}

func newHistogram() *histogram {
	return &histogram{counts: make(map[uint32]int), rep: make(map[uint32]Color)}
}

func (h *histogram) add(c Color) {
	key := uint32(c.R>>4)<<8 | uint32(c.G>>4)<<4 | uint32(c.B>>4)
	if _, ok := h.rep[key]; !ok {
		h.rep[key] = c
	}
	h.counts[key]++
	if h.counts[key] > h.max {
		h.max = h.counts[key]
		h.best = key
	}
}

func (h *histogram) mostFrequent(fallback Color) Color {
	if h.max == 0 {
		return fallback
	}
	return h.rep[h.best]
}

// SampleBackground infers the background color beneath a screen-space region
// by histogramming its light pixels. It must run before the region's pixels
// are overwritten by the editing session.
func SampleBackground(s Surface, region coords.Rect) Color {
	img := readOrNil(s, region)
	if img == nil {
		return White
	}
	h := newHistogram()
	forEachPixel(img, func(c Color) {
		if c.Luminance() >= LightLuminance {
			h.add(c)
		}
	})
	return h.mostFrequent(White)
}

// SampleForeground infers the text color inside a region given the already
// sampled background. The skip threshold adapts to the background so shaded
// table cells still separate ink from fill.
func SampleForeground(s Surface, region coords.Rect, background Color) Color {
	img := readOrNil(s, region)
	if img == nil {
		return Black
	}
	cutoff := background.Luminance() - ForegroundMargin
	h := newHistogram()
	forEachPixel(img, func(c Color) {
		if c.Luminance() < cutoff {
			h.add(c)
		}
	})
	return h.mostFrequent(Black)
}

func readOrNil(s Surface, region coords.Rect) *image.NRGBA {
	if s == nil {
		return nil
	}
	img, err := s.ReadRegion(region)
	if err != nil {
		return nil
	}
	return img
}

func forEachPixel(img *image.NRGBA, fn func(Color)) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			fn(Color{c.R, c.G, c.B})
		}
	}
}
