package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/wudi/pdfedit/coords"
)

// paint fills a pixel rectangle of the surface with c, bypassing Fill so the
// tests do not depend on the code under test.
func paint(s *SoftwareSurface, x0, y0, x1, y1 int, c Color) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.Image().SetNRGBA(x, y, color.NRGBA{c.R, c.G, c.B, 255})
		}
	}
}

func TestSampleBackgroundPicksDominantLightColor(t *testing.T) {
	s := NewSoftwareSurface(40, 10)
	cream := Color{250, 245, 230}
	paint(s, 0, 0, 40, 10, cream)
	// Some dark text pixels that must not win.
	paint(s, 5, 3, 15, 6, Color{20, 20, 20})

	got := SampleBackground(s, coords.Rect{W: 40, H: 10})
	if got != cream {
		t.Fatalf("background = %+v, want %+v", got, cream)
	}
}

func TestSampleBackgroundDefaultsToWhite(t *testing.T) {
	s := NewSoftwareSurface(10, 10)
	paint(s, 0, 0, 10, 10, Color{30, 30, 30}) // nothing light in the region
	if got := SampleBackground(s, coords.Rect{W: 10, H: 10}); got != White {
		t.Fatalf("background = %+v, want white", got)
	}
}

func TestSampleForegroundAdaptsThresholdToBackground(t *testing.T) {
	s := NewSoftwareSurface(30, 10)
	gray := Color{150, 150, 150} // luminance 150
	paint(s, 0, 0, 30, 10, gray)
	// Anti-aliased edge pixels at luminance 130: above 150-40=110, so they
	// must be excluded from the dark histogram.
	paint(s, 0, 0, 30, 2, Color{130, 130, 130})
	ink := Color{40, 40, 60}
	paint(s, 10, 4, 20, 8, ink)

	got := SampleForeground(s, coords.Rect{W: 30, H: 10}, gray)
	if got != ink {
		t.Fatalf("foreground = %+v, want %+v", got, ink)
	}
}

func TestSampleForegroundDefaultsToBlack(t *testing.T) {
	s := NewSoftwareSurface(10, 10) // all white, nothing below the cutoff
	if got := SampleForeground(s, coords.Rect{W: 10, H: 10}, White); got != Black {
		t.Fatalf("foreground = %+v, want black", got)
	}
}

func TestSampleForegroundNilSurface(t *testing.T) {
	if got := SampleForeground(nil, coords.Rect{W: 1, H: 1}, White); got != Black {
		t.Fatalf("foreground = %+v, want black", got)
	}
	if got := SampleBackground(nil, coords.Rect{W: 1, H: 1}); got != White {
		t.Fatalf("background = %+v, want white", got)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := NewSoftwareSurface(20, 20)
	ink := Color{10, 20, 30}
	paint(s, 2, 2, 8, 8, ink)
	region := coords.Rect{X: 0, Y: 0, W: 10, H: 10}

	snap, err := Capture(s, region)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if err := Fill(s, region, White); err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	if c := s.Image().NRGBAAt(4, 4); c.R != 255 {
		t.Fatalf("region not erased, pixel = %+v", c)
	}
	if err := Restore(s, snap); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if c := s.Image().NRGBAAt(4, 4); (Color{c.R, c.G, c.B}) != ink {
		t.Fatalf("pixel after restore = %+v, want %+v", c, ink)
	}
}

func TestSamplePixelColor(t *testing.T) {
	s := NewSoftwareSurface(5, 5)
	want := Color{1, 2, 3}
	paint(s, 3, 3, 4, 4, want)
	got, err := SamplePixelColor(s, coords.Point{X: 3, Y: 3})
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if got != want {
		t.Fatalf("color = %+v, want %+v", got, want)
	}
}

func TestFromImageConvertsToNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	s := FromImage(src)
	if b := s.Bounds(); b.W != 4 || b.H != 4 {
		t.Fatalf("bounds = %+v", b)
	}
}
