// Package raster provides the rendered-page pixel capability used by editing
// sessions (region read/write and snapshot/restore) and the color sampling
// heuristics that infer text and background colors from the raster.
package raster

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/wudi/pdfedit/coords"
)

// Color is an 8-bit RGB color as sampled from or written to a raster.
type Color struct {
	R, G, B uint8
}

var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// Luminance returns the perceived brightness of c in [0,255].
func (c Color) Luminance() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// ErrNoSurface is returned by providers that cannot supply a raster surface.
// Callers fall back to white/black defaults when sampling is impossible.
var ErrNoSurface = errors.New("no raster surface available")

// Snapshot holds the pixels of a region captured before the region was
// erased, so deactivating a block can restore the page exactly.
type Snapshot struct {
	Rect   coords.Rect
	Pixels *image.NRGBA
}

// Surface is the capability an editing session needs from a rendered page.
// Any backend holding pixels (software buffer, GPU readback) can implement
// it. Rectangles are in screen space.
type Surface interface {
	Bounds() coords.Rect
	ReadRegion(rect coords.Rect) (*image.NRGBA, error)
	WriteRegion(rect coords.Rect, pixels *image.NRGBA) error
}

// Fill overwrites a region of the surface with a solid color.
func Fill(s Surface, rect coords.Rect, c Color) error {
	w, h := regionSize(rect)
	if w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.NRGBA{c.R, c.G, c.B, 255}}, image.Point{}, draw.Src)
	return s.WriteRegion(rect, img)
}

// Capture reads a region into a snapshot for later restoration.
func Capture(s Surface, rect coords.Rect) (Snapshot, error) {
	pix, err := s.ReadRegion(rect)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Rect: rect, Pixels: pix}, nil
}

// Restore writes a previously captured snapshot back to the surface.
func Restore(s Surface, snap Snapshot) error {
	if snap.Pixels == nil {
		return nil
	}
	return s.WriteRegion(snap.Rect, snap.Pixels)
}

// SamplePixelColor reads the color of a single pixel. It is the
// pure-computation fallback behind the optional host eyedropper capability.
func SamplePixelColor(s Surface, p coords.Point) (Color, error) {
	img, err := s.ReadRegion(coords.Rect{X: p.X, Y: p.Y, W: 1, H: 1})
	if err != nil {
		return White, err
	}
	if img.Bounds().Empty() {
		return White, nil
	}
	c := img.NRGBAAt(img.Bounds().Min.X, img.Bounds().Min.Y)
	return Color{c.R, c.G, c.B}, nil
}

// ColorPicker is the optional host-provided eyedropper. Hosts without a
// native picker can wrap SamplePixelColor.
type ColorPicker func(p coords.Point) (Color, error)

func regionSize(rect coords.Rect) (int, int) {
	return int(rect.W + 0.5), int(rect.H + 0.5)
}

// SoftwareSurface is the default Surface backed by an in-memory pixel buffer.
type SoftwareSurface struct {
	img *image.NRGBA
}

// NewSoftwareSurface allocates a white surface of the given pixel size.
func NewSoftwareSurface(width, height int) *SoftwareSurface {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.NRGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
	return &SoftwareSurface{img: img}
}

// FromImage wraps an existing decoded page raster.
func FromImage(src image.Image) *SoftwareSurface {
	if nrgba, ok := src.(*image.NRGBA); ok {
		return &SoftwareSurface{img: nrgba}
	}
	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return &SoftwareSurface{img: img}
}

func (s *SoftwareSurface) Bounds() coords.Rect {
	b := s.img.Bounds()
	return coords.Rect{W: float64(b.Dx()), H: float64(b.Dy())}
}

func (s *SoftwareSurface) ReadRegion(rect coords.Rect) (*image.NRGBA, error) {
	clip := s.clip(rect)
	out := image.NewNRGBA(image.Rect(0, 0, clip.Dx(), clip.Dy()))
	draw.Draw(out, out.Bounds(), s.img, clip.Min, draw.Src)
	return out, nil
}

func (s *SoftwareSurface) WriteRegion(rect coords.Rect, pixels *image.NRGBA) error {
	if pixels == nil {
		return errors.New("nil pixels")
	}
	clip := s.clip(rect)
	draw.Draw(s.img, clip, pixels, pixels.Bounds().Min, draw.Src)
	return nil
}

// Image exposes the backing buffer, primarily for tests and host blitting.
func (s *SoftwareSurface) Image() *image.NRGBA { return s.img }

func (s *SoftwareSurface) clip(rect coords.Rect) image.Rectangle {
	r := image.Rect(int(rect.X+0.5), int(rect.Y+0.5), int(rect.X+rect.W+0.5), int(rect.Y+rect.H+0.5))
	return r.Intersect(s.img.Bounds())
}
