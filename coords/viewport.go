package coords

// Viewport maps between document space (origin bottom-left, y up, points)
// and the rendered screen space of a page (origin top-left, y down, pixels).
// Zoom already includes the device pixel ratio of the raster surface.
type Viewport struct {
	Zoom       float64
	OffsetX    float64
	OffsetY    float64
	PageWidth  float64 // in document points
	PageHeight float64 // in document points
}

// ScreenPageWidth returns the rendered page width in screen pixels.
func (v Viewport) ScreenPageWidth() float64 { return v.PageWidth * v.scale() }

// scale returns the effective zoom, defaulting to 1 for a zero viewport.
func (v Viewport) scale() float64 {
	if v.Zoom == 0 {
		return 1
	}
	return v.Zoom
}

// ToScreen converts a document-space point to screen space.
func (v Viewport) ToScreen(p Point) Point {
	s := v.scale()
	return Point{
		X: p.X*s + v.OffsetX,
		Y: (v.PageHeight-p.Y)*s + v.OffsetY,
	}
}

// ToDoc converts a screen-space point back to document space.
func (v Viewport) ToDoc(p Point) Point {
	s := v.scale()
	return Point{
		X: (p.X - v.OffsetX) / s,
		Y: v.PageHeight - (p.Y-v.OffsetY)/s,
	}
}

// RectToScreen converts a document-space rectangle to screen space.
func (v Viewport) RectToScreen(r Rect) Rect {
	tl := v.ToScreen(Point{X: r.X, Y: r.Y + r.H})
	s := v.scale()
	return Rect{X: tl.X, Y: tl.Y, W: r.W * s, H: r.H * s}
}

// RectToDoc converts a screen-space rectangle to document space.
func (v Viewport) RectToDoc(r Rect) Rect {
	bl := v.ToDoc(Point{X: r.X, Y: r.Y + r.H})
	s := v.scale()
	return Rect{X: bl.X, Y: bl.Y, W: r.W / s, H: r.H / s}
}
