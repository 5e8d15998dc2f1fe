// Package coords provides the coordinate math shared by the editing engine:
// affine matrices for content-stream transform tracking and the viewport
// mapping between document space and rendered screen space.
package coords

import (
	"errors"
	"math"
)

// Matrix is an affine transform in the usual PDF order [a b c d e f].
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Multiply returns m*o, i.e. m applied first and o second.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Point is a 2D point in either document or screen space.
type Point struct{ X, Y float64 }

// Transform applies the matrix to p.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Inverse returns the inverse transform, or an error for a singular matrix.
func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, errors.New("matrix singular")
	}
	return Matrix{
		m[3] / det, -m[1] / det,
		-m[2] / det, m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate returns a rotation matrix for angle in radians.
func Rotate(angle float64) Matrix {
	c := math.Cos(angle)
	s := math.Sin(angle)
	return Matrix{c, s, -s, c, 0, 0}
}

// Rect is an axis-aligned rectangle: lower-left corner plus extent in
// document space, upper-left corner plus extent in screen space.
type Rect struct {
	X, Y, W, H float64
}

// Left returns the minimum X edge.
func (r Rect) Left() float64 { return r.X }

// Right returns the maximum X edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.W <= 0 && r.H <= 0 {
		return o
	}
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	x2 := math.Max(r.X+r.W, o.X+o.W)
	y2 := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x, Y: y, W: x2 - x, H: y2 - y}
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Expand grows the rectangle by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, W: r.W + 2*pad, H: r.H + 2*pad}
}

// BoundsOf returns the bounding rectangle of the given points.
func BoundsOf(points ...Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// UnitSquareBounds maps the unit square through m and returns the bounding
// rectangle of the result. Image XObjects paint into the unit square, so this
// is the placement of an image drawn under m.
func UnitSquareBounds(m Matrix) Rect {
	return BoundsOf(
		m.Transform(Point{0, 0}),
		m.Transform(Point{1, 0}),
		m.Transform(Point{0, 1}),
		m.Transform(Point{1, 1}),
	)
}
