package coords

import (
	"math"
	"testing"
)

func TestMatrixMultiplyOrder(t *testing.T) {
	// Scale then translate: the point (1,1) scales to (2,3) and then moves.
	m := Scale(2, 3).Multiply(Translate(10, 20))
	got := m.Transform(Point{1, 1})
	want := Point{12, 23}
	if got != want {
		t.Fatalf("transform = %+v, want %+v", got, want)
	}
}

func TestMatrixInverseRoundTrip(t *testing.T) {
	m := Translate(5, -3).Multiply(Scale(2, 2)).Multiply(Rotate(0.3))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("inverse failed: %v", err)
	}
	p := Point{7, 11}
	back := inv.Transform(m.Transform(p))
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Fatalf("round trip = %+v, want %+v", back, p)
	}
}

func TestMatrixInverseSingular(t *testing.T) {
	if _, err := (Matrix{0, 0, 0, 0, 1, 2}).Inverse(); err == nil {
		t.Fatal("expected error for singular matrix")
	}
}

func TestViewportRoundTrip(t *testing.T) {
	vp := Viewport{Zoom: 1.5, OffsetX: 10, OffsetY: 20, PageHeight: 792}
	doc := Point{100, 700}
	back := vp.ToDoc(vp.ToScreen(doc))
	if math.Abs(back.X-doc.X) > 1e-9 || math.Abs(back.Y-doc.Y) > 1e-9 {
		t.Fatalf("round trip = %+v, want %+v", back, doc)
	}
}

func TestViewportFlipsY(t *testing.T) {
	vp := Viewport{Zoom: 1, PageHeight: 792}
	top := vp.ToScreen(Point{0, 792})
	bottom := vp.ToScreen(Point{0, 0})
	if top.Y != 0 || bottom.Y != 792 {
		t.Fatalf("top.Y=%v bottom.Y=%v, want 0 and 792", top.Y, bottom.Y)
	}
}

func TestViewportZeroZoomDefaultsToOne(t *testing.T) {
	var vp Viewport
	got := vp.ToScreen(Point{5, 0})
	if got.X != 5 {
		t.Fatalf("X = %v, want 5", got.X)
	}
}

func TestRectUnionExpand(t *testing.T) {
	u := Rect{0, 0, 10, 10}.Union(Rect{5, 5, 10, 10})
	if u != (Rect{0, 0, 15, 15}) {
		t.Fatalf("union = %+v", u)
	}
	e := Rect{10, 10, 10, 10}.Expand(2)
	if e != (Rect{8, 8, 14, 14}) {
		t.Fatalf("expand = %+v", e)
	}
}

func TestStackSaveRestore(t *testing.T) {
	s := NewStack()
	s.Save()
	s.Concat(Scale(100, 1))
	s.Concat(Translate(0, 700))
	placement := UnitSquareBounds(s.Current())
	if math.Abs(placement.W-100) > 1e-9 {
		t.Fatalf("W = %v, want 100", placement.W)
	}
	if math.Abs(placement.Y-700) > 1e-9 {
		t.Fatalf("Y = %v, want 700", placement.Y)
	}
	if err := s.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if s.Current() != Identity() {
		t.Fatalf("current = %+v, want identity", s.Current())
	}
	if err := s.Restore(); err != ErrStackEmpty {
		t.Fatalf("err = %v, want ErrStackEmpty", err)
	}
}
