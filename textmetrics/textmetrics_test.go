package textmetrics

import (
	"math"
	"testing"

	"github.com/wudi/pdfedit/style"
)

func TestMonoIsFixedPitch(t *testing.T) {
	m := ForVariant(style.Mono)
	w1, err := m.Width("iiii", 10)
	if err != nil {
		t.Fatalf("width failed: %v", err)
	}
	w2, _ := m.Width("MMMM", 10)
	if w1 != w2 {
		t.Fatalf("mono widths differ: %v vs %v", w1, w2)
	}
	// 4 chars * 600/1000 * 10pt
	if math.Abs(w1-24) > 1e-9 {
		t.Fatalf("width = %v, want 24", w1)
	}
}

func TestSansWidthsScaleWithSize(t *testing.T) {
	m := ForVariant(style.Sans)
	w10, _ := m.Width("Hello", 10)
	w20, _ := m.Width("Hello", 20)
	if math.Abs(w20-2*w10) > 1e-9 {
		t.Fatalf("w20 = %v, want %v", w20, 2*w10)
	}
}

func TestBoldWiderThanRegular(t *testing.T) {
	reg, _ := ForVariant(style.Sans).Width("example text", 12)
	bold, _ := ForVariant(style.SansBold).Width("example text", 12)
	if bold <= reg {
		t.Fatalf("bold %v not wider than regular %v", bold, reg)
	}
}

func TestNonASCIIUsesDefaultWidth(t *testing.T) {
	m := ForVariant(style.Sans)
	w, _ := m.Width("é", 10) // é
	if math.Abs(w-5.56) > 1e-9 {
		t.Fatalf("width = %v, want 5.56", w)
	}
}

func TestSerifFallsBackToSansTables(t *testing.T) {
	a, _ := ForVariant(style.Serif).Width("abc", 12)
	b, _ := ForVariant(style.Sans).Width("abc", 12)
	if a != b {
		t.Fatalf("serif %v != sans %v", a, b)
	}
}

func TestEmptyString(t *testing.T) {
	w, err := ForVariant(style.Sans).Width("", 12)
	if err != nil || w != 0 {
		t.Fatalf("w=%v err=%v", w, err)
	}
}
