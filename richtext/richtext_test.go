package richtext

import (
	"reflect"
	"testing"
)

func TestInsertInheritsStyle(t *testing.T) {
	runs := []Run{{Text: "Hello ", Bold: true}, {Text: "World"}}
	got := Insert(runs, 6, "big ")
	want := []Run{{Text: "Hello big ", Bold: true}, {Text: "World"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestInsertAtStart(t *testing.T) {
	got := Insert([]Run{{Text: "World", Italic: true}}, 0, "Hello ")
	want := []Run{{Text: "Hello World", Italic: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestInsertIntoEmpty(t *testing.T) {
	got := Insert(nil, 0, "fresh")
	if TextOf(got) != "fresh" || got[0].Bold || got[0].Italic {
		t.Fatalf("got %+v", got)
	}
}

func TestDeleteAcrossRuns(t *testing.T) {
	runs := []Run{{Text: "Hello "}, {Text: "World", Bold: true}}
	got := Delete(runs, 4, 8)
	want := []Run{{Text: "Hell"}, {Text: "rld", Bold: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDeleteClampsRange(t *testing.T) {
	got := Delete([]Run{{Text: "abc"}}, -5, 99)
	if len(got) != 0 {
		t.Fatalf("got %+v, want empty", got)
	}
}

func TestToggleBoldMixedSelectionBoldsAll(t *testing.T) {
	runs := []Run{{Text: "ab", Bold: true}, {Text: "cd"}}
	got := ToggleBold(runs, 0, 4)
	want := []Run{{Text: "abcd", Bold: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestToggleBoldUniformSelectionUnbolds(t *testing.T) {
	runs := []Run{{Text: "abcd", Bold: true}}
	got := ToggleBold(runs, 0, 4)
	want := []Run{{Text: "abcd"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestToggleItalicPartial(t *testing.T) {
	got := ToggleItalic([]Run{{Text: "Hello World"}}, 6, 11)
	want := []Run{{Text: "Hello "}, {Text: "World", Italic: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestEqualIgnoresRunSplits(t *testing.T) {
	a := []Run{{Text: "Hel", Bold: true}, {Text: "lo", Bold: true}}
	b := []Run{{Text: "Hello", Bold: true}}
	if !Equal(a, b) {
		t.Fatal("split runs reported unequal")
	}
	c := []Run{{Text: "Hello"}}
	if Equal(a, c) {
		t.Fatal("different styling reported equal")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Run{{Text: "a"}, {Text: ""}, {Text: "b"}, {Text: "c", Bold: true}})
	want := []Run{{Text: "ab"}, {Text: "c", Bold: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFromMarkdown(t *testing.T) {
	lines := FromMarkdown("plain **bold** and *italic*\n\nsecond paragraph")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	want := []Run{
		{Text: "plain "},
		{Text: "bold", Bold: true},
		{Text: " and "},
		{Text: "italic", Italic: true},
	}
	if !reflect.DeepEqual(lines[0], want) {
		t.Fatalf("line 0 = %+v, want %+v", lines[0], want)
	}
	if TextOf(lines[1]) != "second paragraph" {
		t.Fatalf("line 1 = %+v", lines[1])
	}
}

func TestFromMarkdownNestedEmphasis(t *testing.T) {
	runs := FromMarkdownLine("***both***")
	if len(runs) != 1 || !runs[0].Bold || !runs[0].Italic {
		t.Fatalf("got %+v", runs)
	}
}

func TestFromHTML(t *testing.T) {
	lines, err := FromHTML(`<p>plain <b>bold</b> and <em>italic</em></p><p>second</p>`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	want := []Run{
		{Text: "plain "},
		{Text: "bold", Bold: true},
		{Text: " and "},
		{Text: "italic", Italic: true},
	}
	if !reflect.DeepEqual(lines[0], want) {
		t.Fatalf("line 0 = %+v, want %+v", lines[0], want)
	}
}

func TestFromHTMLBreaksOnBr(t *testing.T) {
	lines, err := FromHTML(`first<br>second`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(lines) != 2 || TextOf(lines[0]) != "first" || TextOf(lines[1]) != "second" {
		t.Fatalf("got %+v", lines)
	}
}
