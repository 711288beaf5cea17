package tui

import "testing"

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("the quick brown fox", 10)
	want := "the quick\nbrown fox"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextHardBreaksLongWords(t *testing.T) {
	got := wrapText("abcdefghij", 4)
	want := "abcd\nefgh\nij"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("漢字漢字", 4)
	want := "漢字\n漢字"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextKeepsNewlines(t *testing.T) {
	got := wrapText("one\ntwo three", 5)
	want := "one\ntwo\nthree"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	if got := wrapText("unchanged text", 0); got != "unchanged text" {
		t.Fatalf("expected text unchanged, got %q", got)
	}
}
