package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/flashcards/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		cards:     []model.Card{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}},
		index:     1,
		correct:   3,
		incorrect: 1,
	}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Card 2/4", "Session 3 correct", "1 incorrect", "75.0%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterFinished(t *testing.T) {
	m := &Model{cards: []model.Card{{ID: "1"}}, index: 1}
	if out := m.renderFooter(); !strings.Contains(out, "Finished 1 cards") {
		t.Fatalf("expected finished footer, got %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
