package stats

import (
	"testing"

	"github.com/verte-zerg/flashcards/internal/model"
)

func TestTopCardsByReviews(t *testing.T) {
	aggs := []model.CardAggregate{
		{CardID: "b", Correct: 3, Incorrect: 1},
		{CardID: "a", Correct: 2, Incorrect: 2},
		{CardID: "c", Correct: 1, Incorrect: 0},
	}
	top := TopCardsByReviews(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(top))
	}
	if top[0] != "a" || top[1] != "b" {
		t.Fatalf("unexpected order: %v", top)
	}
}
