package order

import (
	"testing"

	"github.com/verte-zerg/flashcards/internal/model"
)

func testCards(ids ...string) []model.Card {
	cards := make([]model.Card, 0, len(ids))
	for _, id := range ids {
		cards = append(cards, model.Card{ID: id})
	}
	return cards
}

func assertPermutation(t *testing.T, in, out []model.Card) {
	t.Helper()
	if len(in) != len(out) {
		t.Fatalf("expected %d cards, got %d", len(in), len(out))
	}
	counts := map[string]int{}
	for _, c := range in {
		counts[c.ID]++
	}
	for _, c := range out {
		counts[c.ID]--
	}
	for id, n := range counts {
		if n != 0 {
			t.Fatalf("card %q count off by %d", id, n)
		}
	}
}

func TestSequentialCopies(t *testing.T) {
	cards := testCards("a", "b", "c")
	out := NewWithSeed(1).Sequential(cards)
	out[0].ID = "z"
	if cards[0].ID != "a" {
		t.Fatalf("sequential must not alias the input")
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	cards := testCards("a", "b", "c", "d", "e", "f")
	out := NewWithSeed(42).Shuffle(cards)
	assertPermutation(t, cards, out)
	if cards[0].ID != "a" || cards[5].ID != "f" {
		t.Fatalf("shuffle must not reorder the input")
	}
}

func TestWeightedIsPermutation(t *testing.T) {
	cards := testCards("a", "b", "c", "d")
	out := NewWithSeed(7).Weighted(cards, map[string]struct{}{"c": {}}, 3)
	assertPermutation(t, cards, out)
}

func TestWeightedFavoursWeakCards(t *testing.T) {
	cards := testCards("a", "b", "c", "d", "e")
	weak := map[string]struct{}{"e": {}}
	gen := NewWithSeed(99)
	first := 0
	const rounds = 2000
	for i := 0; i < rounds; i++ {
		if gen.Weighted(cards, weak, 10)[0].ID == "e" {
			first++
		}
	}
	// Expected share is 11/15; uniform would be 1/5.
	if first < rounds/2 {
		t.Fatalf("expected weak card first in most rounds, got %d/%d", first, rounds)
	}
}
