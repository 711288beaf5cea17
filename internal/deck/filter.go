package deck

import "github.com/verte-zerg/flashcards/internal/model"

// FilterFunc returns true when a card should be kept.
type FilterFunc func(model.Card) bool

// Filter returns the cards accepted by keep, preserving order.
func Filter(cards []model.Card, keep FilterFunc) []model.Card {
	out := make([]model.Card, 0, len(cards))
	for _, card := range cards {
		if keep(card) {
			out = append(out, card)
		}
	}
	return out
}

// WeakOnly keeps cards whose id is in weakSet.
func WeakOnly(weakSet map[string]struct{}) FilterFunc {
	return func(card model.Card) bool {
		_, ok := weakSet[card.ID]
		return ok
	}
}
