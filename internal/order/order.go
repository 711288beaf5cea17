// Package order arranges deck cards for a review session.
package order

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/flashcards/internal/model"
)

// Generator produces card orderings.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Sequential returns a copy of cards in deck order.
func (g *Generator) Sequential(cards []model.Card) []model.Card {
	out := make([]model.Card, len(cards))
	copy(out, cards)
	return out
}

// Shuffle returns a uniform random permutation of cards.
func (g *Generator) Shuffle(cards []model.Card) []model.Card {
	out := g.Sequential(cards)
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Weighted returns a permutation drawn without replacement where cards in
// weakSet weigh 1+factor and every other card weighs 1.
func (g *Generator) Weighted(cards []model.Card, weakSet map[string]struct{}, factor float64) []model.Card {
	pool := g.Sequential(cards)
	weights := make([]float64, len(pool))
	total := 0.0
	for i, card := range pool {
		w := 1.0
		if _, ok := weakSet[card.ID]; ok {
			w += factor
		}
		weights[i] = w
		total += w
	}

	out := make([]model.Card, 0, len(pool))
	for len(pool) > 0 {
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(pool) - 1
		for j, w := range weights {
			acc += w
			if r < acc {
				idx = j
				break
			}
		}
		out = append(out, pool[idx])
		total -= weights[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return out
}
