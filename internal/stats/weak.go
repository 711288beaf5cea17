package stats

import (
	"sort"

	"github.com/verte-zerg/flashcards/internal/model"
)

// SelectWeakCards selects the lowest-accuracy cards from aggregates.
// A top of zero or less selects every card.
func SelectWeakCards(aggs []model.CardAggregate, top int) map[string]struct{} {
	weakSet := map[string]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.CardAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Correct+agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := Accuracy(candidates[i].Correct, candidates[i].Incorrect)
		aj := Accuracy(candidates[j].Correct, candidates[j].Incorrect)
		if ai == aj {
			return candidates[i].CardID < candidates[j].CardID
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		weakSet[candidates[i].CardID] = struct{}{}
	}
	return weakSet
}
