package stats

import (
	"context"

	"github.com/verte-zerg/flashcards/internal/ledger"
	"github.com/verte-zerg/flashcards/internal/model"
)

// SessionLister lists stored review sessions.
type SessionLister interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Cards    []model.CardAggregate
	Weak     []string
}

// BuildReport combines stored sessions with the ledger's card aggregates.
func BuildReport(ctx context.Context, sessions SessionLister, l ledger.Ledger, cfg model.StatsConfig) (Report, error) {
	list, err := sessions.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	cards := CardAggregates(l, cfg.Since)
	weakSet := SelectWeakCards(cards, cfg.Top)
	weak := make([]string, 0, len(weakSet))
	for _, id := range orderedByAccuracy(cards) {
		if _, ok := weakSet[id]; ok {
			weak = append(weak, id)
		}
	}
	return Report{
		Sessions: list,
		Cards:    cards,
		Weak:     weak,
	}, nil
}

func orderedByAccuracy(cards []model.CardAggregate) []string {
	_, rows := CardRows(cards)
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row[0]
	}
	return ids
}
