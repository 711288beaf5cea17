// Package ledger keeps the per-card score ledger: how often each flashcard was
// answered correctly or incorrectly, and when.
package ledger

import (
	"sort"
	"time"
)

// TimestampLayout is the on-disk timestamp format. Times are naive local time
// with second precision.
const TimestampLayout = "2006-01-02 15:04:05"

// CardStats accumulates the outcomes recorded for one card. Each timestamp
// slice always has exactly as many entries as its count.
type CardStats struct {
	CorrectCount        int
	IncorrectCount      int
	CorrectTimestamps   []time.Time
	IncorrectTimestamps []time.Time
}

// Reviews returns the total number of recorded outcomes.
func (s CardStats) Reviews() int {
	return s.CorrectCount + s.IncorrectCount
}

// LastReviewed returns the most recent outcome time, or the zero time.
func (s CardStats) LastReviewed() time.Time {
	var last time.Time
	if n := len(s.CorrectTimestamps); n > 0 {
		last = s.CorrectTimestamps[n-1]
	}
	if n := len(s.IncorrectTimestamps); n > 0 && s.IncorrectTimestamps[n-1].After(last) {
		last = s.IncorrectTimestamps[n-1]
	}
	return last
}

// Ledger maps card identifiers to their accumulated stats.
type Ledger map[string]CardStats

// CardIDs returns the ledger keys in sorted order.
func (l Ledger) CardIDs() []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RecordOutcome applies a single outcome for cardID at now and returns the
// ledger. The ledger is updated in place; a nil ledger is allocated.
// Recording the same outcome twice counts twice.
func RecordOutcome(l Ledger, cardID string, correct bool, now time.Time) Ledger {
	if l == nil {
		l = Ledger{}
	}
	stats, ok := l[cardID]
	if !ok {
		stats = CardStats{}
	}
	at := now.Truncate(time.Second)
	if correct {
		stats.CorrectCount++
		stats.CorrectTimestamps = append(stats.CorrectTimestamps, at)
	} else {
		stats.IncorrectCount++
		stats.IncorrectTimestamps = append(stats.IncorrectTimestamps, at)
	}
	l[cardID] = stats
	return l
}
