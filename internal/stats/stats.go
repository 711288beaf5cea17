// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/flashcards/internal/ledger"
	"github.com/verte-zerg/flashcards/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Accuracy returns correct/(correct+incorrect), or 0 when nothing was answered.
func Accuracy(correct, incorrect int) float64 {
	total := correct + incorrect
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// SessionMetrics computes answers per minute and accuracy for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (apm, accuracy float64) {
	accuracy = Accuracy(correct, incorrect)
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	apm = float64(correct+incorrect) / minutes
	return apm, accuracy
}

// CardAggregates summarizes every ledger entry. With since set, only
// outcomes recorded at or after since are counted and cards without such
// outcomes are left out.
func CardAggregates(l ledger.Ledger, since *time.Time) []model.CardAggregate {
	aggs := make([]model.CardAggregate, 0, len(l))
	for _, id := range l.CardIDs() {
		entry := l[id]
		agg := model.CardAggregate{CardID: id}
		if since == nil {
			agg.Correct = entry.CorrectCount
			agg.Incorrect = entry.IncorrectCount
			agg.LastReviewed = entry.LastReviewed()
		} else {
			agg.Correct, agg.LastReviewed = countSince(entry.CorrectTimestamps, *since, agg.LastReviewed)
			agg.Incorrect, agg.LastReviewed = countSince(entry.IncorrectTimestamps, *since, agg.LastReviewed)
			if agg.Correct+agg.Incorrect == 0 {
				continue
			}
		}
		aggs = append(aggs, agg)
	}
	return aggs
}

func countSince(times []time.Time, since, last time.Time) (int, time.Time) {
	n := 0
	for _, t := range times {
		if t.Before(since) {
			continue
		}
		n++
		if t.After(last) {
			last = t
		}
	}
	return n, last
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints totals across the ledger and stored sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate, cards []model.CardAggregate) error {
	var correct, incorrect int
	for _, c := range cards {
		correct += c.Correct
		incorrect += c.Incorrect
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Cards reviewed: %d", len(cards)),
		fmt.Sprintf("Answers: %d (%d correct, %d incorrect)", correct+incorrect, correct, incorrect),
		fmt.Sprintf("Accuracy: %.2f%%", Accuracy(correct, incorrect)*100),
		fmt.Sprintf("Sessions: %d", len(sessions)),
	}
	if len(sessions) > 0 {
		var totalAPM float64
		for _, s := range sessions {
			apm, _ := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
			totalAPM += apm
		}
		lines = append(lines, fmt.Sprintf("Avg answers/min: %.2f", totalAPM/float64(len(sessions))))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurve prints the per-session accuracy trend as a sparkline.
func RenderCurve(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		accs[i] = Accuracy(s.Correct, s.Incorrect) * 100
	}
	accs = MovingAverage(accs, window)
	if width > 0 && len(accs) > width {
		accs = accs[len(accs)-width:]
	}
	minVal, maxVal := accs[0], accs[0]
	for _, v := range accs {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if _, err := fmt.Fprintf(w, "Accuracy trend (window %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "[%s]\n", Sparkline(accs)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "min %.1f%%  max %.1f%%  last %.1f%%\n\n", minVal, maxVal, accs[len(accs)-1])
	return err
}

// CardRows sorts aggregates by lowest accuracy and formats table cells.
func CardRows(aggs []model.CardAggregate) (headers []string, rows [][]string) {
	sorted := make([]model.CardAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ai := Accuracy(sorted[i].Correct, sorted[i].Incorrect)
		aj := Accuracy(sorted[j].Correct, sorted[j].Incorrect)
		if ai == aj {
			return sorted[i].CardID < sorted[j].CardID
		}
		return ai < aj
	})
	headers = []string{"Card", "Accuracy", "Correct", "Incorrect", "Last Reviewed"}
	rows = make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		last := "-"
		if !agg.LastReviewed.IsZero() {
			last = agg.LastReviewed.Format(ledger.TimestampLayout)
		}
		rows = append(rows, []string{
			agg.CardID,
			fmt.Sprintf("%.2f%%", Accuracy(agg.Correct, agg.Incorrect)*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			last,
		})
	}
	return headers, rows
}

// RenderCardTable prints per-card aggregates, weakest first. Accuracy is
// coloured when w is a terminal or forceColor is set.
func RenderCardTable(w io.Writer, aggs []model.CardAggregate, forceColor bool) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No card stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Card"); err != nil {
		return err
	}
	headers, rows := CardRows(aggs)
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	lines := formatTable(headers, rows, rightAlign)
	useColor := shouldUseColor(w, forceColor)
	for i, line := range lines {
		if useColor && i > 0 {
			agg := rowAggregate(aggs, rows[i-1][0])
			line = accuracyColor(Accuracy(agg.Correct, agg.Incorrect)) + line + colorReset
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func rowAggregate(aggs []model.CardAggregate, id string) model.CardAggregate {
	for _, agg := range aggs {
		if agg.CardID == id {
			return agg
		}
	}
	return model.CardAggregate{}
}
