package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// wireStats is the on-disk shape of one card entry. Counts stay decimal
// strings for compatibility with existing answer files.
type wireStats struct {
	NumberCorrect      *string  `json:"numbercorrect"`
	NumberIncorrect    *string  `json:"numberincorrect"`
	DatetimesCorrect   []string `json:"datetimescorrect"`
	DatetimesIncorrect []string `json:"datetimesincorrect"`
}

// Encode serializes the ledger into the backing store format, formatting
// timestamps in loc. Timestamps must be whole seconds; anything finer would
// not survive a reload, so it is an *EncodeError.
func Encode(l Ledger, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	doc := make(map[string]wireStats, len(l))
	for id, stats := range l {
		if stats.CorrectCount < 0 || stats.IncorrectCount < 0 {
			return nil, &EncodeError{CardID: id, Err: fmt.Errorf("negative count")}
		}
		if len(stats.CorrectTimestamps) != stats.CorrectCount {
			return nil, &EncodeError{CardID: id, Err: fmt.Errorf("correct count %d does not match %d timestamps", stats.CorrectCount, len(stats.CorrectTimestamps))}
		}
		if len(stats.IncorrectTimestamps) != stats.IncorrectCount {
			return nil, &EncodeError{CardID: id, Err: fmt.Errorf("incorrect count %d does not match %d timestamps", stats.IncorrectCount, len(stats.IncorrectTimestamps))}
		}
		if err := checkPrecision(stats.CorrectTimestamps); err != nil {
			return nil, &EncodeError{CardID: id, Err: err}
		}
		if err := checkPrecision(stats.IncorrectTimestamps); err != nil {
			return nil, &EncodeError{CardID: id, Err: err}
		}
		correct := strconv.Itoa(stats.CorrectCount)
		incorrect := strconv.Itoa(stats.IncorrectCount)
		doc[id] = wireStats{
			NumberCorrect:      &correct,
			NumberIncorrect:    &incorrect,
			DatetimesCorrect:   formatTimes(stats.CorrectTimestamps, loc),
			DatetimesIncorrect: formatTimes(stats.IncorrectTimestamps, loc),
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &EncodeError{Err: err}
	}
	return append(data, '\n'), nil
}

// Decode parses a backing store document, reading timestamps in loc. Every
// failure wraps ErrInvalidDocument.
func Decode(data []byte, loc *time.Location) (Ledger, error) {
	if loc == nil {
		loc = time.Local
	}
	var doc map[string]*wireStats
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrInvalidDocument)
	}
	l := make(Ledger, len(doc))
	for id, entry := range doc {
		if entry == nil {
			return nil, fmt.Errorf("%w: card %q: entry is null", ErrInvalidDocument, id)
		}
		stats, err := decodeEntry(entry, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: card %q: %v", ErrInvalidDocument, id, err)
		}
		l[id] = stats
	}
	return l, nil
}

func decodeEntry(entry *wireStats, loc *time.Location) (CardStats, error) {
	correct, err := parseCount("numbercorrect", entry.NumberCorrect)
	if err != nil {
		return CardStats{}, err
	}
	incorrect, err := parseCount("numberincorrect", entry.NumberIncorrect)
	if err != nil {
		return CardStats{}, err
	}
	correctTimes, err := parseTimes("datetimescorrect", entry.DatetimesCorrect, loc)
	if err != nil {
		return CardStats{}, err
	}
	incorrectTimes, err := parseTimes("datetimesincorrect", entry.DatetimesIncorrect, loc)
	if err != nil {
		return CardStats{}, err
	}
	if len(correctTimes) != correct {
		return CardStats{}, fmt.Errorf("numbercorrect is %d but datetimescorrect has %d entries", correct, len(correctTimes))
	}
	if len(incorrectTimes) != incorrect {
		return CardStats{}, fmt.Errorf("numberincorrect is %d but datetimesincorrect has %d entries", incorrect, len(incorrectTimes))
	}
	return CardStats{
		CorrectCount:        correct,
		IncorrectCount:      incorrect,
		CorrectTimestamps:   correctTimes,
		IncorrectTimestamps: incorrectTimes,
	}, nil
}

func parseCount(field string, value *string) (int, error) {
	if value == nil {
		return 0, fmt.Errorf("%s is missing", field)
	}
	n, err := strconv.Atoi(*value)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a decimal integer", field, *value)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s is negative", field)
	}
	return n, nil
}

func parseTimes(field string, values []string, loc *time.Location) ([]time.Time, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		t, err := time.ParseInLocation(TimestampLayout, v, loc)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid timestamp %q", field, v)
		}
		out = append(out, t)
	}
	return out, nil
}

func formatTimes(values []time.Time, loc *time.Location) []string {
	out := make([]string, 0, len(values))
	for _, t := range values {
		out = append(out, t.In(loc).Format(TimestampLayout))
	}
	return out
}

func checkPrecision(values []time.Time) error {
	for _, t := range values {
		if t.Nanosecond() != 0 {
			return fmt.Errorf("timestamp %s has sub-second precision", t.Format(time.RFC3339Nano))
		}
	}
	return nil
}
