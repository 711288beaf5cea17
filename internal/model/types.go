// Package model defines shared data structures.
package model

import "time"

// Card is a single flashcard from a deck.
type Card struct {
	ID       string
	Prompt   string
	Answer   string
	Hint     string
	Evidence string
}

// Config defines review settings.
type Config struct {
	DeckPath   string
	LedgerPath string
	Shuffle    bool
	FocusWeak  bool
	WeakOnly   bool
	WeakTop    int
	WeakFactor float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// SessionStats captures a completed review session.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	DeckPath   string
	CardsSeen  int
	Correct    int
	Incorrect  int
	DurationMs int64
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	CardsSeen  int
	Correct    int
	Incorrect  int
	DurationMs int64
}

// CardAggregate summarizes one card's ledger entry for reporting.
type CardAggregate struct {
	CardID       string
	Correct      int
	Incorrect    int
	LastReviewed time.Time
}
