// Package deck loads flashcard decks from files.
package deck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/flashcards/internal/model"
)

type deckFile struct {
	Cards []cardEntry `json:"cards"`
}

type cardEntry struct {
	Name     string          `json:"name"`
	Answer   string          `json:"answer"`
	Hint     string          `json:"hint"`
	Evidence string          `json:"evidence"`
	Index    json.RawMessage `json:"index"`
}

// LoadDeck reads the ordered card list from the JSON deck at path.
func LoadDeck(path string) ([]model.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file deckFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode deck: %w", err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("deck is empty")
	}

	cards := make([]model.Card, 0, len(file.Cards))
	seen := make(map[string]int, len(file.Cards))
	for i, entry := range file.Cards {
		id, err := cardID(entry.Index)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i+1, err)
		}
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("card %d: index %q already used by card %d", i+1, id, prev)
		}
		seen[id] = i + 1
		cards = append(cards, model.Card{
			ID:       id,
			Prompt:   entry.Name,
			Answer:   entry.Answer,
			Hint:     entry.Hint,
			Evidence: entry.Evidence,
		})
	}
	return cards, nil
}

// cardID accepts either a JSON string or a JSON number. Numbers keep their
// literal text, which is how they appear as keys in the ledger.
func cardID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("index is missing")
	}
	var id string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", fmt.Errorf("invalid index: %w", err)
		}
	} else {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return "", fmt.Errorf("index must be a string or number")
		}
		id = num.String()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("index is empty")
	}
	return id, nil
}
