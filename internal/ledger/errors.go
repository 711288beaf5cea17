package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreMissing is returned when the backing store file does not exist.
	// Run `flashcards init` to create an empty ledger document.
	ErrStoreMissing = errors.New("ledger store does not exist")

	// ErrInvalidDocument is returned when the backing store is not a valid ledger document.
	ErrInvalidDocument = errors.New("invalid ledger document")
)

// StorageError reports a backing store that is missing, unreadable, malformed or could not be written.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// EncodeError reports a ledger that could not be serialized. It indicates a broken invariant.
type EncodeError struct {
	CardID string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.CardID == "" {
		return fmt.Sprintf("ledger encode: %v", e.Err)
	}
	return fmt.Sprintf("ledger encode card %q: %v", e.CardID, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// ErrEmptyCardID is returned when an outcome is reported without a card identifier.
var ErrEmptyCardID = errors.New("card id is empty")
