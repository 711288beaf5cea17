package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store keeps a Ledger in a JSON file. Every ReportAnswer reloads the file,
// applies the outcome and replaces the file before returning; nothing is
// cached between calls so external edits are picked up.
type Store struct {
	path string
	loc  *time.Location
	now  func() time.Time

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to timestamp outcomes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone timestamps are written and read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New returns a Store backed by the file at path. The file is not touched.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path is empty")
	}
	s := &Store{
		path: path,
		loc:  time.Local,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Init writes an empty ledger document if the backing file does not exist.
// With overwrite set an existing file is replaced. It reports whether a file
// was written.
func (s *Store) Init(overwrite bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, &StorageError{Op: "init", Path: s.path, Err: err}
	}
	unlock, err := s.lock("init")
	if err != nil {
		return false, err
	}
	defer unlock()

	if !overwrite {
		if _, err := os.Stat(s.path); err == nil {
			return false, nil
		} else if !os.IsNotExist(err) {
			return false, &StorageError{Op: "stat", Path: s.path, Err: err}
		}
	}
	if err := s.save(Ledger{}); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads and decodes the backing file. A missing or malformed file is a
// *StorageError; it is never treated as an empty ledger.
func (s *Store) Load() (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock("load")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.load()
}

// Save encodes l and atomically replaces the backing file.
func (s *Store) Save(l Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock("save")
	if err != nil {
		return err
	}
	defer unlock()
	return s.save(l)
}

// ReportAnswer records one outcome for cardID and persists it before
// returning. On error the backing file is left as it was.
func (s *Store) ReportAnswer(cardID string, correct bool) (CardStats, error) {
	if cardID == "" {
		return CardStats{}, ErrEmptyCardID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lock("load")
	if err != nil {
		return CardStats{}, err
	}
	defer unlock()

	l, err := s.load()
	if err != nil {
		return CardStats{}, err
	}
	l = RecordOutcome(l, cardID, correct, s.now())
	if err := s.save(l); err != nil {
		return CardStats{}, err
	}
	return l[cardID], nil
}

// lockPath returns the sidecar file that serializes access across processes.
// The ledger itself cannot carry the lock because saves replace its inode.
func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// lock takes an exclusive advisory lock on the sidecar file. The returned
// func releases it.
func (s *Store) lock(op string) (func(), error) {
	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StorageError{Op: op, Path: s.path, Err: ErrStoreMissing}
		}
		return nil, &StorageError{Op: op, Path: s.path, Err: fmt.Errorf("failed to open lock file: %w", err)}
	}
	if err := lockFile(f); err != nil {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
		return nil, &StorageError{Op: op, Path: s.path, Err: fmt.Errorf("failed to lock: %w", err)}
	}
	return func() {
		if err := unlockFile(f); err != nil {
			// Closing the descriptor releases the lock as well.
			_ = err
		}
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}, nil
}

func (s *Store) load() (Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StorageError{Op: "load", Path: s.path, Err: ErrStoreMissing}
		}
		return nil, &StorageError{Op: "load", Path: s.path, Err: err}
	}
	l, err := Decode(data, s.loc)
	if err != nil {
		return nil, &StorageError{Op: "load", Path: s.path, Err: err}
	}
	return l, nil
}

func (s *Store) save(l Ledger) error {
	data, err := Encode(l, s.loc)
	if err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}
	if err := writeFileAtomic(s.path, data, perm); err != nil {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so readers see either the old or the new content. The file
// gets perm and the directory entry is synced before returning.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	if err := syncDir(dir); err != nil {
		return fmt.Errorf("failed to sync directory: %w", err)
	}
	return nil
}
