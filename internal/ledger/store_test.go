package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flashcard_answerdata.json")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write store: %v", err)
		}
	}
	sec := 0
	st, err := New(path, WithClock(func() time.Time {
		sec++
		return testTime(sec)
	}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return st
}

func readWire(t *testing.T, path string) map[string]map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	var doc map[string]map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal store: %v", err)
	}
	return doc
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestReportAnswerOnEmptyStore(t *testing.T) {
	st := newTestStore(t, "{}")

	if _, err := st.ReportAnswer("card-1", true); err != nil {
		t.Fatalf("report answer: %v", err)
	}
	doc := readWire(t, st.Path())
	entry := doc["card-1"]
	if entry["numbercorrect"] != "1" || entry["numberincorrect"] != "0" {
		t.Fatalf("unexpected counts: %v", entry)
	}
	correct := entry["datetimescorrect"].([]any)
	if len(correct) != 1 || correct[0] != "2024-03-05 14:07:01" {
		t.Fatalf("unexpected datetimescorrect: %v", correct)
	}
	if incorrect := entry["datetimesincorrect"].([]any); len(incorrect) != 0 {
		t.Fatalf("expected no incorrect timestamps, got %v", incorrect)
	}
}

func TestReportAnswerIncrementsExistingCard(t *testing.T) {
	st := newTestStore(t, `{"card-1": {"numbercorrect": "1", "numberincorrect": "0", "datetimescorrect": ["2024-03-01 09:00:00"], "datetimesincorrect": []}}`)

	stats, err := st.ReportAnswer("card-1", false)
	if err != nil {
		t.Fatalf("report answer: %v", err)
	}
	if stats.CorrectCount != 1 || stats.IncorrectCount != 1 {
		t.Fatalf("unexpected returned stats: %+v", stats)
	}
	entry := readWire(t, st.Path())["card-1"]
	if entry["numbercorrect"] != "1" || entry["numberincorrect"] != "1" {
		t.Fatalf("unexpected counts: %v", entry)
	}
	if n := len(entry["datetimescorrect"].([]any)); n != 1 {
		t.Fatalf("expected 1 correct timestamp, got %d", n)
	}
	if n := len(entry["datetimesincorrect"].([]any)); n != 1 {
		t.Fatalf("expected 1 incorrect timestamp, got %d", n)
	}
}

func TestReportAnswerCorruptStoreUnchanged(t *testing.T) {
	corrupt := `{"card-1": {"numbercorrect": "1",`
	st := newTestStore(t, corrupt)

	_, err := st.ReportAnswer("card-1", true)
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	data, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if !bytes.Equal(data, []byte(corrupt)) {
		t.Fatalf("store changed after failed report: %q", data)
	}
}

func TestReportAnswerMissingStore(t *testing.T) {
	st := newTestStore(t, "")

	_, err := st.ReportAnswer("card-1", true)
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if !errors.Is(err, ErrStoreMissing) {
		t.Fatalf("expected ErrStoreMissing, got %v", err)
	}
	if _, err := os.Stat(st.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected no store to be created, stat err: %v", err)
	}
}

func TestReportAnswerRejectsEmptyCardID(t *testing.T) {
	st := newTestStore(t, "{}")
	if _, err := st.ReportAnswer("", true); !errors.Is(err, ErrEmptyCardID) {
		t.Fatalf("expected ErrEmptyCardID, got %v", err)
	}
}

func TestReportAnswerKeepsCardsIndependent(t *testing.T) {
	st := newTestStore(t, "{}")

	if _, err := st.ReportAnswer("card-1", true); err != nil {
		t.Fatalf("report card-1: %v", err)
	}
	if _, err := st.ReportAnswer("card-2", false); err != nil {
		t.Fatalf("report card-2: %v", err)
	}
	l, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(l) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(l))
	}
	if c := l["card-1"]; c.CorrectCount != 1 || c.IncorrectCount != 0 {
		t.Fatalf("unexpected card-1: %+v", c)
	}
	if c := l["card-2"]; c.CorrectCount != 0 || c.IncorrectCount != 1 {
		t.Fatalf("unexpected card-2: %+v", c)
	}
}

func TestReportAnswerObservesExternalEdits(t *testing.T) {
	st := newTestStore(t, "{}")
	if _, err := st.ReportAnswer("card-1", true); err != nil {
		t.Fatalf("report: %v", err)
	}
	edited := `{"card-9": {"numbercorrect": "0", "numberincorrect": "0", "datetimescorrect": [], "datetimesincorrect": []}}`
	if err := os.WriteFile(st.Path(), []byte(edited), 0o644); err != nil {
		t.Fatalf("edit store: %v", err)
	}
	if _, err := st.ReportAnswer("card-2", true); err != nil {
		t.Fatalf("report: %v", err)
	}
	l, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := l["card-1"]; ok {
		t.Fatalf("expected external edit to drop card-1")
	}
	if _, ok := l["card-9"]; !ok {
		t.Fatalf("expected card-9 from external edit")
	}
	if l["card-2"].CorrectCount != 1 {
		t.Fatalf("expected card-2 recorded, got %+v", l["card-2"])
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := newTestStore(t, "")
	var l Ledger
	l = RecordOutcome(l, "card-1", true, testTime(1))
	l = RecordOutcome(l, "card-1", false, testTime(2))
	l = RecordOutcome(l, "card-2", true, testTime(3))

	if err := st.Save(l); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertLedgersEqual(t, l, got)
}

func TestSaveEncodeFailureLeavesFile(t *testing.T) {
	original := "{}"
	st := newTestStore(t, original)

	err := st.Save(Ledger{"card-1": {IncorrectCount: 1}})
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodeError, got %v", err)
	}
	data, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if string(data) != original {
		t.Fatalf("store changed after failed save: %q", data)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	st := newTestStore(t, "{}")
	for i := 0; i < 3; i++ {
		if _, err := st.ReportAnswer("card-1", i%2 == 0); err != nil {
			t.Fatalf("report: %v", err)
		}
	}
	entries, err := os.ReadDir(filepath.Dir(st.Path()))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name() == filepath.Base(st.lockPath()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) != 1 {
		t.Fatalf("expected only the ledger file, got %v", names)
	}
}

func TestSaveKeepsFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	st := newTestStore(t, "{}")
	if err := os.Chmod(st.Path(), 0o600); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if _, err := st.ReportAnswer("card-1", true); err != nil {
		t.Fatalf("report: %v", err)
	}
	info, err := os.Stat(st.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600 to be kept, got %o", perm)
	}
}

func TestInitCreatesReadableFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	st := newTestStore(t, "")
	if _, err := st.Init(false); err != nil {
		t.Fatalf("init: %v", err)
	}
	info, err := os.Stat(st.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Fatalf("expected mode 0644, got %o", perm)
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	st, err := New(filepath.Join(t.TempDir(), "absent", "answers.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, err = st.ReportAnswer("card-1", true)
	var storageErr *StorageError
	if !errors.As(err, &storageErr) || !errors.Is(err, ErrStoreMissing) {
		t.Fatalf("expected missing store error, got %v", err)
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "answers.json")
	st, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	created, err := st.Init(false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !created {
		t.Fatalf("expected store to be created")
	}
	l, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(l) != 0 {
		t.Fatalf("expected empty ledger, got %v", l)
	}

	if _, err := st.ReportAnswer("card-1", true); err != nil {
		t.Fatalf("report: %v", err)
	}
	created, err = st.Init(false)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if created {
		t.Fatalf("expected existing store to be kept")
	}
	if l, _ := st.Load(); len(l) != 1 {
		t.Fatalf("expected history to survive init, got %v", l)
	}

	if _, err := st.Init(true); err != nil {
		t.Fatalf("forced init: %v", err)
	}
	if l, _ := st.Load(); len(l) != 0 {
		t.Fatalf("expected forced init to reset, got %v", l)
	}
}

func TestReportAnswerConcurrentCallers(t *testing.T) {
	st := newTestStore(t, "{}")
	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := st.ReportAnswer("card-1", (w+i)%2 == 0); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("report: %v", err)
	}

	l, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := l["card-1"].Reviews(); got != workers*perWorker {
		t.Fatalf("expected %d outcomes, got %d", workers*perWorker, got)
	}
}

func TestReportAnswerSeparateStoresSamePath(t *testing.T) {
	first := newTestStore(t, "{}")
	second, err := New(first.Path())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	const perStore = 100

	var wg sync.WaitGroup
	errs := make(chan error, 2*perStore)
	for _, st := range []*Store{first, second} {
		wg.Add(1)
		go func(st *Store) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				if _, err := st.ReportAnswer("card-1", true); err != nil {
					errs <- err
				}
			}
		}(st)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("report: %v", err)
	}

	l, err := first.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := l["card-1"].CorrectCount; got != 2*perStore {
		t.Fatalf("expected %d outcomes, got %d", 2*perStore, got)
	}
}

func TestSaveRejectsSubSecondTimestamps(t *testing.T) {
	original := "{}"
	st := newTestStore(t, original)
	l := Ledger{"card-1": {
		CorrectCount:      1,
		CorrectTimestamps: []time.Time{testTime(3).Add(500 * time.Millisecond)},
	}}
	err := st.Save(l)
	var encErr *EncodeError
	if !errors.As(err, &encErr) || encErr.CardID != "card-1" {
		t.Fatalf("expected EncodeError for card-1, got %v", err)
	}
	data, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if string(data) != original {
		t.Fatalf("store changed after failed save: %q", data)
	}
}
