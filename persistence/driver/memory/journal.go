package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/saastack/eventing/persistence/journal"
	"golang.org/x/exp/slices"
)

// JournalStore is an in-memory implementation of [journal.Store].
type JournalStore struct {
	journals registry[journalState]
}

// Open returns the journal at the given path.
func (s *JournalStore) Open(ctx context.Context, path ...string) (journal.Journal, error) {
	state := s.journals.get(journal.PathKey(path))
	return &journalHandle{handle[journalState]{state}}, ctx.Err()
}

// NewJournal returns a journal that does not belong to any store.
func NewJournal() journal.Journal {
	return &journalHandle{handle[journalState]{&journalState{}}}
}

type journalState struct {
	sync.RWMutex

	begin   journal.Position
	records [][]byte

	beforeAppend, afterAppend func([]byte) error
}

func (s *journalState) end() journal.Position {
	return s.begin + journal.Position(len(s.records))
}

type journalHandle struct {
	handle[journalState]
}

func (h *journalHandle) Bounds(ctx context.Context) (begin, end journal.Position, err error) {
	s := h.mustState()

	s.RLock()
	defer s.RUnlock()

	return s.begin, s.end(), ctx.Err()
}

func (h *journalHandle) Get(ctx context.Context, pos journal.Position) ([]byte, bool, error) {
	s := h.mustState()

	s.RLock()
	defer s.RUnlock()

	if pos < s.begin || pos >= s.end() {
		return nil, false, ctx.Err()
	}

	return slices.Clone(s.records[pos-s.begin]), true, ctx.Err()
}

func (h *journalHandle) Range(ctx context.Context, begin journal.Position, fn journal.RangeFunc) error {
	s := h.mustState()

	s.RLock()
	first, records := s.begin, slices.Clone(s.records)
	s.RUnlock()

	if begin < first {
		return fmt.Errorf("cannot range from position %d, records before %d have been truncated", begin, first)
	}

	for i := int(begin - first); i < len(records); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := fn(ctx, first+journal.Position(i), slices.Clone(records[i]))
		if !ok || err != nil {
			return err
		}
	}

	return nil
}

func (h *journalHandle) Append(ctx context.Context, end journal.Position, rec []byte) error {
	s := h.mustState()

	s.Lock()
	defer s.Unlock()

	if s.beforeAppend != nil {
		if err := s.beforeAppend(rec); err != nil {
			return err
		}
	}

	if end < s.end() {
		return journal.ErrConflict
	}
	if end > s.end() {
		panic(fmt.Sprintf("cannot append at position %d, the journal ends at %d", end, s.end()))
	}

	s.records = append(s.records, slices.Clone(rec))

	if s.afterAppend != nil {
		if err := s.afterAppend(rec); err != nil {
			return err
		}
	}

	return ctx.Err()
}

func (h *journalHandle) Truncate(ctx context.Context, end journal.Position) error {
	s := h.mustState()

	s.Lock()
	defer s.Unlock()

	if end > s.end() {
		panic(fmt.Sprintf("cannot truncate to position %d, the journal ends at %d", end, s.end()))
	}

	if end > s.begin {
		s.records = s.records[end-s.begin:]
		s.begin = end
	}

	return ctx.Err()
}

// FailBeforeJournalAppend causes the next append of a record that satisfies
// pred to the journal at path to fail without writing the record.
func FailBeforeJournalAppend(s *JournalStore, pred func(rec []byte) bool, path ...string) {
	state := s.journals.get(journal.PathKey(path))

	state.Lock()
	defer state.Unlock()

	state.beforeAppend = failOnce(pred)
}

// FailAfterJournalAppend causes the next append of a record that satisfies
// pred to the journal at path to return an error after the record has been
// written.
func FailAfterJournalAppend(s *JournalStore, pred func(rec []byte) bool, path ...string) {
	state := s.journals.get(journal.PathKey(path))

	state.Lock()
	defer state.Unlock()

	state.afterAppend = failOnce(pred)
}
