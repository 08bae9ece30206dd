package edits

import (
	"errors"
	"strings"
	"sync"
)

// ErrEmptyKey is returned when a row id or column name is blank.
var ErrEmptyKey = errors.New("row id and column are required")

// Set maps row id -> column -> pending value. A row only appears while at least
// one of its columns has a pending edit.
type Set map[string]map[string]string

// Rows returns the number of dirty rows.
func (s Set) Rows() int {
	return len(s)
}

// Cells returns the number of pending cell edits across all rows.
func (s Set) Cells() int {
	n := 0
	for _, cols := range s {
		n += len(cols)
	}
	return n
}

// Tracker accumulates cell edits for a single rendered table.
type Tracker struct {
	mu      sync.Mutex
	pending Set
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pending: make(Set)}
}

// Record upserts value for (rowID, column). A later call for the same cell
// replaces the earlier value.
func (t *Tracker) Record(rowID, column, value string) error {
	rowID = strings.TrimSpace(rowID)
	column = strings.TrimSpace(column)
	if rowID == "" || column == "" {
		return ErrEmptyKey
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil {
		t.pending = make(Set)
	}
	cols, ok := t.pending[rowID]
	if !ok {
		cols = make(map[string]string)
		t.pending[rowID] = cols
	}
	cols[column] = value
	return nil
}

// Drain returns a copy of the pending edits. The tracker is left unchanged.
func (t *Tracker) Drain() Set {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(Set, len(t.pending))
	for rowID, cols := range t.pending {
		if len(cols) == 0 {
			continue
		}
		dup := make(map[string]string, len(cols))
		for col, val := range cols {
			dup[col] = val
		}
		out[rowID] = dup
	}
	return out
}

// Reset discards every pending edit.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = make(Set)
}

// Forget removes the pending edits for the given rows only.
func (t *Tracker) Forget(rowIDs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range rowIDs {
		delete(t.pending, id)
	}
}

// Retain drops every row that is not in ids. Edits for rows that vanished from
// a fresh dataset must never be sent.
func (t *Tracker) Retain(ids []string) int {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	dropped := 0
	for rowID := range t.pending {
		if _, ok := keep[rowID]; !ok {
			delete(t.pending, rowID)
			dropped++
		}
	}
	return dropped
}

// Pending reports whether (rowID, column) has an unsaved value.
func (t *Tracker) Pending(rowID, column string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[rowID][column]
	return ok
}

// Len returns the number of dirty rows.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Empty reports whether nothing is pending.
func (t *Tracker) Empty() bool {
	return t.Len() == 0
}
