package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/grid"
)

// Mount is what is currently shown for one scope.
type Mount struct {
	Scope               api.Scope
	View                *grid.View
	Filter              *grid.Filter
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // loads that failed in a row
}

// IsOffline returns true when the server has been unreachable for multiple loads.
func (m Mount) IsOffline() bool {
	return m.ConsecutiveFailures >= 2
}

// Store holds the mounted view of every scope. Mounting replaces whatever the
// scope showed before; there is no incremental patching.
type Store struct {
	mu     sync.RWMutex
	mounts map[string]*Mount
}

// Mount replaces the view shown for scope. A failed view records its error
// and still replaces the previous table.
func (s *Store) Mount(scope api.Scope, view *grid.View, filter *grid.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mounts == nil {
		s.mounts = make(map[string]*Mount)
	}
	m, ok := s.mounts[scope.Key()]
	if !ok {
		m = &Mount{Scope: scope}
		s.mounts[scope.Key()] = m
	}

	m.View = view
	m.LastUpdated = time.Now()
	if filter != nil {
		f := *filter
		m.Filter = &f
	} else {
		m.Filter = nil
	}
	if err := view.Err(); err != nil {
		m.LastError = err
		m.ConsecutiveFailures++
		return
	}
	m.LastError = nil
	m.ConsecutiveFailures = 0
}

// Fail records a load failure for scope without replacing its view. Used
// when a background refresh fails while a good table is on screen.
func (s *Store) Fail(scope api.Scope, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mounts == nil {
		s.mounts = make(map[string]*Mount)
	}
	m, ok := s.mounts[scope.Key()]
	if !ok {
		m = &Mount{Scope: scope}
		s.mounts[scope.Key()] = m
	}
	m.LastError = err
	m.ConsecutiveFailures++
}

// Get returns a copy of the mount for scope. The View pointer is shared: it
// is the live table the user edits.
func (s *Store) Get(scope api.Scope) (Mount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mounts[scope.Key()]
	if !ok {
		return Mount{Scope: scope}, false
	}
	snap := *m
	if m.LastError != nil {
		snap.LastError = fmt.Errorf("%w", m.LastError)
	}
	if m.Filter != nil {
		f := *m.Filter
		snap.Filter = &f
	}
	return snap, true
}

// View returns the live view mounted for scope, or nil.
func (s *Store) View(scope api.Scope) *grid.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.mounts[scope.Key()]; ok {
		return m.View
	}
	return nil
}

// Unmount drops the scope, e.g. when its category disappeared.
func (s *Store) Unmount(scope api.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mounts, scope.Key())
}

// Dirty reports whether any mounted view has unsaved edits.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mounts {
		if m.View.Pending() > 0 {
			return true
		}
	}
	return false
}
