package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/grid"
)

func budgetView(ids ...float64) *grid.View {
	ds := grid.Dataset{Columns: []string{"id", "category", "amount"}}
	for _, id := range ids {
		ds.Rows = append(ds.Rows, grid.Row{"id": id, "category": "Food", "amount": 10.0})
	}
	return grid.Render(ds, grid.BudgetPolicy(grid.RoleParent))
}

func TestStore_MountReplacesView(t *testing.T) {
	var s Store
	scope := api.BudgetScope()

	before := time.Now()
	s.Mount(scope, budgetView(1, 2), nil)
	s.Mount(scope, budgetView(3), nil)

	m, ok := s.Get(scope)
	if !ok {
		t.Fatalf("Get returned ok=false")
	}
	if got := m.View.IDs(); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("mounted ids = %v, want [3]", got)
	}
	if m.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", m.LastUpdated, before)
	}
	if m.LastError != nil {
		t.Fatalf("LastError = %v, want nil", m.LastError)
	}
}

func TestStore_FailedViewReplacesTable(t *testing.T) {
	var s Store
	scope := api.CategoryScope("Food")

	s.Mount(scope, budgetView(1), nil)
	origErr := errors.New("boom")
	s.Mount(scope, grid.Failed(origErr, grid.ExpensePolicy(grid.RoleParent)), nil)

	m, _ := s.Get(scope)
	if len(m.View.Rows) != 0 {
		t.Fatalf("failed mount kept %d rows", len(m.View.Rows))
	}
	if m.LastError == nil || m.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", m.LastError)
	}
	if reflect.ValueOf(m.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Get should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store
	scope := api.ChildScope()
	fail := func() { s.Mount(scope, grid.Failed(errors.New("down"), grid.ExpensePolicy(grid.RoleChild)), nil) }

	fail()
	m, _ := s.Get(scope)
	if m.ConsecutiveFailures != 1 || m.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", m.ConsecutiveFailures, m.IsOffline())
	}
	fail()
	m, _ = s.Get(scope)
	if !m.IsOffline() {
		t.Fatalf("IsOffline = false after 2 failures")
	}
	s.Mount(scope, budgetView(1), nil)
	m, _ = s.Get(scope)
	if m.ConsecutiveFailures != 0 || m.IsOffline() {
		t.Fatalf("success should reset failures, got %d", m.ConsecutiveFailures)
	}
}

func TestStore_FilterCopied(t *testing.T) {
	var s Store
	scope := api.CategoryScope("Food")
	f := grid.Filter{Column: "amount", Op: grid.OpGreater, Threshold: 3}
	s.Mount(scope, budgetView(1), &f)
	f.Threshold = 99

	m, _ := s.Get(scope)
	if m.Filter == nil || m.Filter.Threshold != 3 {
		t.Fatalf("Filter = %v, want threshold 3", m.Filter)
	}
	m.Filter.Threshold = 7
	again, _ := s.Get(scope)
	if again.Filter.Threshold != 3 {
		t.Fatalf("Get should return a filter copy")
	}

	s.Mount(scope, budgetView(1), nil)
	if m, _ := s.Get(scope); m.Filter != nil {
		t.Fatalf("unfiltered mount kept filter %v", m.Filter)
	}
}

func TestStore_DirtyAndUnmount(t *testing.T) {
	var s Store
	scope := api.BudgetScope()
	v := budgetView(1)
	s.Mount(scope, v, nil)

	if s.Dirty() {
		t.Fatalf("Dirty = true before any edit")
	}
	if err := v.CaptureEdit(0, 2, "12"); err != nil {
		t.Fatalf("CaptureEdit returned error: %v", err)
	}
	if !s.Dirty() {
		t.Fatalf("Dirty = false after edit")
	}
	if s.View(scope) != v {
		t.Fatalf("View should return the live mounted view")
	}

	s.Unmount(scope)
	if _, ok := s.Get(scope); ok {
		t.Fatalf("Get after Unmount returned ok=true")
	}
	if s.Dirty() {
		t.Fatalf("Dirty = true after Unmount")
	}
}

func TestStore_FailKeepsView(t *testing.T) {
	var s Store
	scope := api.BudgetScope()
	v := budgetView(2)
	s.Mount(scope, v, nil)

	s.Fail(scope, errors.New("connection refused"))
	s.Fail(scope, errors.New("connection refused"))
	s.Fail(scope, nil)

	m, ok := s.Get(scope)
	if !ok || m.View != v {
		t.Fatalf("Fail must keep the mounted view")
	}
	if m.ConsecutiveFailures != 2 || !m.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d, want 2", m.ConsecutiveFailures)
	}

	s.Mount(scope, budgetView(2), nil)
	if m, _ := s.Get(scope); m.ConsecutiveFailures != 0 || m.LastError != nil {
		t.Fatalf("successful mount should reset health, got %+v", m)
	}
}
