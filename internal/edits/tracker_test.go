package edits

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestTracker_LastWriteWins(t *testing.T) {
	tr := NewTracker()

	if err := tr.Record("r1", "amount", "1"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := tr.Record("r1", "amount", "2"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	got := tr.Drain()
	want := Set{"r1": {"amount": "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Drain = %v, want %v", got, want)
	}
}

func TestTracker_RecordIsIdempotent(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 3; i++ {
		_ = tr.Record("r1", "item", "milk")
	}
	got := tr.Drain()
	if got.Rows() != 1 || got.Cells() != 1 || got["r1"]["item"] != "milk" {
		t.Fatalf("Drain = %v, want single milk edit", got)
	}
}

func TestTracker_GroupsEditsByRow(t *testing.T) {
	tr := NewTracker()

	edits := []struct{ row, col, val string }{
		{"1", "item", "milk"},
		{"1", "amount", "4"},
		{"2", "amount", "2.25"},
		{"3", "date", "2024-03-01"},
		{"3", "item", "eggs"},
	}
	for _, e := range edits {
		if err := tr.Record(e.row, e.col, e.val); err != nil {
			t.Fatalf("Record(%q,%q) returned error: %v", e.row, e.col, err)
		}
	}

	got := tr.Drain()
	if got.Rows() != 3 {
		t.Fatalf("Rows = %d, want 3", got.Rows())
	}
	if got.Cells() != len(edits) {
		t.Fatalf("Cells = %d, want %d", got.Cells(), len(edits))
	}
	wantCols := map[string][]string{
		"1": {"amount", "item"},
		"2": {"amount"},
		"3": {"date", "item"},
	}
	for row, cols := range wantCols {
		if len(got[row]) != len(cols) {
			t.Fatalf("row %s columns = %v, want %v", row, got[row], cols)
		}
		for _, c := range cols {
			if _, ok := got[row][c]; !ok {
				t.Fatalf("row %s missing column %s", row, c)
			}
		}
	}
}

func TestTracker_DrainDoesNotMutate(t *testing.T) {
	tr := NewTracker()
	_ = tr.Record("1", "item", "milk")

	first := tr.Drain()
	first["1"]["item"] = "changed"
	delete(first, "1")

	second := tr.Drain()
	if second["1"]["item"] != "milk" {
		t.Fatalf("Drain after caller mutation = %v, want milk preserved", second)
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()
	_ = tr.Record("1", "item", "milk")
	tr.Reset()

	if !tr.Empty() {
		t.Fatalf("Empty = false after Reset")
	}
	if got := tr.Drain(); len(got) != 0 {
		t.Fatalf("Drain after Reset = %v, want empty", got)
	}
}

func TestTracker_RejectsBlankKeys(t *testing.T) {
	tr := NewTracker()
	for _, tc := range []struct{ row, col string }{{"", "item"}, {"1", ""}, {"  ", "  "}} {
		if err := tr.Record(tc.row, tc.col, "x"); !errors.Is(err, ErrEmptyKey) {
			t.Fatalf("Record(%q,%q) error = %v, want ErrEmptyKey", tc.row, tc.col, err)
		}
	}
	if !tr.Empty() {
		t.Fatalf("tracker should stay empty after rejected records")
	}
}

func TestTracker_RetainDropsStaleRows(t *testing.T) {
	tr := NewTracker()
	_ = tr.Record("1", "item", "milk")
	_ = tr.Record("2", "item", "bread")
	_ = tr.Record("9", "item", "gone")

	dropped := tr.Retain([]string{"1", "2", "3"})
	if dropped != 1 {
		t.Fatalf("Retain dropped %d, want 1", dropped)
	}
	got := tr.Drain()
	if _, ok := got["9"]; ok {
		t.Fatalf("stale row 9 survived Retain: %v", got)
	}
	if got.Rows() != 2 {
		t.Fatalf("Rows = %d, want 2", got.Rows())
	}
}

func TestTracker_ForgetAndPending(t *testing.T) {
	tr := NewTracker()
	_ = tr.Record("1", "item", "milk")
	_ = tr.Record("2", "amount", "3")

	if !tr.Pending("1", "item") {
		t.Fatalf("Pending(1,item) = false, want true")
	}
	if tr.Pending("1", "amount") {
		t.Fatalf("Pending(1,amount) = true, want false")
	}

	tr.Forget("1")
	if tr.Pending("1", "item") {
		t.Fatalf("Pending(1,item) = true after Forget")
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
}

func TestTracker_ZeroValueUsable(t *testing.T) {
	var tr Tracker
	if err := tr.Record("1", "item", "x"); err != nil {
		t.Fatalf("Record on zero Tracker returned error: %v", err)
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tr := NewTracker()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_ = tr.Record(fmt.Sprint(i), fmt.Sprintf("c%d", j%5), fmt.Sprint(j))
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	got := tr.Drain()
	if got.Rows() != 8 || got.Cells() != 40 {
		t.Fatalf("Rows=%d Cells=%d, want 8 and 40", got.Rows(), got.Cells())
	}
}
