package grid

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/five82/tally/internal/api"
)

func exampleDataset() Dataset {
	return Dataset{
		Columns: []string{"id", "item", "amount", "date"},
		Rows: []Row{
			{"id": json.Number("1"), "item": "milk", "amount": "3.50", "date": "2024-01-05"},
			{"id": json.Number("2"), "item": "bread", "amount": "2", "date": "2024-02-10"},
		},
	}
}

func TestRender_IDRoundTrip(t *testing.T) {
	datasets := []Dataset{
		exampleDataset(),
		{Columns: []string{"id"}, Rows: nil},
		{Columns: []string{"id", "x"}, Rows: []Row{{"id": 9.0}, {"id": "a"}, {"id": json.Number("3")}}},
	}
	for _, ds := range datasets {
		v := Render(ds, ExpensePolicy(RoleParent))
		if got, want := v.IDs(), ds.IDs(); !reflect.DeepEqual(got, want) {
			t.Fatalf("IDs = %v, want %v", got, want)
		}
	}
}

func TestRender_EditabilityByRole(t *testing.T) {
	ds := exampleDataset()

	child := Render(ds, ExpensePolicy(RoleChild))
	if n := child.EditableCells(); n != 0 {
		t.Fatalf("child EditableCells = %d, want 0", n)
	}
	if child.HasActions() {
		t.Fatalf("child view should not have an Actions column")
	}

	parent := Render(ds, ExpensePolicy(RoleParent))
	if n := parent.EditableCells(); n != 6 {
		t.Fatalf("parent EditableCells = %d, want 6", n)
	}
	for _, r := range parent.Rows {
		for _, c := range r.Cells {
			if c.Editable == (c.Column == "id") {
				t.Fatalf("cell %s/%s Editable = %v", r.ID, c.Column, c.Editable)
			}
		}
	}
	wantHeader := []string{"id", "item", "amount", "date", ActionsHeader}
	if got := parent.Header(); !reflect.DeepEqual(got, wantHeader) {
		t.Fatalf("Header = %v, want %v", got, wantHeader)
	}
}

func TestRender_ExpensePolicyLocksAddedBy(t *testing.T) {
	ds := Dataset{
		Columns: []string{"id", "category", "amount", "added_by"},
		Rows:    []Row{{"id": 1.0, "category": "Food", "amount": 5.0, "added_by": "kid"}},
	}
	v := Render(ds, ExpensePolicy(RoleParent))
	for _, c := range v.Rows[0].Cells {
		locked := c.Column == "id" || c.Column == "added_by"
		if c.Editable == locked {
			t.Fatalf("%s Editable = %v, want %v", c.Column, c.Editable, !locked)
		}
	}

	budget := Render(ds, BudgetPolicy(RoleParent))
	if budget.HasActions() {
		t.Fatalf("budget view should not have actions")
	}
	if n := budget.EditableCells(); n != 3 {
		t.Fatalf("budget EditableCells = %d, want 3", n)
	}
}

func TestRender_Formatting(t *testing.T) {
	ds := Dataset{
		Columns: []string{"id", "Date", "due_date", "amount", "note"},
		Rows: []Row{
			{"id": 1.0, "Date": "2024-01-05", "due_date": "not-a-date", "amount": json.Number("3.50"), "note": nil},
			{"id": 2.0, "Date": "Sat, 10 Feb 2024 00:00:00 GMT", "due_date": "", "amount": 2.0},
		},
	}
	v := Render(ds, ExpensePolicy(RoleChild))

	want := [][]string{
		{"1", "01/05/2024", "not-a-date", "3.50", ""},
		{"2", "02/10/2024", "", "2", ""},
	}
	for i, r := range v.Rows {
		for j, c := range r.Cells {
			if c.Text != want[i][j] {
				t.Fatalf("row %d col %s = %q, want %q", i, c.Column, c.Text, want[i][j])
			}
		}
	}
}

func TestRenderEnvelope_FailureHasNoTable(t *testing.T) {
	v := RenderEnvelope(api.Envelope{Success: false, Error: "Missing category"}, ExpensePolicy(RoleParent))
	if !v.Failed() {
		t.Fatalf("Failed = false, want true")
	}
	if len(v.Rows) != 0 || len(v.Header()) != 0 {
		t.Fatalf("failed view has rows=%d header=%v", len(v.Rows), v.Header())
	}
	if v.ErrorText() != "Error: Missing category" {
		t.Fatalf("ErrorText = %q", v.ErrorText())
	}
	var serr *api.ServerError
	if !errors.As(v.Err(), &serr) {
		t.Fatalf("Err = %v, want *api.ServerError", v.Err())
	}
}

func TestRenderEnvelope_Success(t *testing.T) {
	env := api.Envelope{
		Success:     true,
		ColumnNames: []string{"id", "category", "amount"},
		TableData: []map[string]any{
			{"id": json.Number("4"), "category": "Food", "amount": json.Number("200")},
		},
	}
	v := RenderEnvelope(env, BudgetPolicy(RoleParent))
	if v.Failed() {
		t.Fatalf("Failed = true: %v", v.Err())
	}
	if got := v.IDs(); !reflect.DeepEqual(got, []string{"4"}) {
		t.Fatalf("IDs = %v", got)
	}
}

func TestFromEnvelope_InfersColumns(t *testing.T) {
	env := api.Envelope{
		Success:   true,
		TableData: []map[string]any{{"amount": 1.0, "id": 1.0, "category": "x"}},
	}
	ds := FromEnvelope(env)
	want := []string{"id", "amount", "category"}
	if !reflect.DeepEqual(ds.Columns, want) {
		t.Fatalf("Columns = %v, want %v", ds.Columns, want)
	}
}

func TestRender_FreshTrackerPerRender(t *testing.T) {
	ds := exampleDataset()
	first := Render(ds, ExpensePolicy(RoleParent))
	if err := first.CaptureEdit(0, 1, "oat milk"); err != nil {
		t.Fatalf("CaptureEdit returned error: %v", err)
	}
	second := Render(ds, ExpensePolicy(RoleParent))
	if second.Tracker() == first.Tracker() {
		t.Fatalf("Render reused the tracker")
	}
	if second.Pending() != 0 {
		t.Fatalf("new render has %d pending rows, want 0", second.Pending())
	}
}

func TestCaptureEdit(t *testing.T) {
	v := Render(exampleDataset(), ExpensePolicy(RoleParent))

	if err := v.CaptureEdit(1, 2, "  2.75 "); err != nil {
		t.Fatalf("CaptureEdit returned error: %v", err)
	}
	if v.Rows[1].Cells[2].Text != "2.75" {
		t.Fatalf("displayed text = %q, want trimmed 2.75", v.Rows[1].Cells[2].Text)
	}
	if v.Rows[1].Cells[2].Original != "2" {
		t.Fatalf("Original = %q, want 2", v.Rows[1].Cells[2].Original)
	}
	if !v.Dirty(1, 2) || v.Dirty(0, 2) {
		t.Fatalf("Dirty flags wrong")
	}
	got := v.Tracker().Drain()
	if got["2"]["amount"] != "2.75" || got.Rows() != 1 {
		t.Fatalf("tracker = %v, want {2: {amount: 2.75}}", got)
	}

	if err := v.CaptureEdit(0, 0, "99"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("editing id error = %v, want ErrNotEditable", err)
	}
	if err := v.CaptureEdit(5, 0, "x"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("out of range error = %v, want ErrOutOfRange", err)
	}

	child := Render(exampleDataset(), ExpensePolicy(RoleChild))
	if err := child.CaptureEdit(0, 1, "x"); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("child edit error = %v, want ErrNotEditable", err)
	}
	if child.Pending() != 0 {
		t.Fatalf("child tracker should stay empty")
	}
}

func TestRender_RowWithoutIDIsReadOnly(t *testing.T) {
	ds := Dataset{Columns: []string{"id", "item"}, Rows: []Row{{"item": "orphan"}}}
	v := Render(ds, ExpensePolicy(RoleParent))
	if v.EditableCells() != 0 {
		t.Fatalf("row without id should not be editable")
	}
}
