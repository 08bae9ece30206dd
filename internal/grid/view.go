package grid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/edits"
)

// ActionsHeader labels the trailing column holding row actions.
const ActionsHeader = "Actions"

var (
	ErrOutOfRange  = errors.New("cell out of range")
	ErrNotEditable = errors.New("cell is not editable")
)

// Cell is one rendered data cell.
type Cell struct {
	Column   string
	Text     string // currently displayed value
	Original string // value as rendered from the dataset
	Editable bool
}

// RenderedRow is one table row. ID is never displayed as an editable cell but
// always travels with the row.
type RenderedRow struct {
	ID    string
	Cells []Cell
}

// View is a rendered table together with the edit tracker armed for it.
type View struct {
	Columns []string
	Rows    []*RenderedRow

	policy  Policy
	tracker *edits.Tracker
	err     error

	sortCol int
	sortDir Direction
}

// Render builds a View from ds. Every call builds a fresh tracker, so edits
// from a previous render never leak into this one.
func Render(ds Dataset, p Policy) *View {
	v := &View{
		Columns: append([]string(nil), ds.Columns...),
		Rows:    make([]*RenderedRow, 0, len(ds.Rows)),
		policy:  p,
		tracker: edits.NewTracker(),
		sortCol: -1,
	}
	for _, r := range ds.Rows {
		id := r.ID()
		row := &RenderedRow{ID: id, Cells: make([]Cell, len(v.Columns))}
		for i, col := range v.Columns {
			text := FormatValue(col, r[col])
			row.Cells[i] = Cell{
				Column:   col,
				Text:     text,
				Original: text,
				Editable: id != "" && p.Editable(col),
			}
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// RenderEnvelope renders a fetch payload, or an error View when the payload
// reports failure.
func RenderEnvelope(env api.Envelope, p Policy) *View {
	if !env.Success {
		return Failed(&api.ServerError{Message: env.Error}, p)
	}
	return Render(FromEnvelope(env), p)
}

// Failed returns a View that carries only an error. It has no rows, so nothing
// of a previous table survives.
func Failed(err error, p Policy) *View {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &View{policy: p, tracker: edits.NewTracker(), err: err, sortCol: -1}
}

// Err returns the failure a View was rendered from.
func (v *View) Err() error {
	if v == nil {
		return nil
	}
	return v.err
}

// Failed reports whether the View shows an error instead of a table.
func (v *View) Failed() bool {
	return v != nil && v.err != nil
}

// ErrorText is the message shown in place of the table.
func (v *View) ErrorText() string {
	if !v.Failed() {
		return ""
	}
	return "Error: " + v.err.Error()
}

// Policy returns the editability policy the View was rendered with.
func (v *View) Policy() Policy {
	return v.policy
}

// Tracker returns the edit tracker armed for this render.
func (v *View) Tracker() *edits.Tracker {
	return v.tracker
}

// HasActions reports whether the header carries a trailing Actions column.
func (v *View) HasActions() bool {
	return !v.Failed() && v.policy.ShowActions()
}

// Header returns the displayed header cells.
func (v *View) Header() []string {
	if v.Failed() {
		return nil
	}
	h := append([]string(nil), v.Columns...)
	if v.HasActions() {
		h = append(h, ActionsHeader)
	}
	return h
}

// IDs returns row ids in display order.
func (v *View) IDs() []string {
	ids := make([]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		ids = append(ids, r.ID)
	}
	return ids
}

// Row returns the row at display index i.
func (v *View) Row(i int) (*RenderedRow, bool) {
	if v == nil || i < 0 || i >= len(v.Rows) {
		return nil, false
	}
	return v.Rows[i], true
}

// Find returns the display index of rowID, or -1.
func (v *View) Find(rowID string) int {
	for i, r := range v.Rows {
		if r.ID == rowID {
			return i
		}
	}
	return -1
}

// EditableCells counts editable cells across all rows.
func (v *View) EditableCells() int {
	n := 0
	for _, r := range v.Rows {
		for _, c := range r.Cells {
			if c.Editable {
				n++
			}
		}
	}
	return n
}

// CaptureEdit is called when the user leaves an editable cell. The trimmed
// text becomes the displayed value and is recorded as a pending edit.
func (v *View) CaptureEdit(row, col int, text string) error {
	r, ok := v.Row(row)
	if !ok || col < 0 || col >= len(r.Cells) {
		return fmt.Errorf("capture (%d,%d): %w", row, col, ErrOutOfRange)
	}
	cell := &r.Cells[col]
	if !cell.Editable {
		return fmt.Errorf("capture %s/%s: %w", r.ID, cell.Column, ErrNotEditable)
	}
	text = strings.TrimSpace(text)
	cell.Text = text
	return v.tracker.Record(r.ID, cell.Column, text)
}

// Dirty reports whether the cell at (row, col) has an unsaved edit.
func (v *View) Dirty(row, col int) bool {
	r, ok := v.Row(row)
	if !ok || col < 0 || col >= len(r.Cells) {
		return false
	}
	return v.tracker.Pending(r.ID, r.Cells[col].Column)
}

// Pending returns the number of dirty rows.
func (v *View) Pending() int {
	if v == nil || v.tracker == nil {
		return 0
	}
	return v.tracker.Len()
}
