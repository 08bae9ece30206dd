// Package grid turns fetched tables into interactive, editable views.
//
// # Rendering
//
// Render takes a Dataset (column names in server order, rows in fetch order)
// and a Policy and produces a View. Each View owns a fresh edits.Tracker:
// rendering again is how pending edits of an old table are dropped.
//
// Cells are formatted once at render time:
//
//   - columns whose name contains "date" are parsed and shown as MM/DD/YYYY;
//     a value that does not parse is shown unchanged
//   - nil renders as ""
//   - everything else is the raw JSON value as text
//
// A payload with success=false renders as a failed View: an error message and
// no rows.
//
// # Editing
//
// Policy decides editability per column. The id column is never editable, the
// expense variant also locks added_by, and only the parent role edits at all.
// CaptureEdit is the "left the cell" hook: it updates the displayed text and
// records the value in the View's tracker.
//
// # Sorting and filtering
//
// View.Sort reorders rows in place by displayed text, ascending first and
// flipping on repeated sorts of the same column. Filter is a numeric predicate
// applied to a Dataset before rendering.
package grid
