package batch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RowResult is the outcome of one row update.
type RowResult struct {
	RowID   string
	Columns []string
	Err     error
}

// OK reports whether the row saved.
func (r RowResult) OK() bool {
	return r.Err == nil
}

// Report summarises a flush.
type Report struct {
	Table   string
	Nothing bool        // no edits were pending; nothing was sent
	Results []RowResult // one per dirty row, ordered by row id
	Cleared bool        // tracker was emptied after settling
}

// Failed returns the rows whose update failed.
func (r Report) Failed() []RowResult {
	var out []RowResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Succeeded counts saved rows.
func (r Report) Succeeded() int {
	return len(r.Results) - len(r.Failed())
}

// Summary is the one-line completion message for the user.
func (r Report) Summary() string {
	if r.Nothing {
		return "No changes to save."
	}
	failed := r.Failed()
	if len(failed) == 0 {
		return fmt.Sprintf("All updates sent successfully (%d %s).", len(r.Results), plural(len(r.Results), "row"))
	}
	ids := make([]string, 0, len(failed))
	for _, f := range failed {
		ids = append(ids, f.RowID)
	}
	return fmt.Sprintf("Updates sent: %d saved, %d failed (rows %s).",
		r.Succeeded(), len(failed), strings.Join(ids, ", "))
}

// Details returns one line per row, failures first.
func (r Report) Details() []string {
	var lines []string
	for _, res := range r.Failed() {
		lines = append(lines, fmt.Sprintf("Update failed for row %s: %v", res.RowID, res.Err))
	}
	for _, res := range r.Results {
		if res.Err == nil {
			lines = append(lines, fmt.Sprintf("Row %s updated successfully.", res.RowID))
		}
	}
	return lines
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// sortRowIDs orders numeric ids numerically and everything else as text after them.
func sortRowIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
