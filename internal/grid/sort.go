package grid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Direction is the sort state stored on a View.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// Comparison is how values of one column are compared.
//
// The kind is guessed from the first non-empty value of the column, which is
// a heuristic and not a total order over mixed columns. Under Numeric a pair
// that does not parse on both sides is still compared as text.
type Comparison int

const (
	Lexicographic Comparison = iota
	Numeric
)

// SortState returns the column and direction of the last sort, or -1 and
// Unsorted.
func (v *View) SortState() (int, Direction) {
	return v.sortCol, v.sortDir
}

// Sort reorders the rows by the displayed text of header column col. Sorting
// the same column again flips the direction; a new column starts ascending.
// Rows move whole, so ids and pending edits stay attached.
func (v *View) Sort(col int) error {
	if v.Failed() {
		return fmt.Errorf("sort: %w", v.err)
	}
	if col < 0 || col >= len(v.Header()) {
		return fmt.Errorf("sort column %d: %w", col, ErrOutOfRange)
	}
	if col >= len(v.Columns) {
		// Actions column holds buttons, not values.
		return nil
	}

	dir := Ascending
	if v.sortCol == col && v.sortDir == Ascending {
		dir = Descending
	}

	kind := probe(v.Rows, col)
	sort.SliceStable(v.Rows, func(i, j int) bool {
		return compareText(kind, v.Rows[i].Cells[col].Text, v.Rows[j].Cells[col].Text) < 0
	})
	if dir == Descending {
		for i, j := 0, len(v.Rows)-1; i < j; i, j = i+1, j-1 {
			v.Rows[i], v.Rows[j] = v.Rows[j], v.Rows[i]
		}
	}

	v.sortCol = col
	v.sortDir = dir
	return nil
}

func probe(rows []*RenderedRow, col int) Comparison {
	for _, r := range rows {
		text := strings.TrimSpace(r.Cells[col].Text)
		if text == "" {
			continue
		}
		if _, ok := parseAmount(text); ok {
			return Numeric
		}
		return Lexicographic
	}
	return Lexicographic
}

func compareText(kind Comparison, a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if kind == Numeric {
		na, okA := parseAmount(a)
		nb, okB := parseAmount(b)
		if okA && okB {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(a, b)
}

// parseAmount parses s as a number after dropping one leading "$".
func parseAmount(s string) (float64, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
