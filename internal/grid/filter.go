package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFilter is returned by ParseFilter for an unknown operator or a
// threshold that is not a number.
var ErrInvalidFilter = errors.New("invalid filter")

// Op is a numeric filter operator.
type Op string

const (
	OpLess    Op = "lt"
	OpGreater Op = "gt"
	OpEqual   Op = "eq"
)

// Filter keeps rows whose column value, read as a number, satisfies Op
// against Threshold.
type Filter struct {
	Column    string
	Op        Op
	Threshold float64
}

// ParseFilter validates user input before any request is made.
func ParseFilter(column, op, threshold string) (Filter, error) {
	column = strings.TrimSpace(column)
	if column == "" {
		return Filter{}, fmt.Errorf("%w: column required", ErrInvalidFilter)
	}
	o := Op(strings.ToLower(strings.TrimSpace(op)))
	switch o {
	case OpLess, OpGreater, OpEqual:
	default:
		return Filter{}, fmt.Errorf("%w: operator %q (want lt, gt or eq)", ErrInvalidFilter, op)
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(threshold), 64)
	if err != nil {
		return Filter{}, fmt.Errorf("%w: please enter a valid number to filter by", ErrInvalidFilter)
	}
	return Filter{Column: column, Op: o, Threshold: val}, nil
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %s", f.Column, f.Op, strconv.FormatFloat(f.Threshold, 'f', -1, 64))
}

// Match reports whether r passes the filter. Values that are not numbers never
// match.
func (f Filter) Match(r Row) bool {
	val, err := strconv.ParseFloat(strings.TrimSpace(rawString(r[f.Column])), 64)
	if err != nil {
		return false
	}
	switch f.Op {
	case OpLess:
		return val < f.Threshold
	case OpGreater:
		return val > f.Threshold
	case OpEqual:
		return val == f.Threshold
	default:
		return false
	}
}

// Apply returns a copy of ds holding only matching rows. ds is not modified.
func (f Filter) Apply(ds Dataset) Dataset {
	out := Dataset{Columns: append([]string(nil), ds.Columns...)}
	for _, r := range ds.Rows {
		if f.Match(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}
