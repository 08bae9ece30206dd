package grid

import (
	"strings"
	"time"
)

// DisplayDateLayout is the fixed, locale independent date format of date cells.
const DisplayDateLayout = "01/02/2006"

// dateLayouts are tried in order. RFC1123 covers the HTTP-date form Flask's
// JSON encoder emits for DATE columns.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// IsDateColumn reports whether values of column are treated as dates.
func IsDateColumn(column string) bool {
	return strings.Contains(strings.ToLower(column), "date")
}

// FormatValue renders v for display in column. Unparseable dates are shown
// unchanged; nil renders as an empty string.
func FormatValue(column string, v any) string {
	raw := rawString(v)
	if raw == "" || !IsDateColumn(column) {
		return raw
	}
	if t, ok := parseDate(raw); ok {
		return t.Format(DisplayDateLayout)
	}
	return raw
}

func parseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
