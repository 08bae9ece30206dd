package grid

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/five82/tally/internal/api"
)

// IDColumn is the column holding a row's durable identity.
const IDColumn = "id"

// Row maps column name to the raw value the server sent.
type Row map[string]any

// ID returns the row identity in the string form used for edits and requests.
func (r Row) ID() string {
	return rawString(r[IDColumn])
}

// Dataset is one fetched table: columns in server order and rows in fetch order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// FromEnvelope normalises a fetch payload. When the server sends rows but no
// column names, the columns are taken from the first row with id first.
func FromEnvelope(env api.Envelope) Dataset {
	ds := Dataset{Columns: dedupe(env.ColumnNames)}
	for _, raw := range env.TableData {
		ds.Rows = append(ds.Rows, Row(raw))
	}
	if len(ds.Columns) == 0 && len(ds.Rows) > 0 {
		ds.Columns = inferColumns(ds.Rows[0])
	}
	return ds
}

// IDs returns the row ids in dataset order.
func (d Dataset) IDs() []string {
	ids := make([]string, 0, len(d.Rows))
	for _, r := range d.Rows {
		ids = append(ids, r.ID())
	}
	return ids
}

// Distinct returns the distinct non-empty values of column in first-seen order.
func (d Dataset) Distinct(column string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Rows {
		v := strings.TrimSpace(rawString(r[column]))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func dedupe(cols []string) []string {
	if len(cols) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func inferColumns(r Row) []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		if k != IDColumn {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	if _, ok := r[IDColumn]; ok {
		cols = append([]string{IDColumn}, cols...)
	}
	return cols
}

// rawString renders a decoded JSON value without any column formatting.
func rawString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
