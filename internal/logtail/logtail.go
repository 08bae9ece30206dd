package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log record.
type Entry struct {
	Time      time.Time
	Level     string // upper case, empty when the line is not a record
	Message   string
	Component string
	Attrs     []Attr // remaining key/value pairs in file order
	Raw       string
}

// Attr is a key/value pair of a record.
type Attr struct {
	Key   string
	Value string
}

// Parse reads a line written by slog's text or JSON handler. Lines in any
// other shape come back with only Raw and Message set.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		if e, ok := parseJSON(trimmed); ok {
			e.Raw = line
			return e
		}
	}
	pairs, ok := splitPairs(trimmed)
	if !ok {
		return Entry{Message: line, Raw: line}
	}
	e := Entry{Raw: line}
	for _, p := range pairs {
		e.set(p.Key, p.Value)
	}
	return e
}

// ParseAll parses every line.
func ParseAll(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, l := range lines {
		out = append(out, Parse(l))
	}
	return out
}

func (e *Entry) set(key, value string) {
	switch key {
	case "time":
		if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
			e.Time = t
		}
	case "level":
		e.Level = strings.ToUpper(value)
	case "msg":
		e.Message = value
	case "component":
		e.Component = value
	default:
		e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
	}
}

func parseJSON(line string) (Entry, bool) {
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return Entry{}, false
	}
	if _, ok := rec["msg"]; !ok {
		return Entry{}, false
	}
	var e Entry
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.set(k, jsonText(rec[k]))
	}
	return e, true
}

func jsonText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// splitPairs tokenizes key=value pairs where values may be Go-quoted.
func splitPairs(line string) ([]Attr, bool) {
	var pairs []Attr
	rest := line
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \t\"") {
			return nil, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := closingQuote(rest)
			if end < 0 {
				return nil, false
			}
			unq, err := strconv.Unquote(rest[:end+1])
			if err != nil {
				return nil, false
			}
			value = unq
			rest = rest[end+1:]
		} else {
			sp := strings.IndexByte(rest, ' ')
			if sp < 0 {
				sp = len(rest)
			}
			value = rest[:sp]
			rest = rest[sp:]
		}
		pairs = append(pairs, Attr{Key: key, Value: value})
		rest = strings.TrimLeft(rest, " ")
	}
	return pairs, len(pairs) > 0
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
