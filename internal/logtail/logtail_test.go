package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFileIsEmpty(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read missing = %v, %v; want nil, nil", lines, err)
	}
}

func TestParse_TextRecord(t *testing.T) {
	line := `time=2025-10-08T21:01:05.123+02:00 level=WARN msg="update failed" component=batch row_id=7 error="Invalid table"`
	e := Parse(line)

	if e.Level != "WARN" || e.Message != "update failed" || e.Component != "batch" {
		t.Fatalf("Parse = %+v", e)
	}
	if e.Time.IsZero() || e.Time.Second() != 5 {
		t.Fatalf("Time = %v", e.Time)
	}
	want := []Attr{{"row_id", "7"}, {"error", "Invalid table"}}
	if !reflect.DeepEqual(e.Attrs, want) {
		t.Fatalf("Attrs = %v, want %v", e.Attrs, want)
	}
	if e.Raw != line {
		t.Fatalf("Raw not preserved")
	}
}

func TestParse_QuotedEscapes(t *testing.T) {
	e := Parse(`level=INFO msg="say \"hi\" there" file="a b.csv"`)
	if e.Message != `say "hi" there` {
		t.Fatalf("Message = %q", e.Message)
	}
	if len(e.Attrs) != 1 || e.Attrs[0].Value != "a b.csv" {
		t.Fatalf("Attrs = %v", e.Attrs)
	}
}

func TestParse_JSONRecord(t *testing.T) {
	e := Parse(`{"time":"2025-10-08T21:01:05Z","level":"INFO","msg":"table loaded","component":"syncer","rows":3,"filtered":false}`)
	if e.Level != "INFO" || e.Message != "table loaded" || e.Component != "syncer" {
		t.Fatalf("Parse = %+v", e)
	}
	want := []Attr{{"filtered", "false"}, {"rows", "3"}}
	if !reflect.DeepEqual(e.Attrs, want) {
		t.Fatalf("Attrs = %v, want %v", e.Attrs, want)
	}
}

func TestParse_PlainLines(t *testing.T) {
	for _, line := range []string{"", "panic: boom", "goroutine 1 [running]:", "a=b trailing", `msg="unterminated`} {
		e := Parse(line)
		if e.Level != "" || e.Message != line {
			t.Errorf("Parse(%q) = %+v, want plain line", line, e)
		}
	}
}

func TestParseAll(t *testing.T) {
	entries := ParseAll([]string{"level=INFO msg=a", "oops"})
	if len(entries) != 2 || entries[0].Message != "a" || entries[1].Message != "oops" {
		t.Fatalf("ParseAll = %+v", entries)
	}
}
