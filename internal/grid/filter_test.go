package grid

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFilter_AmountGreaterThanThree(t *testing.T) {
	f, err := ParseFilter("amount", "gt", "3")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	ds := exampleDataset()
	out := f.Apply(ds)
	if len(out.Rows) != 1 || out.Rows[0]["item"] != "milk" {
		t.Fatalf("filtered rows = %v, want only milk", out.Rows)
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("Apply modified the input dataset")
	}
}

func TestFilter_Operators(t *testing.T) {
	ds := Dataset{
		Columns: []string{"id", "amount"},
		Rows: []Row{
			{"id": 1.0, "amount": json.Number("1")},
			{"id": 2.0, "amount": "5"},
			{"id": 3.0, "amount": 10.0},
			{"id": 4.0, "amount": "ten"},
			{"id": 5.0, "amount": nil},
		},
	}
	tests := []struct {
		op   Op
		want []string
	}{
		{OpLess, []string{"1"}},
		{OpGreater, []string{"3"}},
		{OpEqual, []string{"2"}},
	}
	for _, tt := range tests {
		f := Filter{Column: "amount", Op: tt.op, Threshold: 5}
		got := f.Apply(ds).IDs()
		if len(got) != len(tt.want) || got[0] != tt.want[0] {
			t.Errorf("%s 5 -> %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestParseFilter_Rejects(t *testing.T) {
	cases := []struct{ col, op, val string }{
		{"", "gt", "1"},
		{"amount", "ge", "1"},
		{"amount", "gt", "abc"},
		{"amount", "gt", ""},
	}
	for _, c := range cases {
		if _, err := ParseFilter(c.col, c.op, c.val); !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("ParseFilter(%q,%q,%q) error = %v, want ErrInvalidFilter", c.col, c.op, c.val, err)
		}
	}
	f, err := ParseFilter(" amount ", " LT ", " 2.5 ")
	if err != nil {
		t.Fatalf("ParseFilter returned error: %v", err)
	}
	if f.String() != "amount lt 2.5" {
		t.Fatalf("String = %q", f.String())
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		column string
		value  any
		want   string
	}{
		{"date", "2024-01-05", "01/05/2024"},
		{"date", "not-a-date", "not-a-date"},
		{"created_DATE", "2024-03-09T10:00:00Z", "03/09/2024"},
		{"date", nil, ""},
		{"amount", json.Number("12.50"), "12.50"},
		{"amount", 12.5, "12.5"},
		{"category", "Food", "Food"},
		{"flag", true, "true"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.column, tt.value); got != tt.want {
			t.Errorf("FormatValue(%q, %v) = %q, want %q", tt.column, tt.value, got, tt.want)
		}
	}
}

func TestDataset_Distinct(t *testing.T) {
	ds := Dataset{
		Columns: []string{"id", "category"},
		Rows: []Row{
			{"id": 1.0, "category": "Food"},
			{"id": 2.0, "category": "Rent"},
			{"id": 3.0, "category": "Food"},
			{"id": 4.0, "category": " "},
		},
	}
	got := ds.Distinct("category")
	if len(got) != 2 || got[0] != "Food" || got[1] != "Rent" {
		t.Fatalf("Distinct = %v, want [Food Rent]", got)
	}
}
