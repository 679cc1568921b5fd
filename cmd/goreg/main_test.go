package main

import (
	"math"
	"reflect"
	"testing"

	"goreg/domain/dataset"
)

func TestSplitList_TrimsAndDropsEmpties(t *testing.T) {
	got := splitList(" capital, labor ,, output ")
	want := []string{"capital", "labor", "output"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := splitList(""); got != nil {
		t.Errorf("Expected nil for an empty flag, got %v", got)
	}
}

func TestParseCustomRows_SplitsOnFirstEquals(t *testing.T) {
	rows, err := parseCustomRows([]string{"Entity FE=Yes", "Controls=x=1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Label != "Entity FE" || rows[0].Value != "Yes" {
		t.Errorf("Expected Entity FE=Yes, got %s=%s", rows[0].Label, rows[0].Value)
	}
	if rows[1].Label != "Controls" || rows[1].Value != "x=1" {
		t.Errorf("Expected the value to keep later equals signs, got %s=%s", rows[1].Label, rows[1].Value)
	}
}

func TestParseCustomRows_RejectsMissingEquals(t *testing.T) {
	if _, err := parseCustomRows([]string{"no separator"}); err == nil {
		t.Error("Expected an error for an entry without =")
	}
	if _, err := parseCustomRows([]string{"=value"}); err == nil {
		t.Error("Expected an error for an empty label")
	}
}

func TestPreviewTable_ShowsKindsAndMissingCells(t *testing.T) {
	f, err := dataset.New([]dataset.Column{
		dataset.CategoricalColumn("firm", []string{"a", "b"}),
		dataset.NumericColumn("year", []float64{2010, math.NaN()}),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	tbl := previewTable(f, "/tmp/somewhere/data.csv")

	if tbl.Title != "Preview: data.csv" {
		t.Errorf("Expected the file name in the title, got %q", tbl.Title)
	}
	wantCols := []string{"firm\n(categorical)", "year\n(numeric)"}
	if !reflect.DeepEqual(tbl.Columns, wantCols) {
		t.Errorf("Expected headings %v, got %v", wantCols, tbl.Columns)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(tbl.Rows))
	}
	if !reflect.DeepEqual(tbl.Rows[0].Cells, []string{"a", "2010"}) {
		t.Errorf("Expected [a 2010], got %v", tbl.Rows[0].Cells)
	}
	if tbl.Rows[1].Cells[1] != "" {
		t.Errorf("Expected an empty cell for the missing value, got %q", tbl.Rows[1].Cells[1])
	}
}
