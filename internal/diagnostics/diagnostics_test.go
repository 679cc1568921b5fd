package diagnostics

import (
	"errors"
	"math"
	"strings"
	"testing"

	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/table"
)

func mustFrame(t *testing.T, cols []dataset.Column) *dataset.Frame {
	t.Helper()
	f, err := dataset.New(cols)
	if err != nil {
		t.Fatalf("Expected frame to build, got %v", err)
	}
	return f
}

func descFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	return mustFrame(t, []dataset.Column{
		dataset.NumericColumn("x", []float64{1, 2, 3, 4, 5}),
		dataset.NumericColumn("y", []float64{2, 4, 6, 8, 10}),
		dataset.CategoricalColumn("g", []string{"A", "A", "B", "C", "C"}),
	})
}

func TestDescribe_ComputesRequestedStatistics(t *testing.T) {
	tbl, err := Describe(descFrame(t), []string{"x", "y"}, []string{"nobs", "mean", "std", "min", "max", "p50"}, Options{})
	if err != nil {
		t.Fatalf("Expected describe to succeed, got %v", err)
	}
	wantCols := []string{"N", "Mean", "Std.Dev", "Min", "Max", "Median"}
	if len(tbl.Columns) != len(wantCols) {
		t.Fatalf("Expected %d columns, got %d", len(wantCols), len(tbl.Columns))
	}
	for i, c := range wantCols {
		if tbl.Columns[i] != c {
			t.Errorf("Expected column %d to be %q, got %q", i, c, tbl.Columns[i])
		}
	}
	if tbl.Title != "Descriptive Statistics" {
		t.Errorf("Expected default title, got %q", tbl.Title)
	}
	if tbl.Stub != "Variable" {
		t.Errorf("Expected stub Variable, got %q", tbl.Stub)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(tbl.Rows))
	}
	x := tbl.Rows[0]
	if x.Label != "x" {
		t.Errorf("Expected first row x, got %q", x.Label)
	}
	want := []string{"5", "3.000", "1.581", "1.000", "5.000", "3.000"}
	for i, cell := range want {
		if x.Cells[i] != cell {
			t.Errorf("Expected x cell %d to be %q, got %q", i, cell, x.Cells[i])
		}
	}
}

func TestDescribe_ColumnsFollowRequestOrder(t *testing.T) {
	tbl, err := Describe(descFrame(t), []string{"x"}, []string{"mean", "nobs", "p50", "bogus"}, Options{})
	if err != nil {
		t.Fatalf("Expected describe to succeed, got %v", err)
	}
	want := []string{"Mean", "N", "Median"}
	if len(tbl.Columns) != len(want) {
		t.Fatalf("Expected %d columns, got %d", len(want), len(tbl.Columns))
	}
	for i, c := range want {
		if tbl.Columns[i] != c {
			t.Errorf("Expected column %d to be %q, got %q", i, c, tbl.Columns[i])
		}
	}
}

func TestDescribe_ListwiseDeletionAcrossVariables(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.NumericColumn("x", []float64{1, 2, 3, 4}),
		dataset.NumericColumn("y", []float64{10, 20, math.NaN(), 40}),
	})
	tbl, err := Describe(f, []string{"x", "y"}, []string{"nobs", "mean"}, Options{})
	if err != nil {
		t.Fatalf("Expected describe to succeed, got %v", err)
	}
	if tbl.Rows[0].Cells[0] != "3" {
		t.Errorf("Expected x to keep 3 rows after deletion, got %q", tbl.Rows[0].Cells[0])
	}
	if tbl.Rows[0].Cells[1] != "2.333" {
		t.Errorf("Expected x mean over surviving rows, got %q", tbl.Rows[0].Cells[1])
	}
}

func TestDescribe_NoNumericVariables(t *testing.T) {
	_, err := Describe(descFrame(t), []string{"g", "missing"}, []string{"mean"}, Options{})
	if err == nil {
		t.Fatal("Expected error for non-numeric selection, got nil")
	}
	if !errors.Is(err, core.ErrData) {
		t.Errorf("Expected data error, got %v", err)
	}
}

func TestCorrelation_PerfectPairGetsStars(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.NumericColumn("a", []float64{1, 2, 3, 4, 5}),
		dataset.NumericColumn("b", []float64{2, 4, 6, 8, 10}),
	})
	tbl, err := Correlation(f, []string{"a", "b"}, Options{})
	if err != nil {
		t.Fatalf("Expected correlation to succeed, got %v", err)
	}
	if tbl.Stub != "Variables" {
		t.Errorf("Expected stub Variables, got %q", tbl.Stub)
	}
	if tbl.Rows[0].Cells[0] != "1.000" {
		t.Errorf("Expected bare diagonal, got %q", tbl.Rows[0].Cells[0])
	}
	if tbl.Rows[0].Cells[1] != "1.000***" {
		t.Errorf("Expected starred off-diagonal, got %q", tbl.Rows[0].Cells[1])
	}
	if len(tbl.Notes) != 1 || !strings.Contains(tbl.Notes[0], "p<0.01") {
		t.Errorf("Expected significance note, got %v", tbl.Notes)
	}
}

func TestCorrelation_WeakPairStaysBare(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.NumericColumn("a", []float64{1, 2, 3, 4, 5}),
		dataset.NumericColumn("b", []float64{3, 1, 4, 1, 5}),
	})
	tbl, err := Correlation(f, []string{"a", "b"}, Options{})
	if err != nil {
		t.Fatalf("Expected correlation to succeed, got %v", err)
	}
	cell := tbl.Rows[0].Cells[1]
	if strings.Contains(cell, "*") {
		t.Errorf("Expected no stars on a weak correlation, got %q", cell)
	}
}

func TestVIF_PerfectCollinearityReportsInf(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.NumericColumn("x1", []float64{1, 2, 3, 4, 5}),
		dataset.NumericColumn("x2", []float64{2, 4, 6, 8, 10}),
		dataset.NumericColumn("x3", []float64{1, -2, 0, 2, -1}),
	})
	tbl, err := VIF(f, []string{"x1", "x2", "x3"}, Options{})
	if err != nil {
		t.Fatalf("Expected vif to succeed, got %v", err)
	}
	if tbl.Title != "Variance Inflation Factor" {
		t.Errorf("Expected default title, got %q", tbl.Title)
	}
	if got := tbl.Rows[0].Cells; got[0] != "x1" || got[1] != "Inf" || got[2] != "0.000" {
		t.Errorf("Expected x1 row to flag perfect collinearity, got %v", got)
	}
	if got := tbl.Rows[1].Cells; got[1] != "Inf" {
		t.Errorf("Expected x2 row to flag perfect collinearity, got %v", got)
	}
	last := tbl.Rows[len(tbl.Rows)-1]
	if last.Cells[0] != "Mean VIF" || last.Kind != table.RowTotal {
		t.Errorf("Expected Mean VIF summary row, got %v", last)
	}
	if last.Cells[2] != "." {
		t.Errorf("Expected placeholder tolerance on the mean row, got %q", last.Cells[2])
	}
}

func TestVIF_OrthogonalRegressorsNearOne(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.NumericColumn("x", []float64{1, 2, 3, 4, 5}),
		dataset.NumericColumn("z", []float64{1, -2, 0, 2, -1}),
	})
	tbl, err := VIF(f, []string{"x", "z"}, Options{})
	if err != nil {
		t.Fatalf("Expected vif to succeed, got %v", err)
	}
	for _, row := range tbl.Rows[:2] {
		if row.Cells[1] != "1.000" {
			t.Errorf("Expected unit vif for %q, got %q", row.Cells[0], row.Cells[1])
		}
	}
	mean := tbl.Rows[len(tbl.Rows)-1]
	if mean.Cells[1] != "1.000" {
		t.Errorf("Expected unit mean vif, got %q", mean.Cells[1])
	}
}

func TestFrequency_SingleVariableCounts(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.CategoricalColumn("g", []string{"A", "A", "B", "C", "C", "C"}),
	})
	rep, err := Frequency(f, []string{"g"}, false, Options{})
	if err != nil {
		t.Fatalf("Expected frequency to succeed, got %v", err)
	}
	if len(rep.Tables) != 1 {
		t.Fatalf("Expected one table, got %d", len(rep.Tables))
	}
	tbl := rep.Tables[0]
	if tbl.Title != "Frequency Table: g" {
		t.Errorf("Expected per-variable title, got %q", tbl.Title)
	}
	want := [][]string{
		{"A", "2", "33.333", "33.333"},
		{"B", "1", "16.667", "50.000"},
		{"C", "3", "50.000", "100.000"},
		{"Total", "6", "100.000", "100.000"},
	}
	if len(tbl.Rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(tbl.Rows))
	}
	for i, cells := range want {
		for j, cell := range cells {
			if tbl.Rows[i].Cells[j] != cell {
				t.Errorf("Expected row %d cell %d to be %q, got %q", i, j, cell, tbl.Rows[i].Cells[j])
			}
		}
	}
	if tbl.Rows[3].Kind != table.RowTotal {
		t.Errorf("Expected total row kind, got %q", tbl.Rows[3].Kind)
	}
}

func TestFrequency_NumericValuesSortAscending(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.NumericColumn("v", []float64{10, 2, 2, 10, 5, math.NaN()}),
	})
	rep, err := Frequency(f, []string{"v"}, false, Options{})
	if err != nil {
		t.Fatalf("Expected frequency to succeed, got %v", err)
	}
	tbl := rep.Tables[0]
	want := []string{"2", "5", "10"}
	for i, v := range want {
		if tbl.Rows[i].Cells[0] != v {
			t.Errorf("Expected value %d to be %q, got %q", i, v, tbl.Rows[i].Cells[0])
		}
	}
	if tbl.Rows[3].Cells[1] != "5" {
		t.Errorf("Expected total of 5 non-missing rows, got %q", tbl.Rows[3].Cells[1])
	}
}

func TestFrequency_MergedAddsSubtotals(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.CategoricalColumn("g", []string{"A", "B", "B"}),
		dataset.NumericColumn("v", []float64{1, 1, 2}),
	})
	rep, err := Frequency(f, []string{"g", "v"}, true, Options{})
	if err != nil {
		t.Fatalf("Expected merged frequency to succeed, got %v", err)
	}
	tbl := rep.Tables[0]
	if tbl.Title != "Merged Frequency Table" {
		t.Errorf("Expected merged title, got %q", tbl.Title)
	}
	if tbl.Columns[0] != "Variable" {
		t.Errorf("Expected leading Variable column, got %q", tbl.Columns[0])
	}
	var subtotals int
	for _, row := range tbl.Rows {
		if row.Cells[1] == "Subtotal" {
			subtotals++
			if row.Kind != table.RowTotal {
				t.Errorf("Expected subtotal kind, got %q", row.Kind)
			}
		}
	}
	if subtotals != 2 {
		t.Errorf("Expected one subtotal per variable, got %d", subtotals)
	}
}

func TestFrequency_SkipsEmptyVariables(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.CategoricalColumn("g", []string{"A", "B"}),
		dataset.CategoricalColumn("empty", []string{"", ""}),
	})
	rep, err := Frequency(f, []string{"g", "empty"}, false, Options{})
	if err != nil {
		t.Fatalf("Expected frequency to succeed, got %v", err)
	}
	if len(rep.Tables) != 1 {
		t.Fatalf("Expected the empty variable to be skipped, got %d tables", len(rep.Tables))
	}
	if _, err := Frequency(f, []string{"empty"}, false, Options{}); err == nil {
		t.Fatal("Expected error for a variable with no valid data, got nil")
	}
}

func TestGroupedDescribe_SplitsByGroupAscending(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.CategoricalColumn("g", []string{"B", "A", "B", "A"}),
		dataset.NumericColumn("x", []float64{10, 1, 30, 3}),
		dataset.NumericColumn("z", []float64{1, math.NaN(), 2, math.NaN()}),
	})
	rep, err := GroupedDescribe(f, []string{"x", "z"}, "g", []string{"nobs", "mean"}, Options{})
	if err != nil {
		t.Fatalf("Expected grouped describe to succeed, got %v", err)
	}
	if rep.Title != "Grouped Descriptive Statistics by g" {
		t.Errorf("Expected default report title, got %q", rep.Title)
	}
	if len(rep.Tables) != 2 {
		t.Fatalf("Expected one table per group, got %d", len(rep.Tables))
	}
	if rep.Tables[0].Title != "g = A" || rep.Tables[1].Title != "g = B" {
		t.Errorf("Expected groups in ascending order, got %q then %q", rep.Tables[0].Title, rep.Tables[1].Title)
	}
	a := rep.Tables[0]
	if a.Rows[0].Cells[0] != "2" || a.Rows[0].Cells[1] != "2.000" {
		t.Errorf("Expected group A to average its own rows, got %v", a.Rows[0].Cells)
	}
	if a.Rows[1].Cells[0] != "0" || a.Rows[1].Cells[1] != "" {
		t.Errorf("Expected zero count and blank mean for an all-missing variable, got %v", a.Rows[1].Cells)
	}
}

func TestGroupedDescribe_NumericGroupOrdersNumerically(t *testing.T) {
	f := mustFrame(t, []dataset.Column{
		dataset.NumericColumn("year", []float64{10, 9, 10, 9}),
		dataset.NumericColumn("x", []float64{1, 2, 3, 4}),
	})
	rep, err := GroupedDescribe(f, []string{"x"}, "year", []string{"mean"}, Options{})
	if err != nil {
		t.Fatalf("Expected grouped describe to succeed, got %v", err)
	}
	if rep.Tables[0].Title != "year = 9" || rep.Tables[1].Title != "year = 10" {
		t.Errorf("Expected numeric group order, got %q then %q", rep.Tables[0].Title, rep.Tables[1].Title)
	}
}

func TestGroupedDescribe_MissingGroupColumn(t *testing.T) {
	_, err := GroupedDescribe(descFrame(t), []string{"x"}, "nope", []string{"mean"}, Options{})
	if err == nil {
		t.Fatal("Expected error for a missing group column, got nil")
	}
	if !errors.Is(err, core.ErrColumnMissing) {
		t.Errorf("Expected column-missing error, got %v", err)
	}
}
