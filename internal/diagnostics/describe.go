package diagnostics

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/table"
)

// Describe summarizes the numeric variables after listwise deletion,
// one row per variable with the requested statistics as columns.
func Describe(f *dataset.Frame, vars, statKeys []string, opt Options) (*table.Table, error) {
	clean, numeric, err := prepare(f, vars)
	if err != nil {
		return nil, err
	}
	cols := resolveStatColumns(statKeys)
	if len(cols) == 0 {
		return nil, core.DataError("no recognized statistics requested")
	}

	t := &table.Table{
		Title:   opt.title("Descriptive Statistics"),
		Stub:    "Variable",
		Columns: make([]string, len(cols)),
	}
	for i, c := range cols {
		t.Columns[i] = c.label
	}
	for _, name := range numeric {
		vals, err := clean.Numeric(name)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, table.Row{
			Label: name,
			Cells: statCells(vals, cols, opt.decimals()),
			Kind:  table.RowValue,
		})
	}
	return t, nil
}

// GroupedDescribe summarizes the numeric variables separately for every
// level of the grouping variable, levels in ascending order. Rows missing
// the grouping value are dropped; within a group each variable uses its own
// available observations.
func GroupedDescribe(f *dataset.Frame, vars []string, groupVar string, statKeys []string, opt Options) (*table.Report, error) {
	gcol, ok := f.Column(groupVar)
	if !ok {
		return nil, core.NewColumnMissingError(groupVar)
	}
	numeric := dedup(f.NumericNames(vars))
	if len(numeric) == 0 {
		return nil, core.DataError("no numeric variables selected")
	}
	cols := resolveStatColumns(statKeys)
	if len(cols) == 0 {
		return nil, core.DataError("no recognized statistics requested")
	}

	keep := append([]string{groupVar}, numeric...)
	sel, err := f.Select(keep...)
	if err != nil {
		return nil, err
	}
	clean, err := sel.DropMissing(groupVar)
	if err != nil {
		return nil, err
	}
	if clean.Rows() == 0 {
		return nil, core.ErrEmptyData
	}

	labels, err := clean.Labels(groupVar)
	if err != nil {
		return nil, err
	}
	values := make(map[string][]float64, len(numeric))
	for _, name := range numeric {
		vals, err := clean.Numeric(name)
		if err != nil {
			return nil, err
		}
		values[name] = vals
	}

	report := &table.Report{Title: opt.title(fmt.Sprintf("Grouped Descriptive Statistics by %s", groupVar))}
	for _, level := range groupLevels(gcol.Kind, labels) {
		t := table.Table{
			Title:   fmt.Sprintf("%s = %s", groupVar, level),
			Stub:    "Variable",
			Columns: make([]string, len(cols)),
		}
		for i, c := range cols {
			t.Columns[i] = c.label
		}
		for _, name := range numeric {
			var vals []float64
			for i, l := range labels {
				if l != level {
					continue
				}
				if v := values[name][i]; !math.IsNaN(v) {
					vals = append(vals, v)
				}
			}
			// A variable that is all-missing within a group reports a
			// zero count and blank statistic cells.
			t.Rows = append(t.Rows, table.Row{
				Label: name,
				Cells: statCells(vals, cols, opt.decimals()),
				Kind:  table.RowValue,
			})
		}
		report.Tables = append(report.Tables, t)
	}
	return report, nil
}

func statCells(vals []float64, cols []statColumn, decimals int) []string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		if c.key == "nobs" {
			cells[i] = strconv.Itoa(len(vals))
			continue
		}
		cells[i] = formatFloat(statValue(c.key, vals), decimals)
	}
	return cells
}

// groupLevels orders the distinct group labels ascending, numerically when
// the grouping column is numeric.
func groupLevels(kind dataset.Kind, labels []string) []string {
	seen := make(map[string]bool, len(labels))
	var out []string
	for _, l := range labels {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if kind == dataset.KindNumeric {
		sort.Slice(out, func(i, j int) bool {
			a, _ := strconv.ParseFloat(out[i], 64)
			b, _ := strconv.ParseFloat(out[j], 64)
			return a < b
		})
		return out
	}
	sort.Strings(out)
	return out
}
