// Package format turns fit results into renderer-agnostic tables: the
// side-by-side merged regression table and the single-fit detail view.
package format

import (
	"fmt"
	"math"
	"strconv"

	"goreg/domain/core"
	"goreg/domain/model"
	"goreg/domain/table"
)

// Options carries the display controls of the merged table.
type Options struct {
	Title    string
	Decimals int

	// ShowTStats switches the parenthesized row from standard errors to
	// t/z statistics.
	ShowTStats bool

	// StatKeys selects and orders the exported model statistics. The
	// observation count is always moved to the front.
	StatKeys []string
}

func (o Options) decimals() int {
	if o.Decimals <= 0 {
		return 3
	}
	return o.Decimals
}

func (o Options) title() string {
	if o.Title != "" {
		return o.Title
	}
	return "Regression Analysis"
}

func (o Options) statKeys() []string {
	if len(o.StatKeys) == 0 {
		return model.DefaultStatKeys
	}
	return o.StatKeys
}

// statDef ties an export key to its row label and the statistic key results
// store.
type statDef struct {
	key      string
	label    string
	statName string
}

// statDisplay is a slice, not a map: row order must be deterministic.
var statDisplay = []statDef{
	{"nobs", "Observations", model.StatN},
	{"r2", "R-squared", model.StatR2},
	{"adj_r2", "Adj. R-squared", model.StatAdjR2},
	{"f_stat", "F-statistic", model.StatF},
	{"pseudo_r2", "Pseudo R2", model.StatPseudoR2},
	{"aic", "AIC", model.StatAIC},
	{"bic", "BIC", model.StatBIC},
	{"ll", "Log Likelihood", model.StatLL},
}

// Merged builds the academic side-by-side table over the accumulated fits:
// one column per result, paired coefficient and spread rows over the union
// of variable names with the constant forced last, then statistics, custom
// rows and the footer notes.
func Merged(results []model.FitResult, opt Options) (*table.Table, error) {
	if len(results) == 0 {
		return nil, core.DataError("no results to merge")
	}
	d := opt.decimals()

	t := &table.Table{
		Title:   opt.title(),
		Stub:    "Variables",
		Columns: make([]string, len(results)),
	}
	for i, r := range results {
		t.Columns[i] = fmt.Sprintf("(%d)\n%s\n(%s)", i+1, r.Response, r.Method.Label())
	}

	for _, name := range variableUnion(results) {
		coefCells := make([]string, len(results))
		spreadCells := make([]string, len(results))
		for i, r := range results {
			c, ok := findCoefficient(&r, name)
			if !ok {
				continue
			}
			coefCells[i] = formatValue(c.Value, d) + c.Stars()
			spread := c.StdErr
			if opt.ShowTStats {
				spread = c.TStat
			}
			if s := formatValue(spread, d); s != "" {
				spreadCells[i] = "(" + s + ")"
			}
		}
		t.Rows = append(t.Rows,
			table.Row{Label: name, Cells: coefCells, Kind: table.RowCoefficient},
			table.Row{Cells: spreadCells, Kind: table.RowSpread},
		)
	}

	t.Rows = append(t.Rows, statRows(results, opt.statKeys(), d)...)
	t.Rows = append(t.Rows, customRows(results)...)
	t.Notes = notes(results, opt.ShowTStats)
	return t, nil
}

// variableUnion lists every non-constant variable in first-seen order, with
// the constant appended last when any result carries one.
func variableUnion(results []model.FitResult) []string {
	var names []string
	seen := make(map[string]bool)
	hasConst := false
	for _, r := range results {
		for _, c := range r.Coeffs {
			if !seen[c.Name] {
				seen[c.Name] = true
				names = append(names, c.Name)
			}
		}
		if r.Constant != nil {
			hasConst = true
		}
	}
	if hasConst {
		names = append(names, model.ConstantName)
	}
	return names
}

func findCoefficient(r *model.FitResult, name string) (model.Coefficient, bool) {
	if name == model.ConstantName {
		if r.Constant == nil {
			return model.Coefficient{}, false
		}
		return *r.Constant, true
	}
	for _, c := range r.Coeffs {
		if c.Name == name {
			return c, true
		}
	}
	return model.Coefficient{}, false
}

// statRows builds one row per requested statistic present in at least one
// result. The observation count always leads.
func statRows(results []model.FitResult, keys []string, decimals int) []table.Row {
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "nobs" {
			ordered = append(ordered, k)
		}
	}
	if len(ordered) > 0 {
		ordered = ordered[:1]
	}
	for _, k := range keys {
		if k != "nobs" {
			ordered = append(ordered, k)
		}
	}

	var rows []table.Row
	for _, key := range ordered {
		disp, ok := displayFor(key)
		if !ok {
			continue
		}
		cells := make([]string, len(results))
		present := false
		for i, r := range results {
			v, ok := r.Stat(disp.statName)
			if !ok || math.IsNaN(v) {
				continue
			}
			present = true
			if key == "nobs" {
				cells[i] = strconv.Itoa(int(v))
				continue
			}
			cells[i] = formatValue(v, decimals)
		}
		if !present {
			continue
		}
		rows = append(rows, table.Row{Label: disp.label, Cells: cells, Kind: table.RowStatistic})
	}
	return rows
}

func displayFor(key string) (statDef, bool) {
	for _, d := range statDisplay {
		if d.key == key {
			return d, true
		}
	}
	return statDef{}, false
}

// customRows unions the custom labels in first-seen order; a result without
// a label shows the literal "No".
func customRows(results []model.FitResult) []table.Row {
	var labels []string
	seen := make(map[string]bool)
	for _, r := range results {
		for _, row := range r.CustomRows {
			if !seen[row.Label] {
				seen[row.Label] = true
				labels = append(labels, row.Label)
			}
		}
	}
	var rows []table.Row
	for _, label := range labels {
		cells := make([]string, len(results))
		for i, r := range results {
			cells[i] = "No"
			for _, row := range r.CustomRows {
				if row.Label == label {
					cells[i] = row.Value
					break
				}
			}
		}
		rows = append(rows, table.Row{Label: label, Cells: cells, Kind: table.RowCustom})
	}
	return rows
}

func notes(results []model.FitResult, showTStats bool) []string {
	out := make([]string, 0, 3)
	if showTStats {
		out = append(out, "t-statistics in parentheses")
	} else {
		out = append(out, "Standard errors in parentheses")
	}
	for _, r := range results {
		if r.Clustered() {
			out = append(out, "Standard errors are clustered.")
			break
		}
	}
	return append(out, model.StarLegend)
}

// formatValue renders a float at the given precision, with NaN and infinity
// as an empty cell.
func formatValue(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
