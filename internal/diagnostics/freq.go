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

var freqColumns = []string{"Value", "Freq.", "Percent", "Cum."}

// Frequency tallies the selected variables over the raw frame, missing
// values excluded per variable. A single variable yields one table, several
// yield one table each, or one merged table with per-variable subtotals.
func Frequency(f *dataset.Frame, vars []string, merge bool, opt Options) (*table.Report, error) {
	var valid []string
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if f.Has(v) && !seen[v] {
			seen[v] = true
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return nil, core.DataError("no valid variables selected")
	}

	if len(valid) == 1 {
		name := valid[0]
		counts := valueCounts(f, name)
		if counts.total == 0 {
			return nil, core.DataError("variable %q has no valid data", name)
		}
		t := frequencyTable(counts, opt.decimals())
		t.Title = opt.title(fmt.Sprintf("Frequency Table: %s", name))
		return table.SingleTable(t), nil
	}

	if merge {
		return mergedFrequency(f, valid, opt)
	}

	report := &table.Report{Title: opt.Title}
	for _, name := range valid {
		counts := valueCounts(f, name)
		if counts.total == 0 {
			continue
		}
		t := frequencyTable(counts, opt.decimals())
		t.Title = fmt.Sprintf("Frequency Table: %s", name)
		report.Tables = append(report.Tables, t)
	}
	if len(report.Tables) == 0 {
		return nil, core.DataError("no frequency table could be built")
	}
	return report, nil
}

func mergedFrequency(f *dataset.Frame, vars []string, opt Options) (*table.Report, error) {
	t := table.Table{
		Title:   opt.title("Merged Frequency Table"),
		Columns: append([]string{"Variable"}, freqColumns...),
	}
	d := opt.decimals()
	for _, name := range vars {
		counts := valueCounts(f, name)
		if counts.total == 0 {
			continue
		}
		cum := 0.0
		for i, label := range counts.labels {
			pct := percentOf(counts.counts[i], counts.total)
			cum += pct
			t.Rows = append(t.Rows, table.Row{
				Cells: []string{name, label, strconv.Itoa(counts.counts[i]), formatFloat(pct, d), formatFloat(cum, d)},
				Kind:  table.RowValue,
			})
		}
		t.Rows = append(t.Rows, table.Row{
			Cells: []string{name, "Subtotal", strconv.Itoa(counts.total), formatFloat(100, d), formatFloat(100, d)},
			Kind:  table.RowTotal,
		})
	}
	if len(t.Rows) == 0 {
		return nil, core.DataError("no frequency table could be built")
	}
	return table.SingleTable(t), nil
}

func frequencyTable(c counted, decimals int) table.Table {
	t := table.Table{Columns: freqColumns}
	cum := 0.0
	for i, label := range c.labels {
		pct := percentOf(c.counts[i], c.total)
		cum += pct
		t.Rows = append(t.Rows, table.Row{
			Cells: []string{label, strconv.Itoa(c.counts[i]), formatFloat(pct, decimals), formatFloat(cum, decimals)},
			Kind:  table.RowValue,
		})
	}
	t.Rows = append(t.Rows, table.Row{
		Cells: []string{"Total", strconv.Itoa(c.total), formatFloat(100, decimals), formatFloat(100, decimals)},
		Kind:  table.RowTotal,
	})
	return t
}

func percentOf(count, total int) float64 {
	return float64(count) / float64(total) * 100
}

// counted holds the distinct values of one variable in ascending order.
type counted struct {
	labels []string
	counts []int
	total  int
}

// valueCounts tallies the non-missing values of a column, ordered ascending
// by value for numeric columns and lexically for categorical ones.
func valueCounts(f *dataset.Frame, name string) counted {
	col, ok := f.Column(name)
	if !ok {
		return counted{}
	}
	var c counted
	if col.Kind == dataset.KindNumeric {
		tally := make(map[float64]int)
		for _, v := range col.Num {
			if math.IsNaN(v) {
				continue
			}
			tally[v]++
			c.total++
		}
		keys := make([]float64, 0, len(tally))
		for k := range tally {
			keys = append(keys, k)
		}
		sort.Float64s(keys)
		for _, k := range keys {
			c.labels = append(c.labels, strconv.FormatFloat(k, 'g', -1, 64))
			c.counts = append(c.counts, tally[k])
		}
		return c
	}
	tally := make(map[string]int)
	for _, s := range col.Str {
		if s == "" {
			continue
		}
		tally[s]++
		c.total++
	}
	keys := make([]string, 0, len(tally))
	for k := range tally {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.labels = append(c.labels, k)
		c.counts = append(c.counts, tally[k])
	}
	return c
}
