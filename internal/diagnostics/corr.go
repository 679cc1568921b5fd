package diagnostics

import (
	"math"
	"runtime"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"goreg/domain/dataset"
	"goreg/domain/model"
	"goreg/domain/table"
	"goreg/internal/estimator"
)

// Correlation builds the pairwise Pearson matrix over the numeric variables.
// Off-diagonal cells carry significance stars from the two-sided test of
// zero correlation; the diagonal is printed plain. Rows are computed
// concurrently and land in a pre-sized slice, so cell order is fixed.
func Correlation(f *dataset.Frame, vars []string, opt Options) (*table.Table, error) {
	clean, numeric, err := prepare(f, vars)
	if err != nil {
		return nil, err
	}
	n := clean.Rows()
	values := make([][]float64, len(numeric))
	for i, name := range numeric {
		vals, err := clean.Numeric(name)
		if err != nil {
			return nil, err
		}
		values[i] = vals
	}

	cells := make([][]string, len(numeric))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range numeric {
		g.Go(func() error {
			row := make([]string, len(numeric))
			for j := range numeric {
				if i == j {
					row[j] = formatFloat(1, opt.decimals())
					continue
				}
				r, err := stats.Pearson(values[i], values[j])
				if err != nil {
					r = math.NaN()
				}
				row[j] = formatFloat(r, opt.decimals()) + model.Stars(correlationPValue(r, n))
			}
			cells[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := &table.Table{
		Title:   opt.title("Correlation Matrix"),
		Stub:    "Variables",
		Columns: numeric,
		Notes:   []string{model.StarLegend},
	}
	for i, name := range numeric {
		t.Rows = append(t.Rows, table.Row{Label: name, Cells: cells[i], Kind: table.RowValue})
	}
	return t, nil
}

// correlationPValue is the two-sided test of zero Pearson correlation on
// n-2 degrees of freedom.
func correlationPValue(r float64, n int) float64 {
	if n <= 2 || math.IsNaN(r) {
		return math.NaN()
	}
	den := 1 - r*r
	if den <= 0 {
		return 0
	}
	return estimator.TwoSidedT(r*math.Sqrt(float64(n-2)/den), n-2)
}
