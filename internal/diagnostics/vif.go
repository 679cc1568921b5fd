package diagnostics

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"goreg/domain/dataset"
	"goreg/domain/model"
	"goreg/domain/table"
	"goreg/internal/estimator"
)

// vifInfTol marks an auxiliary fit as perfectly collinear when its
// unexplained share 1-R2 falls below it.
const vifInfTol = 1e-12

// VIF builds the variance-inflation table. Each variable is regressed on
// the remaining ones; the auxiliary fits run concurrently.
func VIF(f *dataset.Frame, vars []string, opt Options) (*table.Table, error) {
	clean, numeric, err := prepare(f, vars)
	if err != nil {
		return nil, err
	}

	type vifRow struct {
		vif   string
		tol   string
		value float64
		mean  bool
	}
	rows := make([]vifRow, len(numeric))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range numeric {
		g.Go(func() error {
			others := make([]string, 0, len(numeric)-1)
			for _, other := range numeric {
				if other != name {
					others = append(others, other)
				}
			}
			fit := &estimator.OLS{Response: name, Regressors: others}
			res, err := fit.Fit(clean)
			if err != nil {
				rows[i] = vifRow{vif: "Error", tol: "-"}
				return nil
			}
			r2, _ := res.Stat(model.StatR2)
			unexplained := 1 - r2
			switch {
			case math.IsNaN(r2):
				rows[i] = vifRow{vif: "Error", tol: "-"}
			case unexplained <= vifInfTol:
				rows[i] = vifRow{vif: "Inf", tol: "0.000"}
			default:
				v := 1 / unexplained
				rows[i] = vifRow{
					vif:   formatFloat(v, opt.decimals()),
					tol:   formatFloat(unexplained, opt.decimals()),
					value: v,
					mean:  true,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := &table.Table{
		Title:   opt.title("Variance Inflation Factor"),
		Columns: []string{"Variable", "VIF", "1/VIF"},
	}
	var sum float64
	var finite int
	for i, name := range numeric {
		r := rows[i]
		t.Rows = append(t.Rows, table.Row{
			Cells: []string{name, r.vif, r.tol},
			Kind:  table.RowValue,
		})
		if r.mean {
			sum += r.value
			finite++
		}
	}
	if finite > 0 {
		t.Rows = append(t.Rows, table.Row{
			Cells: []string{"Mean VIF", formatFloat(sum/float64(finite), opt.decimals()), "."},
			Kind:  table.RowTotal,
		})
	}
	return t, nil
}
