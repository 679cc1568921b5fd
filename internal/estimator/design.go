package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"goreg/domain/core"
	"goreg/domain/dataset"
)

// constName is the design-matrix label for the intercept column.
const constName = "const"

// design holds the response vector and regressor columns pulled from a frame,
// with the intercept (when present) always in the first position.
type design struct {
	response string
	y        []float64
	names    []string
	cols     [][]float64
	hasConst bool
	n        int
}

// buildDesign assembles a design from the named columns of f. Regressors are
// deduplicated in order and the response is excluded if listed among them.
// The frame must already be free of missing values in the named columns.
func buildDesign(f *dataset.Frame, response string, regressors []string, withConst bool) (*design, error) {
	if f.Rows() == 0 {
		return nil, fmt.Errorf("%w: no observations remain", core.ErrEmptyData)
	}
	y, err := f.Numeric(response)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(response, y); err != nil {
		return nil, err
	}

	d := &design{
		response: response,
		y:        y,
		hasConst: withConst,
		n:        f.Rows(),
	}
	if withConst {
		ones := make([]float64, d.n)
		for i := range ones {
			ones[i] = 1
		}
		d.names = append(d.names, constName)
		d.cols = append(d.cols, ones)
	}
	seen := map[string]bool{response: true}
	for _, name := range regressors {
		if seen[name] {
			continue
		}
		seen[name] = true
		col, err := f.Numeric(name)
		if err != nil {
			return nil, err
		}
		if err := checkFinite(name, col); err != nil {
			return nil, err
		}
		d.names = append(d.names, name)
		d.cols = append(d.cols, col)
	}
	return d, nil
}

// k reports the number of design columns including the intercept.
func (d *design) k() int { return len(d.cols) }

// matrix lays the design columns out as an n by k dense matrix.
func (d *design) matrix() *mat.Dense {
	m := mat.NewDense(d.n, d.k(), nil)
	for j, col := range d.cols {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}

// dropColumns returns a copy of the design without the columns at the given
// indexes.
func (d *design) dropColumns(drop map[int]bool) *design {
	out := &design{response: d.response, y: d.y, hasConst: d.hasConst, n: d.n}
	for j := range d.cols {
		if drop[j] {
			if j == 0 && d.hasConst {
				out.hasConst = false
			}
			continue
		}
		out.names = append(out.names, d.names[j])
		out.cols = append(out.cols, d.cols[j])
	}
	return out
}

func checkFinite(name string, vals []float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: column %q still contains missing or non-finite values", core.ErrData, name)
		}
	}
	return nil
}

// centeredTSS computes the total sum of squares of y about its mean.
func centeredTSS(y []float64) float64 {
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	tss := 0.0
	for _, v := range y {
		dev := v - mean
		tss += dev * dev
	}
	return tss
}
