package modeltest

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/model"
	"goreg/internal/estimator"
)

// Comparison is the per-coefficient audit line of a Hausman test. When the
// variance of the difference is not positive, NegativeVariance is set and
// DiffStdErr is meaningless.
type Comparison struct {
	Name             string  `json:"name"`
	FE               float64 `json:"fe"`
	RE               float64 `json:"re"`
	Diff             float64 `json:"diff"`
	FEStdErr         float64 `json:"fe_std_err"`
	REStdErr         float64 `json:"re_std_err"`
	DiffStdErr       float64 `json:"std_err_diff"`
	NegativeVariance bool    `json:"negative_variance"`
}

// HausmanResult reports the fixed-versus-random effects test. Definite is
// false when the covariance difference is not positive definite; the
// statistic then carries the absolute value and no p-value applies.
type HausmanResult struct {
	Name        string       `json:"test_name"`
	Null        string       `json:"null_hypothesis"`
	Alternative string       `json:"alternative_hypothesis"`
	Statistic   float64      `json:"chi2_statistic"`
	DF          int          `json:"df"`
	Definite    bool         `json:"definite"`
	PValue      float64      `json:"p_value"`
	Stars       string       `json:"significance"`
	Conclusion  Conclusion   `json:"-"`
	Summary     string       `json:"conclusion"`
	Warning     string       `json:"warning,omitempty"`
	Sigmamore   bool         `json:"sigmamore"`
	Comparisons []Comparison `json:"comparisons"`
	Decimals    int          `json:"-"`
}

// Hausman contrasts the fixed-effects estimate (consistent under both
// hypotheses) with the random-effects estimate (efficient under the null).
// Both fits carry an intercept and classical covariances. With sigmamore the
// fixed-effects covariance is rescaled by (s_pooled/s_fe)^2 and the pooled
// covariance stands in for the random-effects one, so both sides share a
// single error-variance estimate.
func Hausman(f *dataset.Frame, response string, regressors []string, panel model.Panel, decimals int, sigmamore bool) (*HausmanResult, error) {
	fixed := &estimator.FixedEffects{
		Response:     response,
		Regressors:   regressors,
		Panel:        panel,
		WithConstant: true,
	}
	fr, err := fixed.TestFit(f)
	if err != nil {
		return nil, err
	}
	random := &estimator.RandomEffects{Response: response, Regressors: regressors, Panel: panel}
	rr, err := random.TestFit(f)
	if err != nil {
		return nil, err
	}

	names, feIdx, reIdx := commonCoefficients(fr.Names, rr.Names)
	if len(names) == 0 {
		return nil, core.NumericalError("the fixed and random effects fits share no coefficients")
	}
	betaFE := subset(fr.Beta, feIdx)
	betaRE := subset(rr.Beta, reIdx)
	covFE := pick(fr.Cov, feIdx)
	covRE := pick(rr.Cov, reIdx)

	if sigmamore {
		pooled := &estimator.Pooled{Response: response, Regressors: regressors, Panel: panel}
		pr, err := pooled.TestFit(f)
		if err != nil {
			return nil, err
		}
		_, _, poolIdx := commonCoefficients(names, pr.Names)
		if len(poolIdx) != len(names) {
			return nil, core.NumericalError("the pooled fit is missing coefficients needed for sigmamore rescaling")
		}
		sFE := math.Sqrt(fr.RSS / float64(fr.DFResid))
		sRE := math.Sqrt(pr.RSS / float64(pr.DFResid))
		factor := (sRE / sFE) * (sRE / sFE)
		covFE.Scale(factor, covFE)
		covRE = pick(pr.Cov, poolIdx)
	}

	diff := make([]float64, len(names))
	for i := range diff {
		diff[i] = betaFE[i] - betaRE[i]
	}
	covDiff := mat.NewDense(len(names), len(names), nil)
	covDiff.Sub(covFE, covRE)
	inv, err := estimator.PseudoInverse(covDiff)
	if err != nil {
		return nil, err
	}
	h := quadratic(diff, inv)
	df := len(names)

	res := &HausmanResult{
		Name:        "Hausman Test (Fixed Effects vs Random Effects)",
		Null:        "The random effects model is appropriate (entity effects are uncorrelated with the regressors)",
		Alternative: "The fixed effects model is appropriate (entity effects are correlated with the regressors)",
		DF:          df,
		Sigmamore:   sigmamore,
		Comparisons: comparisons(names, betaFE, betaRE, covFE, covRE, covDiff),
		Decimals:    decimals,
	}
	if h < 0 {
		res.Statistic = math.Abs(h)
		res.Definite = false
		res.PValue = math.NaN()
		res.Conclusion = ConcludeIndefinite
		res.Warning = "The covariance difference V_fe - V_re is not positive definite."
		res.Summary = "The standard decision rule does not apply; the fixed and random " +
			"effects estimates are close enough that either model may be adequate. " +
			"Review the model setup before relying on this test."
		return res, nil
	}
	res.Statistic = h
	res.Definite = true
	res.PValue = estimator.ChiSquareTail(h, df)
	res.Conclusion, res.Stars, res.Summary = verdict(res.PValue, "Cannot reject the null hypothesis; the random effects model is adequate.")
	return res, nil
}

// commonCoefficients lists the names present in both fits, preserving the
// order of the first, with positions into each.
func commonCoefficients(first, second []string) (names []string, firstIdx, secondIdx []int) {
	pos := make(map[string]int, len(second))
	for i, n := range second {
		pos[n] = i
	}
	for i, n := range first {
		j, ok := pos[n]
		if !ok {
			continue
		}
		names = append(names, n)
		firstIdx = append(firstIdx, i)
		secondIdx = append(secondIdx, j)
	}
	return names, firstIdx, secondIdx
}

func comparisons(names []string, betaFE, betaRE []float64, covFE, covRE, covDiff *mat.Dense) []Comparison {
	out := make([]Comparison, len(names))
	for i, name := range names {
		c := Comparison{
			Name:     name,
			FE:       betaFE[i],
			RE:       betaRE[i],
			Diff:     betaFE[i] - betaRE[i],
			FEStdErr: math.Sqrt(covFE.At(i, i)),
			REStdErr: math.Sqrt(covRE.At(i, i)),
		}
		if v := covDiff.At(i, i); v > 0 {
			c.DiffStdErr = math.Sqrt(v)
		} else {
			c.NegativeVariance = true
		}
		out[i] = c
	}
	return out
}

func subset(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}

// pick extracts the square submatrix over the given rows and columns.
func pick(a *mat.Dense, idx []int) *mat.Dense {
	out := mat.NewDense(len(idx), len(idx), nil)
	for i, ri := range idx {
		for j, cj := range idx {
			out.Set(i, j, a.At(ri, cj))
		}
	}
	return out
}

func quadratic(v []float64, a *mat.Dense) float64 {
	total := 0.0
	for i := range v {
		for j := range v {
			total += v[i] * a.At(i, j) * v[j]
		}
	}
	return total
}
