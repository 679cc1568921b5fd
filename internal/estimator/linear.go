package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"goreg/domain/core"
	"goreg/domain/model"
)

// covPlan is a resolved covariance request: the policy kind plus the per-row
// cluster assignment when clustering.
type covPlan struct {
	kind     model.CovarianceKind
	clusters []string
}

// linearModel is the output of a least-squares fit. dfInfer is the degrees of
// freedom used for t inference, which drops to G-1 under clustering.
type linearModel struct {
	names    []string
	beta     []float64
	cov      *mat.Dense
	se       []float64
	tstats   []float64
	pvalues  []float64
	fitted   []float64
	resid    []float64
	rss      float64
	n        int
	k        int
	absorbed int
	dfResid  int
	dfInfer  int
	nclust   int
	useT     bool
	xtxInv   *mat.Dense
}

// fitLinear runs OLS of y on x and attaches the requested covariance.
// absorbed counts parameters swept out before the fit, such as fixed-effect
// group means, and reduces the residual degrees of freedom.
func fitLinear(x *mat.Dense, y []float64, names []string, absorbed int, plan covPlan, useT bool) (*linearModel, error) {
	n, k := x.Dims()
	if n == 0 || k == 0 {
		return nil, fmt.Errorf("%w: empty design", core.ErrEmptyData)
	}
	dfResid := n - k - absorbed
	if dfResid < 0 {
		return nil, fmt.Errorf("%w: %d observations cannot identify %d parameters",
			core.ErrInsufficient, n, k+absorbed)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	xtxInv, err := invertOrPseudo(&xtx)
	if err != nil {
		return nil, err
	}

	yv := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)
	var betaVec mat.VecDense
	betaVec.MulVec(xtxInv, &xty)

	beta := make([]float64, k)
	for j := range beta {
		beta[j] = betaVec.AtVec(j)
	}

	var fv mat.VecDense
	fv.MulVec(x, &betaVec)
	fitted := make([]float64, n)
	resid := make([]float64, n)
	rss := 0.0
	for i := 0; i < n; i++ {
		fitted[i] = fv.AtVec(i)
		resid[i] = y[i] - fitted[i]
		rss += resid[i] * resid[i]
	}

	lm := &linearModel{
		names:    names,
		beta:     beta,
		fitted:   fitted,
		resid:    resid,
		rss:      rss,
		n:        n,
		k:        k,
		absorbed: absorbed,
		dfResid:  dfResid,
		dfInfer:  dfResid,
		useT:     useT,
		xtxInv:   xtxInv,
	}
	if err := lm.applyCovariance(x, plan); err != nil {
		return nil, err
	}
	return lm, nil
}

func (lm *linearModel) applyCovariance(x *mat.Dense, plan covPlan) error {
	switch plan.kind {
	case model.CovClassical, "":
		lm.cov = lm.classicalCov()
	case model.CovRobust:
		meat := scoreCross(x, lm.resid, nil)
		lm.cov = sandwich(lm.xtxInv, meat, hc1Scale(lm.n, lm.dfResid))
	case model.CovCluster:
		if len(plan.clusters) != lm.n {
			return fmt.Errorf("%w: cluster assignment covers %d of %d rows",
				core.ErrData, len(plan.clusters), lm.n)
		}
		groups := groupIndex(plan.clusters)
		g := len(groups.levels)
		if g < 2 {
			return fmt.Errorf("%w: clustered covariance needs at least two clusters", core.ErrData)
		}
		meat := scoreCross(x, lm.resid, groups.of)
		c := float64(g) / float64(g-1) * float64(lm.n-1) / float64(lm.dfResid)
		lm.cov = sandwich(lm.xtxInv, meat, c)
		lm.dfInfer = g - 1
		lm.nclust = g
	default:
		return fmt.Errorf("%w: unknown covariance kind %q", core.ErrSpecification, plan.kind)
	}

	lm.se = make([]float64, lm.k)
	lm.tstats = make([]float64, lm.k)
	lm.pvalues = make([]float64, lm.k)
	for j := 0; j < lm.k; j++ {
		lm.se[j] = math.Sqrt(lm.cov.At(j, j))
		lm.tstats[j] = lm.beta[j] / lm.se[j]
		if lm.useT {
			lm.pvalues[j] = TwoSidedT(lm.tstats[j], lm.dfInfer)
		} else {
			lm.pvalues[j] = TwoSidedZ(lm.tstats[j])
		}
	}
	return nil
}

// classicalCov is sigma^2 (X'X)^-1 with sigma^2 estimated from the residuals.
func (lm *linearModel) classicalCov() *mat.Dense {
	sigma2 := math.NaN()
	if lm.dfResid > 0 {
		sigma2 = lm.rss / float64(lm.dfResid)
	}
	out := mat.NewDense(lm.k, lm.k, nil)
	out.Scale(sigma2, lm.xtxInv)
	return out
}

// scoreCross builds the sandwich middle term from per-row score factors.
// With groupOf nil each row is its own score; otherwise scores are summed
// within groups first.
func scoreCross(x *mat.Dense, factor []float64, groupOf []int) *mat.Dense {
	n, k := x.Dims()
	meat := mat.NewDense(k, k, nil)
	if groupOf == nil {
		for i := 0; i < n; i++ {
			f2 := factor[i] * factor[i]
			for a := 0; a < k; a++ {
				va := f2 * x.At(i, a)
				for b := 0; b < k; b++ {
					meat.Set(a, b, meat.At(a, b)+va*x.At(i, b))
				}
			}
		}
		return meat
	}
	ngroups := 0
	for _, g := range groupOf {
		if g+1 > ngroups {
			ngroups = g + 1
		}
	}
	sums := make([][]float64, ngroups)
	for g := range sums {
		sums[g] = make([]float64, k)
	}
	for i := 0; i < n; i++ {
		s := sums[groupOf[i]]
		for a := 0; a < k; a++ {
			s[a] += factor[i] * x.At(i, a)
		}
	}
	for _, s := range sums {
		for a := 0; a < k; a++ {
			for b := 0; b < k; b++ {
				meat.Set(a, b, meat.At(a, b)+s[a]*s[b])
			}
		}
	}
	return meat
}

func sandwich(bread, meat *mat.Dense, scale float64) *mat.Dense {
	var tmp, cov mat.Dense
	tmp.Mul(bread, meat)
	cov.Mul(&tmp, bread)
	cov.Scale(scale, &cov)
	return &cov
}

func hc1Scale(n, dfResid int) float64 {
	if dfResid <= 0 {
		return math.NaN()
	}
	return float64(n) / float64(dfResid)
}

// slopeIdx lists the design columns excluding the intercept.
func (lm *linearModel) slopeIdx() []int {
	idx := make([]int, 0, lm.k)
	for j, name := range lm.names {
		if name == constName {
			continue
		}
		idx = append(idx, j)
	}
	return idx
}

// waldF tests that the coefficients at idx are jointly zero under the given
// covariance, returning the F statistic and its p-value on (q, dfDen).
func waldF(beta []float64, cov *mat.Dense, idx []int, dfDen int) (float64, float64) {
	q := len(idx)
	if q == 0 || dfDen <= 0 {
		return math.NaN(), math.NaN()
	}
	b := make([]float64, q)
	for i, j := range idx {
		b[i] = beta[j]
	}
	vinv, err := invertOrPseudo(subMatrix(cov, idx))
	if err != nil {
		return math.NaN(), math.NaN()
	}
	f := quadForm(b, vinv) / float64(q)
	return f, FTail(f, q, dfDen)
}

// groupIndex assigns dense group numbers to labels in first-appearance order.
type groupIndexing struct {
	levels []string
	of     []int
}

func groupIndex(labels []string) groupIndexing {
	idx := make(map[string]int, len(labels))
	out := groupIndexing{of: make([]int, len(labels))}
	for i, lbl := range labels {
		g, ok := idx[lbl]
		if !ok {
			g = len(out.levels)
			idx[lbl] = g
			out.levels = append(out.levels, lbl)
		}
		out.of[i] = g
	}
	return out
}
