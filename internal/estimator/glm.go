package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/model"
)

// Fisher scoring controls. Convergence requires both the likelihood and the
// coefficients to settle, so a separated fit whose likelihood plateaus while
// the coefficients still drift is reported as non-convergent.
const (
	glmMaxIter   = 50
	glmTolLL     = 1e-8
	glmTolParams = 1e-6
	muFloor      = 1e-10
)

// GLM fits a binary-response model, logit or probit, by Fisher scoring.
type GLM struct {
	Method     model.Method
	Response   string
	Regressors []string
	Cov        model.Covariance
}

func (e *GLM) Fit(f *dataset.Frame) (*model.FitResult, error) {
	d, err := buildDesign(f, e.Response, e.Regressors, true)
	if err != nil {
		return nil, err
	}
	if err := checkBinary(e.Response, d.y); err != nil {
		return nil, err
	}
	plan, err := resolveCov(f, e.Cov)
	if err != nil {
		return nil, err
	}

	x := d.matrix()
	n, k := x.Dims()
	dfResid := n - k
	if dfResid < 0 {
		return nil, fmt.Errorf("%w: %d observations cannot identify %d parameters",
			core.ErrInsufficient, n, k)
	}

	beta := make([]float64, k)
	eta := make([]float64, n)
	mu := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, n)

	evaluate := func() {
		for i := 0; i < n; i++ {
			s := 0.0
			for j := 0; j < k; j++ {
				s += x.At(i, j) * beta[j]
			}
			eta[i] = s
		}
		glmMoments(e.Method, eta, d.y, mu, w, z)
	}

	evaluate()
	ll := bernoulliLL(d.y, mu)
	converged := false
	for iter := 0; iter < glmMaxIter; iter++ {
		next, err := weightedSolve(x, z, w)
		if err != nil {
			return nil, err
		}
		maxStep := 0.0
		for j := range beta {
			step := math.Abs(next[j] - beta[j])
			if step > maxStep {
				maxStep = step
			}
		}
		beta = next
		evaluate()
		llNext := bernoulliLL(d.y, mu)
		if math.Abs(llNext-ll) < glmTolLL && maxStep < glmTolParams {
			ll = llNext
			converged = true
			break
		}
		ll = llNext
	}
	if !converged {
		return nil, core.NewConvergenceError(string(e.Method), glmMaxIter)
	}

	bread, err := invertOrPseudo(weightedCross(x, w))
	if err != nil {
		return nil, err
	}
	var cov *mat.Dense
	switch plan.kind {
	case model.CovClassical:
		cov = bread
	case model.CovRobust:
		meat := scoreCross(x, glmScores(e.Method, eta, d.y, mu), nil)
		cov = sandwich(bread, meat, hc1Scale(n, dfResid))
	case model.CovCluster:
		if len(plan.clusters) != n {
			return nil, fmt.Errorf("%w: cluster assignment covers %d of %d rows",
				core.ErrData, len(plan.clusters), n)
		}
		groups := groupIndex(plan.clusters)
		g := len(groups.levels)
		if g < 2 {
			return nil, fmt.Errorf("%w: clustered covariance needs at least two clusters", core.ErrData)
		}
		meat := scoreCross(x, glmScores(e.Method, eta, d.y, mu), groups.of)
		c := float64(g) / float64(g-1) * float64(n-1) / float64(dfResid)
		cov = sandwich(bread, meat, c)
	default:
		return nil, fmt.Errorf("%w: unknown covariance kind %q", core.ErrSpecification, plan.kind)
	}

	se := make([]float64, k)
	zstats := make([]float64, k)
	pvalues := make([]float64, k)
	for j := 0; j < k; j++ {
		se[j] = math.Sqrt(cov.At(j, j))
		zstats[j] = beta[j] / se[j]
		pvalues[j] = TwoSidedZ(zstats[j])
	}

	ll0 := nullLL(d.y)
	kf := float64(k)
	stats := []model.Statistic{
		stat(model.StatN, float64(n)),
		stat(model.StatPseudoR2, 1-ll/ll0),
		stat(model.StatLL, ll),
		stat(model.StatAIC, -2*ll+2*kf),
		stat(model.StatBIC, -2*ll+math.Log(float64(n))*kf),
	}

	res := model.NewFitResult(e.Method, e.Response, plan.kind)
	assembleCoefficients(res, d.names, beta, se, zstats, pvalues)
	res.Stats = stats
	return res, nil
}

// checkBinary rejects responses that are not strictly 0/1 or that never vary.
func checkBinary(name string, y []float64) error {
	zeros, ones := 0, 0
	for _, v := range y {
		switch v {
		case 0:
			zeros++
		case 1:
			ones++
		default:
			return core.NumericalError("binary-response model needs a 0/1 dependent variable; %q takes value %v", name, v)
		}
	}
	if zeros == 0 || ones == 0 {
		return fmt.Errorf("%w: dependent variable %q never varies", core.ErrDegenerate, name)
	}
	return nil
}

// glmMoments fills the mean, scoring weight, and working response at eta.
func glmMoments(method model.Method, eta, y, mu, w, z []float64) {
	for i := range eta {
		if method == model.MethodLogit {
			m := clampMu(1 / (1 + math.Exp(-eta[i])))
			v := m * (1 - m)
			mu[i] = m
			w[i] = v
			z[i] = eta[i] + (y[i]-m)/v
			continue
		}
		m := clampMu(distuv.UnitNormal.CDF(eta[i]))
		ph := distuv.UnitNormal.Prob(eta[i])
		if ph < muFloor {
			ph = muFloor
		}
		mu[i] = m
		w[i] = ph * ph / (m * (1 - m))
		z[i] = eta[i] + (y[i]-m)/ph
	}
}

// glmScores returns the per-row score factor, the multiplier on x_i in the
// gradient of the log likelihood.
func glmScores(method model.Method, eta, y, mu []float64) []float64 {
	out := make([]float64, len(eta))
	for i := range eta {
		if method == model.MethodLogit {
			out[i] = y[i] - mu[i]
			continue
		}
		ph := distuv.UnitNormal.Prob(eta[i])
		if ph < muFloor {
			ph = muFloor
		}
		out[i] = (y[i] - mu[i]) * ph / (mu[i] * (1 - mu[i]))
	}
	return out
}

func clampMu(m float64) float64 {
	if m < muFloor {
		return muFloor
	}
	if m > 1-muFloor {
		return 1 - muFloor
	}
	return m
}

func bernoulliLL(y, mu []float64) float64 {
	ll := 0.0
	for i := range y {
		if y[i] == 1 {
			ll += math.Log(mu[i])
		} else {
			ll += math.Log(1 - mu[i])
		}
	}
	return ll
}

// nullLL is the log likelihood of the intercept-only model.
func nullLL(y []float64) float64 {
	ones := 0.0
	for _, v := range y {
		ones += v
	}
	n := float64(len(y))
	p := ones / n
	return ones*math.Log(p) + (n-ones)*math.Log(1-p)
}

// weightedSolve computes the weighted least-squares coefficients for one
// scoring step.
func weightedSolve(x *mat.Dense, z, w []float64) ([]float64, error) {
	n, k := x.Dims()
	xs := mat.NewDense(n, k, nil)
	zs := make([]float64, n)
	for i := 0; i < n; i++ {
		sw := math.Sqrt(w[i])
		zs[i] = sw * z[i]
		for j := 0; j < k; j++ {
			xs.Set(i, j, sw*x.At(i, j))
		}
	}
	var xtx mat.Dense
	xtx.Mul(xs.T(), xs)
	inv, err := invertOrPseudo(&xtx)
	if err != nil {
		return nil, err
	}
	var xtz mat.VecDense
	xtz.MulVec(xs.T(), mat.NewVecDense(n, zs))
	var b mat.VecDense
	b.MulVec(inv, &xtz)
	out := make([]float64, k)
	for j := range out {
		out[j] = b.AtVec(j)
	}
	return out, nil
}

// weightedCross computes X'WX at the given weights.
func weightedCross(x *mat.Dense, w []float64) *mat.Dense {
	n, k := x.Dims()
	out := mat.NewDense(k, k, nil)
	for i := 0; i < n; i++ {
		for a := 0; a < k; a++ {
			va := w[i] * x.At(i, a)
			for b := 0; b < k; b++ {
				out.Set(a, b, out.At(a, b)+va*x.At(i, b))
			}
		}
	}
	return out
}
