package estimator

import (
	"math"

	"goreg/domain/dataset"
	"goreg/domain/model"
)

// OLS fits ordinary least squares with an intercept.
type OLS struct {
	Response   string
	Regressors []string
	Cov        model.Covariance
}

func (e *OLS) Fit(f *dataset.Frame) (*model.FitResult, error) {
	d, err := buildDesign(f, e.Response, e.Regressors, true)
	if err != nil {
		return nil, err
	}
	plan, err := resolveCov(f, e.Cov)
	if err != nil {
		return nil, err
	}
	lm, err := fitLinear(d.matrix(), d.y, d.names, 0, plan, true)
	if err != nil {
		return nil, err
	}

	r2, adj := rsquared(lm.rss, centeredTSS(d.y), lm.n, lm.dfResid)
	fstat, _ := waldF(lm.beta, lm.cov, lm.slopeIdx(), lm.dfInfer)
	ll := gaussianLogLik(lm.n, lm.rss)
	kf := float64(lm.k)
	stats := []model.Statistic{
		stat(model.StatN, float64(lm.n)),
		stat(model.StatR2, r2),
		stat(model.StatAdjR2, adj),
		stat(model.StatF, fstat),
		stat(model.StatLL, ll),
		stat(model.StatAIC, -2*ll+2*kf),
		stat(model.StatBIC, -2*ll+math.Log(float64(lm.n))*kf),
	}
	return buildResult(model.MethodOLS, e.Response, plan.kind, lm, stats), nil
}
