package estimator

import (
	"math"

	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/model"
)

// Estimator fits one model family against a prepared frame. The frame must
// already be restricted to the relevant columns with missing rows removed.
type Estimator interface {
	Fit(f *dataset.Frame) (*model.FitResult, error)
}

// FromSpec constructs the estimator for a regression request.
func FromSpec(spec model.Spec) (Estimator, error) {
	spec = spec.Normalized()
	switch spec.Method {
	case model.MethodOLS:
		return &OLS{Response: spec.Response, Regressors: spec.Regressors, Cov: spec.Covariance}, nil
	case model.MethodLogit, model.MethodProbit:
		return &GLM{Method: spec.Method, Response: spec.Response, Regressors: spec.Regressors, Cov: spec.Covariance}, nil
	case model.MethodFE:
		return &FixedEffects{
			Response:   spec.Response,
			Regressors: spec.Regressors,
			Panel:      spec.Panel,
			EffectVars: spec.EffectVars,
			Cov:        spec.Covariance,
		}, nil
	case model.MethodRE:
		return &RandomEffects{
			Response:   spec.Response,
			Regressors: spec.Regressors,
			Panel:      spec.Panel,
			Cov:        spec.Covariance,
		}, nil
	case model.MethodPooled:
		return &Pooled{
			Response:   spec.Response,
			Regressors: spec.Regressors,
			Panel:      spec.Panel,
			Cov:        spec.Covariance,
		}, nil
	}
	return nil, core.SpecificationError("method %s does not estimate a model", spec.Method)
}

// resolveCov materializes the covariance policy against the frame, pulling
// per-row cluster labels when clustering. The cluster column may be any frame
// column, including a panel identifier.
func resolveCov(f *dataset.Frame, c model.Covariance) (covPlan, error) {
	plan := covPlan{kind: c.Kind}
	if plan.kind == "" {
		plan.kind = model.CovClassical
	}
	if plan.kind == model.CovCluster {
		labels, err := f.Labels(c.ClusterVar)
		if err != nil {
			return covPlan{}, err
		}
		plan.clusters = labels
	}
	return plan, nil
}

// buildResult turns a fitted linear model into a FitResult, routing the
// intercept into the Constant slot.
func buildResult(method model.Method, response string, covKind model.CovarianceKind,
	lm *linearModel, stats []model.Statistic) *model.FitResult {
	res := model.NewFitResult(method, response, covKind)
	assembleCoefficients(res, lm.names, lm.beta, lm.se, lm.tstats, lm.pvalues)
	res.Stats = stats
	return res
}

func assembleCoefficients(res *model.FitResult, names []string, beta, se, tstats, pvalues []float64) {
	for j, name := range names {
		c := model.Coefficient{
			Name:   name,
			Value:  beta[j],
			StdErr: se[j],
			TStat:  tstats[j],
			PValue: pvalues[j],
		}
		if name == constName {
			c.Name = model.ConstantName
			cc := c
			res.Constant = &cc
			continue
		}
		res.Coeffs = append(res.Coeffs, c)
	}
}

func stat(key string, v float64) model.Statistic {
	return model.Statistic{Key: key, Value: v}
}

// rsquared computes R2 against the centered total sum of squares, plus its
// degrees-of-freedom adjusted companion. The adjusted value is NaN when no
// residual degrees of freedom remain.
func rsquared(rss, tss float64, n, dfResid int) (r2, adj float64) {
	r2 = math.NaN()
	if tss > 0 {
		r2 = 1 - rss/tss
	}
	adj = math.NaN()
	if dfResid > 0 && !math.IsNaN(r2) {
		adj = 1 - (1-r2)*float64(n-1)/float64(dfResid)
	}
	return r2, adj
}

// gaussianLogLik is the maximized log likelihood of a linear model with
// spherical errors.
func gaussianLogLik(n int, rss float64) float64 {
	if n == 0 || rss <= 0 {
		return math.NaN()
	}
	nf := float64(n)
	return -nf / 2 * (1 + math.Log(2*math.Pi*rss/nf))
}
