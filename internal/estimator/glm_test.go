package estimator

import (
	"errors"
	"math"
	"testing"

	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/model"
)

// mixedBinaryFrame interleaves successes and failures along x so the classes
// overlap and the likelihood has an interior maximum.
func mixedBinaryFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	y := []float64{0, 0, 1, 0, 1, 1, 0, 1, 1, 1, 0, 1}
	return mustFrame(t,
		dataset.NumericColumn("won", y),
		dataset.NumericColumn("score", x),
	)
}

func TestGLM_LogitConverges(t *testing.T) {
	est := &GLM{Method: model.MethodLogit, Response: "won", Regressors: []string{"score"}}
	res, err := est.Fit(mixedBinaryFrame(t))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if res.Method != model.MethodLogit {
		t.Errorf("Expected method logit, got %s", res.Method)
	}
	if len(res.Coeffs) != 1 {
		t.Fatalf("Expected 1 slope, got %d", len(res.Coeffs))
	}
	if res.Coeffs[0].Value <= 0 {
		t.Errorf("Expected a positive slope, got %f", res.Coeffs[0].Value)
	}
	if res.Constant == nil {
		t.Fatal("Expected an estimated constant")
	}
	if n, ok := res.Stat(model.StatN); !ok || n != 12 {
		t.Errorf("Expected N=12, got %v", n)
	}
	pseudo, ok := res.Stat(model.StatPseudoR2)
	if !ok || pseudo <= 0 || pseudo >= 1 {
		t.Errorf("Expected pseudo R2 in (0,1), got %v", pseudo)
	}
	if ll, ok := res.Stat(model.StatLL); !ok || ll >= 0 {
		t.Errorf("Expected a negative log likelihood, got %v", ll)
	}
	if aic, ok := res.Stat(model.StatAIC); !ok || aic <= 0 {
		t.Errorf("Expected a positive AIC, got %v", aic)
	}
	if bic, ok := res.Stat(model.StatBIC); !ok || bic <= 0 {
		t.Errorf("Expected a positive BIC, got %v", bic)
	}
}

func TestGLM_ProbitAgreesInDirection(t *testing.T) {
	f := mixedBinaryFrame(t)
	logit := &GLM{Method: model.MethodLogit, Response: "won", Regressors: []string{"score"}}
	probit := &GLM{Method: model.MethodProbit, Response: "won", Regressors: []string{"score"}}
	lres, err := logit.Fit(f)
	if err != nil {
		t.Fatalf("logit failed: %v", err)
	}
	pres, err := probit.Fit(f)
	if err != nil {
		t.Fatalf("probit failed: %v", err)
	}
	if pres.Coeffs[0].Value <= 0 {
		t.Errorf("Expected a positive probit slope, got %f", pres.Coeffs[0].Value)
	}
	// The logistic link stretches the index scale relative to the normal.
	if pres.Coeffs[0].Value >= lres.Coeffs[0].Value {
		t.Errorf("Expected probit slope below logit slope, got %f >= %f",
			pres.Coeffs[0].Value, lres.Coeffs[0].Value)
	}
}

func TestGLM_PerfectSeparationFailsToConverge(t *testing.T) {
	x := []float64{-5, -4, -3, -2, -1, 1, 2, 3, 4, 5}
	y := make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			y[i] = 1
		}
	}
	f := mustFrame(t,
		dataset.NumericColumn("won", y),
		dataset.NumericColumn("score", x),
	)
	est := &GLM{Method: model.MethodLogit, Response: "won", Regressors: []string{"score"}}
	_, err := est.Fit(f)
	if !errors.Is(err, core.ErrNoConverge) {
		t.Fatalf("Expected a convergence error under perfect separation, got %v", err)
	}
}

func TestGLM_NonBinaryResponseRejected(t *testing.T) {
	f := mustFrame(t,
		dataset.NumericColumn("won", []float64{0, 1, 2, 1}),
		dataset.NumericColumn("score", []float64{1, 2, 3, 4}),
	)
	est := &GLM{Method: model.MethodLogit, Response: "won", Regressors: []string{"score"}}
	_, err := est.Fit(f)
	if !core.IsNumericalError(err) {
		t.Fatalf("Expected a numerical error for a non-binary response, got %v", err)
	}
}

func TestGLM_DegenerateResponseRejected(t *testing.T) {
	f := mustFrame(t,
		dataset.NumericColumn("won", []float64{1, 1, 1, 1}),
		dataset.NumericColumn("score", []float64{1, 2, 3, 4}),
	)
	est := &GLM{Method: model.MethodProbit, Response: "won", Regressors: []string{"score"}}
	_, err := est.Fit(f)
	if !errors.Is(err, core.ErrDegenerate) {
		t.Fatalf("Expected a degenerate-response error, got %v", err)
	}
}

func TestGLM_RobustCovarianceKeepsCoefficients(t *testing.T) {
	f := mixedBinaryFrame(t)
	plain := &GLM{Method: model.MethodLogit, Response: "won", Regressors: []string{"score"}}
	robust := &GLM{Method: model.MethodLogit, Response: "won", Regressors: []string{"score"},
		Cov: model.Covariance{Kind: model.CovRobust}}
	pr, err := plain.Fit(f)
	if err != nil {
		t.Fatalf("classical fit failed: %v", err)
	}
	rr, err := robust.Fit(f)
	if err != nil {
		t.Fatalf("robust fit failed: %v", err)
	}
	if math.Abs(pr.Coeffs[0].Value-rr.Coeffs[0].Value) > 1e-8 {
		t.Errorf("Coefficients moved with the covariance policy: %f vs %f",
			pr.Coeffs[0].Value, rr.Coeffs[0].Value)
	}
	if !(rr.Coeffs[0].StdErr > 0) {
		t.Errorf("Expected a positive robust standard error, got %f", rr.Coeffs[0].StdErr)
	}
}
