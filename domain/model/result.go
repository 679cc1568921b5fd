package model

import (
	"goreg/domain/core"
)

// Star thresholds shared by every table and test in the engine.
const (
	StarP1  = 0.01
	StarP5  = 0.05
	StarP10 = 0.1
)

// StarLegend is the footnote explaining the significance markers.
const StarLegend = "*** p<0.01, ** p<0.05, * p<0.1"

// Stars maps a p-value to its significance marker.
func Stars(p float64) string {
	switch {
	case p < StarP1:
		return "***"
	case p < StarP5:
		return "**"
	case p < StarP10:
		return "*"
	default:
		return ""
	}
}

// ConstantName is the display name of the intercept term.
const ConstantName = "Constant"

// Coefficient is one estimated parameter with its inference.
type Coefficient struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	StdErr float64 `json:"std_err"`
	TStat  float64 `json:"t_stat"`
	PValue float64 `json:"p_value"`
}

// Stars returns the significance marker for the coefficient's p-value.
func (c Coefficient) Stars() string {
	return Stars(c.PValue)
}

// Model-statistic keys as they appear in FitResult.Stats.
const (
	StatN        = "N"
	StatR2       = "R2"
	StatAdjR2    = "Adj-R2"
	StatF        = "F"
	StatPseudoR2 = "Pseudo-R2"
	StatAIC      = "AIC"
	StatBIC      = "BIC"
	StatLL       = "LL"
)

// Statistic is one model-level number, keyed for table export.
type Statistic struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// FitResult is the outcome of one regression fit. The coefficient list
// excludes the intercept; Constant carries it when the model estimates one,
// and the formatter always renders it last.
type FitResult struct {
	ID       core.ResultID  `json:"id"`
	Method   Method         `json:"method"`
	Response string         `json:"response"`
	CovKind  CovarianceKind `json:"cov_kind"`

	Coeffs   []Coefficient `json:"coeffs"`
	Constant *Coefficient  `json:"constant,omitempty"`
	Stats    []Statistic   `json:"stats"`

	// Absorbed lists regressors dropped because the fixed-effect structure
	// left them with no variation.
	Absorbed []string `json:"absorbed,omitempty"`

	CustomRows []CustomRow `json:"custom_rows,omitempty"`
}

// NewFitResult stamps a fresh result identity.
func NewFitResult(method Method, response string, cov CovarianceKind) *FitResult {
	return &FitResult{
		ID:       core.NewResultID(),
		Method:   method,
		Response: response,
		CovKind:  cov,
	}
}

// Stat looks up a model statistic by key.
func (r *FitResult) Stat(key string) (float64, bool) {
	for _, s := range r.Stats {
		if s.Key == key {
			return s.Value, true
		}
	}
	return 0, false
}

// Clustered reports whether the result used clustered standard errors.
func (r *FitResult) Clustered() bool {
	return r.CovKind == CovCluster
}
