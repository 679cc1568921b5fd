// Package estimator implements the regression estimators and their
// covariance policies over prepared frames.
package estimator

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TwoSidedT computes the two-tailed p-value of a t statistic with df degrees
// of freedom.
func TwoSidedT(t float64, df int) float64 {
	if df <= 0 || math.IsNaN(t) {
		return math.NaN()
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	p := 2 * dist.Survival(math.Abs(t))
	return clampProb(p)
}

// TwoSidedZ computes the two-tailed p-value of a standard-normal statistic.
func TwoSidedZ(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return clampProb(p)
}

// FTail computes the right-tail p-value of an F statistic with (d1, d2)
// degrees of freedom.
func FTail(f float64, d1, d2 int) float64 {
	if d1 <= 0 || d2 <= 0 || math.IsNaN(f) {
		return math.NaN()
	}
	if f <= 0 {
		return 1
	}
	dist := distuv.F{D1: float64(d1), D2: float64(d2)}
	return clampProb(dist.Survival(f))
}

// ChiSquareTail computes the right-tail p-value of a chi-squared statistic.
func ChiSquareTail(x float64, df int) float64 {
	if df <= 0 || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 1
	}
	dist := distuv.ChiSquared{K: float64(df)}
	return clampProb(dist.Survival(x))
}

func clampProb(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
