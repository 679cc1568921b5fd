// Package modeltest runs the specification tests that arbitrate between the
// panel estimators: the poolability F test and the Hausman test.
package modeltest

import (
	"goreg/domain/model"
)

// Conclusion is the decision a specification test reaches.
type Conclusion string

const (
	// ConcludeStrongReject rejects the null at the 1% level.
	ConcludeStrongReject Conclusion = "strong_reject"
	// ConcludeReject rejects the null at the 5% level.
	ConcludeReject Conclusion = "reject"
	// ConcludeWeakReject rejects the null at the 10% level.
	ConcludeWeakReject Conclusion = "weak_reject"
	// ConcludeCannotReject keeps the null model.
	ConcludeCannotReject Conclusion = "cannot_reject"
	// ConcludeIndefinite marks a Hausman run whose covariance difference is
	// not positive definite, where the decision rule does not apply.
	ConcludeIndefinite Conclusion = "indefinite"
)

// verdict maps a p-value onto the shared decision ladder. acceptSummary is
// the text used when the null survives.
func verdict(p float64, acceptSummary string) (Conclusion, string, string) {
	switch {
	case p < model.StarP1:
		return ConcludeStrongReject, "***", "Strongly reject the null hypothesis; use the fixed effects model."
	case p < model.StarP5:
		return ConcludeReject, "**", "Reject the null hypothesis; use the fixed effects model."
	case p < model.StarP10:
		return ConcludeWeakReject, "*", "Weakly reject the null hypothesis; the fixed effects model is preferred."
	default:
		return ConcludeCannotReject, "", acceptSummary
	}
}
