package app

import (
	"goreg/domain/core"
	"goreg/domain/model"
)

// UpdateAction selects how a new fit joins the accumulated-results list.
type UpdateAction string

const (
	// ActionReplace discards the existing list and starts over.
	ActionReplace UpdateAction = "replace"
	// ActionAppend adds the fit as a new table column.
	ActionAppend UpdateAction = "append"
)

// UpdateResults returns the accumulated list after applying the action.
// The list is owned by the caller's session layer; this function never
// mutates its input, it always builds a fresh slice.
func UpdateResults(existing []model.FitResult, fit model.FitResult, action UpdateAction) ([]model.FitResult, error) {
	switch action {
	case ActionReplace:
		return []model.FitResult{fit}, nil
	case ActionAppend:
		out := make([]model.FitResult, 0, len(existing)+1)
		out = append(out, existing...)
		out = append(out, fit)
		return out, nil
	}
	return nil, core.SpecificationError("unknown update action %q", action)
}

// RemoveResult returns the accumulated list without the identified fit.
// An unknown id leaves the list unchanged.
func RemoveResult(existing []model.FitResult, id core.ResultID) []model.FitResult {
	out := make([]model.FitResult, 0, len(existing))
	for _, r := range existing {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
