// Package diagnostics builds the descriptive analysis tables: summary
// statistics, correlation matrices, collinearity checks, and frequency
// counts.
package diagnostics

import (
	"math"
	"strconv"

	"github.com/montanaflynn/stats"

	"goreg/domain/core"
	"goreg/domain/dataset"
)

// Options carries the display controls shared by the descriptive analyses.
type Options struct {
	Decimals int
	Title    string
}

func (o Options) decimals() int {
	if o.Decimals <= 0 {
		return 3
	}
	return o.Decimals
}

func (o Options) title(fallback string) string {
	if o.Title != "" {
		return o.Title
	}
	return fallback
}

// prepare narrows the frame to the numeric variables among vars and applies
// listwise deletion across them.
func prepare(f *dataset.Frame, vars []string) (*dataset.Frame, []string, error) {
	numeric := dedup(f.NumericNames(vars))
	if len(numeric) == 0 {
		return nil, nil, core.DataError("no numeric variables selected")
	}
	sel, err := f.Select(numeric...)
	if err != nil {
		return nil, nil, err
	}
	clean, err := sel.DropMissing(numeric...)
	if err != nil {
		return nil, nil, err
	}
	if clean.Rows() == 0 {
		return nil, nil, core.ErrEmptyData
	}
	return clean, numeric, nil
}

func dedup(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// statColumn pairs a canonical statistic key with its display label.
type statColumn struct {
	key   string
	label string
}

// resolveStatColumns maps requested statistic keys onto display columns in
// request order, dropping unknown keys and duplicates.
func resolveStatColumns(keys []string) []statColumn {
	known := map[string]statColumn{
		"nobs":  {"nobs", "N"},
		"count": {"nobs", "N"},
		"mean":  {"mean", "Mean"},
		"std":   {"std", "Std.Dev"},
		"min":   {"min", "Min"},
		"max":   {"max", "Max"},
		"p50":   {"p50", "Median"},
	}
	var out []statColumn
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		col, ok := known[k]
		if !ok || seen[col.key] {
			continue
		}
		seen[col.key] = true
		out = append(out, col)
	}
	return out
}

// statValue computes one summary statistic over non-empty values.
func statValue(key string, vals []float64) float64 {
	var v float64
	var err error
	switch key {
	case "mean":
		v, err = stats.Mean(vals)
	case "std":
		v, err = stats.StandardDeviationSample(vals)
	case "min":
		v, err = stats.Min(vals)
	case "max":
		v, err = stats.Max(vals)
	case "p50":
		v, err = stats.Median(vals)
	default:
		return math.NaN()
	}
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatFloat(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
