package format

import (
	"fmt"
	"strconv"

	"goreg/domain/core"
	"goreg/domain/model"
	"goreg/domain/table"
)

// Detail renders one fit as a full inference table, one row per coefficient
// with the constant last, followed by the model statistics.
func Detail(fit *model.FitResult, decimals int) (*table.Table, error) {
	if fit == nil {
		return nil, core.DataError("no result to render")
	}
	if decimals <= 0 {
		decimals = 3
	}
	spread := "t"
	tail := "P>|t|"
	if fit.Method.IsBinaryResponse() {
		spread = "z"
		tail = "P>|z|"
	}

	t := &table.Table{
		Title:   fmt.Sprintf("Regression Results: %s (%s)", fit.Response, fit.Method.Label()),
		Stub:    "Variable",
		Columns: []string{"Coef.", "Std.Err.", spread, tail},
	}
	coeffs := fit.Coeffs
	if fit.Constant != nil {
		coeffs = append(append([]model.Coefficient(nil), coeffs...), *fit.Constant)
	}
	for _, c := range coeffs {
		t.Rows = append(t.Rows, table.Row{
			Label: c.Name,
			Cells: []string{
				formatValue(c.Value, decimals) + c.Stars(),
				formatValue(c.StdErr, decimals),
				formatValue(c.TStat, decimals),
				formatValue(c.PValue, decimals),
			},
			Kind: table.RowCoefficient,
		})
	}
	for _, s := range fit.Stats {
		cell := formatValue(s.Value, decimals)
		if s.Key == model.StatN {
			cell = strconv.Itoa(int(s.Value))
		}
		t.Rows = append(t.Rows, table.Row{
			Label: s.Key,
			Cells: []string{cell, "", "", ""},
			Kind:  table.RowStatistic,
		})
	}
	t.Notes = []string{model.StarLegend}
	return t, nil
}
