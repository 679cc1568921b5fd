package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"goreg/domain/table"
	"goreg/internal/modeltest"
)

const columnGap = 2

// renderTable writes one table as aligned plain text: title, a heading
// block (headings may span several lines), one line per row, then the
// notes. Value cells are right-aligned, the label column left-aligned.
func renderTable(w io.Writer, t *table.Table) {
	headings := make([][]string, len(t.Columns))
	headerLines := 1
	for j, c := range t.Columns {
		headings[j] = strings.Split(c, "\n")
		if len(headings[j]) > headerLines {
			headerLines = len(headings[j])
		}
	}

	hasLabel := t.Stub != ""
	labelWidth := len(t.Stub)
	for _, r := range t.Rows {
		if r.Label != "" {
			hasLabel = true
		}
		if len(r.Label) > labelWidth {
			labelWidth = len(r.Label)
		}
	}

	widths := make([]int, len(t.Columns))
	for j, lines := range headings {
		for _, line := range lines {
			if len(line) > widths[j] {
				widths[j] = len(line)
			}
		}
	}
	for _, r := range t.Rows {
		for j, cell := range r.Cells {
			if j >= len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[j] {
				widths[j] = len(cell)
			}
		}
	}

	total := 0
	if hasLabel {
		total = labelWidth + columnGap
	}
	for _, cw := range widths {
		total += cw + columnGap
	}
	total -= columnGap
	if total < len(t.Title) {
		total = len(t.Title)
	}
	if total < 1 {
		total = 1
	}

	if t.Title != "" {
		fmt.Fprintln(w, t.Title)
	}
	fmt.Fprintln(w, strings.Repeat("=", total))

	for line := 0; line < headerLines; line++ {
		var b strings.Builder
		if hasLabel {
			stub := ""
			if line == headerLines-1 {
				stub = t.Stub
			}
			fmt.Fprintf(&b, "%-*s", labelWidth, stub)
		}
		for j := range widths {
			cell := ""
			// Bottom-align multi-line headings.
			offset := line - (headerLines - len(headings[j]))
			if j < len(headings) && offset >= 0 && offset < len(headings[j]) {
				cell = headings[j][offset]
			}
			pad(&b, b.Len() > 0)
			fmt.Fprintf(&b, "%*s", widths[j], cell)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	fmt.Fprintln(w, strings.Repeat("-", total))

	for _, r := range t.Rows {
		if r.Kind == table.RowTotal {
			fmt.Fprintln(w, strings.Repeat("-", total))
		}
		var b strings.Builder
		if hasLabel {
			fmt.Fprintf(&b, "%-*s", labelWidth, r.Label)
		}
		for j, cw := range widths {
			cell := ""
			if j < len(r.Cells) {
				cell = r.Cells[j]
			}
			pad(&b, b.Len() > 0)
			fmt.Fprintf(&b, "%*s", cw, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	fmt.Fprintln(w, strings.Repeat("-", total))

	for _, note := range t.Notes {
		fmt.Fprintln(w, note)
	}
}

func pad(b *strings.Builder, needed bool) {
	if needed {
		b.WriteString(strings.Repeat(" ", columnGap))
	}
}

// renderReport writes every table of the report, under the report title
// when it adds information beyond a single table's own title.
func renderReport(w io.Writer, r *table.Report) {
	own := len(r.Tables) != 1 || r.Tables[0].Title != r.Title
	if r.Title != "" && own {
		fmt.Fprintln(w, r.Title)
		fmt.Fprintln(w)
	}
	for i := range r.Tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderTable(w, &r.Tables[i])
	}
}

// renderFTest writes the pooling test verdict as a text block.
func renderFTest(w io.Writer, res *modeltest.FTestResult) {
	d := res.Decimals
	fmt.Fprintln(w, res.Name)
	fmt.Fprintf(w, "H0: %s\n", res.Null)
	fmt.Fprintf(w, "H1: %s\n", res.Alternative)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "F(%d, %d) = %s %s\n", res.DF1, res.DF2, formatStat(res.Statistic, d), res.Stars)
	fmt.Fprintf(w, "p-value   = %s\n", formatStat(res.PValue, d))
	fmt.Fprintf(w, "RSS (pooled) = %s\n", formatStat(res.RSSPooled, d))
	fmt.Fprintf(w, "RSS (fixed)  = %s\n", formatStat(res.RSSFixed, d))
	fmt.Fprintf(w, "Entities = %d, Observations = %d\n", res.Entities, res.Obs)
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Summary)
}

// renderHausman writes the exogeneity test verdict, the coefficient
// comparison table, and any indefiniteness warning.
func renderHausman(w io.Writer, res *modeltest.HausmanResult) {
	d := res.Decimals
	fmt.Fprintln(w, res.Name)
	fmt.Fprintf(w, "H0: %s\n", res.Null)
	fmt.Fprintf(w, "H1: %s\n", res.Alternative)
	if res.Sigmamore {
		fmt.Fprintln(w, "Covariances share the pooled error scale (sigmamore).")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "chi2(%d) = %s %s\n", res.DF, formatStat(res.Statistic, d), res.Stars)
	if res.Definite {
		fmt.Fprintf(w, "p-value = %s\n", formatStat(res.PValue, d))
	} else {
		fmt.Fprintln(w, "p-value = not defined")
	}
	fmt.Fprintln(w)
	renderTable(w, comparisonTable(res))
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Summary)
	if res.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", res.Warning)
	}
}

func comparisonTable(res *modeltest.HausmanResult) *table.Table {
	d := res.Decimals
	t := &table.Table{
		Title:   "Coefficient Comparison",
		Stub:    "Variable",
		Columns: []string{"FE", "RE", "Difference", "Std.Err."},
	}
	for _, c := range res.Comparisons {
		se := "-"
		if !c.NegativeVariance {
			se = formatStat(c.DiffStdErr, d)
		}
		t.Rows = append(t.Rows, table.Row{
			Label: c.Name,
			Kind:  table.RowValue,
			Cells: []string{
				formatStat(c.FE, d),
				formatStat(c.RE, d),
				formatStat(c.Diff, d),
				se,
			},
		})
	}
	return t
}

// formatStat renders one statistic, with a dash for undefined values.
func formatStat(v float64, decimals int) string {
	if v != v {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
