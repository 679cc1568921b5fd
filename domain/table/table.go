// Package table holds the renderer-agnostic description of a finished
// analysis table. A Table is built once per formatting call and never
// mutated afterwards; callers own the value outright.
package table

// RowKind tells a renderer what a row is so it can style separators and
// spread lines without inspecting cell content.
type RowKind string

const (
	// RowCoefficient is a coefficient line in a regression table.
	RowCoefficient RowKind = "coefficient"
	// RowSpread is the parenthesized SE or t/z line paired with the
	// coefficient row directly above it.
	RowSpread RowKind = "spread"
	// RowStatistic is a model-statistic line (N, R2, ...).
	RowStatistic RowKind = "statistic"
	// RowCustom is a caller-supplied label/value line.
	RowCustom RowKind = "custom"
	// RowValue is a plain body line in a diagnostic table.
	RowValue RowKind = "value"
	// RowTotal is a summary line (Total, Subtotal, Mean VIF).
	RowTotal RowKind = "total"
)

// Row is one table line: an optional stub label plus one cell per column.
type Row struct {
	Label string   `json:"label"`
	Cells []string `json:"cells"`
	Kind  RowKind  `json:"kind"`
}

// Table is an ordered, fully formatted table description.
// Stub is the heading of the label column; when empty the table has no label
// column and every cell lives in Cells.
type Table struct {
	Title   string   `json:"title"`
	Stub    string   `json:"stub,omitempty"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Notes   []string `json:"notes,omitempty"`
}

// Report bundles one or more tables under a shared title, for analyses that
// render vertically (grouped descriptives, independent frequency tables).
type Report struct {
	Title  string  `json:"title"`
	Tables []Table `json:"tables"`
}

// SingleTable wraps one table into a report.
func SingleTable(t Table) *Report {
	return &Report{Title: t.Title, Tables: []Table{t}}
}
