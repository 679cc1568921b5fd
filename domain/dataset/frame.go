package dataset

import (
	"goreg/domain/core"
)

// Frame is a rectangular dataset: an ordered sequence of equal-length named
// columns. Frames are immutable; every transformation returns a fresh Frame
// and leaves the receiver untouched.
type Frame struct {
	cols  []Column
	index map[string]int
}

// New validates and assembles a frame. All columns must be the same length
// and carry unique, non-empty names.
func New(cols []Column) (*Frame, error) {
	f := &Frame{cols: cols, index: make(map[string]int, len(cols))}
	rows := -1
	for i, c := range cols {
		if c.Name == "" {
			return nil, core.DataError("column %d has no name", i)
		}
		if _, dup := f.index[c.Name]; dup {
			return nil, core.DataError("duplicate column %q", c.Name)
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, core.DataError("column %q has %d rows, want %d", c.Name, c.Len(), rows)
		}
		f.index[c.Name] = i
	}
	return f, nil
}

// Rows returns the row count.
func (f *Frame) Rows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// ColumnNames returns the column names in declaration order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column by value.
func (f *Frame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, false
	}
	return f.cols[i], true
}

// Kind returns the declared kind of the named column.
func (f *Frame) Kind(name string) (Kind, bool) {
	c, ok := f.Column(name)
	if !ok {
		return "", false
	}
	return c.Kind, true
}

// Numeric returns a copy of the named column's values. The column must exist
// and be numeric.
func (f *Frame) Numeric(name string) ([]float64, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, core.NewColumnMissingError(name)
	}
	if c.Kind != KindNumeric {
		return nil, core.NewNotNumericError(name)
	}
	out := make([]float64, len(c.Num))
	copy(out, c.Num)
	return out, nil
}

// Labels returns the per-row grouping tokens of the named column.
func (f *Frame) Labels(name string) ([]string, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, core.NewColumnMissingError(name)
	}
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.Label(i)
	}
	return out, nil
}

// Select restricts the frame to the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]Column, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		c, ok := f.Column(n)
		if !ok {
			return nil, core.NewColumnMissingError(n)
		}
		cols = append(cols, c)
	}
	return New(cols)
}

// DropMissing removes every row that is missing in any of the named columns.
// Listwise deletion is scoped to the caller's column set so a hole in an
// unused column never costs a row.
func (f *Frame) DropMissing(names ...string) (*Frame, error) {
	checked := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := f.Column(n)
		if !ok {
			return nil, core.NewColumnMissingError(n)
		}
		checked = append(checked, c)
	}
	keep := make([]bool, f.Rows())
	for i := range keep {
		keep[i] = true
		for _, c := range checked {
			if c.IsMissing(i) {
				keep[i] = false
				break
			}
		}
	}
	return f.filter(keep), nil
}

// DropSingletons removes every row whose entity group has exactly one row.
// A singleton entity carries no within-entity variation and would silently
// destabilize a fixed-effects fit.
func (f *Frame) DropSingletons(entity string) (*Frame, error) {
	labels, err := f.Labels(entity)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(labels))
	for _, l := range labels {
		counts[l]++
	}
	keep := make([]bool, len(labels))
	for i, l := range labels {
		keep[i] = counts[l] > 1
	}
	return f.filter(keep), nil
}

// NumericNames filters the given names down to columns that exist and are
// numeric, preserving order.
func (f *Frame) NumericNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if k, ok := f.Kind(n); ok && k == KindNumeric {
			out = append(out, n)
		}
	}
	return out
}

// filter copies the kept rows of every column into a fresh frame.
func (f *Frame) filter(keep []bool) *Frame {
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.take(keep)
	}
	out, _ := New(cols)
	return out
}
