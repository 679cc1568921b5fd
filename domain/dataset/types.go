package dataset

import (
	"strconv"

	"goreg/domain/core"
)

// Kind defines column types for analysis
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// Column is one named, typed sequence of values. Numeric cells live in Num
// with NaN marking a missing value; categorical cells live in Str with ""
// marking a missing value. Exactly one backing slice is populated, per Kind.
type Column struct {
	Name string    `json:"name"`
	Kind Kind      `json:"kind"`
	Num  []float64 `json:"num,omitempty"`
	Str  []string  `json:"str,omitempty"`
}

// NumericColumn builds a numeric column over the given values.
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: KindNumeric, Num: values}
}

// CategoricalColumn builds a categorical column over the given values.
func CategoricalColumn(name string, values []string) Column {
	return Column{Name: name, Kind: KindCategorical, Str: values}
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Num)
	}
	return len(c.Str)
}

// IsMissing reports whether row i holds the missing marker.
func (c Column) IsMissing(i int) bool {
	if c.Kind == KindNumeric {
		return isNaN(c.Num[i])
	}
	return c.Str[i] == ""
}

// Label returns the grouping token for row i: the raw string for categorical
// columns, the shortest exact decimal rendering for numeric ones (so 2010.0
// groups as "2010").
func (c Column) Label(i int) string {
	if c.Kind == KindNumeric {
		if isNaN(c.Num[i]) {
			return ""
		}
		return strconv.FormatFloat(c.Num[i], 'g', -1, 64)
	}
	return c.Str[i]
}

func (c Column) validate() error {
	switch c.Kind {
	case KindNumeric:
		if c.Str != nil {
			return core.DataError("numeric column %q carries string storage", c.Name)
		}
	case KindCategorical:
		if c.Num != nil {
			return core.DataError("categorical column %q carries numeric storage", c.Name)
		}
	default:
		return core.DataError("column %q has unknown kind %q", c.Name, c.Kind)
	}
	return nil
}

// take copies the rows flagged in keep into a fresh column.
func (c Column) take(keep []bool) Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == KindNumeric {
		out.Num = make([]float64, 0, len(c.Num))
		for i, v := range c.Num {
			if keep[i] {
				out.Num = append(out.Num, v)
			}
		}
		return out
	}
	out.Str = make([]string, 0, len(c.Str))
	for i, v := range c.Str {
		if keep[i] {
			out.Str = append(out.Str, v)
		}
	}
	return out
}

func isNaN(v float64) bool { return v != v }
