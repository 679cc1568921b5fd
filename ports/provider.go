package ports

import (
	"goreg/domain/dataset"
)

// TableProvider turns data files on disk into frames.
type TableProvider interface {
	// Load reads the entire file.
	Load(path string) (*dataset.Frame, error)

	// LoadPreview reads at most n data rows. Delimited and workbook
	// sources stop decoding once n rows are in hand; Stata files are
	// read fully and truncated afterwards.
	LoadPreview(path string, n int) (*dataset.Frame, error)
}
