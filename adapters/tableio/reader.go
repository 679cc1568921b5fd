// Package tableio reads tabular data files into frames. Supported
// extensions are csv, xlsx, xls and dta; kinds are inferred per column
// (numeric when every non-empty cell parses as a float, categorical
// otherwise) with empty cells as the missing marker.
package tableio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kshedden/datareader"
	"github.com/xuri/excelize/v2"

	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/internal"
	"goreg/ports"
)

// Reader loads csv, xlsx, xls and dta files.
type Reader struct {
	log *internal.Logger
}

var _ ports.TableProvider = (*Reader)(nil)

// NewReader creates a file reader.
func NewReader() *Reader {
	return &Reader{log: internal.NewDefaultLogger().Component("TableReader")}
}

// Load reads the entire file into a frame.
func (r *Reader) Load(path string) (*dataset.Frame, error) {
	return r.read(path, -1)
}

// LoadPreview reads at most n data rows. The csv and workbook readers
// stop decoding after n rows; Stata files carry no cheap row cursor, so
// the file is read fully and truncated.
func (r *Reader) LoadPreview(path string, n int) (*dataset.Frame, error) {
	if n <= 0 {
		return nil, core.SpecificationError("preview needs a positive row count, got %d", n)
	}
	return r.read(path, n)
}

// read routes on the file extension. limit < 0 means the whole file.
func (r *Reader) read(path string, limit int) (*dataset.Frame, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, core.IOError("file not found: %s", path)
	}
	var f *dataset.Frame
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		f, err = readCSV(path, limit)
	case ".xlsx", ".xls":
		f, err = readWorkbook(path, limit)
	case ".dta":
		f, err = readStata(path, limit)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedExtension, ext)
	}
	if err != nil {
		return nil, err
	}
	r.log.Debug("%s: %d rows, %d columns", filepath.Base(path), f.Rows(), len(f.ColumnNames()))
	return f, nil
}

func readCSV(path string, limit int) (*dataset.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, core.IOError("open %s: %v", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s has no header row", core.ErrMalformedFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedFile, err)
	}

	var records [][]string
	for limit < 0 || len(records) < limit {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedFile, err)
		}
		records = append(records, record)
	}
	return buildFrame(header, records)
}

func readWorkbook(path string, limit int) (*dataset.Frame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, core.IOError("open workbook %s: %v", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", core.ErrMalformedFile, path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, core.IOError("read sheet %q: %v", sheets[0], err)
	}
	defer rows.Close()

	var header []string
	var records [][]string
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, core.IOError("read sheet %q: %v", sheets[0], err)
		}
		if header == nil {
			header = cells
			continue
		}
		records = append(records, cells)
		if limit >= 0 && len(records) >= limit {
			break
		}
	}
	if header == nil {
		return nil, fmt.Errorf("%w: %s has no header row", core.ErrMalformedFile, path)
	}
	return buildFrame(header, records)
}

func readStata(path string, limit int) (*dataset.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, core.IOError("open %s: %v", path, err)
	}
	defer file.Close()

	rdr, err := datareader.NewStataReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedFile, err)
	}
	// Dates stay as their numeric day counts; the frame has no
	// timestamp kind.
	rdr.ConvertDates = false

	series, err := rdr.Read(-1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedFile, err)
	}
	names := rdr.ColumnNames()
	if len(names) != len(series) {
		return nil, fmt.Errorf("%w: %d columns named, %d read", core.ErrMalformedFile, len(names), len(series))
	}

	cols := make([]dataset.Column, 0, len(series))
	for i, s := range series {
		name := strings.TrimSpace(names[i])
		if vals, miss, err := s.AsFloat64Slice(); err == nil {
			num := make([]float64, len(vals))
			copy(num, vals)
			for j := range num {
				if miss != nil && miss[j] {
					num[j] = math.NaN()
				}
			}
			cols = append(cols, dataset.NumericColumn(name, num))
			continue
		}
		vals, miss, err := s.AsStringSlice()
		if err != nil {
			return nil, core.IOError("column %q: %v", name, err)
		}
		str := make([]string, len(vals))
		for j := range vals {
			if miss != nil && miss[j] {
				continue
			}
			str[j] = strings.TrimSpace(vals[j])
		}
		cols = append(cols, dataset.CategoricalColumn(name, str))
	}

	frame, err := dataset.New(cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedFile, err)
	}
	if limit >= 0 {
		return headFrame(frame, limit)
	}
	return frame, nil
}

// buildFrame assembles raw string rows into a typed frame. Cells are
// trimmed; a row shorter than the header is padded with missing cells
// and cells beyond the header are dropped.
func buildFrame(header []string, records [][]string) (*dataset.Frame, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	cols := make([]dataset.Column, 0, len(names))
	for j, name := range names {
		cells := make([]string, len(records))
		for i, record := range records {
			if j < len(record) {
				cells[i] = strings.TrimSpace(record[j])
			}
		}
		cols = append(cols, buildColumn(name, cells))
	}

	frame, err := dataset.New(cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedFile, err)
	}
	return frame, nil
}

// buildColumn infers the kind from the cells. Numeric wins when every
// non-empty cell parses, so an all-missing column comes out numeric.
func buildColumn(name string, cells []string) dataset.Column {
	numeric := true
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
			break
		}
	}
	if !numeric {
		return dataset.CategoricalColumn(name, cells)
	}
	vals := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			vals[i] = math.NaN()
			continue
		}
		v, _ := strconv.ParseFloat(cell, 64)
		vals[i] = v
	}
	return dataset.NumericColumn(name, vals)
}

// headFrame copies the first n rows of every column.
func headFrame(f *dataset.Frame, n int) (*dataset.Frame, error) {
	if f.Rows() <= n {
		return f, nil
	}
	cols := make([]dataset.Column, 0, len(f.ColumnNames()))
	for _, name := range f.ColumnNames() {
		c, _ := f.Column(name)
		if c.Kind == dataset.KindNumeric {
			num := make([]float64, n)
			copy(num, c.Num[:n])
			cols = append(cols, dataset.NumericColumn(c.Name, num))
			continue
		}
		str := make([]string, n)
		copy(str, c.Str[:n])
		cols = append(cols, dataset.CategoricalColumn(c.Name, str))
	}
	return dataset.New(cols)
}
