package tableio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"goreg/domain/core"
	"goreg/domain/dataset"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, val := range row {
			if val == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, val); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestReader_CSVInfersColumnKinds(t *testing.T) {
	path := writeFile(t, t.TempDir(), "panel.csv",
		"firm,year,output\nA,2001,3.5\nB,2002,\nA,2003,4.25\n")

	frame, err := NewReader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if frame.Rows() != 3 {
		t.Fatalf("Expected 3 rows, got %d", frame.Rows())
	}
	if kind, _ := frame.Kind("firm"); kind != dataset.KindCategorical {
		t.Errorf("Expected firm to be categorical, got %s", kind)
	}
	if kind, _ := frame.Kind("year"); kind != dataset.KindNumeric {
		t.Errorf("Expected year to be numeric, got %s", kind)
	}
	output, err := frame.Numeric("output")
	if err != nil {
		t.Fatalf("Numeric failed: %v", err)
	}
	if output[0] != 3.5 || output[2] != 4.25 {
		t.Errorf("Expected output values 3.5 and 4.25, got %v and %v", output[0], output[2])
	}
	if !math.IsNaN(output[1]) {
		t.Errorf("Expected missing cell to read as NaN, got %v", output[1])
	}
}

func TestReader_CSVTrimsCells(t *testing.T) {
	path := writeFile(t, t.TempDir(), "spaced.csv",
		" region , sales \n north , 10\nsouth,  20 \n")

	frame, err := NewReader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !frame.Has("region") || !frame.Has("sales") {
		t.Fatalf("Expected trimmed headers region and sales, got %v", frame.ColumnNames())
	}
	labels, err := frame.Labels("region")
	if err != nil {
		t.Fatalf("Labels failed: %v", err)
	}
	if labels[0] != "north" {
		t.Errorf("Expected trimmed cell %q, got %q", "north", labels[0])
	}
	sales, err := frame.Numeric("sales")
	if err != nil {
		t.Fatalf("Numeric failed: %v", err)
	}
	if sales[1] != 20 {
		t.Errorf("Expected trimmed cell to parse as 20, got %v", sales[1])
	}
}

func TestReader_CSVHeaderOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "x,y\n")

	frame, err := NewReader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if frame.Rows() != 0 {
		t.Errorf("Expected 0 rows, got %d", frame.Rows())
	}
	if len(frame.ColumnNames()) != 2 {
		t.Errorf("Expected 2 columns, got %d", len(frame.ColumnNames()))
	}
}

func TestReader_CSVRaggedRows(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ragged.csv", "a,b\n1\n")

	_, err := NewReader().Load(path)
	if !errors.Is(err, core.ErrMalformedFile) {
		t.Errorf("Expected malformed file error, got %v", err)
	}
}

func TestReader_CSVDuplicateHeader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dup.csv", "x,x\n1,2\n")

	_, err := NewReader().Load(path)
	if !errors.Is(err, core.ErrMalformedFile) {
		t.Errorf("Expected malformed file error, got %v", err)
	}
}

func TestReader_EmptyCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "blank.csv", "")

	_, err := NewReader().Load(path)
	if !errors.Is(err, core.ErrMalformedFile) {
		t.Errorf("Expected malformed file error, got %v", err)
	}
}

func TestReader_PreviewStopsAfterRequestedRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,v\n")
	for i := 1; i <= 30; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i*2)
	}
	path := writeFile(t, t.TempDir(), "long.csv", b.String())

	frame, err := NewReader().LoadPreview(path, 5)
	if err != nil {
		t.Fatalf("LoadPreview failed: %v", err)
	}
	if frame.Rows() != 5 {
		t.Fatalf("Expected 5 preview rows, got %d", frame.Rows())
	}
	ids, err := frame.Numeric("id")
	if err != nil {
		t.Fatalf("Numeric failed: %v", err)
	}
	if ids[4] != 5 {
		t.Errorf("Expected last preview id 5, got %v", ids[4])
	}
}

func TestReader_PreviewBeyondFileLength(t *testing.T) {
	path := writeFile(t, t.TempDir(), "short.csv", "x\n1\n2\n3\n")

	frame, err := NewReader().LoadPreview(path, 10)
	if err != nil {
		t.Fatalf("LoadPreview failed: %v", err)
	}
	if frame.Rows() != 3 {
		t.Errorf("Expected all 3 rows, got %d", frame.Rows())
	}
}

func TestReader_PreviewRejectsNonPositiveCount(t *testing.T) {
	path := writeFile(t, t.TempDir(), "any.csv", "x\n1\n")

	_, err := NewReader().LoadPreview(path, 0)
	if !errors.Is(err, core.ErrSpecification) {
		t.Errorf("Expected specification error, got %v", err)
	}
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader().Load(filepath.Join(t.TempDir(), "absent.dta"))
	if !errors.Is(err, core.ErrIO) {
		t.Errorf("Expected io error, got %v", err)
	}
}

func TestReader_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.parquet", "not tabular")

	_, err := NewReader().Load(path)
	if !errors.Is(err, core.ErrUnsupportedExtension) {
		t.Errorf("Expected unsupported extension error, got %v", err)
	}
}

func TestReader_XLSXInfersColumnKinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"region", "sales"},
		{"north", 42.5},
		{"south", 17},
		{"east", nil},
	})

	frame, err := NewReader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if frame.Rows() != 3 {
		t.Fatalf("Expected 3 rows, got %d", frame.Rows())
	}
	if kind, _ := frame.Kind("region"); kind != dataset.KindCategorical {
		t.Errorf("Expected region to be categorical, got %s", kind)
	}
	sales, err := frame.Numeric("sales")
	if err != nil {
		t.Fatalf("Numeric failed: %v", err)
	}
	if sales[0] != 42.5 || sales[1] != 17 {
		t.Errorf("Expected sales 42.5 and 17, got %v and %v", sales[0], sales[1])
	}
	if !math.IsNaN(sales[2]) {
		t.Errorf("Expected blank cell to read as NaN, got %v", sales[2])
	}
}

func TestReader_XLSXPreviewStopsEarly(t *testing.T) {
	rows := [][]interface{}{{"n"}}
	for i := 1; i <= 20; i++ {
		rows = append(rows, []interface{}{i})
	}
	path := filepath.Join(t.TempDir(), "long.xlsx")
	writeWorkbook(t, path, rows)

	frame, err := NewReader().LoadPreview(path, 4)
	if err != nil {
		t.Fatalf("LoadPreview failed: %v", err)
	}
	if frame.Rows() != 4 {
		t.Fatalf("Expected 4 preview rows, got %d", frame.Rows())
	}
	ns, err := frame.Numeric("n")
	if err != nil {
		t.Fatalf("Numeric failed: %v", err)
	}
	if ns[3] != 4 {
		t.Errorf("Expected last preview value 4, got %v", ns[3])
	}
}

func TestReader_XLSNotAWorkbook(t *testing.T) {
	path := writeFile(t, t.TempDir(), "legacy.xls", "plain text, not a workbook")

	_, err := NewReader().Load(path)
	if !errors.Is(err, core.ErrIO) {
		t.Errorf("Expected io error, got %v", err)
	}
}
