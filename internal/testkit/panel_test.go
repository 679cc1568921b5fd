package testkit

import (
	"math"
	"testing"

	"goreg/domain/core"
)

func TestPanelGenerator_SameSeedSameFrame(t *testing.T) {
	cfg := DefaultPanelConfig()
	a, err := NewPanelGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := NewPanelGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if a.Rows() != cfg.Entities*cfg.Periods {
		t.Fatalf("Expected %d rows, got %d", cfg.Entities*cfg.Periods, a.Rows())
	}
	ya, _ := a.Numeric("y")
	yb, _ := b.Numeric("y")
	for i := range ya {
		if ya[i] != yb[i] {
			t.Fatalf("Expected identical draws at row %d, got %v and %v", i, ya[i], yb[i])
		}
	}
}

func TestPanelGenerator_ColumnLayout(t *testing.T) {
	cfg := DefaultPanelConfig()
	f, err := NewPanelGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := []string{"entity", "period", "y", "x1", "x2"}
	got := f.ColumnNames()
	if len(got) != len(want) {
		t.Fatalf("Expected columns %v, got %v", want, got)
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("Expected column %d to be %s, got %s", i, name, got[i])
		}
	}
	labels, err := f.Labels("entity")
	if err != nil {
		t.Fatalf("Labels failed: %v", err)
	}
	if labels[0] != "e001" || labels[len(labels)-1] != "e020" {
		t.Errorf("Expected e001..e020 entity labels, got %s..%s", labels[0], labels[len(labels)-1])
	}
}

func TestPanelGenerator_ExactWhenNoiseFree(t *testing.T) {
	cfg := DefaultPanelConfig()
	cfg.EntityEffectSD = 0
	cfg.NoiseSD = 0
	f, err := NewPanelGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	y, _ := f.Numeric("y")
	x1, _ := f.Numeric("x1")
	x2, _ := f.Numeric("x2")
	for i := range y {
		want := cfg.Intercept + cfg.Slopes[0]*x1[i] + cfg.Slopes[1]*x2[i]
		if math.Abs(y[i]-want) > 1e-12 {
			t.Fatalf("Expected an exact linear response at row %d, got %v want %v", i, y[i], want)
		}
	}
}

func TestPanelGenerator_MissingRateInjectsOnlyRegressors(t *testing.T) {
	cfg := DefaultPanelConfig()
	cfg.MissingRate = 0.2
	f, err := NewPanelGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	y, _ := f.Numeric("y")
	for i, v := range y {
		if math.IsNaN(v) {
			t.Fatalf("Expected a complete response, got NaN at row %d", i)
		}
	}
	x1, _ := f.Numeric("x1")
	holes := 0
	for _, v := range x1 {
		if math.IsNaN(v) {
			holes++
		}
	}
	if holes == 0 {
		t.Error("Expected some missing regressor cells at rate 0.2")
	}
}

func TestPanelGenerator_BinaryResponse(t *testing.T) {
	f, err := NewPanelGenerator(DefaultPanelConfig()).GenerateBinary()
	if err != nil {
		t.Fatalf("GenerateBinary failed: %v", err)
	}

	y, _ := f.Numeric("y")
	ones := 0
	for i, v := range y {
		if v != 0 && v != 1 {
			t.Fatalf("Expected a 0/1 response, got %v at row %d", v, i)
		}
		if v == 1 {
			ones++
		}
	}
	if ones == 0 || ones == len(y) {
		t.Errorf("Expected both response classes, got %d ones of %d", ones, len(y))
	}
}

func TestPanelGenerator_RejectsBadConfig(t *testing.T) {
	cfg := DefaultPanelConfig()
	cfg.Entities = 1
	if _, err := NewPanelGenerator(cfg).Generate(); !core.IsSpecificationError(err) {
		t.Errorf("Expected a specification error for one entity, got %v", err)
	}

	cfg = DefaultPanelConfig()
	cfg.MissingRate = 1
	if _, err := NewPanelGenerator(cfg).Generate(); !core.IsSpecificationError(err) {
		t.Errorf("Expected a specification error for missing rate 1, got %v", err)
	}
}
