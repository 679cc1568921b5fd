package model

import (
	"math"
	"testing"
)

func TestStarsThresholds(t *testing.T) {
	cases := []struct {
		p    float64
		want string
	}{
		{0.0005, "***"},
		{0.009999, "***"},
		{0.01, "**"},
		{0.049, "**"},
		{0.05, "*"},
		{0.0999, "*"},
		{0.1, ""},
		{0.5, ""},
		{math.NaN(), ""},
	}
	for _, c := range cases {
		if got := Stars(c.p); got != c.want {
			t.Errorf("Stars(%v) = %q, want %q", c.p, got, c.want)
		}
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("  FE ")
	if err != nil {
		t.Fatalf("ParseMethod failed: %v", err)
	}
	if m != MethodFE {
		t.Errorf("got %q, want fe", m)
	}
	if _, err := ParseMethod("anova"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestSpecValidate(t *testing.T) {
	ok := Spec{Method: MethodOLS, Response: "y", Regressors: []string{"x"}}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid OLS spec rejected: %v", err)
	}

	noPanel := Spec{Method: MethodFE, Response: "y", Regressors: []string{"x"}}
	if err := noPanel.Validate(); err == nil {
		t.Error("FE without panel identifiers must fail")
	}

	noVars := Spec{Method: MethodDesc}
	if err := noVars.Validate(); err == nil {
		t.Error("desc without variables must fail")
	}

	noCluster := Spec{
		Method: MethodOLS, Response: "y", Regressors: []string{"x"},
		Covariance: Covariance{Kind: CovCluster},
	}
	if err := noCluster.Validate(); err == nil {
		t.Error("cluster covariance without cluster column must fail")
	}

	noGroup := Spec{Method: MethodGroupedDesc, Regressors: []string{"x"}}
	if err := noGroup.Validate(); err == nil {
		t.Error("grouped_desc without group variable must fail")
	}
}

func TestSpecNormalizedDefaults(t *testing.T) {
	s := Spec{Method: MethodOLS}.Normalized()
	if s.Decimals != 3 {
		t.Errorf("default decimals = %d, want 3", s.Decimals)
	}
	if s.Covariance.Kind != CovClassical {
		t.Errorf("default covariance = %q, want classical", s.Covariance.Kind)
	}
	if len(s.DescStats) != 4 {
		t.Errorf("default desc stats = %v", s.DescStats)
	}
}

func TestFitResultStatLookup(t *testing.T) {
	r := NewFitResult(MethodOLS, "y", CovClassical)
	if r.ID.IsEmpty() {
		t.Error("fit result did not receive an identity")
	}
	r.Stats = []Statistic{{Key: StatN, Value: 42}, {Key: StatR2, Value: 0.5}}
	if v, ok := r.Stat(StatN); !ok || v != 42 {
		t.Errorf("Stat(N) = %v, %v", v, ok)
	}
	if _, ok := r.Stat(StatLL); ok {
		t.Error("Stat(LL) should be absent")
	}
}

func TestMethodLabel(t *testing.T) {
	if MethodLogit.Label() != "LOGIT" {
		t.Errorf("Label = %q", MethodLogit.Label())
	}
}
