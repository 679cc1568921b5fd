package model

import (
	"strings"

	"goreg/domain/core"
)

// Method identifies one analysis behavior.
type Method string

const (
	MethodOLS         Method = "ols"
	MethodLogit       Method = "logit"
	MethodProbit      Method = "probit"
	MethodFE          Method = "fe"
	MethodRE          Method = "re"
	MethodPooled      Method = "pooled"
	MethodDesc        Method = "desc"
	MethodCorr        Method = "corr"
	MethodVIF         Method = "vif"
	MethodFreq        Method = "freq"
	MethodGroupedDesc Method = "grouped_desc"
)

var allMethods = []Method{
	MethodOLS, MethodLogit, MethodProbit, MethodFE, MethodRE, MethodPooled,
	MethodDesc, MethodCorr, MethodVIF, MethodFreq, MethodGroupedDesc,
}

// ParseMethod converts user input into a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allMethods {
		if m == known {
			return m, nil
		}
	}
	return "", core.SpecificationError("unknown analysis method %q", s)
}

// IsRegression reports whether the method produces a coefficient table.
func (m Method) IsRegression() bool {
	switch m {
	case MethodOLS, MethodLogit, MethodProbit, MethodFE, MethodRE, MethodPooled:
		return true
	}
	return false
}

// IsPanel reports whether the method requires entity/time identifiers.
func (m Method) IsPanel() bool {
	switch m {
	case MethodFE, MethodRE, MethodPooled:
		return true
	}
	return false
}

// IsBinaryResponse reports whether the method is an MLE binary-response fit.
func (m Method) IsBinaryResponse() bool {
	return m == MethodLogit || m == MethodProbit
}

// Label is the display tag used in merged-table column headings.
func (m Method) Label() string {
	return strings.ToUpper(string(m))
}

// CovarianceKind selects how coefficient covariance is estimated.
type CovarianceKind string

const (
	CovClassical CovarianceKind = "classical"
	CovRobust    CovarianceKind = "robust"
	CovCluster   CovarianceKind = "cluster"
)

// Covariance is the covariance policy attached to a regression request.
type Covariance struct {
	Kind       CovarianceKind `json:"kind"`
	ClusterVar string         `json:"cluster_var,omitempty"`
}

// Panel names the entity and time identifier columns.
type Panel struct {
	Entity string `json:"entity"`
	Time   string `json:"time"`
}

// Complete reports whether both identifiers are set.
func (p Panel) Complete() bool {
	return p.Entity != "" && p.Time != ""
}

// CustomRow is a caller-supplied label/value pair appended to the table.
type CustomRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DescStatKeys is the default statistic set for descriptive analyses.
var DescStatKeys = []string{"mean", "std", "min", "max"}

// DefaultStatKeys is the default model-statistic export set.
var DefaultStatKeys = []string{"nobs", "r2", "adj_r2", "f_stat"}

// Spec is a complete analysis request.
type Spec struct {
	Method     Method      `json:"method"`
	Response   string      `json:"response,omitempty"`
	Regressors []string    `json:"regressors"`
	Panel      Panel       `json:"panel,omitempty"`
	EffectVars []string    `json:"effect_vars,omitempty"`
	Covariance Covariance  `json:"covariance"`
	DescStats  []string    `json:"desc_stats,omitempty"`
	GroupVar   string      `json:"group_var,omitempty"`
	MergeFreq  bool        `json:"merge_freq,omitempty"`
	Decimals   int         `json:"decimals"`
	ShowTStats bool        `json:"show_t_stats"`
	Title      string      `json:"title,omitempty"`
	CustomRows []CustomRow `json:"custom_rows,omitempty"`
	StatKeys   []string    `json:"stat_keys,omitempty"`
}

// Normalized fills defaults without mutating the receiver.
func (s Spec) Normalized() Spec {
	if s.Decimals <= 0 {
		s.Decimals = 3
	}
	if s.Covariance.Kind == "" {
		s.Covariance.Kind = CovClassical
	}
	if len(s.DescStats) == 0 {
		s.DescStats = DescStatKeys
	}
	return s
}

// Validate checks the request shape before any data is touched.
func (s Spec) Validate() error {
	if _, err := ParseMethod(string(s.Method)); err != nil {
		return err
	}
	switch s.Covariance.Kind {
	case "", CovClassical, CovRobust, CovCluster:
	default:
		return core.SpecificationError("unknown covariance kind %q", s.Covariance.Kind)
	}
	if s.Covariance.Kind == CovCluster && s.Covariance.ClusterVar == "" {
		return core.SpecificationError("clustered covariance needs a cluster column")
	}
	if s.Method.IsRegression() {
		if s.Response == "" {
			return core.SpecificationError("method %s needs a dependent variable", s.Method)
		}
		if s.Method.IsPanel() && !s.Panel.Complete() {
			return core.ErrMissingPanelIDs
		}
		if !s.Method.IsPanel() && len(s.Regressors) == 0 {
			return core.ErrNoVariables
		}
		return nil
	}
	if len(s.Regressors) == 0 {
		return core.ErrNoVariables
	}
	if s.Method == MethodGroupedDesc && s.GroupVar == "" {
		return core.SpecificationError("grouped descriptives need a grouping variable")
	}
	return nil
}
