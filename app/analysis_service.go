// Package app exposes the calling boundary of the engine: one service
// that prepares data, dispatches analysis requests, runs the
// specification tests, and formats accumulated results.
package app

import (
	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/model"
	"goreg/domain/table"
	"goreg/internal"
	"goreg/internal/diagnostics"
	"goreg/internal/estimator"
	"goreg/internal/format"
	"goreg/internal/modeltest"
)

// AnalysisService runs analysis requests against in-memory frames. It
// holds no per-request state; concurrent callers only share the logger.
type AnalysisService struct {
	log *internal.Logger
}

// NewAnalysisService creates the service. A nil logger falls back to the
// environment-configured default.
func NewAnalysisService(log *internal.Logger) *AnalysisService {
	if log == nil {
		log = internal.NewDefaultLogger()
	}
	return &AnalysisService{log: log.Component("AnalysisService")}
}

// Outcome is the two-variant analysis result: a regression produces a
// fit, a descriptive or diagnostic method produces a report. Exactly one
// field is set.
type Outcome struct {
	Fit    *model.FitResult
	Report *table.Report
}

// Run validates the request and dispatches it on the analysis method.
func (s *AnalysisService) Run(f *dataset.Frame, spec model.Spec) (*Outcome, error) {
	spec = spec.Normalized()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Method.IsRegression() {
		fit, err := s.fitModel(f, spec)
		if err != nil {
			return nil, err
		}
		return &Outcome{Fit: fit}, nil
	}
	report, err := s.runDiagnostic(f, spec)
	if err != nil {
		return nil, err
	}
	return &Outcome{Report: report}, nil
}

// fitModel prepares the frame for one regression and fits it. Listwise
// deletion covers every column the request touches, including panel
// identifiers and the cluster column; a hole elsewhere never costs a row.
func (s *AnalysisService) fitModel(f *dataset.Frame, spec model.Spec) (*model.FitResult, error) {
	cols := regressionColumns(spec)
	prepared, err := f.Select(cols...)
	if err != nil {
		return nil, err
	}
	prepared, err = prepared.DropMissing(prepared.ColumnNames()...)
	if err != nil {
		return nil, err
	}
	if prepared.Rows() == 0 {
		return nil, core.ErrEmptyData
	}

	est, err := estimator.FromSpec(spec)
	if err != nil {
		return nil, err
	}
	s.log.Debug("fitting %s on %d rows, %d regressors", spec.Method, prepared.Rows(), len(spec.Regressors))
	fit, err := est.Fit(prepared)
	if err != nil {
		return nil, err
	}
	if len(fit.Absorbed) > 0 {
		s.log.Warn("dropped absorbed regressors: %v", fit.Absorbed)
	}
	if len(spec.CustomRows) > 0 {
		fit.CustomRows = append([]model.CustomRow(nil), spec.CustomRows...)
	}
	return fit, nil
}

// runDiagnostic dispatches the non-regression methods. The diagnostic
// functions own their column selection and missing-value handling, so
// the frame passes through uncleaned.
func (s *AnalysisService) runDiagnostic(f *dataset.Frame, spec model.Spec) (*table.Report, error) {
	opt := diagnostics.Options{Decimals: spec.Decimals, Title: spec.Title}
	s.log.Debug("running %s over %d variables", spec.Method, len(spec.Regressors))
	switch spec.Method {
	case model.MethodDesc:
		t, err := diagnostics.Describe(f, spec.Regressors, spec.DescStats, opt)
		if err != nil {
			return nil, err
		}
		return table.SingleTable(*t), nil
	case model.MethodCorr:
		t, err := diagnostics.Correlation(f, spec.Regressors, opt)
		if err != nil {
			return nil, err
		}
		return table.SingleTable(*t), nil
	case model.MethodVIF:
		t, err := diagnostics.VIF(f, spec.Regressors, opt)
		if err != nil {
			return nil, err
		}
		return table.SingleTable(*t), nil
	case model.MethodFreq:
		return diagnostics.Frequency(f, spec.Regressors, spec.MergeFreq, opt)
	case model.MethodGroupedDesc:
		return diagnostics.GroupedDescribe(f, spec.Regressors, spec.GroupVar, spec.DescStats, opt)
	}
	return nil, core.ErrUnknownMethod
}

// Merged renders accumulated fits side by side in one table.
func (s *AnalysisService) Merged(results []model.FitResult, opt format.Options) (*table.Table, error) {
	return format.Merged(results, opt)
}

// Detail renders one fit as a full coefficient table.
func (s *AnalysisService) Detail(fit *model.FitResult, decimals int) (*table.Table, error) {
	return format.Detail(fit, decimals)
}

// FTest compares fixed effects against pooled OLS on the cleaned panel.
func (s *AnalysisService) FTest(f *dataset.Frame, response string, regressors []string, entityVar, timeVar string, decimals int) (*modeltest.FTestResult, error) {
	panel := model.Panel{Entity: entityVar, Time: timeVar}
	prepared, err := s.prepareTest(f, response, regressors, panel)
	if err != nil {
		return nil, err
	}
	s.log.Debug("f test on %d rows", prepared.Rows())
	return modeltest.FTest(prepared, response, regressors, panel, decimals)
}

// Hausman compares fixed effects against random effects on the cleaned
// panel, optionally under the sigmamore error-scale convention.
func (s *AnalysisService) Hausman(f *dataset.Frame, response string, regressors []string, entityVar, timeVar string, decimals int, sigmamore bool) (*modeltest.HausmanResult, error) {
	panel := model.Panel{Entity: entityVar, Time: timeVar}
	prepared, err := s.prepareTest(f, response, regressors, panel)
	if err != nil {
		return nil, err
	}
	s.log.Debug("hausman test on %d rows, sigmamore=%v", prepared.Rows(), sigmamore)
	return modeltest.Hausman(prepared, response, regressors, panel, decimals, sigmamore)
}

// prepareTest validates and cleans the inputs shared by both
// specification tests.
func (s *AnalysisService) prepareTest(f *dataset.Frame, response string, regressors []string, panel model.Panel) (*dataset.Frame, error) {
	if response == "" {
		return nil, core.SpecificationError("specification test needs a dependent variable")
	}
	if len(regressors) == 0 {
		return nil, core.ErrNoVariables
	}
	if !panel.Complete() {
		return nil, core.ErrMissingPanelIDs
	}
	cols := append([]string{response}, regressors...)
	cols = append(cols, panel.Entity, panel.Time)
	prepared, err := f.Select(cols...)
	if err != nil {
		return nil, err
	}
	prepared, err = prepared.DropMissing(prepared.ColumnNames()...)
	if err != nil {
		return nil, err
	}
	if prepared.Rows() == 0 {
		return nil, core.ErrEmptyData
	}
	return prepared, nil
}

// regressionColumns lists every column a regression request touches.
func regressionColumns(spec model.Spec) []string {
	cols := []string{spec.Response}
	cols = append(cols, spec.Regressors...)
	if spec.Method.IsPanel() {
		cols = append(cols, spec.Panel.Entity, spec.Panel.Time)
	}
	if spec.Method == model.MethodFE {
		cols = append(cols, spec.EffectVars...)
	}
	if spec.Covariance.Kind == model.CovCluster {
		cols = append(cols, spec.Covariance.ClusterVar)
	}
	return cols
}
