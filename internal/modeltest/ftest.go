package modeltest

import (
	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/model"
	"goreg/internal/estimator"
)

// FTestResult reports the poolability test of fixed effects against pooled
// OLS. Under the null every entity effect is zero.
type FTestResult struct {
	Name        string     `json:"test_name"`
	Null        string     `json:"null_hypothesis"`
	Alternative string     `json:"alternative_hypothesis"`
	Statistic   float64    `json:"f_statistic"`
	DF1         int        `json:"df1"`
	DF2         int        `json:"df2"`
	PValue      float64    `json:"p_value"`
	Stars       string     `json:"significance"`
	Conclusion  Conclusion `json:"-"`
	Summary     string     `json:"conclusion"`
	RSSPooled   float64    `json:"rss_pooled"`
	RSSFixed    float64    `json:"rss_fe"`
	Entities    int        `json:"n_entities"`
	Obs         int        `json:"n_obs"`
	Decimals    int        `json:"-"`
}

// FTest compares a pooled OLS fit against the entity fixed-effects fit.
// F = [(RSS_pooled - RSS_fe)/(N-1)] / [RSS_fe/(NT - N - K)] with K the
// requested regressor count.
func FTest(f *dataset.Frame, response string, regressors []string, panel model.Panel, decimals int) (*FTestResult, error) {
	pooled := &estimator.Pooled{Response: response, Regressors: regressors, Panel: panel}
	pr, err := pooled.TestFit(f)
	if err != nil {
		return nil, err
	}
	fixed := &estimator.FixedEffects{Response: response, Regressors: regressors, Panel: panel}
	fr, err := fixed.TestFit(f)
	if err != nil {
		return nil, err
	}

	df1 := fr.Entities - 1
	df2 := fr.N - fr.Entities - len(regressors)
	if df1 <= 0 || df2 <= 0 {
		return nil, core.NumericalError("poolability test needs %d numerator and %d denominator degrees of freedom", df1, df2)
	}
	fstat := ((pr.RSS - fr.RSS) / float64(df1)) / (fr.RSS / float64(df2))
	p := estimator.FTail(fstat, df1, df2)
	conclusion, stars, summary := verdict(p, "Cannot reject the null hypothesis; the pooled OLS model is adequate.")

	return &FTestResult{
		Name:        "F Test (Fixed Effects vs Pooled OLS)",
		Null:        "All entity effects are zero (pooled OLS is adequate)",
		Alternative: "At least one entity effect is nonzero (fixed effects are appropriate)",
		Statistic:   fstat,
		DF1:         df1,
		DF2:         df2,
		PValue:      p,
		Stars:       stars,
		Conclusion:  conclusion,
		Summary:     summary,
		RSSPooled:   pr.RSS,
		RSSFixed:    fr.RSS,
		Entities:    fr.Entities,
		Obs:         fr.N,
		Decimals:    decimals,
	}, nil
}
