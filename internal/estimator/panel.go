package estimator

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"goreg/domain/core"
	"goreg/domain/dataset"
	"goreg/domain/model"
)

// Iterated demeaning controls for multi-way fixed effects, plus the cutoff
// below which a demeaned regressor counts as absorbed.
const (
	demeanMaxSweeps = 100
	demeanTol       = 1e-10
	absorbTol       = 1e-8
)

// panelIndex maps rows to entity and time groups in first-appearance order.
type panelIndex struct {
	entity groupIndexing
	time   groupIndexing
}

// preparePanel drops singleton entities and indexes the identifier columns.
// Every panel estimator and specification test starts here.
func preparePanel(f *dataset.Frame, p model.Panel) (*dataset.Frame, *panelIndex, error) {
	if !p.Complete() {
		return nil, nil, core.ErrMissingPanelIDs
	}
	pf, err := f.DropSingletons(p.Entity)
	if err != nil {
		return nil, nil, err
	}
	if pf.Rows() == 0 {
		return nil, nil, fmt.Errorf("%w: every entity is a singleton", core.ErrEmptyData)
	}
	ent, err := pf.Labels(p.Entity)
	if err != nil {
		return nil, nil, err
	}
	tim, err := pf.Labels(p.Time)
	if err != nil {
		return nil, nil, err
	}
	return pf, &panelIndex{entity: groupIndex(ent), time: groupIndex(tim)}, nil
}

// effect is one absorbed grouping.
type effect struct {
	name   string
	groups groupIndexing
}

// resolveEffects maps fixed-effect variables onto groupings. Entity effects
// are assumed when none are named. Groupings absorb in canonical order:
// entity, time, then other columns in their given order.
func resolveEffects(f *dataset.Frame, p model.Panel, idx *panelIndex, effectVars []string) ([]effect, error) {
	if len(effectVars) == 0 {
		return []effect{{name: p.Entity, groups: idx.entity}}, nil
	}
	var withEntity, withTime bool
	var others []string
	seen := make(map[string]bool, len(effectVars))
	for _, v := range effectVars {
		if seen[v] {
			continue
		}
		seen[v] = true
		switch v {
		case p.Entity:
			withEntity = true
		case p.Time:
			withTime = true
		default:
			others = append(others, v)
		}
	}
	var out []effect
	if withEntity {
		out = append(out, effect{name: p.Entity, groups: idx.entity})
	}
	if withTime {
		out = append(out, effect{name: p.Time, groups: idx.time})
	}
	for _, v := range others {
		labels, err := f.Labels(v)
		if err != nil {
			return nil, err
		}
		out = append(out, effect{name: v, groups: groupIndex(labels)})
	}
	return out, nil
}

// absorbedParams counts the parameters swept out by the effect groupings.
// The first grouping loses a level when an explicit constant is kept; every
// later grouping always loses one level to the earlier ones.
func absorbedParams(effects []effect, withConst bool) int {
	total := 0
	for i, ef := range effects {
		levels := len(ef.groups.levels)
		if i == 0 && !withConst {
			total += levels
		} else {
			total += levels - 1
		}
	}
	return total
}

// demeanColumns sweeps group means out of every column, alternating over the
// effect groupings until the sweeps stop moving values. A single grouping is
// exact after one pass.
func demeanColumns(cols [][]float64, effects []effect) [][]float64 {
	out := make([][]float64, len(cols))
	for j, col := range cols {
		out[j] = append([]float64(nil), col...)
	}
	if len(effects) == 0 || len(cols) == 0 {
		return out
	}
	scale := 1.0
	for _, col := range cols {
		for _, v := range col {
			if a := math.Abs(v); a > scale {
				scale = a
			}
		}
	}
	for sweep := 0; sweep < demeanMaxSweeps; sweep++ {
		maxShift := 0.0
		for _, ef := range effects {
			counts := make([]float64, len(ef.groups.levels))
			for _, g := range ef.groups.of {
				counts[g]++
			}
			for _, col := range out {
				sums := make([]float64, len(counts))
				for i, v := range col {
					sums[ef.groups.of[i]] += v
				}
				for g := range sums {
					sums[g] /= counts[g]
				}
				for i := range col {
					m := sums[ef.groups.of[i]]
					col[i] -= m
					if a := math.Abs(m); a > maxShift {
						maxShift = a
					}
				}
			}
		}
		if len(effects) == 1 || maxShift <= demeanTol*scale {
			break
		}
	}
	return out
}

func columnNorm(col []float64) float64 {
	s := 0.0
	for _, v := range col {
		s += v * v
	}
	return math.Sqrt(s)
}

// isAbsorbed reports whether demeaning left the column with no variation
// relative to its original magnitude.
func isAbsorbed(demeaned, original []float64) bool {
	return columnNorm(demeaned) <= absorbTol*(columnNorm(original)+1)
}

func colsMatrix(cols [][]float64, n int) *mat.Dense {
	m := mat.NewDense(n, len(cols), nil)
	for j, col := range cols {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}

func mean(col []float64) float64 {
	s := 0.0
	for _, v := range col {
		s += v
	}
	return s / float64(len(col))
}

// TestFit exposes the raw quantities of a panel fit that the specification
// tests consume. Cov is always the classical covariance.
type TestFit struct {
	Names    []string
	Beta     []float64
	Cov      *mat.Dense
	RSS      float64
	N        int
	DFResid  int
	Entities int
}

// FixedEffects fits the within estimator, absorbing the requested effect
// groupings and dropping regressors the absorption leaves degenerate.
type FixedEffects struct {
	Response   string
	Regressors []string
	Panel      model.Panel
	EffectVars []string
	Cov        model.Covariance

	// WithConstant re-centers the within transform around the grand means and
	// estimates an explicit intercept, as the specification-test pairings
	// require.
	WithConstant bool
}

type feCore struct {
	lm        *linearModel
	d         *design
	plan      covPlan
	absorbed  []string
	entities  int
	withConst bool
}

func (e *FixedEffects) fit(f *dataset.Frame) (*feCore, error) {
	pf, idx, err := preparePanel(f, e.Panel)
	if err != nil {
		return nil, err
	}
	d, err := buildDesign(pf, e.Response, e.Regressors, false)
	if err != nil {
		return nil, err
	}
	withConst := e.WithConstant || d.k() == 0
	effects, err := resolveEffects(pf, e.Panel, idx, e.EffectVars)
	if err != nil {
		return nil, err
	}

	all := make([][]float64, 0, d.k()+1)
	all = append(all, d.y)
	all = append(all, d.cols...)
	pure := demeanColumns(all, effects)

	yw := pure[0]
	var kept []int
	var dropped []string
	for j, name := range d.names {
		if isAbsorbed(pure[j+1], d.cols[j]) {
			dropped = append(dropped, name)
			continue
		}
		kept = append(kept, j)
	}
	if len(kept) == 0 && !withConst {
		return nil, core.NumericalError("every regressor is absorbed by the effect structure")
	}

	names := make([]string, 0, len(kept)+1)
	cols := make([][]float64, 0, len(kept)+1)
	if withConst {
		grand := mean(d.y)
		for i := range yw {
			yw[i] += grand
		}
		ones := make([]float64, d.n)
		for i := range ones {
			ones[i] = 1
		}
		names = append(names, constName)
		cols = append(cols, ones)
		for _, j := range kept {
			col := pure[j+1]
			g := mean(d.cols[j])
			for i := range col {
				col[i] += g
			}
			names = append(names, d.names[j])
			cols = append(cols, col)
		}
	} else {
		for _, j := range kept {
			names = append(names, d.names[j])
			cols = append(cols, pure[j+1])
		}
	}

	plan, err := resolveCov(pf, e.Cov)
	if err != nil {
		return nil, err
	}
	lm, err := fitLinear(colsMatrix(cols, d.n), yw, names, absorbedParams(effects, withConst), plan, true)
	if err != nil {
		return nil, err
	}
	return &feCore{
		lm:        lm,
		d:         d,
		plan:      plan,
		absorbed:  dropped,
		entities:  len(idx.entity.levels),
		withConst: withConst,
	}, nil
}

func (e *FixedEffects) Fit(f *dataset.Frame) (*model.FitResult, error) {
	c, err := e.fit(f)
	if err != nil {
		return nil, err
	}
	r2, adj := rsquared(c.lm.rss, centeredTSS(c.d.y), c.lm.n, c.lm.dfResid)
	fstat, _ := waldF(c.lm.beta, c.lm.classicalCov(), c.lm.slopeIdx(), c.lm.dfResid)
	stats := []model.Statistic{
		stat(model.StatN, float64(c.lm.n)),
		stat(model.StatR2, r2),
		stat(model.StatAdjR2, adj),
		stat(model.StatF, fstat),
	}
	res := buildResult(model.MethodFE, e.Response, c.plan.kind, c.lm, stats)
	res.Absorbed = c.absorbed
	return res, nil
}

// TestFit runs the fixed-effects fit and returns its internals with a
// classical covariance, regardless of the configured policy.
func (e *FixedEffects) TestFit(f *dataset.Frame) (*TestFit, error) {
	c, err := e.fit(f)
	if err != nil {
		return nil, err
	}
	return &TestFit{
		Names:    c.lm.names,
		Beta:     c.lm.beta,
		Cov:      c.lm.classicalCov(),
		RSS:      c.lm.rss,
		N:        c.lm.n,
		DFResid:  c.lm.dfResid,
		Entities: c.entities,
	}, nil
}

// RandomEffects fits the Swamy-Arora quasi-demeaned GLS estimator with an
// intercept.
type RandomEffects struct {
	Response   string
	Regressors []string
	Panel      model.Panel
	Cov        model.Covariance
}

type reCore struct {
	lm       *linearModel
	d        *design
	plan     covPlan
	entities int
}

func (e *RandomEffects) fit(f *dataset.Frame) (*reCore, error) {
	pf, idx, err := preparePanel(f, e.Panel)
	if err != nil {
		return nil, err
	}
	d, err := buildDesign(pf, e.Response, e.Regressors, true)
	if err != nil {
		return nil, err
	}
	n := d.n
	nEnt := len(idx.entity.levels)
	kx := d.k() - 1

	// Idiosyncratic variance from the within regression.
	dfW := n - nEnt - kx
	if dfW <= 0 {
		return nil, fmt.Errorf("%w: within regression has no residual degrees of freedom",
			core.ErrInsufficient)
	}
	entityEffect := []effect{{name: e.Panel.Entity, groups: idx.entity}}
	within := make([][]float64, 0, kx+1)
	within = append(within, d.y)
	within = append(within, d.cols[1:]...)
	pure := demeanColumns(within, entityEffect)
	var rssW float64
	if kx == 0 {
		nrm := columnNorm(pure[0])
		rssW = nrm * nrm
	} else {
		wlm, err := fitLinear(colsMatrix(pure[1:], n), pure[0], d.names[1:], nEnt,
			covPlan{kind: model.CovClassical}, true)
		if err != nil {
			return nil, err
		}
		rssW = wlm.rss
	}
	sigmaE := rssW / float64(dfW)

	// Between variance from the entity-mean regression.
	dfB := nEnt - kx - 1
	if dfB <= 0 {
		return nil, fmt.Errorf("%w: %d entities cannot identify the between regression",
			core.ErrInsufficient, nEnt)
	}
	counts := make([]float64, nEnt)
	for _, g := range idx.entity.of {
		counts[g]++
	}
	ybar := groupMeans(d.y, idx.entity.of, counts)
	between := make([][]float64, 0, d.k())
	ones := make([]float64, nEnt)
	for i := range ones {
		ones[i] = 1
	}
	between = append(between, ones)
	for _, col := range d.cols[1:] {
		between = append(between, groupMeans(col, idx.entity.of, counts))
	}
	blm, err := fitLinear(colsMatrix(between, nEnt), ybar, d.names, 0,
		covPlan{kind: model.CovClassical}, true)
	if err != nil {
		return nil, err
	}
	sigmaB := blm.rss / float64(dfB)

	// Swamy-Arora variance of the entity effect, with the harmonic mean of
	// the group sizes standing in for T on unbalanced panels.
	invSum := 0.0
	for _, c := range counts {
		invSum += 1 / c
	}
	tBar := float64(nEnt) / invSum
	sigmaU := sigmaB - sigmaE/tBar
	if sigmaU < 0 {
		sigmaU = 0
	}

	theta := make([]float64, nEnt)
	for g := range theta {
		theta[g] = 1 - math.Sqrt(sigmaE/(counts[g]*sigmaU+sigmaE))
	}

	// Quasi-demeaned system, constant included as 1-theta.
	xbar := make([][]float64, kx)
	for j, col := range d.cols[1:] {
		xbar[j] = groupMeans(col, idx.entity.of, counts)
	}
	star := make([][]float64, d.k())
	for j := range star {
		star[j] = make([]float64, n)
	}
	ystar := make([]float64, n)
	for i := 0; i < n; i++ {
		g := idx.entity.of[i]
		ystar[i] = d.y[i] - theta[g]*ybar[g]
		star[0][i] = 1 - theta[g]
		for j := 0; j < kx; j++ {
			star[j+1][i] = d.cols[j+1][i] - theta[g]*xbar[j][g]
		}
	}

	plan, err := resolveCov(pf, e.Cov)
	if err != nil {
		return nil, err
	}
	lm, err := fitLinear(colsMatrix(star, n), ystar, d.names, 0, plan, true)
	if err != nil {
		return nil, err
	}
	return &reCore{lm: lm, d: d, plan: plan, entities: nEnt}, nil
}

func (e *RandomEffects) Fit(f *dataset.Frame) (*model.FitResult, error) {
	c, err := e.fit(f)
	if err != nil {
		return nil, err
	}
	r2 := overallR2(c.d, c.lm.beta)
	adj := math.NaN()
	if c.lm.dfResid > 0 && !math.IsNaN(r2) {
		adj = 1 - (1-r2)*float64(c.lm.n-1)/float64(c.lm.dfResid)
	}
	fstat, _ := waldF(c.lm.beta, c.lm.classicalCov(), c.lm.slopeIdx(), c.lm.dfResid)
	stats := []model.Statistic{
		stat(model.StatN, float64(c.lm.n)),
		stat(model.StatR2, r2),
		stat(model.StatAdjR2, adj),
		stat(model.StatF, fstat),
	}
	return buildResult(model.MethodRE, e.Response, c.plan.kind, c.lm, stats), nil
}

// TestFit runs the random-effects fit and returns its internals with a
// classical covariance.
func (e *RandomEffects) TestFit(f *dataset.Frame) (*TestFit, error) {
	c, err := e.fit(f)
	if err != nil {
		return nil, err
	}
	return &TestFit{
		Names:    c.lm.names,
		Beta:     c.lm.beta,
		Cov:      c.lm.classicalCov(),
		RSS:      c.lm.rss,
		N:        c.lm.n,
		DFResid:  c.lm.dfResid,
		Entities: c.entities,
	}, nil
}

// Pooled stacks the panel and runs OLS with an intercept, ignoring the
// entity structure beyond singleton removal.
type Pooled struct {
	Response   string
	Regressors []string
	Panel      model.Panel
	Cov        model.Covariance
}

type pooledCore struct {
	lm       *linearModel
	d        *design
	plan     covPlan
	entities int
}

func (e *Pooled) fit(f *dataset.Frame) (*pooledCore, error) {
	pf, idx, err := preparePanel(f, e.Panel)
	if err != nil {
		return nil, err
	}
	d, err := buildDesign(pf, e.Response, e.Regressors, true)
	if err != nil {
		return nil, err
	}
	plan, err := resolveCov(pf, e.Cov)
	if err != nil {
		return nil, err
	}
	lm, err := fitLinear(d.matrix(), d.y, d.names, 0, plan, true)
	if err != nil {
		return nil, err
	}
	return &pooledCore{lm: lm, d: d, plan: plan, entities: len(idx.entity.levels)}, nil
}

func (e *Pooled) Fit(f *dataset.Frame) (*model.FitResult, error) {
	c, err := e.fit(f)
	if err != nil {
		return nil, err
	}
	r2, adj := rsquared(c.lm.rss, centeredTSS(c.d.y), c.lm.n, c.lm.dfResid)
	fstat, _ := waldF(c.lm.beta, c.lm.classicalCov(), c.lm.slopeIdx(), c.lm.dfResid)
	stats := []model.Statistic{
		stat(model.StatN, float64(c.lm.n)),
		stat(model.StatR2, r2),
		stat(model.StatAdjR2, adj),
		stat(model.StatF, fstat),
	}
	return buildResult(model.MethodPooled, e.Response, c.plan.kind, c.lm, stats), nil
}

// TestFit runs the pooled fit and returns its internals with a classical
// covariance.
func (e *Pooled) TestFit(f *dataset.Frame) (*TestFit, error) {
	c, err := e.fit(f)
	if err != nil {
		return nil, err
	}
	return &TestFit{
		Names:    c.lm.names,
		Beta:     c.lm.beta,
		Cov:      c.lm.classicalCov(),
		RSS:      c.lm.rss,
		N:        c.lm.n,
		DFResid:  c.lm.dfResid,
		Entities: c.entities,
	}, nil
}

func groupMeans(col []float64, of []int, counts []float64) []float64 {
	out := make([]float64, len(counts))
	for i, v := range col {
		out[of[i]] += v
	}
	for g := range out {
		out[g] /= counts[g]
	}
	return out
}

// overallR2 is the squared correlation between the response and the fitted
// values on the original scale.
func overallR2(d *design, beta []float64) float64 {
	fitted := make([]float64, d.n)
	for i := 0; i < d.n; i++ {
		s := 0.0
		for j, col := range d.cols {
			s += beta[j] * col[i]
		}
		fitted[i] = s
	}
	r, err := stats.Pearson(fitted, d.y)
	if err != nil {
		return math.NaN()
	}
	return r * r
}
