package transform

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/linalg"
	"go.viam.com/twoview/logging"
	"go.viam.com/twoview/utils"
)

// SampleFunc draws size unique indices from [0, population) starting from seed and returns them
// with the advanced seed.
type SampleFunc func(indices []int, population, size int, seed utils.Seed) ([]int, utils.Seed, error)

// EstimatorOption overrides one of the collaborators of a FundamentalEstimator.
type EstimatorOption func(*FundamentalEstimator)

// WithDecomposer sets the SVD used to solve the linear systems.
func WithDecomposer(d linalg.Decomposer) EstimatorOption {
	return func(e *FundamentalEstimator) {
		e.decomposer = d
	}
}

// WithSampler sets the random sample generator.
func WithSampler(sample SampleFunc) EstimatorOption {
	return func(e *FundamentalEstimator) {
		e.sample = sample
	}
}

// WithEpipolarTest sets the test used to score support.
func WithEpipolarTest(test EpipolarTestFunc) EstimatorOption {
	return func(e *FundamentalEstimator) {
		e.test = test
	}
}

// FundamentalEstimator robustly estimates fundamental matrices with RANSAC over the normalized
// 8-point algorithm.
type FundamentalEstimator struct {
	cfg        EstimatorConfig
	decomposer linalg.Decomposer
	sample     SampleFunc
	test       EpipolarTestFunc
	logger     logging.Logger
}

// ResidualStats summarizes the symmetric epipolar distances of the inliers of an estimate.
type ResidualStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// FundamentalEstimate is the best supported model found by a FundamentalEstimator.
type FundamentalEstimate struct {
	F *mat.Dense
	// Support is the number of correspondences passing the epipolar test in both directions.
	Support int
	// Inliers flags the correspondences counted in Support.
	Inliers []bool
	// Trials is the number of trials that ran. With more than one worker it can vary between runs
	// even though the model does not.
	Trials int
	// NextSeed is the advanced sampling seed, to be passed to a following estimation.
	NextSeed  utils.Seed
	Residuals ResidualStats
}

// NewFundamentalEstimator returns an estimator for the given config. A nil logger discards all
// messages.
func NewFundamentalEstimator(cfg EstimatorConfig, logger logging.Logger, opts ...EstimatorOption) (*FundamentalEstimator, error) {
	if err := cfg.Validate("estimator"); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if logger == nil {
		logger = logging.NewBlankLogger("fmatrix")
	}
	e := &FundamentalEstimator{
		cfg:        cfg,
		decomposer: linalg.GonumDecomposer{},
		sample:     utils.RandomSample,
		test:       EpipolarTest,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EstimateFundamentalMatrix estimates the fundamental matrix F such that p1^T F p0 = 0 for the
// inlying correspondences of pts0 and pts1, using the default configuration and seed.
func EstimateFundamentalMatrix(pts0, pts1 []r2.Point, thresholdPx float64) (*mat.Dense, error) {
	e, err := NewFundamentalEstimator(EstimatorConfig{}, logging.NewBlankLogger("fmatrix"))
	if err != nil {
		return nil, err
	}
	est, err := e.Estimate(pts0, pts1, thresholdPx, utils.DefaultSeed)
	if err != nil {
		return nil, err
	}
	return est.F, nil
}

// problem holds everything a trial needs, computed once per estimation.
type problem struct {
	pts0, pts1   []r2.Point
	norm0, norm1 []r2.Point
	tn0, tn1T    *mat.Dense
	threshold    float64
}

// candidate is the best model of a run of trials.
type candidate struct {
	f       *mat.Dense
	support int
	trials  int
}

// Estimate runs RANSAC over the correspondences pts0[i] <-> pts1[i]. Support is counted with a
// threshold in pixels. Given the same inputs, seed and number of workers the returned model is
// identical from run to run.
func (e *FundamentalEstimator) Estimate(pts0, pts1 []r2.Point, thresholdPx float64, seed utils.Seed) (*FundamentalEstimate, error) {
	if len(pts0) != len(pts1) {
		return nil, newInputError("correspondence sets have different lengths (%d != %d)", len(pts0), len(pts1))
	}
	nMatches := len(pts0)
	if nMatches < e.cfg.SampleSize {
		return nil, newInputError("need at least %d correspondences, got %d", e.cfg.SampleSize, nMatches)
	}
	if !(thresholdPx > 0) || math.IsInf(thresholdPx, 0) {
		return nil, newInputError("threshold must be a positive number of pixels, got %v", thresholdPx)
	}

	p, err := e.newProblem(pts0, pts1, thresholdPx)
	if err != nil {
		return nil, err
	}

	var best candidate
	var nextSeed utils.Seed
	if e.cfg.Workers <= 1 {
		best, nextSeed, err = e.runTrials(p, e.cfg.Trials, seed, func() bool { return false })
	} else {
		best, nextSeed, err = e.runParallel(p, seed)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Infof("best support: %d/%d after %d trials", best.support, nMatches, best.trials)
	if best.support == 0 {
		return nil, errors.Wrapf(ErrEstimationFailed, "no correspondence supports any model after %d trials", best.trials)
	}

	est := &FundamentalEstimate{
		F:        best.f,
		Support:  best.support,
		Inliers:  make([]bool, nMatches),
		Trials:   best.trials,
		NextSeed: nextSeed,
	}
	residuals := make([]float64, 0, best.support)
	for i := range pts0 {
		if e.isInlier(p, i, best.f) {
			est.Inliers[i] = true
			residuals = append(residuals, SymmetricEpipolarDistance(pts0[i], pts1[i], best.f))
		}
	}
	est.Residuals, err = summarizeResiduals(residuals)
	if err != nil {
		return nil, err
	}
	return est, nil
}

func (e *FundamentalEstimator) newProblem(pts0, pts1 []r2.Point, threshold float64) (*problem, error) {
	norm0, tn0, err := NormalizePoints(pts0)
	if err != nil {
		return nil, errors.Wrap(err, "normalizing first point set")
	}
	norm1, tn1, err := NormalizePoints(pts1)
	if err != nil {
		return nil, errors.Wrap(err, "normalizing second point set")
	}
	if e.cfg.CheckInvariants {
		const tol = 1e-3
		if err := CheckNormalized(norm0, tol); err != nil {
			return nil, err
		}
		if err := CheckNormalized(norm1, tol); err != nil {
			return nil, err
		}
		// normalizing twice should be close to the identity
		renorm0, err := NormalizeTransform(norm0)
		if err != nil {
			return nil, err
		}
		renorm1, err := NormalizeTransform(norm1)
		if err != nil {
			return nil, err
		}
		e.logger.Debugw("renormalization", "first", fmt.Sprint(mat.Formatted(renorm0, mat.FormatPython())),
			"second", fmt.Sprint(mat.Formatted(renorm1, mat.FormatPython())))
	}
	return &problem{
		pts0:      pts0,
		pts1:      pts1,
		norm0:     norm0,
		norm1:     norm1,
		tn0:       tn0,
		tn1T:      linalg.Transpose(tn1),
		threshold: threshold,
	}, nil
}

func (e *FundamentalEstimator) isInlier(p *problem, i int, f *mat.Dense) bool {
	return e.test(p.pts0[i], p.pts1[i], f, p.threshold) && e.test(p.pts1[i], p.pts0[i], f.T(), p.threshold)
}

func (e *FundamentalEstimator) support(p *problem, f *mat.Dense) int {
	support := 0
	for i := range p.pts0 {
		if e.isInlier(p, i, f) {
			support++
		}
	}
	return support
}

// runTrials runs up to nTrials trials starting from seed and returns the first model with the
// highest support. It stops early on perfect consensus or when stop returns true.
func (e *FundamentalEstimator) runTrials(p *problem, nTrials int, seed utils.Seed, stop func() bool) (candidate, utils.Seed, error) {
	nMatches := len(p.pts0)
	sampleSize := e.cfg.SampleSize
	ms0 := make([]r2.Point, sampleSize)
	ms1 := make([]r2.Point, sampleSize)
	var sample []int
	var best candidate

	for trial := 0; trial < nTrials; trial++ {
		if stop() {
			break
		}
		best.trials++
		var err error
		sample, seed, err = e.sample(sample, nMatches, sampleSize, seed)
		if err != nil {
			if errors.Is(err, utils.ErrSampleTooLarge) {
				return candidate{}, seed, newInputError("drawing sample: %v", err)
			}
			return candidate{}, seed, errors.Wrap(err, "drawing sample")
		}
		for i, idx := range sample {
			ms0[i] = p.norm0[idx]
			ms1[i] = p.norm1[idx]
		}

		f, err := FundamentalFromCorrespondences(e.decomposer, ms0, ms1)
		if err != nil {
			if errors.Is(err, linalg.ErrFactorizationFailed) {
				e.logger.Debugw("skipping trial", "trial", trial, "error", err)
				continue
			}
			return candidate{}, seed, err
		}
		// denormalize
		f = linalg.Mul3(p.tn1T, f, p.tn0)

		support := e.support(p, f)
		if support > best.support {
			best.f = f
			best.support = support
			e.logImprovement(trial, support, nMatches, f)
			if support == nMatches {
				break
			}
		}
	}
	return best, seed, nil
}

// runParallel splits the trials into contiguous ranges, one per worker. Worker seeds are
// successive draws from the caller's seed. Worker results are merged in worker order with a strict
// comparison, so the earliest worker wins ties exactly as the earliest trial does sequentially.
func (e *FundamentalEstimator) runParallel(p *problem, seed utils.Seed) (candidate, utils.Seed, error) {
	workers := e.cfg.Workers
	if workers > e.cfg.Trials {
		workers = e.cfg.Trials
	}
	seeds, nextSeed := utils.SplitSeeds(seed, workers)
	results := make([]candidate, workers)
	nMatches := len(p.pts0)

	// lowest index of a worker that reached perfect consensus; workers above it cannot win
	lowestPerfect := atomic.NewInt64(int64(workers))

	var g errgroup.Group
	for w, work := range utils.SplitWork(e.cfg.Trials, workers) {
		w, work := w, work
		g.Go(func() error {
			return utils.RecoverAsError(func() error {
				stop := func() bool { return lowestPerfect.Load() < int64(w) }
				res, _, err := e.runTrials(p, work.Len(), seeds[w], stop)
				if err != nil {
					return err
				}
				results[w] = res
				if res.support == nMatches {
					for {
						cur := lowestPerfect.Load()
						if int64(w) >= cur || lowestPerfect.CompareAndSwap(cur, int64(w)) {
							break
						}
					}
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return candidate{}, seed, err
	}

	var best candidate
	for _, res := range results {
		best.trials += res.trials
		if res.support > best.support {
			best.f = res.f
			best.support = res.support
		}
	}
	return best, nextSeed, nil
}

func (e *FundamentalEstimator) logImprovement(trial, support, total int, f *mat.Dense) {
	if !logging.DebugEnabled(e.logger) {
		return
	}
	var singularValues []float64
	if svd, err := e.decomposer.Decompose(f); err == nil {
		singularValues = svd.Values
	}
	e.logger.Debugw("support improved", "trial", trial, "support", support, "total", total,
		"singular_values", singularValues)
}

func summarizeResiduals(residuals []float64) (ResidualStats, error) {
	if len(residuals) == 0 {
		return ResidualStats{}, nil
	}
	data := stats.Float64Data(residuals)
	mean, err := data.Mean()
	if err != nil {
		return ResidualStats{}, err
	}
	median, err := data.Median()
	if err != nil {
		return ResidualStats{}, err
	}
	maxResidual, err := data.Max()
	if err != nil {
		return ResidualStats{}, err
	}
	return ResidualStats{Mean: mean, Median: median, Max: maxResidual}, nil
}
