package evaluation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"gocredible/domain/core"
	"gocredible/domain/posterior"
	"gocredible/internal"
	"gocredible/internal/classifier"
	"gocredible/internal/config"
	"gocredible/internal/dataset"
	"gocredible/internal/errors"
	inference "gocredible/internal/posterior"
	"gocredible/internal/profiling"
)

// Config controls one train/evaluate/estimate experiment
type Config struct {
	TestFraction    float64
	SplitSeed       int64
	MaxDepth        int
	MinSamplesSplit int
	// SampleSizes lists prefix lengths of the correctness vector to estimate
	// on; 0 stands for the full test set.
	SampleSizes []int
	Sampler     posterior.SamplerConfig
}

// DefaultConfig estimates on the first 100 test predictions and on all of them
func DefaultConfig() Config {
	return Config{
		TestFraction:    0.2,
		SplitSeed:       42,
		MaxDepth:        12,
		MinSamplesSplit: 2,
		SampleSizes:     []int{100, 0},
		Sampler:         posterior.DefaultSamplerConfig(),
	}
}

// ConfigFrom maps application configuration onto an experiment config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		TestFraction:    cfg.Data.TestFraction,
		SplitSeed:       cfg.Data.SplitSeed,
		MaxDepth:        cfg.Tree.MaxDepth,
		MinSamplesSplit: cfg.Tree.MinSamplesSplit,
		SampleSizes:     cfg.Evaluate.SampleSizes,
		Sampler:         cfg.Sampler,
	}
}

// SizedResult pairs a posterior with the number of observations behind it
type SizedResult struct {
	SampleSize int               `json:"sample_size"`
	Result     *posterior.Result `json:"result"`
}

// Experiment is the outcome of one evaluation run
type Experiment struct {
	ID           core.ExperimentID         `json:"id"`
	Dataset      string                    `json:"dataset"`
	TrainSize    int                       `json:"train_size"`
	TestSize     int                       `json:"test_size"`
	TestAccuracy float64                   `json:"test_accuracy"`
	Features     []profiling.ColumnProfile `json:"features"`
	Results      []SizedResult             `json:"results"`
	Duration     time.Duration             `json:"duration"`
}

// Narrowing reports whether the credible interval shrinks as the sample
// size grows
func (e *Experiment) Narrowing() bool {
	for i := 1; i < len(e.Results); i++ {
		if e.Results[i].Result.Summary.Width() >= e.Results[i-1].Result.Summary.Width() {
			return false
		}
	}
	return true
}

// Runner trains a classifier and estimates its accuracy posterior
type Runner struct {
	estimator *inference.Estimator
	logger    *internal.Logger
}

// NewRunner creates a runner around an estimator
func NewRunner(estimator *inference.Estimator) *Runner {
	return &Runner{
		estimator: estimator,
		logger:    internal.DefaultLogger.With("evaluation"),
	}
}

// Run splits ds, fits a decision tree, scores the held-out rows and
// estimates the posterior for every configured sample size
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset, cfg Config) (*Experiment, error) {
	start := time.Now()
	if err := cfg.Sampler.Validate(); err != nil {
		return nil, errors.InvalidInput("invalid sampler configuration", err)
	}

	train, test, err := dataset.Split(ds, cfg.TestFraction, cfg.SplitSeed)
	if err != nil {
		return nil, errors.InvalidInput("failed to split dataset", err)
	}
	r.logger.Info("split %s into %d train / %d test rows", ds.Name, train.Len(), test.Len())

	features, err := profiling.ProfileFeatures(train.FeatureNames, train.Features)
	if err != nil {
		return nil, errors.Wrap(err, "failed to profile features")
	}
	if n := profiling.CountConstant(features); n > 0 {
		r.logger.Debug("%d of %d features are constant on the training rows", n, len(features))
	}

	tree := classifier.NewDecisionTree(cfg.MaxDepth, cfg.MinSamplesSplit)
	if err := tree.Fit(train.Features, train.Labels); err != nil {
		return nil, errors.Wrap(err, "failed to fit decision tree")
	}
	predicted, err := tree.Predict(test.Features)
	if err != nil {
		return nil, errors.Wrap(err, "failed to predict test set")
	}

	accuracy, err := classifier.Accuracy(predicted, test.Labels)
	if err != nil {
		return nil, errors.Wrap(err, "failed to score test set")
	}
	obs, err := posterior.Compare(predicted, test.Labels)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build correctness vector")
	}
	r.logger.Info("tree depth %d, test accuracy %.4f (%d/%d)", tree.Depth(), accuracy, obs.Successes(), obs.Len())

	results, err := r.EstimateSizes(ctx, obs, cfg.SampleSizes, cfg.Sampler)
	if err != nil {
		return nil, err
	}

	return &Experiment{
		ID:           core.NewExperimentID(),
		Dataset:      ds.Name,
		TrainSize:    train.Len(),
		TestSize:     test.Len(),
		TestAccuracy: accuracy,
		Features:     features,
		Results:      results,
		Duration:     time.Since(start),
	}, nil
}

// EstimateSizes runs one independent estimate per sample size concurrently.
// Results are ordered by sample size.
func (r *Runner) EstimateSizes(ctx context.Context, obs posterior.Observations, sizes []int, cfg posterior.SamplerConfig) ([]SizedResult, error) {
	resolved, err := resolveSizes(sizes, obs.Len())
	if err != nil {
		return nil, err
	}

	results := make([]SizedResult, len(resolved))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range resolved {
		g.Go(func() error {
			res, err := r.estimator.Estimate(gctx, obs.Slice(n), cfg)
			if err != nil {
				return errors.Wrapf(err, "estimate for N=%d failed", n)
			}
			results[i] = SizedResult{SampleSize: n, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveSizes maps 0 to total, caps at total, drops duplicates and sorts
func resolveSizes(sizes []int, total int) ([]int, error) {
	if total == 0 {
		return nil, errors.InvalidInput("cannot estimate accuracy", core.ErrNoObservations)
	}
	if len(sizes) == 0 {
		sizes = []int{0}
	}
	seen := make(map[int]bool)
	var out []int
	for _, n := range sizes {
		if n < 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("sample size %d is negative", n), core.ErrInvalidConfig)
		}
		if n == 0 || n > total {
			n = total
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out, nil
}
