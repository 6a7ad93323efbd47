package posterior

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocredible/domain/core"
	"gocredible/domain/posterior"
	"gocredible/internal/errors"
	"gocredible/internal/testkit"
)

func newTestEstimator(opts ...Option) (*Estimator, *testkit.RNGAdapter) {
	rng := testkit.NewRNGAdapter()
	return NewEstimator(rng, opts...), rng
}

func TestEstimateRejectsEmptyObservationsBeforeSampling(t *testing.T) {
	estimator, rng := newTestEstimator()

	_, err := estimator.Estimate(context.Background(), posterior.Observations{}, posterior.DefaultSamplerConfig())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrNoObservations))
	assert.Contains(t, err.Error(), "undefined likelihood with no observations")
	assert.Empty(t, rng.Requests(), "sampler must not be invoked")
}

func TestEstimateRejectsInvalidConfig(t *testing.T) {
	obs, _ := posterior.FromCounts(85, 100)

	tests := []struct {
		name   string
		mutate func(*posterior.SamplerConfig)
	}{
		{"zero step size", func(c *posterior.SamplerConfig) { c.StepSize = 0 }},
		{"negative step size", func(c *posterior.SamplerConfig) { c.StepSize = -1 }},
		{"zero warmup", func(c *posterior.SamplerConfig) { c.Warmup = 0 }},
		{"warmup below minimum", func(c *posterior.SamplerConfig) { c.Warmup = posterior.MinWarmup - 1 }},
		{"zero samples", func(c *posterior.SamplerConfig) { c.Samples = 0 }},
		{"confidence out of range", func(c *posterior.SamplerConfig) { c.Confidence = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimator, rng := newTestEstimator()
			cfg := posterior.DefaultSamplerConfig()
			tt.mutate(&cfg)

			_, err := estimator.Estimate(context.Background(), obs, cfg)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.True(t, stderrors.Is(err, core.ErrInvalidConfig))
			assert.Empty(t, rng.Requests())
		})
	}
}

func TestEstimateRejectsInvalidBetaPrior(t *testing.T) {
	estimator, _ := newTestEstimator(WithPrior(BetaPrior{Alpha: -1, Beta: 1}))
	obs, _ := posterior.FromCounts(1, 2)
	_, err := estimator.Estimate(context.Background(), obs, posterior.DefaultSamplerConfig())
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestEstimateReferenceScenario(t *testing.T) {
	estimator, _ := newTestEstimator()
	cfg := posterior.DefaultSamplerConfig()

	small := testkit.ExactRateObservations(100, 0.85)
	large := testkit.ExactRateObservations(14000, 0.85)

	smallResult, err := estimator.Estimate(context.Background(), small, cfg)
	require.NoError(t, err)
	largeResult, err := estimator.Estimate(context.Background(), large, cfg)
	require.NoError(t, err)

	assert.Len(t, smallResult.Samples, 5000)
	assert.Len(t, smallResult.Chain, 100)
	assert.Equal(t, 100, smallResult.Observations)
	assert.Equal(t, 85, smallResult.Successes)
	assert.Equal(t, "uniform(0,1)", smallResult.Prior)

	assert.InDelta(t, 0.85, smallResult.Summary.Mean, 0.03)
	assert.InDelta(t, smallResult.Analytic.Mean, smallResult.Summary.Mean, 0.03)
	assert.InDelta(t, 0.85, largeResult.Summary.Mean, 0.005)

	assert.Greater(t, smallResult.Summary.Width(), 0.07)
	assert.Less(t, largeResult.Summary.Width(), 0.03)
	assert.Greater(t, smallResult.Summary.Width(), 3*largeResult.Summary.Width())
}

func TestEstimateIsDeterministicUnderFixedSeed(t *testing.T) {
	obs := testkit.BernoulliObservations(200, 0.7, 11)
	cfg := posterior.DefaultSamplerConfig()

	first, err := NewEstimator(testkit.NewRNGAdapter()).Estimate(context.Background(), obs, cfg)
	require.NoError(t, err)
	second, err := NewEstimator(testkit.NewRNGAdapter()).Estimate(context.Background(), obs, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Samples, second.Samples)
	assert.Equal(t, first.Chain, second.Chain)
	assert.Equal(t, first.Summary, second.Summary)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	cfg.Seed++
	third, err := NewEstimator(testkit.NewRNGAdapter()).Estimate(context.Background(), obs, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first.Chain, third.Chain)
}

func TestEstimateRunsDoNotShareState(t *testing.T) {
	estimator, _ := newTestEstimator()
	cfg := posterior.DefaultSamplerConfig()
	ctx := context.Background()

	low := testkit.ExactRateObservations(500, 0.2)
	high := testkit.ExactRateObservations(500, 0.9)

	before, err := estimator.Estimate(ctx, high, cfg)
	require.NoError(t, err)
	_, err = estimator.Estimate(ctx, low, cfg)
	require.NoError(t, err)
	after, err := estimator.Estimate(ctx, high, cfg)
	require.NoError(t, err)

	assert.Equal(t, before.Samples, after.Samples)
}

func TestEstimateAllCorrectNarrowsWithSampleSize(t *testing.T) {
	estimator, _ := newTestEstimator()
	cfg := posterior.DefaultSamplerConfig()

	var prevMean, prevWidth = 0.0, 2.0
	for _, n := range []int{10, 100, 1000} {
		result, err := estimator.Estimate(context.Background(), testkit.ConstantObservations(n, 1), cfg)
		require.NoError(t, err)

		assert.Greater(t, result.Summary.Mean, prevMean, "n=%d", n)
		assert.Less(t, result.Summary.Width(), prevWidth, "n=%d", n)
		prevMean, prevWidth = result.Summary.Mean, result.Summary.Width()
	}
	assert.Greater(t, prevMean, 0.99)
}

func TestEstimateAllIncorrectIsSymmetric(t *testing.T) {
	estimator, _ := newTestEstimator()
	cfg := posterior.DefaultSamplerConfig()
	ctx := context.Background()

	ones, err := estimator.Estimate(ctx, testkit.ConstantObservations(100, 1), cfg)
	require.NoError(t, err)
	zeros, err := estimator.Estimate(ctx, testkit.ConstantObservations(100, 0), cfg)
	require.NoError(t, err)

	assert.Less(t, zeros.Summary.Mean, 0.03)
	assert.InDelta(t, 1-ones.Summary.Mean, zeros.Summary.Mean, 0.01)
	assert.InDelta(t, ones.Summary.Width(), zeros.Summary.Width(), 0.03)
}

func TestEstimateIntervalNarrowsForSimulatedRate(t *testing.T) {
	estimator, _ := newTestEstimator()
	cfg := posterior.DefaultSamplerConfig()

	prevWidth := 2.0
	for i, n := range []int{50, 500, 5000} {
		obs := testkit.BernoulliObservations(n, 0.75, uint64(100+i))
		result, err := estimator.Estimate(context.Background(), obs, cfg)
		require.NoError(t, err)
		assert.Less(t, result.Summary.Width(), prevWidth, "n=%d", n)
		prevWidth = result.Summary.Width()
	}
}

func TestEstimateBoundsInvariant(t *testing.T) {
	estimator, _ := newTestEstimator()
	cases := []posterior.Observations{
		testkit.ConstantObservations(1, 1),
		testkit.ConstantObservations(1, 0),
		testkit.ExactRateObservations(7, 0.5),
		testkit.BernoulliObservations(300, 0.97, 3),
		testkit.BernoulliObservations(300, 0.03, 4),
	}

	for _, obs := range cases {
		for _, confidence := range []float64{0.5, 0.9, 0.99} {
			cfg := posterior.DefaultSamplerConfig()
			cfg.Confidence = confidence
			result, err := estimator.Estimate(context.Background(), obs, cfg)
			require.NoError(t, err)

			s := result.Summary
			assert.GreaterOrEqual(t, s.Lower, 0.0)
			assert.LessOrEqual(t, s.Upper, 1.0)
			assert.LessOrEqual(t, s.Lower, s.Mean)
			assert.LessOrEqual(t, s.Mean, s.Upper)
			for _, v := range result.Samples {
				assert.True(t, v >= 0 && v <= 1)
			}
		}
	}
}

func TestEstimateSurfacesNonConvergenceAsDiagnostics(t *testing.T) {
	estimator, _ := newTestEstimator()
	cfg := posterior.DefaultSamplerConfig()
	cfg.AdaptStepSize = false
	cfg.StepSize = 2.0

	result, err := estimator.Estimate(context.Background(), testkit.ExactRateObservations(14000, 0.85), cfg)
	require.NoError(t, err)
	assert.False(t, result.Diagnostics.Converged)
	assert.NotEmpty(t, result.Diagnostics.Warnings)
	assert.Less(t, result.Diagnostics.AcceptanceRate, 0.2)
}

func TestEstimateHealthyDiagnostics(t *testing.T) {
	estimator, _ := newTestEstimator()
	result, err := estimator.Estimate(context.Background(), testkit.ExactRateObservations(100, 0.85), posterior.DefaultSamplerConfig())
	require.NoError(t, err)

	d := result.Diagnostics
	assert.Greater(t, d.AcceptanceRate, 0.5)
	assert.Equal(t, 0, d.Divergences)
	assert.Greater(t, d.EffectiveSampleSize, 10.0)
	assert.Greater(t, d.FinalStepSize, 0.0)
}

func TestEstimateResamplePolicies(t *testing.T) {
	estimator, _ := newTestEstimator()
	obs := testkit.ExactRateObservations(100, 0.85)

	cfg := posterior.DefaultSamplerConfig()
	cfg.ResamplePolicy = posterior.ResampleNone
	result, err := estimator.Estimate(context.Background(), obs, cfg)
	require.NoError(t, err)
	assert.Equal(t, result.Chain, result.Samples)

	cfg.ResamplePolicy = posterior.ResampleWithoutReplacement
	cfg.Resample = 5000
	_, err = estimator.Estimate(context.Background(), obs, cfg)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	cfg.Resample = 50
	result, err = estimator.Estimate(context.Background(), obs, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Samples, 50)
}

func TestEstimateWithBetaPrior(t *testing.T) {
	estimator, _ := newTestEstimator(WithPrior(BetaPrior{Alpha: 50, Beta: 50}))
	obs := testkit.ExactRateObservations(20, 0.9)

	result, err := estimator.Estimate(context.Background(), obs, posterior.DefaultSamplerConfig())
	require.NoError(t, err)

	// Beta(68, 52) posterior: the strong prior pulls the estimate toward 0.5
	assert.InDelta(t, 68.0/120.0, result.Analytic.Mean, 1e-9)
	assert.InDelta(t, result.Analytic.Mean, result.Summary.Mean, 0.03)
	assert.Equal(t, "beta(50,50)", result.Prior)
}

func TestEstimatorWithLeavesOriginalPrior(t *testing.T) {
	base, _ := newTestEstimator()
	beta := base.With(WithPrior(BetaPrior{Alpha: 2, Beta: 2}))

	assert.Equal(t, UniformPrior{}, base.Prior())
	assert.Equal(t, BetaPrior{Alpha: 2, Beta: 2}, beta.Prior())

	result, err := beta.Estimate(context.Background(), testkit.ExactRateObservations(10, 0.5), posterior.DefaultSamplerConfig())
	require.NoError(t, err)
	assert.Equal(t, "beta(2,2)", result.Prior)
}

func TestEstimateHonorsCancellation(t *testing.T) {
	estimator, _ := newTestEstimator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := estimator.Estimate(ctx, testkit.ExactRateObservations(100, 0.85), posterior.DefaultSamplerConfig())
	require.Error(t, err)
}
