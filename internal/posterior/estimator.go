package posterior

import (
	"context"

	"gocredible/domain/core"
	"gocredible/domain/posterior"
	"gocredible/internal"
	"gocredible/internal/errors"
	"gocredible/ports"
)

// Estimator infers the posterior over a classifier's true correctness
// probability from a vector of correctness observations.
type Estimator struct {
	rngPort    ports.RNGPort
	prior      Prior
	likelihood Likelihood
	logger     *internal.Logger
}

// Option configures an Estimator
type Option func(*Estimator)

// WithPrior replaces the default Uniform(0, 1) prior
func WithPrior(prior Prior) Option {
	return func(e *Estimator) { e.prior = prior }
}

// WithLogger replaces the default logger
func WithLogger(logger *internal.Logger) Option {
	return func(e *Estimator) { e.logger = logger.With("posterior") }
}

// NewEstimator creates an estimator with a Uniform prior and Bernoulli likelihood
func NewEstimator(rngPort ports.RNGPort, opts ...Option) *Estimator {
	e := &Estimator{
		rngPort:    rngPort,
		prior:      UniformPrior{},
		likelihood: BernoulliLikelihood{},
		logger:     internal.DefaultLogger.With("posterior"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// With returns a copy of the estimator with opts applied
func (e *Estimator) With(opts ...Option) *Estimator {
	clone := *e
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

// Prior returns the prior the estimator samples under
func (e *Estimator) Prior() Prior {
	return e.prior
}

// Validate checks the observations and configuration without sampling
func (e *Estimator) Validate(obs posterior.Observations, cfg posterior.SamplerConfig) error {
	if obs.Len() == 0 {
		return errors.InvalidInput("cannot estimate accuracy", core.ErrNoObservations)
	}
	if err := cfg.Validate(); err != nil {
		return errors.InvalidInput("invalid sampler configuration", err)
	}
	if bp, ok := e.prior.(BetaPrior); ok {
		if err := bp.Validate(); err != nil {
			return errors.InvalidInput("invalid prior", err)
		}
	}
	return nil
}

// Estimate runs one independent inference. Each call owns a fresh ChainState
// seeded from cfg.Seed, so equal inputs give identical samples.
func (e *Estimator) Estimate(ctx context.Context, obs posterior.Observations, cfg posterior.SamplerConfig) (*posterior.Result, error) {
	if err := e.Validate(obs, cfg); err != nil {
		return nil, err
	}

	runID := core.NewRunID()
	e.logger.Debug("run %s: n=%d successes=%d warmup=%d samples=%d step=%g",
		runID, obs.Len(), obs.Successes(), cfg.Warmup, cfg.Samples, cfg.StepSize)

	rng, err := e.rngPort.SeededStream(ctx, "posterior", cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create random stream")
	}

	model := NewModel(e.prior, e.likelihood, obs)
	state := NewChainState(rng, cfg.StepSize)

	chain, err := NewSampler(cfg).Run(ctx, model, state)
	if err != nil {
		return nil, errors.Wrapf(err, "run %s failed", runID)
	}

	samples, err := Resample(chain.Values, cfg.Resample, cfg.ResamplePolicy, rng)
	if err != nil {
		return nil, errors.InvalidInput("resampling failed", err)
	}

	summary, err := Summarize(samples, cfg.Confidence)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize posterior")
	}

	diagnostics := Diagnose(chain)
	for _, w := range diagnostics.Warnings {
		e.logger.Warn("run %s: %s", runID, w)
	}
	e.logger.Info("run %s: mean=%.4f %.0f%% interval=[%.4f, %.4f] accept=%.2f ess=%.1f",
		runID, summary.Mean, cfg.Confidence*100, summary.Lower, summary.Upper,
		diagnostics.AcceptanceRate, diagnostics.EffectiveSampleSize)

	return &posterior.Result{
		RunID:        runID,
		Fingerprint:  posterior.Fingerprint(obs, cfg, e.prior.Name()),
		Observations: obs.Len(),
		Successes:    obs.Successes(),
		Prior:        e.prior.Name(),
		Samples:      samples,
		Chain:        chain.Values,
		Summary:      summary,
		Analytic:     AnalyticSummary(e.prior, obs, cfg.Confidence),
		Diagnostics:  diagnostics,
		Config:       cfg,
	}, nil
}
