package posterior

import (
	"math"

	"gocredible/domain/posterior"
)

// Model is the generative model p ~ Prior, y_i ~ Bernoulli(p), conditioned on
// the observed y. It is evaluated on the unconstrained parameter
// theta = logit(p) so the sampler never proposes outside (0, 1).
type Model struct {
	prior      Prior
	likelihood Likelihood
	successes  int
	failures   int
}

// NewModel conditions the prior and likelihood on a fixed observation vector
func NewModel(prior Prior, likelihood Likelihood, obs posterior.Observations) *Model {
	return &Model{
		prior:      prior,
		likelihood: likelihood,
		successes:  obs.Successes(),
		failures:   obs.Failures(),
	}
}

// LogDensity returns the unnormalized log posterior of theta, including the
// log-Jacobian log p + log(1-p) of the logit transform.
func (m *Model) LogDensity(theta float64) float64 {
	p := sigmoid(theta)
	return m.prior.LogProb(clampProbability(p)) +
		BatchLogLikelihood(m.likelihood, p, m.successes, m.failures) +
		logJacobian(theta)
}

// Grad returns d/dtheta of LogDensity
func (m *Model) Grad(theta float64) float64 {
	p := sigmoid(theta)
	pc := clampProbability(p)
	dpdtheta := pc * (1 - pc)

	dlogp := m.prior.GradLogProb(pc)
	if m.successes > 0 {
		dlogp += float64(m.successes) * m.likelihood.GradLogLikelihood(pc, 1)
	}
	if m.failures > 0 {
		dlogp += float64(m.failures) * m.likelihood.GradLogLikelihood(pc, 0)
	}
	return dlogp*dpdtheta + (1 - 2*p)
}

// Transform maps theta back to p
func (m *Model) Transform(theta float64) float64 {
	return sigmoid(theta)
}

// InitialPosition starts the chain at the logit of the prior-smoothed
// empirical rate, (k+a)/(n+a+b).
func (m *Model) InitialPosition() float64 {
	a, b := m.prior.Conjugate()
	rate := (float64(m.successes) + a) / (float64(m.successes+m.failures) + a + b)
	rate = clampProbability(rate)
	return math.Log(rate) - math.Log1p(-rate)
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// softplus computes log(1 + exp(x)) without overflow
func softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// logJacobian is log p + log(1-p) for p = sigmoid(theta)
func logJacobian(theta float64) float64 {
	return -softplus(-theta) - softplus(theta)
}
