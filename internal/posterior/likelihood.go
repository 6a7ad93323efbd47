package posterior

import "math"

// probabilityEpsilon keeps p away from the exact boundaries {0, 1}
const probabilityEpsilon = 1e-12

// Likelihood maps a parameter value and one binary observation to a log-likelihood.
// Keeping it separate from the sampler lets the model be tested on its own.
type Likelihood interface {
	LogLikelihood(p float64, y uint8) float64
	// GradLogLikelihood is d/dp of LogLikelihood
	GradLogLikelihood(p float64, y uint8) float64
}

// BernoulliLikelihood treats each observation as an independent Bernoulli(p) trial
type BernoulliLikelihood struct{}

// LogLikelihood returns y*log(p) + (1-y)*log(1-p), always finite
func (BernoulliLikelihood) LogLikelihood(p float64, y uint8) float64 {
	p = clampProbability(p)
	if y == 1 {
		return math.Log(p)
	}
	return math.Log1p(-p)
}

func (BernoulliLikelihood) GradLogLikelihood(p float64, y uint8) float64 {
	p = clampProbability(p)
	if y == 1 {
		return 1 / p
	}
	return -1 / (1 - p)
}

// BatchLogLikelihood sums the per-observation log-likelihoods of a binary
// sequence from its sufficient statistics.
func BatchLogLikelihood(lik Likelihood, p float64, successes, failures int) float64 {
	total := 0.0
	if successes > 0 {
		total += float64(successes) * lik.LogLikelihood(p, 1)
	}
	if failures > 0 {
		total += float64(failures) * lik.LogLikelihood(p, 0)
	}
	return total
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return 0.5
	}
	return math.Min(math.Max(p, probabilityEpsilon), 1-probabilityEpsilon)
}
