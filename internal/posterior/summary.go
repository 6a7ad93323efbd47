package posterior

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gocredible/domain/core"
	"gocredible/domain/posterior"
)

// Summarize computes the posterior mean and the two-sided credible interval at
// confidence as the (1-C)/2 and 1-(1-C)/2 empirical quantiles.
func Summarize(samples []float64, confidence float64) (posterior.Summary, error) {
	if len(samples) == 0 {
		return posterior.Summary{}, core.NewValidationError("samples", "is empty")
	}
	if !(confidence > 0 && confidence < 1) {
		return posterior.Summary{}, core.NewValidationError("confidence", "must be in (0, 1)")
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	alpha := (1 - confidence) / 2
	mean := stat.Mean(sorted, nil)
	lower := stat.Quantile(alpha, stat.Empirical, sorted, nil)
	upper := stat.Quantile(1-alpha, stat.Empirical, sorted, nil)

	stdDev, err := stats.StandardDeviationSample(sorted)
	if err != nil || math.IsNaN(stdDev) {
		stdDev = 0
	}
	median, err := stats.Median(sorted)
	if err != nil {
		median = mean
	}

	return posterior.Summary{
		Mean:       clampUnit(mean),
		StdDev:     stdDev,
		Median:     clampUnit(median),
		Lower:      clampUnit(math.Min(lower, mean)),
		Upper:      clampUnit(math.Max(upper, mean)),
		Confidence: confidence,
	}, nil
}

// AnalyticSummary is the exact conjugate Beta posterior for a Beta-family
// prior, used to cross-check the chain.
func AnalyticSummary(prior Prior, obs posterior.Observations, confidence float64) posterior.Summary {
	a, b := prior.Conjugate()
	dist := distuv.Beta{
		Alpha: a + float64(obs.Successes()),
		Beta:  b + float64(obs.Failures()),
	}
	alpha := (1 - confidence) / 2
	return posterior.Summary{
		Mean:       dist.Mean(),
		StdDev:     dist.StdDev(),
		Median:     dist.Quantile(0.5),
		Lower:      dist.Quantile(alpha),
		Upper:      dist.Quantile(1 - alpha),
		Confidence: confidence,
	}
}

func clampUnit(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
