package posterior

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gocredible/domain/posterior"
)

// Convergence thresholds. Falling short yields warnings, not errors.
const (
	minAcceptanceRate = 0.2
	minEffectiveSize  = 10.0
)

// EffectiveSampleSize estimates the number of independent draws the chain is
// worth, using Geyer's initial monotone sequence of paired autocorrelations.
// A constant chain is worth one draw.
func EffectiveSampleSize(chain []float64) float64 {
	n := len(chain)
	if n < 2 {
		return float64(n)
	}

	centered := make([]float64, n)
	copy(centered, chain)
	floats.AddConst(-stat.Mean(chain, nil), centered)

	variance := floats.Dot(centered, centered) / float64(n)
	if variance == 0 {
		return 1
	}

	autocorr := func(lag int) float64 {
		return floats.Dot(centered[:n-lag], centered[lag:]) / (float64(n) * variance)
	}

	tau := -1.0
	prevPair := 2.0
	for lag := 0; lag+1 < n; lag += 2 {
		pair := autocorr(lag) + autocorr(lag+1)
		if pair <= 0 {
			break
		}
		if pair > prevPair {
			pair = prevPair
		}
		tau += 2 * pair
		prevPair = pair
	}
	if tau <= 0 {
		return float64(n)
	}
	return float64(n) / tau
}

// Diagnose turns chain statistics into a quality report
func Diagnose(chain *Chain) posterior.Diagnostics {
	d := posterior.Diagnostics{
		AcceptanceRate:      chain.AcceptanceRate,
		Divergences:         chain.Divergences,
		EffectiveSampleSize: EffectiveSampleSize(chain.Values),
		FinalStepSize:       chain.StepSize,
	}

	if d.AcceptanceRate < minAcceptanceRate {
		d.Warnings = append(d.Warnings, fmt.Sprintf("low acceptance rate %.3f; consider a smaller step size", d.AcceptanceRate))
	}
	if d.Divergences > 0 {
		d.Warnings = append(d.Warnings, fmt.Sprintf("%d divergent transitions after warm-up", d.Divergences))
	}
	if d.EffectiveSampleSize < minEffectiveSize {
		d.Warnings = append(d.Warnings, fmt.Sprintf("effective sample size %.1f is below %.0f; the chain may not have mixed", d.EffectiveSampleSize, minEffectiveSize))
	}
	d.Converged = len(d.Warnings) == 0
	return d
}
