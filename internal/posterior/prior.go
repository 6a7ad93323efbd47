package posterior

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"gocredible/domain/core"
)

// Prior is a density over the correctness probability p in [0, 1]
type Prior interface {
	Name() string
	LogProb(p float64) float64
	// GradLogProb is d/dp of LogProb
	GradLogProb(p float64) float64
	// Conjugate returns the Beta parameters equivalent to this prior
	Conjugate() (alpha, beta float64)
}

// UniformPrior is the non-informative Uniform(0, 1) prior
type UniformPrior struct{}

func (UniformPrior) Name() string { return "uniform(0,1)" }

func (UniformPrior) LogProb(p float64) float64 {
	return distuv.Uniform{Min: 0, Max: 1}.LogProb(p)
}

func (UniformPrior) GradLogProb(float64) float64 { return 0 }

func (UniformPrior) Conjugate() (float64, float64) { return 1, 1 }

// BetaPrior is an informative Beta(Alpha, Beta) prior
type BetaPrior struct {
	Alpha float64
	Beta  float64
}

func (b BetaPrior) Name() string { return fmt.Sprintf("beta(%g,%g)", b.Alpha, b.Beta) }

func (b BetaPrior) LogProb(p float64) float64 {
	return distuv.Beta{Alpha: b.Alpha, Beta: b.Beta}.LogProb(clampProbability(p))
}

func (b BetaPrior) GradLogProb(p float64) float64 {
	p = clampProbability(p)
	return (b.Alpha-1)/p - (b.Beta-1)/(1-p)
}

func (b BetaPrior) Conjugate() (float64, float64) { return b.Alpha, b.Beta }

// Validate rejects non-positive shape parameters
func (b BetaPrior) Validate() error {
	if !(b.Alpha > 0) || !(b.Beta > 0) || math.IsInf(b.Alpha, 0) || math.IsInf(b.Beta, 0) {
		return fmt.Errorf("beta prior shape parameters must be positive and finite, got (%g, %g)", b.Alpha, b.Beta)
	}
	return nil
}

// ParsePrior parses "uniform" or "beta(a,b)". An empty string is uniform.
func ParsePrior(s string) (Prior, error) {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	switch name {
	case "", "uniform", "uniform(0,1)":
		return UniformPrior{}, nil
	}

	args, ok := strings.CutPrefix(name, "beta(")
	if ok {
		args, ok = strings.CutSuffix(args, ")")
	}
	if !ok {
		return nil, core.NewValidationError("prior", fmt.Sprintf("unknown prior %q", s))
	}
	a, b, ok := strings.Cut(args, ",")
	if !ok {
		return nil, core.NewValidationError("prior", fmt.Sprintf("beta prior %q needs two parameters", s))
	}
	alpha, errA := strconv.ParseFloat(a, 64)
	beta, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return nil, core.NewValidationError("prior", fmt.Sprintf("beta prior %q has non-numeric parameters", s))
	}

	prior := BetaPrior{Alpha: alpha, Beta: beta}
	if err := prior.Validate(); err != nil {
		return nil, core.NewValidationError("prior", err.Error())
	}
	return prior, nil
}
