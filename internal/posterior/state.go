package posterior

import (
	"math"
	"math/rand/v2"
)

// ChainState is the caller-owned parameter store of one inference run.
// Nothing in it is shared between runs: create one per run, or Reset it.
type ChainState struct {
	Position   float64
	LogDensity float64
	Gradient   float64
	StepSize   float64

	rng     *rand.Rand
	adapter *stepSizeAdapter

	proposals   int
	accepted    float64
	divergences int
}

// NewChainState creates a fresh store that draws from rng
func NewChainState(rng *rand.Rand, stepSize float64) *ChainState {
	return &ChainState{
		StepSize: stepSize,
		rng:      rng,
	}
}

// Reset clears every field except the RNG, starting the chain at position
func (s *ChainState) Reset(model *Model, position, stepSize float64) {
	s.Position = position
	s.LogDensity = model.LogDensity(position)
	s.Gradient = model.Grad(position)
	s.StepSize = stepSize
	s.adapter = nil
	s.resetCounters()
}

func (s *ChainState) resetCounters() {
	s.proposals = 0
	s.accepted = 0
	s.divergences = 0
}

// AcceptanceRate is the mean Metropolis acceptance probability since the last counter reset
func (s *ChainState) AcceptanceRate() float64 {
	if s.proposals == 0 {
		return 0
	}
	return s.accepted / float64(s.proposals)
}

// Divergences counts trajectories rejected for energy blow-up since the last counter reset
func (s *ChainState) Divergences() int {
	return s.divergences
}

// stepSizeAdapter tunes the leapfrog step size during warm-up by dual
// averaging toward a target acceptance probability (Hoffman & Gelman 2014).
type stepSizeAdapter struct {
	target     float64
	mu         float64
	hBar       float64
	logStep    float64
	logStepBar float64
	iteration  int
}

const (
	adaptGamma = 0.05
	adaptT0    = 10.0
	adaptKappa = 0.75
)

func newStepSizeAdapter(initial, target float64) *stepSizeAdapter {
	return &stepSizeAdapter{
		target:  target,
		mu:      math.Log(10 * initial),
		logStep: math.Log(initial),
	}
}

// update records one acceptance probability and returns the next step size
func (a *stepSizeAdapter) update(acceptProb float64) float64 {
	a.iteration++
	m := float64(a.iteration)
	w := 1 / (m + adaptT0)
	a.hBar = (1-w)*a.hBar + w*(a.target-acceptProb)
	a.logStep = a.mu - math.Sqrt(m)/adaptGamma*a.hBar
	eta := math.Pow(m, -adaptKappa)
	a.logStepBar = eta*a.logStep + (1-eta)*a.logStepBar
	return math.Exp(a.logStep)
}

// final returns the averaged step size used after warm-up
func (a *stepSizeAdapter) final() float64 {
	if a.iteration == 0 {
		return math.Exp(a.logStep)
	}
	return math.Exp(a.logStepBar)
}
