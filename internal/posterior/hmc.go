package posterior

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// maxEnergyError marks a trajectory as divergent
const maxEnergyError = 1000.0

// HMC is a Hamiltonian Monte Carlo transition kernel over the single
// unconstrained parameter with unit mass. Each transition draws its number of
// leapfrog steps uniformly from [1, maxSteps]; a fixed trajectory length can
// land near a full period of the dynamics and stall the chain.
type HMC struct {
	model    *Model
	maxSteps int
}

// NewHMC creates a kernel for model
func NewHMC(model *Model, maxSteps int) *HMC {
	if maxSteps < 1 {
		maxSteps = 1
	}
	return &HMC{model: model, maxSteps: maxSteps}
}

// Step performs one transition on state and returns the acceptance probability
func (k *HMC) Step(state *ChainState) float64 {
	momentum := distuv.Normal{Mu: 0, Sigma: 1, Src: state.rng}.Rand()
	current := -state.LogDensity + 0.5*momentum*momentum

	steps := 1 + state.rng.IntN(k.maxSteps)
	q, logDensity, grad, r := k.leapfrog(state.Position, state.Gradient, momentum, state.StepSize, steps)
	proposed := -logDensity + 0.5*r*r

	energyError := proposed - current
	state.proposals++
	if math.IsNaN(energyError) || math.IsInf(energyError, 0) || energyError > maxEnergyError {
		state.divergences++
		return 0
	}

	acceptProb := math.Min(1, math.Exp(-energyError))
	state.accepted += acceptProb
	if state.rng.Float64() < acceptProb {
		state.Position = q
		state.LogDensity = logDensity
		state.Gradient = grad
	}
	return acceptProb
}

func (k *HMC) leapfrog(q, grad, r, eps float64, steps int) (float64, float64, float64, float64) {
	r += 0.5 * eps * grad
	for i := 0; i < steps; i++ {
		q += eps * r
		grad = k.model.Grad(q)
		if i < steps-1 {
			r += eps * grad
		}
	}
	r += 0.5 * eps * grad
	return q, k.model.LogDensity(q), grad, r
}
