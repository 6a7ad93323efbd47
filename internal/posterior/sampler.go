package posterior

import (
	"context"
	"math"

	"gocredible/domain/posterior"
	"gocredible/internal/errors"
)

// Chain is the retained output of one MCMC run, in p space
type Chain struct {
	Values         []float64
	AcceptanceRate float64
	Divergences    int
	StepSize       float64
}

// Sampler drives an HMC kernel through warm-up and retained iterations
type Sampler struct {
	cfg posterior.SamplerConfig
}

// NewSampler creates a sampler for an already validated configuration
func NewSampler(cfg posterior.SamplerConfig) *Sampler {
	return &Sampler{cfg: cfg}
}

// Run discards cfg.Warmup iterations, then keeps cfg.Samples states.
// The state is reset before the first iteration.
func (s *Sampler) Run(ctx context.Context, model *Model, state *ChainState) (*Chain, error) {
	kernel := NewHMC(model, s.cfg.NumSteps)
	state.Reset(model, model.InitialPosition(), s.cfg.StepSize)

	if s.cfg.AdaptStepSize {
		state.adapter = newStepSizeAdapter(s.cfg.StepSize, s.cfg.TargetAccept)
	}

	for i := 0; i < s.cfg.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Canceled(err)
		}
		acceptProb := kernel.Step(state)
		if state.adapter != nil {
			state.StepSize = state.adapter.update(acceptProb)
		}
	}
	if state.adapter != nil {
		state.StepSize = state.adapter.final()
	}
	state.resetCounters()

	values := make([]float64, 0, s.cfg.Samples)
	for i := 0; i < s.cfg.Samples; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Canceled(err)
		}
		kernel.Step(state)
		p := model.Transform(state.Position)
		if math.IsNaN(p) {
			return nil, errors.Numerical("chain produced a NaN state", nil)
		}
		values = append(values, p)
	}

	return &Chain{
		Values:         values,
		AcceptanceRate: state.AcceptanceRate(),
		Divergences:    state.Divergences(),
		StepSize:       state.StepSize,
	}, nil
}
