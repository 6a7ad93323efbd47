package posterior

import (
	"math/rand/v2"

	"gocredible/domain/core"
	"gocredible/domain/posterior"
)

// Resample draws size values from the retained chain according to policy.
// size 0 or ResampleNone returns a copy of the chain.
func Resample(chain []float64, size int, policy posterior.ResamplePolicy, rng *rand.Rand) ([]float64, error) {
	if len(chain) == 0 {
		return nil, core.NewValidationError("chain", "is empty")
	}
	if size == 0 || policy == posterior.ResampleNone {
		out := make([]float64, len(chain))
		copy(out, chain)
		return out, nil
	}

	out := make([]float64, size)
	switch policy {
	case posterior.ResampleWithReplacement:
		for i := range out {
			out[i] = chain[rng.IntN(len(chain))]
		}
	case posterior.ResampleWithoutReplacement:
		if size > len(chain) {
			return nil, core.NewValidationError("resample", "exceeds retained chain length")
		}
		for i, idx := range rng.Perm(len(chain))[:size] {
			out[i] = chain[idx]
		}
	default:
		return nil, core.NewValidationError("resample_policy", string(policy))
	}
	return out, nil
}
