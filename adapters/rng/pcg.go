package rng

import (
	"context"
	"math/rand/v2"
)

// PCGAdapter implements ports.RNGPort with PCG streams keyed by name and seed
type PCGAdapter struct{}

// NewPCGAdapter creates the production RNG adapter
func NewPCGAdapter() *PCGAdapter {
	return &PCGAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *PCGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(uint64(seed), hashString(name))), nil
}

// hashString creates a simple hash for deterministic seeding (djb2)
func hashString(s string) uint64 {
	var hash uint64 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint64(c)
	}
	return hash
}
