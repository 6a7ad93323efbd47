package testkit

import (
	"context"
	"math/rand/v2"
	"sync"

	"gocredible/adapters/rng"
	"gocredible/domain/posterior"
	"gocredible/ports"
)

// RNGAdapter implements ports.RNGPort and records which streams were requested
type RNGAdapter struct {
	inner ports.RNGPort

	mu       sync.Mutex
	requests []string
}

// NewRNGAdapter wraps the production PCG adapter
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{inner: rng.NewPCGAdapter()}
}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	r.mu.Lock()
	r.requests = append(r.requests, name)
	r.mu.Unlock()
	return r.inner.SeededStream(ctx, name, seed)
}

// Requests returns the names of all streams requested so far
func (r *RNGAdapter) Requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.requests))
	copy(out, r.requests)
	return out
}

// BernoulliObservations simulates n independent trials with success probability p
func BernoulliObservations(n int, p float64, seed uint64) posterior.Observations {
	src := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	values := make([]int, n)
	for i := range values {
		if src.Float64() < p {
			values[i] = 1
		}
	}
	obs, err := posterior.NewObservations(values)
	if err != nil {
		panic(err)
	}
	return obs
}

// ExactRateObservations returns n observations with round(n*rate) successes,
// interleaved so any prefix tracks the rate.
func ExactRateObservations(n int, rate float64) posterior.Observations {
	values := make([]int, n)
	successes := 0
	for i := range values {
		if float64(successes) < rate*float64(i+1)-1e-9 {
			values[i] = 1
			successes++
		}
	}
	obs, err := posterior.NewObservations(values)
	if err != nil {
		panic(err)
	}
	return obs
}

// ConstantObservations returns n copies of value (0 or 1)
func ConstantObservations(n int, value int) posterior.Observations {
	values := make([]int, n)
	for i := range values {
		values[i] = value
	}
	obs, err := posterior.NewObservations(values)
	if err != nil {
		panic(err)
	}
	return obs
}
