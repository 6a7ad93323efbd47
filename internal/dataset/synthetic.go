package dataset

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxSyntheticCells caps rows times features of a generated dataset
const MaxSyntheticCells = 5_000_000

// SyntheticConfig describes a Gaussian-blob classification problem
type SyntheticConfig struct {
	Classes         int `json:"classes"`
	Features        int `json:"features"`
	SamplesPerClass int `json:"samples_per_class"`
	// Spread is the within-class standard deviation; centers lie in [-5, 5]
	Spread float64 `json:"spread"`
	Seed   uint64  `json:"seed"`
}

// DefaultSyntheticConfig is a ten-class, sixteen-feature problem that a
// shallow tree cannot solve perfectly.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Classes:         10,
		Features:        16,
		SamplesPerClass: 700,
		Spread:          2.5,
		Seed:            42,
	}
}

// Synthetic generates a deterministic labeled dataset
func Synthetic(cfg SyntheticConfig) (*Dataset, error) {
	if cfg.Classes < 2 || cfg.Features < 1 || cfg.SamplesPerClass < 1 || !(cfg.Spread > 0) {
		return nil, fmt.Errorf("invalid synthetic config: %+v", cfg)
	}
	if cfg.SamplesPerClass > MaxSyntheticCells/cfg.Classes ||
		cfg.Features > MaxSyntheticCells/(cfg.Classes*cfg.SamplesPerClass) {
		return nil, fmt.Errorf("synthetic dataset larger than %d cells: %+v", MaxSyntheticCells, cfg)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xb1a5))
	centerDist := distuv.Uniform{Min: -5, Max: 5, Src: rng}
	noise := distuv.Normal{Mu: 0, Sigma: cfg.Spread, Src: rng}

	centers := mat.NewDense(cfg.Classes, cfg.Features, nil)
	for k := 0; k < cfg.Classes; k++ {
		for j := 0; j < cfg.Features; j++ {
			centers.Set(k, j, centerDist.Rand())
		}
	}

	n := cfg.Classes * cfg.SamplesPerClass
	features := mat.NewDense(n, cfg.Features, nil)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		k := i % cfg.Classes
		labels[i] = k
		for j := 0; j < cfg.Features; j++ {
			features.Set(i, j, centers.At(k, j)+noise.Rand())
		}
	}

	names := make([]string, cfg.Features)
	for j := range names {
		names[j] = fmt.Sprintf("f%d", j)
	}
	return New("synthetic", names, features, labels)
}
