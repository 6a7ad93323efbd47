package posterior

import (
	"fmt"
	"math"

	"gocredible/domain/core"
)

// MinWarmup is the smallest warm-up the sampler accepts. Shorter burn-in
// leaves the chain too close to its starting point.
const MinWarmup = 100

// Upper bounds on request-controlled sizes. Each one caps an allocation
// proportional to its value.
const (
	MaxObservations = 10_000_000
	MaxWarmup       = 1_000_000
	MaxSamples      = 1_000_000
	MaxResample     = 1_000_000
	MaxNumSteps     = 1024
)

// Observations is an immutable ordered sequence of correctness indicators,
// one per test example (1 = correct prediction, 0 = incorrect).
type Observations struct {
	values    []uint8
	successes int
}

// NewObservations validates and copies a 0/1 sequence
func NewObservations(values []int) (Observations, error) {
	if len(values) > MaxObservations {
		return Observations{}, fmt.Errorf("%w: %d observations exceed the limit of %d", core.ErrInvalidValue, len(values), MaxObservations)
	}
	out := make([]uint8, len(values))
	successes := 0
	for i, v := range values {
		switch v {
		case 0:
		case 1:
			out[i] = 1
			successes++
		default:
			return Observations{}, fmt.Errorf("%w: index %d has value %d", core.ErrInvalidValue, i, v)
		}
	}
	return Observations{values: out, successes: successes}, nil
}

// FromCounts builds an observation vector with the successes first, followed
// by the failures.
func FromCounts(successes, trials int) (Observations, error) {
	if trials < 0 || successes < 0 || successes > trials {
		return Observations{}, fmt.Errorf("%w: %d successes out of %d trials", core.ErrInvalidValue, successes, trials)
	}
	if trials > MaxObservations {
		return Observations{}, fmt.Errorf("%w: %d trials exceed the limit of %d", core.ErrInvalidValue, trials, MaxObservations)
	}
	out := make([]uint8, trials)
	for i := 0; i < successes; i++ {
		out[i] = 1
	}
	return Observations{values: out, successes: successes}, nil
}

// Compare builds the correctness vector predicted[i] == actual[i]
func Compare(predicted, actual []int) (Observations, error) {
	if len(predicted) != len(actual) {
		return Observations{}, core.NewLengthMismatchError("predictions", len(actual), len(predicted))
	}
	out := make([]uint8, len(actual))
	successes := 0
	for i := range actual {
		if predicted[i] == actual[i] {
			out[i] = 1
			successes++
		}
	}
	return Observations{values: out, successes: successes}, nil
}

// Len returns the sample size N
func (o Observations) Len() int { return len(o.values) }

// Successes returns the number of correct predictions
func (o Observations) Successes() int { return o.successes }

// Failures returns the number of incorrect predictions
func (o Observations) Failures() int { return len(o.values) - o.successes }

// At returns the i-th observation
func (o Observations) At(i int) uint8 { return o.values[i] }

// Rate returns the empirical accuracy, or 0 for an empty vector
func (o Observations) Rate() float64 {
	if len(o.values) == 0 {
		return 0
	}
	return float64(o.successes) / float64(len(o.values))
}

// Slice returns the first n observations. n larger than Len is capped.
func (o Observations) Slice(n int) Observations {
	if n < 0 {
		n = 0
	}
	if n > len(o.values) {
		n = len(o.values)
	}
	successes := 0
	for _, v := range o.values[:n] {
		successes += int(v)
	}
	return Observations{values: o.values[:n:n], successes: successes}
}

// Values returns a copy of the sequence as ints
func (o Observations) Values() []int {
	out := make([]int, len(o.values))
	for i, v := range o.values {
		out[i] = int(v)
	}
	return out
}

// ResamplePolicy decides how the reported posterior sequence is drawn from the
// retained chain states.
type ResamplePolicy string

const (
	// ResampleWithReplacement draws uniformly with replacement; repeats are expected
	// when the requested size exceeds the retained chain.
	ResampleWithReplacement ResamplePolicy = "with_replacement"
	// ResampleWithoutReplacement draws a uniform random subset; the requested size
	// must not exceed the retained chain.
	ResampleWithoutReplacement ResamplePolicy = "without_replacement"
	// ResampleNone reports the retained chain states as-is.
	ResampleNone ResamplePolicy = "none"
)

// ParseResamplePolicy parses a policy name
func ParseResamplePolicy(s string) (ResamplePolicy, error) {
	switch ResamplePolicy(s) {
	case ResampleWithReplacement, ResampleWithoutReplacement, ResampleNone:
		return ResamplePolicy(s), nil
	case "":
		return ResampleWithReplacement, nil
	}
	return "", core.NewValidationError("resample_policy", fmt.Sprintf("unknown policy %q", s))
}

// SamplerConfig holds the numeric configuration of one inference run.
// NumSteps is the maximum number of leapfrog steps per transition.
type SamplerConfig struct {
	StepSize       float64        `json:"step_size"`
	NumSteps       int            `json:"num_steps"`
	Warmup         int            `json:"warmup"`
	Samples        int            `json:"samples"`
	Resample       int            `json:"resample"`
	ResamplePolicy ResamplePolicy `json:"resample_policy"`
	Confidence     float64        `json:"confidence"`
	Seed           int64          `json:"seed"`
	AdaptStepSize  bool           `json:"adapt_step_size"`
	TargetAccept   float64        `json:"target_accept"`
}

// DefaultSamplerConfig mirrors the reference experiment: 100 warm-up and 100
// retained iterations, 5000 posterior draws resampled from them.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		StepSize:       0.1,
		NumSteps:       8,
		Warmup:         MinWarmup,
		Samples:        100,
		Resample:       5000,
		ResamplePolicy: ResampleWithReplacement,
		Confidence:     0.95,
		Seed:           42,
		AdaptStepSize:  true,
		TargetAccept:   0.8,
	}
}

// Validate checks every numeric field and reports the first violation
func (c SamplerConfig) Validate() error {
	switch {
	case !(c.StepSize > 0) || math.IsInf(c.StepSize, 1):
		return core.NewValidationError("step_size", "must be positive and finite")
	case c.NumSteps < 1:
		return core.NewValidationError("num_steps", "must be at least 1")
	case c.NumSteps > MaxNumSteps:
		return core.NewValidationError("num_steps", fmt.Sprintf("must be at most %d", MaxNumSteps))
	case c.Warmup <= 0:
		return core.NewValidationError("warmup", "must be positive")
	case c.Warmup < MinWarmup:
		return core.NewValidationError("warmup", fmt.Sprintf("must be at least %d", MinWarmup))
	case c.Warmup > MaxWarmup:
		return core.NewValidationError("warmup", fmt.Sprintf("must be at most %d", MaxWarmup))
	case c.Samples <= 0:
		return core.NewValidationError("samples", "must be positive")
	case c.Samples > MaxSamples:
		return core.NewValidationError("samples", fmt.Sprintf("must be at most %d", MaxSamples))
	case c.Resample < 0:
		return core.NewValidationError("resample", "must not be negative")
	case c.Resample > MaxResample:
		return core.NewValidationError("resample", fmt.Sprintf("must be at most %d", MaxResample))
	case !(c.Confidence > 0 && c.Confidence < 1):
		return core.NewValidationError("confidence", "must be in (0, 1)")
	case c.AdaptStepSize && !(c.TargetAccept > 0 && c.TargetAccept < 1):
		return core.NewValidationError("target_accept", "must be in (0, 1)")
	}
	if _, err := ParseResamplePolicy(string(c.ResamplePolicy)); err != nil {
		return err
	}
	if c.ResamplePolicy == ResampleWithoutReplacement && c.Resample > c.Samples {
		return core.NewValidationError("resample", fmt.Sprintf("%d draws without replacement exceed %d retained states", c.Resample, c.Samples))
	}
	return nil
}

// Summary holds the derived statistics of a posterior sample sequence
type Summary struct {
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Median     float64 `json:"median"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`
}

// Width returns the credible interval width
func (s Summary) Width() float64 { return s.Upper - s.Lower }

// Diagnostics reports chain quality. Poor mixing is a signal, never an error.
type Diagnostics struct {
	AcceptanceRate      float64  `json:"acceptance_rate"`
	Divergences         int      `json:"divergences"`
	EffectiveSampleSize float64  `json:"effective_sample_size"`
	FinalStepSize       float64  `json:"final_step_size"`
	Converged           bool     `json:"converged"`
	Warnings            []string `json:"warnings,omitempty"`
}

// Result is the outcome of one completed inference run
type Result struct {
	RunID        core.RunID    `json:"run_id"`
	Fingerprint  core.Hash     `json:"fingerprint"`
	Observations int           `json:"observations"`
	Successes    int           `json:"successes"`
	Prior        string        `json:"prior"`
	Samples      []float64     `json:"samples"`
	Chain        []float64     `json:"chain"`
	Summary      Summary       `json:"summary"`
	Analytic     Summary       `json:"analytic"`
	Diagnostics  Diagnostics   `json:"diagnostics"`
	Config       SamplerConfig `json:"config"`
}

// EmpiricalRate returns successes / observations
func (r *Result) EmpiricalRate() float64 {
	if r.Observations == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Observations)
}
