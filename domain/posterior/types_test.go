package posterior

import (
	"errors"
	"math"
	"testing"

	"gocredible/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObservations(t *testing.T) {
	obs, err := NewObservations([]int{1, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 4, obs.Len())
	assert.Equal(t, 3, obs.Successes())
	assert.Equal(t, 1, obs.Failures())
	assert.InDelta(t, 0.75, obs.Rate(), 1e-12)
	assert.Equal(t, []int{1, 0, 1, 1}, obs.Values())

	_, err = NewObservations([]int{1, 2})
	assert.True(t, errors.Is(err, core.ErrInvalidValue))
}

func TestObservationsAreImmutable(t *testing.T) {
	input := []int{1, 1, 0}
	obs, err := NewObservations(input)
	require.NoError(t, err)

	input[2] = 1
	values := obs.Values()
	values[0] = 0

	assert.Equal(t, 2, obs.Successes())
	assert.Equal(t, uint8(1), obs.At(0))
	assert.Equal(t, uint8(0), obs.At(2))
}

func TestFromCountsAndSlice(t *testing.T) {
	obs, err := FromCounts(85, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, obs.Len())
	assert.Equal(t, 85, obs.Successes())

	head := obs.Slice(90)
	assert.Equal(t, 90, head.Len())
	assert.Equal(t, 85, head.Successes())

	assert.Equal(t, 100, obs.Slice(1000).Len())
	assert.Equal(t, 0, obs.Slice(-1).Len())

	_, err = FromCounts(5, 3)
	assert.Error(t, err)
}

func TestObservationLimits(t *testing.T) {
	_, err := FromCounts(1, MaxObservations+1)
	assert.True(t, errors.Is(err, core.ErrInvalidValue), "got %v", err)

	obs, err := FromCounts(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, obs.Len())

	_, err = NewObservations(make([]int, MaxObservations+1))
	assert.True(t, errors.Is(err, core.ErrInvalidValue), "got %v", err)
}

func TestCompare(t *testing.T) {
	obs, err := Compare([]int{3, 1, 4, 1}, []int{3, 2, 4, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1, 1}, obs.Values())

	_, err = Compare([]int{1}, []int{1, 2})
	assert.True(t, errors.Is(err, core.ErrLengthMismatch))
}

func TestSamplerConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SamplerConfig)
		valid  bool
	}{
		{"default", func(c *SamplerConfig) {}, true},
		{"zero step", func(c *SamplerConfig) { c.StepSize = 0 }, false},
		{"negative step", func(c *SamplerConfig) { c.StepSize = -0.1 }, false},
		{"infinite step", func(c *SamplerConfig) { c.StepSize = math.Inf(1) }, false},
		{"nan step", func(c *SamplerConfig) { c.StepSize = math.NaN() }, false},
		{"zero leapfrog", func(c *SamplerConfig) { c.NumSteps = 0 }, false},
		{"too many leapfrog", func(c *SamplerConfig) { c.NumSteps = MaxNumSteps + 1 }, false},
		{"huge warmup", func(c *SamplerConfig) { c.Warmup = MaxWarmup + 1 }, false},
		{"huge samples", func(c *SamplerConfig) { c.Samples = MaxSamples + 1 }, false},
		{"huge resample", func(c *SamplerConfig) { c.Resample = MaxResample + 1 }, false},
		{"resample at limit", func(c *SamplerConfig) { c.Resample = MaxResample }, true},
		{"nan confidence", func(c *SamplerConfig) { c.Confidence = math.NaN() }, false},
		{"zero warmup", func(c *SamplerConfig) { c.Warmup = 0 }, false},
		{"short warmup", func(c *SamplerConfig) { c.Warmup = 50 }, false},
		{"zero samples", func(c *SamplerConfig) { c.Samples = 0 }, false},
		{"negative resample", func(c *SamplerConfig) { c.Resample = -1 }, false},
		{"confidence one", func(c *SamplerConfig) { c.Confidence = 1 }, false},
		{"confidence zero", func(c *SamplerConfig) { c.Confidence = 0 }, false},
		{"unknown policy", func(c *SamplerConfig) { c.ResamplePolicy = "bogus" }, false},
		{"without replacement too many", func(c *SamplerConfig) {
			c.ResamplePolicy = ResampleWithoutReplacement
			c.Resample = c.Samples + 1
		}, false},
		{"without replacement fits", func(c *SamplerConfig) {
			c.ResamplePolicy = ResampleWithoutReplacement
			c.Resample = c.Samples
		}, true},
		{"no adaptation ignores target", func(c *SamplerConfig) {
			c.AdaptStepSize = false
			c.TargetAccept = 0
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSamplerConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, core.ErrInvalidConfig), "got %v", err)
			}
		})
	}
}

func TestParseResamplePolicy(t *testing.T) {
	p, err := ParseResamplePolicy("")
	require.NoError(t, err)
	assert.Equal(t, ResampleWithReplacement, p)

	p, err = ParseResamplePolicy("none")
	require.NoError(t, err)
	assert.Equal(t, ResampleNone, p)

	_, err = ParseResamplePolicy("weighted")
	assert.Error(t, err)
}
