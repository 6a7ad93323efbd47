package posterior

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocredible/domain/posterior"
)

func TestSummarizeKnownSequence(t *testing.T) {
	samples := make([]float64, 0, 101)
	for i := 100; i >= 0; i-- {
		samples = append(samples, float64(i)/100)
	}

	s, err := Summarize(samples, 0.9)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.Mean, 1e-12)
	assert.InDelta(t, 0.5, s.Median, 1e-12)
	assert.InDelta(t, 0.05, s.Lower, 0.011)
	assert.InDelta(t, 0.95, s.Upper, 0.011)
	assert.InDelta(t, 0.9, s.Width(), 0.02)
	assert.Equal(t, 0.9, s.Confidence)
}

func TestSummarizeBoundsInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.IntN(200)
		samples := make([]float64, n)
		for i := range samples {
			// skewed toward 1, with an occasional outlier at 0
			samples[i] = 1 - rng.Float64()*rng.Float64()*0.1
			if rng.IntN(40) == 0 {
				samples[i] = 0
			}
		}
		for _, c := range []float64{0.5, 0.8, 0.95, 0.99} {
			s, err := Summarize(samples, c)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, s.Lower, 0.0)
			assert.LessOrEqual(t, s.Upper, 1.0)
			assert.LessOrEqual(t, s.Lower, s.Mean)
			assert.LessOrEqual(t, s.Mean, s.Upper)
		}
	}
}

func TestSummarizeSingleSample(t *testing.T) {
	s, err := Summarize([]float64{0.42}, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 0.42, s.Mean)
	assert.Equal(t, 0.42, s.Lower)
	assert.Equal(t, 0.42, s.Upper)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestSummarizeRejectsBadInput(t *testing.T) {
	_, err := Summarize(nil, 0.95)
	assert.Error(t, err)
	_, err = Summarize([]float64{0.5}, 1)
	assert.Error(t, err)
}

func TestAnalyticSummary(t *testing.T) {
	obs, _ := posterior.FromCounts(85, 100)
	s := AnalyticSummary(UniformPrior{}, obs, 0.95)

	assert.InDelta(t, 86.0/102.0, s.Mean, 1e-9)
	assert.Less(t, s.Lower, s.Mean)
	assert.Greater(t, s.Upper, s.Mean)
	assert.InDelta(t, 0.77, s.Lower, 0.02)
	assert.InDelta(t, 0.91, s.Upper, 0.02)
}
