package posterior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	obs, err := FromCounts(85, 100)
	require.NoError(t, err)
	cfg := DefaultSamplerConfig()

	base := Fingerprint(obs, cfg, "uniform")
	assert.Len(t, base.String(), 64)
	assert.Len(t, base.Short(), 12)
	assert.Equal(t, base, Fingerprint(obs, cfg, "uniform"))

	reseeded := cfg
	reseeded.Seed++
	assert.NotEqual(t, base, Fingerprint(obs, reseeded, "uniform"))
	assert.NotEqual(t, base, Fingerprint(obs, cfg, "beta(2,2)"))

	// same counts in a different order are different inputs
	shuffled, err := NewObservations(append([]int{0}, obs.Values()[:99]...))
	require.NoError(t, err)
	assert.NotEqual(t, base, Fingerprint(shuffled, cfg, "uniform"))
}
