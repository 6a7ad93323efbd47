package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactRateObservations(t *testing.T) {
	obs := ExactRateObservations(100, 0.85)
	assert.Equal(t, 100, obs.Len())
	assert.Equal(t, 85, obs.Successes())

	prefix := obs.Slice(20)
	assert.Equal(t, 17, prefix.Successes())
}

func TestBernoulliObservationsDeterministic(t *testing.T) {
	a := BernoulliObservations(1000, 0.7, 5)
	b := BernoulliObservations(1000, 0.7, 5)
	assert.Equal(t, a.Values(), b.Values())
	assert.InDelta(t, 0.7, a.Rate(), 0.06)
}

func TestConstantObservations(t *testing.T) {
	assert.Equal(t, 10, ConstantObservations(10, 1).Successes())
	assert.Equal(t, 0, ConstantObservations(10, 0).Successes())
}

func TestRNGAdapterRecordsRequests(t *testing.T) {
	adapter := NewRNGAdapter()
	_, err := adapter.SeededStream(context.Background(), "posterior", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"posterior"}, adapter.Requests())
}
