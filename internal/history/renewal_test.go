package history

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAvailability_ExactLength(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rates := []struct{ failure, repair float64 }{
		{1.0 / 8760, 0.1},
		{0.5, 0.5},
		{2, 3},
		{1e-9, 1e-9},
	}
	for _, r := range rates {
		for _, horizon := range []int{1, 2, 24, 8760, 876000} {
			h, err := GenerateAvailability(r.failure, r.repair, horizon, rng)
			require.NoError(t, err)
			assert.Len(t, h, horizon)
		}
	}
}

func TestGenerateAvailability_SteadyState(t *testing.T) {
	const failure, repair = 0.01, 0.1
	h, err := GenerateAvailability(failure, repair, 1_000_000, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	up := 0
	for _, v := range h {
		if v {
			up++
		}
	}
	want := repair / (failure + repair)
	got := float64(up) / float64(len(h))
	assert.InEpsilon(t, want, got, 0.01)
}

func TestGenerateAvailability_StartsUp(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		h, err := GenerateAvailability(5, 5, 50, rng)
		require.NoError(t, err)
		assert.True(t, h[0], "every up sojourn lasts at least an hour")
	}
}

func TestGenerateAvailability_OutageClippedAtHorizon(t *testing.T) {
	// almost certain failure in the first hours, repair never within the horizon
	h, err := GenerateAvailability(10, 1e-12, 1000, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	require.Len(t, h, 1000)

	first := -1
	for i, v := range h {
		if !v {
			first = i
			break
		}
	}
	require.GreaterOrEqual(t, first, 1)
	for _, v := range h[first:] {
		assert.False(t, v)
	}
}

func TestGenerateAvailability_NeverFailsWithinHorizon(t *testing.T) {
	h, err := GenerateAvailability(1e-15, 0.1, 8760, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	for _, v := range h {
		require.True(t, v)
	}
}

func TestGenerateAvailability_Deterministic(t *testing.T) {
	a, err := GenerateAvailability(0.01, 0.1, 10000, NewSource(11, 3))
	require.NoError(t, err)
	b, err := GenerateAvailability(0.01, 0.1, 10000, NewSource(11, 3))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := GenerateAvailability(0.01, 0.1, 10000, NewSource(11, 4))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGenerateAvailability_RejectsBadArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := GenerateAvailability(0, 1, 10, rng)
	assert.Error(t, err)
	_, err = GenerateAvailability(1, -1, 10, rng)
	assert.Error(t, err)
	_, err = GenerateAvailability(1, 1, 0, rng)
	assert.Error(t, err)
	_, err = GenerateAvailability(1, 1, 10, nil)
	assert.Error(t, err)
}

type zeroThenHalf struct{ calls int }

func (z *zeroThenHalf) Float64() float64 {
	z.calls++
	if z.calls%2 == 1 {
		return 0
	}
	return 0.5
}

func TestUniform_SkipsZero(t *testing.T) {
	z := &zeroThenHalf{}
	assert.Equal(t, 0.5, uniform(z))
	assert.Equal(t, 2, z.calls)
}
