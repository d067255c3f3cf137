package history

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleChain_StaysInRange(t *testing.T) {
	arr := ModuleArray{Count: 4, RatingKW: 0.3, FailureRate: 0.05, RepairRate: 0.1}
	chain := NewModuleChain(arr)
	rng := rand.New(rand.NewSource(17))

	prev := chain.Next(rng, 1<<30)
	assert.Equal(t, 0, prev.Failed)
	assert.Equal(t, 1, prev.State())
	seen := map[int]bool{}
	for i := 0; i < 100000; i++ {
		s := chain.Next(rng, 1<<30)
		require.GreaterOrEqual(t, s.Failed, 0)
		require.LessOrEqual(t, s.Failed, arr.Count)
		require.GreaterOrEqual(t, s.Hours, 1)
		require.Equal(t, prev.Start+prev.Hours, s.Start)
		d := s.Failed - prev.Failed
		require.True(t, d == 1 || d == -1, "transition %d -> %d", prev.Failed, s.Failed)
		seen[s.Failed] = true
		prev = s
	}
	assert.True(t, seen[arr.Count], "fully failed state is reachable with these rates")
}

func TestGenerateSolarOutput_Bounded(t *testing.T) {
	arr := ModuleArray{Count: 10, RatingKW: 0.3, FailureRate: 0.01, RepairRate: 0.05}
	perModule := make([]float64, 8760)
	for h := range perModule {
		// some hours exceed the rating on purpose
		perModule[h] = float64(h%24) / 40
	}

	out, err := GenerateSolarOutput(8760*5, arr, perModule, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	require.Len(t, out, 8760*5)

	limit := float64(arr.Count) * arr.RatingKW
	for h, v := range out {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, limit+1e-12, "hour %d", h)
	}
}

func TestGenerateSolarOutput_WorkingModulesTimesProfile(t *testing.T) {
	arr := ModuleArray{Count: 1, RatingKW: 1, FailureRate: 0.02, RepairRate: 0.2}
	perModule := make([]float64, 8760)
	for h := range perModule {
		perModule[h] = 0.5
	}

	out, err := GenerateSolarOutput(20000, arr, perModule, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	zeros := 0
	for _, v := range out {
		require.True(t, v == 0 || v == 0.5, "got %g", v)
		if v == 0 {
			zeros++
		}
	}
	assert.Greater(t, zeros, 0)
	assert.Equal(t, 0.5, out[0], "array starts fully working")
}

func TestGenerateSolarOutput_HealthyArrayTilesProfile(t *testing.T) {
	arr := ModuleArray{Count: 3, RatingKW: 0.3, FailureRate: 1e-15, RepairRate: 0.1}
	perModule := make([]float64, 8760)
	for h := range perModule {
		perModule[h] = float64(h%10) / 100
	}
	out, err := GenerateSolarOutput(8760*2, arr, perModule, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	for h, v := range out {
		require.InDelta(t, 3*perModule[h%8760], v, 1e-12)
	}
}

func TestGenerateSolarOutput_RejectsBadArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	good := ModuleArray{Count: 2, RatingKW: 0.3, FailureRate: 0.1, RepairRate: 0.1}
	profile := []float64{0.1}

	_, err := GenerateSolarOutput(0, good, profile, rng)
	assert.Error(t, err)
	_, err = GenerateSolarOutput(10, ModuleArray{Count: 0, RatingKW: 0.3, FailureRate: 0.1, RepairRate: 0.1}, profile, rng)
	assert.Error(t, err)
	_, err = GenerateSolarOutput(10, good, nil, rng)
	assert.Error(t, err)
	_, err = GenerateSolarOutput(10, good, profile, nil)
	assert.Error(t, err)
}

func TestPerModuleProfile(t *testing.T) {
	got := PerModuleProfile([]float64{0, 0.5, 1, 2}, 0.3, 0.8)
	assert.InDeltaSlice(t, []float64{0, 0.12, 0.24, 0.3}, got, 1e-12)
}
