package netload

import (
	"math/rand"
	"testing"

	"der-reliability/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(f func(h int) float64) []float64 {
	p := make([]float64, model.HoursPerYear)
	for h := range p {
		p[h] = f(h)
	}
	return p
}

// reliableInputs never sees PV module or battery failures within a few years,
// which makes solar output deterministic.
func reliableInputs(c model.Configuration) *model.Inputs {
	return &model.Inputs{
		Configuration: c,
		LoadKW:        profile(func(h int) float64 { return 1 + float64(h%24)/10 }),
		Irradiance:    profile(func(h int) float64 { return float64(h%24) / 24 }),
		LoadPoint:     model.LoadPointParams{FailureRatePerYear: 1, RepairTimeHours: 10},
		PV: model.PVParams{
			CapacityKW:     3,
			ModuleRatingKW: 0.3,
			DeratingFactor: 0.8,
			FailureRate:    1e-15,
			RepairRate:     0.1,
		},
		Battery: model.BatteryParams{
			CapacityKWh:  10,
			PowerLimitKW: 5,
			MinSOC:       0.1,
			InitialSOC:   1,
			FailureRate:  1e-15,
			RepairRate:   0.1,
		},
	}
}

func alternating(horizon, period int) []bool {
	g := make([]bool, horizon)
	for h := range g {
		g[h] = (h/period)%2 == 0
	}
	return g
}

func TestFor_EveryConfiguration(t *testing.T) {
	for _, c := range model.Configurations {
		comp, err := For(c)
		require.NoError(t, err)
		assert.Equal(t, c, comp.Configuration())
	}
	_, err := For(model.Configuration(42))
	assert.Error(t, err)
}

func TestServed(t *testing.T) {
	assert.True(t, served(-1))
	assert.True(t, served(0))
	assert.True(t, served(0.0004))
	assert.False(t, served(0.0006))
	assert.False(t, served(2))
}

func TestCompose_NoDERTilesLoad(t *testing.T) {
	in := reliableInputs(model.NoDER)
	horizon := 3 * model.HoursPerYear
	grid := alternating(horizon, 7)

	s, err := Compose(model.NoDER, in, grid, horizon, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, s.NetLoadKW, horizon)
	for h := 0; h < horizon; h++ {
		require.Equal(t, in.LoadKW[h%model.HoursPerYear], s.NetLoadKW[h])
		require.Equal(t, grid[h], s.Operating[h])
	}
}

func TestCompose_PVOnlyCreditsSolarWhileGridUp(t *testing.T) {
	in := reliableInputs(model.PVOnly)
	horizon := 2 * model.HoursPerYear
	grid := alternating(horizon, 5)

	s, err := Compose(model.PVOnly, in, grid, horizon, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	modules := float64(in.PV.ModuleCount())
	for h := 0; h < horizon; h++ {
		load := in.LoadKW[h%model.HoursPerYear]
		solar := modules * min(0.3*0.8*in.Irradiance[h%model.HoursPerYear], 0.3)
		if grid[h] {
			require.InDelta(t, load-solar, s.NetLoadKW[h], 1e-12)
			require.True(t, s.Operating[h])
		} else {
			require.Equal(t, load, s.NetLoadKW[h])
			require.False(t, s.Operating[h])
		}
	}
}

func TestPVBESSGrid_HourRules(t *testing.T) {
	comp, err := For(model.PVBESSGridConnected)
	require.NoError(t, err)
	batt, err := model.NewBattery(reliableInputs(model.PVBESSGridConnected).Battery)
	require.NoError(t, err)

	// battery up, grid down: 4 kW deficit covered from a full battery
	h := comp.Hour(HourState{LoadKW: 5, SolarKW: 1, BatteryUp: true}, batt)
	assert.InDelta(t, 0, h.NetLoadKW, 1e-12)
	assert.True(t, h.Operating)
	assert.Equal(t, model.ActionDischarging, h.Action)
	assert.InDelta(t, 0.6, batt.State.SOC, 1e-12)

	// battery down, grid up: solar offsets load, SOC untouched
	h = comp.Hour(HourState{LoadKW: 5, SolarKW: 1, GridUp: true}, batt)
	assert.Equal(t, 4.0, h.NetLoadKW)
	assert.True(t, h.Operating)
	assert.Equal(t, model.ActionOffline, h.Action)
	assert.InDelta(t, 0.6, batt.State.SOC, 1e-12)

	// both down: raw load, not operating
	h = comp.Hour(HourState{LoadKW: 5, SolarKW: 1}, batt)
	assert.Equal(t, 5.0, h.NetLoadKW)
	assert.False(t, h.Operating)

	// battery up, grid down, deficit beyond the power limit
	h = comp.Hour(HourState{LoadKW: 9, SolarKW: 0, BatteryUp: true}, batt)
	assert.InDelta(t, 4, h.NetLoadKW, 1e-12)
	assert.False(t, h.Operating)

	// same hour with the grid up is served by the grid
	h = comp.Hour(HourState{LoadKW: 9, SolarKW: 0, BatteryUp: true, GridUp: true}, batt)
	assert.True(t, h.Operating)
}

func TestPVBESSStandalone_IgnoresGrid(t *testing.T) {
	comp, err := For(model.PVBESSStandalone)
	require.NoError(t, err)
	batt, err := model.NewBattery(reliableInputs(model.PVBESSStandalone).Battery)
	require.NoError(t, err)

	h := comp.Hour(HourState{LoadKW: 3, SolarKW: 1, GridUp: true}, batt)
	assert.Equal(t, 3.0, h.NetLoadKW)
	assert.False(t, h.Operating, "battery down means unserved even with the grid up")

	h = comp.Hour(HourState{LoadKW: 3, SolarKW: 1, BatteryUp: true}, batt)
	assert.InDelta(t, 0, h.NetLoadKW, 1e-12)
	assert.True(t, h.Operating)
}

func TestCompose_StandaloneNeedsNoGrid(t *testing.T) {
	in := reliableInputs(model.PVBESSStandalone)
	s, err := Compose(model.PVBESSStandalone, in, nil, model.HoursPerYear, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Len(t, s.Operating, model.HoursPerYear)
}

func TestComposeTrace_ThreadsSOC(t *testing.T) {
	in := reliableInputs(model.PVBESSGridConnected)
	horizon := model.HoursPerYear
	rows, err := ComposeTrace(model.PVBESSGridConnected, in, alternating(horizon, 50), horizon, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	require.Len(t, rows, horizon)

	assert.Equal(t, 1.0, rows[0].Result.SOCStart)
	for i := 1; i < len(rows); i++ {
		require.Equal(t, rows[i-1].Result.SOCEnd, rows[i].Result.SOCStart, "hour %d", i)
		require.GreaterOrEqual(t, rows[i].Result.SOCEnd, in.Battery.MinSOC)
		require.LessOrEqual(t, rows[i].Result.SOCEnd, 1.0)
		require.True(t, rows[i].BatteryUp)
	}
}

func TestCompose_RejectsBadInputs(t *testing.T) {
	in := reliableInputs(model.PVOnly)
	rng := rand.New(rand.NewSource(5))

	_, err := Compose(model.PVOnly, in, make([]bool, 10), model.HoursPerYear, rng)
	assert.Error(t, err, "grid history shorter than horizon")

	_, err = Compose(model.PVOnly, in, nil, 0, rng)
	assert.Error(t, err)

	in.PV.CapacityKW = 0
	_, err = Compose(model.PVOnly, in, make([]bool, model.HoursPerYear), model.HoursPerYear, rng)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}
