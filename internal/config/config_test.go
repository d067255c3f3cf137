package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"der-reliability/internal/model"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeProfile(t *testing.T, dir, name string, v float64) {
	t.Helper()
	var b strings.Builder
	for h := 0; h < model.HoursPerYear; h++ {
		fmt.Fprintf(&b, "%g\n", v)
	}
	write(t, dir, name, b.String())
}

const minimal = `
configuration: pv_only
load_point:
  failure_rate_per_year: 1
  repair_time_hours: 10
pv:
  capacity_kw: 5
profiles:
  load: load.csv
  irradiance: ghi.csv
`

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(write(t, dir, "config.yaml", minimal))
	require.NoError(t, err)

	assert.Equal(t, 0.05, c.Simulation.ConvergenceThreshold)
	assert.Equal(t, 100, c.Simulation.YearsPerBatch)
	assert.Equal(t, 0, c.Simulation.Workers)
	assert.Equal(t, 500, c.Simulation.MaxRounds)
	assert.Equal(t, 1000, c.Simulation.MinYearsZeroMean)
	assert.Equal(t, int64(1), c.Simulation.Seed)

	assert.Equal(t, 0.3, c.PV.ModuleRatingKW)
	assert.Equal(t, 0.8, c.PV.DeratingFactor)
	assert.Equal(t, 4.35133e-05, c.PV.FailureRate)
	assert.Equal(t, 0.0964337280, c.PV.RepairRate)
	assert.Equal(t, 1.0, c.Battery.InitialSOC)
	assert.Equal(t, "info", c.Log.Level)

	cfg, err := c.ParsedConfiguration()
	require.NoError(t, err)
	assert.Equal(t, model.PVOnly, cfg)
}

func TestLoad_BatteryFileMerge(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "battery.yaml", `
battery:
  name: home-13
  capacity_kwh: 13.5
  power_limit_kw: 5
  soc_min: 0.1
  failure_rate: 2.0e-05
`)
	c, err := Load(write(t, dir, "config.yaml", `
configuration: pv_bess_standalone
load_point: {failure_rate_per_year: 1, repair_time_hours: 10}
pv: {capacity_kw: 5}
battery_file: battery.yaml
battery:
  power_limit_kw: 7
profiles: {load: load.csv, irradiance: ghi.csv}
`))
	require.NoError(t, err)

	assert.Equal(t, "home-13", c.Battery.Name)
	assert.Equal(t, 13.5, c.Battery.CapacityKWh)
	assert.Equal(t, 7.0, c.Battery.PowerLimitKW)
	assert.Equal(t, 0.1, c.Battery.MinSOC)
	assert.Equal(t, 2.0e-05, c.Battery.FailureRate, "file value must survive defaults")
	assert.Equal(t, 0.1, c.Battery.RepairRate)
	assert.Equal(t, 1.0, c.Battery.InitialSOC)
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "unknown configuration",
			yaml:  strings.Replace(minimal, "pv_only", "wind_only", 1),
			field: "configuration",
		},
		{
			name:  "load point rate",
			yaml:  strings.Replace(minimal, "failure_rate_per_year: 1", "failure_rate_per_year: 0", 1),
			field: "load_point.failure_rate_per_year",
		},
		{
			name:  "pv without irradiance",
			yaml:  strings.Replace(minimal, "  irradiance: ghi.csv\n", "", 1),
			field: "profiles.irradiance",
		},
		{
			name:  "pv capacity",
			yaml:  strings.Replace(minimal, "capacity_kw: 5", "capacity_kw: 0", 1),
			field: "pv.capacity_kw",
		},
		{
			name:  "battery missing",
			yaml:  strings.Replace(minimal, "pv_only", "pv_bess_grid_connected", 1),
			field: "battery.capacity_kwh",
		},
		{
			name:  "log level",
			yaml:  minimal + "log: {level: loud}\n",
			field: "log.level",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(write(t, t.TempDir(), "config.yaml", tc.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidConfig)
			var ce *model.ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}

func TestLoadInputs_ResolvesProfilesNextToConfig(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "load.csv", 1.2)
	writeProfile(t, dir, "ghi.csv", 0.5)
	c, err := Load(write(t, dir, "config.yaml", minimal))
	require.NoError(t, err)

	in, err := c.LoadInputs()
	require.NoError(t, err)
	assert.Equal(t, model.PVOnly, in.Configuration)
	assert.Equal(t, 1.2, in.LoadKW[100])
	assert.Equal(t, 0.5, in.Irradiance[100])
	assert.Equal(t, model.LoadPointParams{FailureRatePerYear: 1, RepairTimeHours: 10}, in.LoadPoint)
	assert.Equal(t, 17, in.PV.ModuleCount())
}

func TestLoadInputs_NoDERSkipsIrradiance(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "load.csv", 1)
	c, err := Load(write(t, dir, "config.yaml", `
configuration: no_der
load_point: {failure_rate_per_year: 2, repair_time_hours: 4}
profiles: {load: load.csv}
`))
	require.NoError(t, err)

	in, err := c.LoadInputs()
	require.NoError(t, err)
	assert.Nil(t, in.Irradiance)
}

func TestSimulation_ToOptions(t *testing.T) {
	c, err := Parse([]byte("simulation: {workers: 3, seed: 42}\n"))
	require.NoError(t, err)
	log := zerolog.Nop()

	opts := c.Simulation.ToOptions(&log)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, int64(42), opts.Seed)
	assert.Equal(t, 0.05, opts.ConvergenceThreshold)
	assert.Equal(t, 100, opts.YearsPerBatch)
	assert.Same(t, &log, opts.Logger)
}

func TestMergeBattery(t *testing.T) {
	base := BatteryConfig{CapacityKWh: 10, PowerLimitKW: 5, MinSOC: 0.2}
	out := MergeBattery(base, BatteryConfig{PowerLimitKW: 3})
	assert.Equal(t, BatteryConfig{CapacityKWh: 10, PowerLimitKW: 3, MinSOC: 0.2}, out)
}
