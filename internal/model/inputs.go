package model

import "math"

// HoursPerYear is the length of one typical meteorological year.
const HoursPerYear = 8760

// RoundKW rounds a net load to watt resolution. Operating decisions and energy
// sums both read net load at this resolution.
func RoundKW(kw float64) float64 {
	return math.Round(kw*1000) / 1000
}

// LoadPointParams describes the grid connection feeding the customer.
// Reliability data for load points is published per year, repair in hours.
type LoadPointParams struct {
	FailureRatePerYear float64
	RepairTimeHours    float64
}

// HourlyRates converts to the per-hour failure and repair rates used by the
// renewal process.
func (p LoadPointParams) HourlyRates() (failure, repair float64) {
	return p.FailureRatePerYear / HoursPerYear, 1 / p.RepairTimeHours
}

func (p LoadPointParams) Validate() error {
	if !(p.FailureRatePerYear > 0) {
		return invalid("load_point.failure_rate_per_year", "must be > 0")
	}
	if !(p.RepairTimeHours > 0) {
		return invalid("load_point.repair_time_hours", "must be > 0")
	}
	return nil
}

// PVParams defines the solar array as a set of identical AC modules.
// Rates are per hour and apply to each module independently.
type PVParams struct {
	CapacityKW     float64
	ModuleRatingKW float64
	DeratingFactor float64
	FailureRate    float64
	RepairRate     float64
}

// ModuleCount is the number of modules needed to reach CapacityKW.
func (p PVParams) ModuleCount() int {
	return int(math.Ceil(p.CapacityKW / p.ModuleRatingKW))
}

func (p PVParams) Validate() error {
	if !(p.CapacityKW > 0) {
		return invalid("pv.capacity_kw", "must be > 0")
	}
	if !(p.ModuleRatingKW > 0) {
		return invalid("pv.module_rating_kw", "must be > 0")
	}
	if p.DeratingFactor <= 0 || p.DeratingFactor > 1 {
		return invalid("pv.derating_factor", "must be in (0, 1]")
	}
	if !(p.FailureRate > 0) {
		return invalid("pv.failure_rate", "must be > 0")
	}
	if !(p.RepairRate > 0) {
		return invalid("pv.repair_rate", "must be > 0")
	}
	return nil
}

// Inputs is everything one customer evaluation consumes. Profiles hold one
// value per hour of a typical year and are tiled across the horizon.
type Inputs struct {
	Configuration Configuration

	// LoadKW is the hourly customer demand.
	LoadKW []float64
	// Irradiance is hourly GHI normalised to kW/m² (1.0 = standard test conditions).
	Irradiance []float64

	LoadPoint LoadPointParams
	PV        PVParams
	Battery   BatteryParams
}

// Validate checks only what the configuration uses; the load point is always
// required because the no-DER baseline depends on it.
func (in *Inputs) Validate() error {
	if in == nil {
		return invalid("inputs", "nil")
	}
	if !in.Configuration.Valid() {
		return invalid("configuration", "unknown value %d", int(in.Configuration))
	}
	if err := checkProfile("profiles.load", in.LoadKW); err != nil {
		return err
	}
	if err := in.LoadPoint.Validate(); err != nil {
		return err
	}
	if in.Configuration.HasPV() {
		if err := checkProfile("profiles.irradiance", in.Irradiance); err != nil {
			return err
		}
		for h, v := range in.Irradiance {
			if v < 0 {
				return invalid("profiles.irradiance", "negative value %g at hour %d", v, h)
			}
		}
		if err := in.PV.Validate(); err != nil {
			return err
		}
	}
	if in.Configuration.HasBattery() {
		if err := in.Battery.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func checkProfile(field string, p []float64) error {
	if len(p) != HoursPerYear {
		return invalid(field, "expected %d hourly values, got %d", HoursPerYear, len(p))
	}
	for h, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(field, "non-finite value at hour %d", h)
		}
	}
	return nil
}
