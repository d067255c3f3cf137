package model

import "math"

// BatteryParams defines the storage system behind the customer meter.
// Units:
// - CapacityKWh: kWh
// - PowerLimitKW: kW (charge and discharge limit per hour)
// - SOC: fraction 0..1
// - FailureRate, RepairRate: per hour
type BatteryParams struct {
	CapacityKWh  float64
	PowerLimitKW float64
	MinSOC       float64
	InitialSOC   float64
	FailureRate  float64
	RepairRate   float64
}

// BatteryState captures mutable state.
type BatteryState struct {
	// SOC is the state of charge as a fraction [MinSOC,1].
	SOC float64
}

// Battery is a convenience wrapper bundling params + state.
type Battery struct {
	Params BatteryParams
	State  BatteryState
}

func NewBattery(params BatteryParams) (*Battery, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Battery{
		Params: params,
		State:  BatteryState{SOC: params.InitialSOC},
	}, nil
}

func (p BatteryParams) Validate() error {
	if !(p.CapacityKWh > 0) {
		return invalid("battery.capacity_kwh", "must be > 0")
	}
	if !(p.PowerLimitKW > 0) {
		return invalid("battery.power_limit_kw", "must be > 0")
	}
	if p.MinSOC < 0 || p.MinSOC >= 1 {
		return invalid("battery.soc_min", "must be in [0, 1)")
	}
	if p.InitialSOC < p.MinSOC || p.InitialSOC > 1 {
		return invalid("battery.initial_soc", "must be within [soc_min, 1]")
	}
	if !(p.FailureRate > 0) {
		return invalid("battery.failure_rate", "must be > 0")
	}
	if !(p.RepairRate > 0) {
		return invalid("battery.repair_rate", "must be > 0")
	}
	return nil
}

// IntervalResult captures what happened in one hour.
type IntervalResult struct {
	NetLoadKW float64
	SOCStart  float64
	SOCEnd    float64
	Action    Action
}

// Dispatch runs Step against the battery's own state and advances it.
func (b *Battery) Dispatch(loadKW, solarKW float64) IntervalResult {
	res := IntervalResult{SOCStart: b.State.SOC}
	res.NetLoadKW, b.State.SOC = Step(b.Params.PowerLimitKW, b.State.SOC, b.Params.MinSOC,
		b.Params.CapacityKWh, loadKW, solarKW)
	res.SOCEnd = b.State.SOC
	res.Action = ActionFromSOC(res.SOCStart, res.SOCEnd)
	return res
}

// Reset returns the state of charge to the configured initial value.
func (b *Battery) Reset() { b.State.SOC = b.Params.InitialSOC }

// Step decides one hour of battery operation. Solar surplus charges the
// battery up to the power limit and the remaining headroom; a deficit is
// covered by discharge down to socMin. The returned net load may be negative
// when surplus solar cannot be stored.
//
// Step holds no state: the caller threads soc from one hour to the next.
func Step(powerLimit, soc, socMin, capacity, load, solar float64) (netLoad, newSOC float64) {
	surplus := solar - load

	if surplus > 0 {
		charge := math.Min(surplus, powerLimit)
		headroom := (1 - soc) * capacity
		if headroom > charge {
			newSOC = soc + charge/capacity
			netLoad = load - (solar - charge)
		} else {
			newSOC = 1
			netLoad = load - (solar - headroom)
		}
	} else {
		discharge := math.Min(-surplus, powerLimit)
		available := (soc - socMin) * capacity
		if available > discharge {
			newSOC = soc - discharge/capacity
			netLoad = load - discharge - solar
		} else {
			newSOC = socMin
			netLoad = load - available - solar
		}
	}
	return netLoad, clampSOC(newSOC, socMin)
}

// clampSOC absorbs float rounding at the bounds.
func clampSOC(x, lo float64) float64 {
	if x < lo {
		return lo
	}
	if x > 1 {
		return 1
	}
	return x
}
