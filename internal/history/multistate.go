package history

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ModuleArray is a solar array of identical modules that fail and are
// repaired independently. Rates are per module per hour.
type ModuleArray struct {
	Count       int
	RatingKW    float64
	FailureRate float64
	RepairRate  float64
}

func (a ModuleArray) validate() error {
	if a.Count < 1 {
		return fmt.Errorf("module array: count must be >= 1, got %d", a.Count)
	}
	if !(a.RatingKW > 0) {
		return fmt.Errorf("module array: rating must be > 0, got %g", a.RatingKW)
	}
	if !(a.FailureRate > 0) || !(a.RepairRate > 0) {
		return fmt.Errorf("module array: rates must be > 0 (failure=%g repair=%g)", a.FailureRate, a.RepairRate)
	}
	return nil
}

// Sojourn is one stay of the array in a capacity state.
type Sojourn struct {
	Start  int
	Hours  int
	Failed int
}

// State is the 1-based birth-death state: state i has i-1 failed modules.
func (s Sojourn) State() int { return s.Failed + 1 }

// ModuleChain walks the birth-death chain over the number of failed modules,
// starting with every module working. Only adjacent states are reachable.
type ModuleChain struct {
	n           int
	failureRate float64
	repairRate  float64
	failed      int
	t           int
}

func NewModuleChain(a ModuleArray) *ModuleChain {
	return &ModuleChain{n: a.Count, failureRate: a.FailureRate, repairRate: a.RepairRate}
}

// Next returns the current sojourn and moves the chain to its next state.
// Sojourn lengths are capped at limit hours.
func (c *ModuleChain) Next(rng Source, limit int) Sojourn {
	repairs := float64(c.failed) * c.repairRate
	failures := float64(c.n-c.failed) * c.failureRate
	pUp := repairs / (repairs + failures)

	s := Sojourn{Start: c.t, Failed: c.failed}
	if uniform(rng) > pUp {
		s.Hours = sojournHours(rng, failures, limit)
		c.failed++
	} else {
		s.Hours = sojournHours(rng, repairs, limit)
		c.failed--
	}
	c.t += s.Hours
	return s
}

// PerModuleProfile converts an hourly irradiance profile into the output of
// a single module, derated and capped at the module rating.
func PerModuleProfile(irradiance []float64, ratingKW, derating float64) []float64 {
	out := floats.ScaleTo(make([]float64, len(irradiance)), ratingKW*derating, irradiance)
	for i, v := range out {
		if v > ratingKW {
			out[i] = ratingKW
		}
	}
	return out
}

// GenerateSolarOutput returns the array output for horizon hours. During each
// sojourn the working modules each produce perModule[hour mod len(perModule)],
// never more than the module rating.
func GenerateSolarOutput(horizon int, arr ModuleArray, perModule []float64, rng Source) ([]float64, error) {
	if err := arr.validate(); err != nil {
		return nil, err
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("solar output: horizon must be > 0, got %d", horizon)
	}
	if len(perModule) == 0 {
		return nil, fmt.Errorf("solar output: empty per-module profile")
	}
	if rng == nil {
		return nil, fmt.Errorf("solar output: nil random source")
	}

	out := make([]float64, horizon)
	chain := NewModuleChain(arr)
	period := len(perModule)
	for t := 0; t < horizon; {
		s := chain.Next(rng, horizon+1)
		working := float64(arr.Count - s.Failed)
		end := min(s.Start+s.Hours, horizon)
		for h := s.Start; h < end; h++ {
			p := perModule[h%period]
			if p > arr.RatingKW {
				p = arr.RatingKW
			}
			out[h] = working * p
		}
		t = s.Start + s.Hours
	}
	return out, nil
}
