package history

import (
	"fmt"
	"math"
)

// sojournHours draws an exponential sojourn and rounds it up to whole hours,
// so every sojourn lasts at least one hour. Draws beyond limit are returned
// as limit; the caller only needs to know the sojourn outlasts the horizon.
func sojournHours(rng Source, rate float64, limit int) int {
	h := math.Ceil(-math.Log(uniform(rng)) / rate)
	if h >= float64(limit) {
		return limit
	}
	if h < 1 {
		return 1
	}
	return int(h)
}

// GenerateAvailability returns an up/down history of exactly horizon hours
// from alternating exponential up and down sojourns. Rates are per hour.
// The component starts up; true means up.
func GenerateAvailability(failureRate, repairRate float64, horizon int, rng Source) ([]bool, error) {
	if !(failureRate > 0) || !(repairRate > 0) {
		return nil, fmt.Errorf("availability: rates must be > 0 (failure=%g repair=%g)", failureRate, repairRate)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("availability: horizon must be > 0, got %d", horizon)
	}
	if rng == nil {
		return nil, fmt.Errorf("availability: nil random source")
	}

	up := make([]bool, horizon)
	for i := range up {
		up[i] = true
	}

	t := 0
	for t < horizon {
		t += sojournHours(rng, failureRate, horizon+1)
		down := sojournHours(rng, repairRate, horizon+1)
		if t < horizon {
			// the last outage may run past the horizon
			end := min(t+down, horizon)
			for i := t; i < end; i++ {
				up[i] = false
			}
		}
		t += down
	}
	return up, nil
}
