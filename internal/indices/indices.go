// Package indices reduces simulated hourly histories to yearly reliability
// samples.
package indices

import (
	"fmt"

	"der-reliability/internal/model"
	"der-reliability/internal/netload"
)

// Year extracts the DER-aware sample from one year of hourly results.
// Interruptions are operating-to-down transitions inside the slice; an outage
// that began in the previous year is not counted again.
// Energy is the part of net load DER did not cover, split by whether the
// residence was supplied (grid) or not (not served). Net load is read at the
// same watt resolution as the operating decision.
func Year(operating []bool, netLoadKW []float64) model.YearIndices {
	var y model.YearIndices
	for h, up := range operating {
		if h > 0 && operating[h-1] && !up {
			y.Interruptions++
		}
		unserved := max(model.RoundKW(netLoadKW[h]), 0)
		if up {
			y.EnergyFromGridKWh += unserved
		} else {
			y.DurationHours++
			y.EnergyNotServedKWh += unserved
		}
	}
	return y
}

// Baseline is the same sample for a customer without DER on the same load
// point: the residence is down exactly when the grid is. Load is read at the
// resolution Year uses, so a no-DER composition reproduces it exactly.
func Baseline(gridUp []bool, loadKW []float64) model.YearIndices {
	var y model.YearIndices
	for h, up := range gridUp {
		if h > 0 && gridUp[h-1] && !up {
			y.Interruptions++
		}
		load := max(model.RoundKW(loadKW[h%len(loadKW)]), 0)
		if up {
			y.EnergyFromGridKWh += load
		} else {
			y.DurationHours++
			y.EnergyNotServedKWh += load
		}
	}
	return y
}

// Summarize splits a composed batch into per-year summaries.
func Summarize(s *netload.Series, grid []bool, loadKW []float64, years int) ([]model.YearlySummary, error) {
	horizon := years * model.HoursPerYear
	if years <= 0 {
		return nil, fmt.Errorf("summarize: years must be > 0, got %d", years)
	}
	if s == nil || len(s.Operating) != horizon || len(s.NetLoadKW) != horizon {
		return nil, fmt.Errorf("summarize: series does not cover %d years", years)
	}
	if len(grid) != horizon {
		return nil, fmt.Errorf("summarize: grid history has %d hours, want %d", len(grid), horizon)
	}
	if len(loadKW) != model.HoursPerYear {
		return nil, fmt.Errorf("summarize: load profile has %d values, want %d", len(loadKW), model.HoursPerYear)
	}

	out := make([]model.YearlySummary, years)
	for i := range out {
		lo, hi := i*model.HoursPerYear, (i+1)*model.HoursPerYear
		out[i] = model.YearlySummary{
			DER:   Year(s.Operating[lo:hi], s.NetLoadKW[lo:hi]),
			NoDER: Baseline(grid[lo:hi], loadKW),
		}
	}
	return out, nil
}
