// Package report writes evaluation results and hourly ledgers.
package report

import (
	"math"

	"der-reliability/internal/model"
	"der-reliability/internal/netload"
)

// LedgerRow is one hour of a traced history.
// This is the primary artifact for "what happened" in a simulated year.
type LedgerRow struct {
	Index int

	LoadKW    float64
	SolarKW   float64
	GridUp    bool
	BatteryUp bool

	Action   model.Action
	SOCStart float64
	SOCEnd   float64

	NetLoadKW float64
	Operating bool

	EnergyFromGridKWh  float64
	EnergyNotServedKWh float64
}

// LedgerFromTrace attributes each hour's positive net load to the grid or to
// energy not served, the same way the indices do.
func LedgerFromTrace(rows []netload.TraceRow) []LedgerRow {
	out := make([]LedgerRow, len(rows))
	for i, r := range rows {
		l := LedgerRow{
			Index:     r.Hour,
			LoadKW:    r.LoadKW,
			SolarKW:   r.SolarKW,
			GridUp:    r.GridUp,
			BatteryUp: r.BatteryUp,
			Action:    r.Result.Action,
			SOCStart:  r.Result.SOCStart,
			SOCEnd:    r.Result.SOCEnd,
			NetLoadKW: r.Result.NetLoadKW,
			Operating: r.Result.Operating,
		}
		unserved := math.Max(r.Result.NetLoadKW, 0)
		if r.Result.Operating {
			l.EnergyFromGridKWh = unserved
		} else {
			l.EnergyNotServedKWh = unserved
		}
		out[i] = l
	}
	return out
}
