// Package netload turns availability and solar histories into the hourly net
// load a customer presents and whether the residence is supplied.
package netload

import (
	"fmt"

	"der-reliability/internal/model"
)

// HourState is what a composer sees for one hour.
type HourState struct {
	LoadKW    float64
	SolarKW   float64
	GridUp    bool
	BatteryUp bool
}

// Hour is the outcome of one hour.
type Hour struct {
	NetLoadKW float64
	Operating bool
	Action    model.Action
	SOCStart  float64
	SOCEnd    float64
}

// Composer applies the per-hour rule of one customer configuration. The set
// of composers is closed: only this package can implement it.
type Composer interface {
	Configuration() model.Configuration
	Hour(s HourState, batt *model.Battery) Hour
	sealed()
}

// For returns the composer for c.
func For(c model.Configuration) (Composer, error) {
	switch c {
	case model.NoDER:
		return noDER{}, nil
	case model.PVOnly:
		return pvOnly{}, nil
	case model.PVBESSGridConnected:
		return pvBESSGrid{}, nil
	case model.PVBESSStandalone:
		return pvBESSStandalone{}, nil
	default:
		return nil, fmt.Errorf("netload: no composer for %s", c)
	}
}

// served reports whether DER alone covers the hour. Net load is compared at
// watt resolution so dispatch rounding does not register as an outage.
func served(netLoad float64) bool {
	return model.RoundKW(netLoad) <= 0
}

func idle(net float64, operating bool, batt *model.Battery) Hour {
	h := Hour{NetLoadKW: net, Operating: operating, Action: model.ActionOffline}
	if batt != nil {
		h.SOCStart, h.SOCEnd = batt.State.SOC, batt.State.SOC
	}
	return h
}

func dispatch(s HourState, batt *model.Battery) (Hour, float64) {
	r := batt.Dispatch(s.LoadKW, s.SolarKW)
	return Hour{NetLoadKW: r.NetLoadKW, Action: r.Action, SOCStart: r.SOCStart, SOCEnd: r.SOCEnd}, r.NetLoadKW
}

type noDER struct{}

func (noDER) Configuration() model.Configuration { return model.NoDER }
func (noDER) sealed()                            {}

func (noDER) Hour(s HourState, _ *model.Battery) Hour {
	return idle(s.LoadKW, served(s.LoadKW) || s.GridUp, nil)
}

// pvOnly credits solar only while the load point is up; an islanded array
// without storage cannot carry the residence.
type pvOnly struct{}

func (pvOnly) Configuration() model.Configuration { return model.PVOnly }
func (pvOnly) sealed()                            {}

func (pvOnly) Hour(s HourState, _ *model.Battery) Hour {
	net := s.LoadKW
	if s.GridUp {
		net = s.LoadKW - s.SolarKW
	}
	return idle(net, served(net) || s.GridUp, nil)
}

type pvBESSGrid struct{}

func (pvBESSGrid) Configuration() model.Configuration { return model.PVBESSGridConnected }
func (pvBESSGrid) sealed()                            {}

func (pvBESSGrid) Hour(s HourState, batt *model.Battery) Hour {
	switch {
	case s.BatteryUp:
		h, net := dispatch(s, batt)
		h.Operating = served(net) || s.GridUp
		return h
	case s.GridUp:
		return idle(s.LoadKW-s.SolarKW, true, batt)
	default:
		return idle(s.LoadKW, served(s.LoadKW), batt)
	}
}

type pvBESSStandalone struct{}

func (pvBESSStandalone) Configuration() model.Configuration { return model.PVBESSStandalone }
func (pvBESSStandalone) sealed()                            {}

func (pvBESSStandalone) Hour(s HourState, batt *model.Battery) Hour {
	if s.BatteryUp {
		h, net := dispatch(s, batt)
		h.Operating = served(net)
		return h
	}
	return idle(s.LoadKW, served(s.LoadKW), batt)
}
