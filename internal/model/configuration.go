package model

import (
	"fmt"
	"strings"
)

// Configuration identifies which behind-the-meter resources a customer has.
// Keep the text values stable; they appear in YAML configs, JSON and reports.
type Configuration int

const (
	NoDER Configuration = iota
	PVOnly
	PVBESSGridConnected
	PVBESSStandalone
)

// Configurations lists every variant in declaration order.
var Configurations = []Configuration{NoDER, PVOnly, PVBESSGridConnected, PVBESSStandalone}

func (c Configuration) String() string {
	switch c {
	case NoDER:
		return "no_der"
	case PVOnly:
		return "pv_only"
	case PVBESSGridConnected:
		return "pv_bess_grid_connected"
	case PVBESSStandalone:
		return "pv_bess_standalone"
	default:
		return fmt.Sprintf("configuration(%d)", int(c))
	}
}

// HasPV reports whether the configuration includes a solar array.
func (c Configuration) HasPV() bool { return c != NoDER }

// HasBattery reports whether the configuration includes battery storage.
func (c Configuration) HasBattery() bool {
	return c == PVBESSGridConnected || c == PVBESSStandalone
}

// GridConnected reports whether the load point can serve the residence.
func (c Configuration) GridConnected() bool { return c != PVBESSStandalone }

func (c Configuration) Valid() bool {
	return c >= NoDER && c <= PVBESSStandalone
}

// ParseConfiguration accepts the canonical names plus the short forms used by
// older configs ("pv", "pv_bess").
func ParseConfiguration(s string) (Configuration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no_der", "noder", "none":
		return NoDER, nil
	case "pv_only", "pv":
		return PVOnly, nil
	case "pv_bess_grid_connected", "pv_bess":
		return PVBESSGridConnected, nil
	case "pv_bess_standalone":
		return PVBESSStandalone, nil
	default:
		return 0, &ConfigError{Field: "configuration", Reason: fmt.Sprintf("unknown configuration %q", s)}
	}
}

func (c Configuration) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid configuration %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Configuration) UnmarshalText(text []byte) error {
	v, err := ParseConfiguration(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
