package model

// Action is a human-friendly operating mode for an hour of battery dispatch.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
	ActionOffline     Action = "OFFLINE"
)

func ActionFromSOC(start, end float64) Action {
	switch {
	case end > start:
		return ActionCharging
	case end < start:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
