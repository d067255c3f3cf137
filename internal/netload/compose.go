package netload

import (
	"fmt"

	"der-reliability/internal/history"
	"der-reliability/internal/model"
)

// Series is the hourly result of composing one batch horizon.
type Series struct {
	NetLoadKW []float64
	Operating []bool
}

// TraceRow is one hour of a composed history, kept for ledger output.
type TraceRow struct {
	Hour      int
	LoadKW    float64
	SolarKW   float64
	GridUp    bool
	BatteryUp bool
	Result    Hour
}

// Compose synthesises the solar and battery histories for horizon hours and
// applies the configuration's per-hour rule. grid is the load point history
// and must cover the horizon unless the configuration is standalone.
func Compose(cfg model.Configuration, in *model.Inputs, grid []bool, horizon int, rng history.Source) (*Series, error) {
	s := &Series{
		NetLoadKW: make([]float64, horizon),
		Operating: make([]bool, horizon),
	}
	err := compose(cfg, in, grid, horizon, rng, func(h int, _ HourState, r Hour) {
		s.NetLoadKW[h] = r.NetLoadKW
		s.Operating[h] = r.Operating
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ComposeTrace is Compose keeping every hour's inputs and battery action.
func ComposeTrace(cfg model.Configuration, in *model.Inputs, grid []bool, horizon int, rng history.Source) ([]TraceRow, error) {
	rows := make([]TraceRow, 0, horizon)
	err := compose(cfg, in, grid, horizon, rng, func(h int, st HourState, r Hour) {
		rows = append(rows, TraceRow{
			Hour:      h,
			LoadKW:    st.LoadKW,
			SolarKW:   st.SolarKW,
			GridUp:    st.GridUp,
			BatteryUp: st.BatteryUp,
			Result:    r,
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func compose(cfg model.Configuration, in *model.Inputs, grid []bool, horizon int, rng history.Source,
	visit func(h int, s HourState, r Hour)) error {
	if horizon <= 0 {
		return fmt.Errorf("compose: horizon must be > 0, got %d", horizon)
	}
	if in == nil {
		return fmt.Errorf("compose: nil inputs")
	}
	checked := *in
	checked.Configuration = cfg
	if err := checked.Validate(); err != nil {
		return err
	}
	if cfg.GridConnected() && len(grid) != horizon {
		return fmt.Errorf("compose: grid history has %d hours, want %d", len(grid), horizon)
	}
	comp, err := For(cfg)
	if err != nil {
		return err
	}

	var solar []float64
	if cfg.HasPV() {
		arr := history.ModuleArray{
			Count:       in.PV.ModuleCount(),
			RatingKW:    in.PV.ModuleRatingKW,
			FailureRate: in.PV.FailureRate,
			RepairRate:  in.PV.RepairRate,
		}
		perModule := history.PerModuleProfile(in.Irradiance, in.PV.ModuleRatingKW, in.PV.DeratingFactor)
		solar, err = history.GenerateSolarOutput(horizon, arr, perModule, rng)
		if err != nil {
			return fmt.Errorf("compose: %w", err)
		}
	}

	var (
		batt      *model.Battery
		batteryUp []bool
	)
	if cfg.HasBattery() {
		batt, err = model.NewBattery(in.Battery)
		if err != nil {
			return err
		}
		batteryUp, err = history.GenerateAvailability(in.Battery.FailureRate, in.Battery.RepairRate, horizon, rng)
		if err != nil {
			return fmt.Errorf("compose: battery: %w", err)
		}
	}

	for h := 0; h < horizon; h++ {
		st := HourState{LoadKW: in.LoadKW[h%model.HoursPerYear]}
		if solar != nil {
			st.SolarKW = solar[h]
		}
		if batteryUp != nil {
			st.BatteryUp = batteryUp[h]
		}
		if cfg.GridConnected() {
			st.GridUp = grid[h]
		}
		visit(h, st, comp.Hour(st, batt))
	}
	return nil
}
