package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"der-reliability/internal/engine"
	"der-reliability/internal/model"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteLedger(f, ledger)
}

func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"hour",
		"load_kw",
		"pv_kw",
		"grid_up",
		"battery_up",
		"action",
		"soc_start",
		"soc_end",
		"net_load_kw",
		"operating",
		"energy_from_grid_kwh",
		"energy_not_served_kwh",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtFloat(r.LoadKW),
			fmtFloat(r.SolarKW),
			strconv.FormatBool(r.GridUp),
			strconv.FormatBool(r.BatteryUp),
			string(r.Action),
			fmtFloat(r.SOCStart),
			fmtFloat(r.SOCEnd),
			fmtFloat(r.NetLoadKW),
			strconv.FormatBool(r.Operating),
			fmtFloat(r.EnergyFromGridKWh),
			fmtFloat(r.EnergyNotServedKWh),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteIndicesCSV writes one row per evaluated configuration.
func WriteIndicesCSV(out io.Writer, results []*engine.Result) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := append([]string{"configuration", "years", "rounds", "converged", "cov_max"}, model.IndexKeys...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Configuration.String(),
			strconv.Itoa(r.Years),
			strconv.Itoa(r.Rounds),
			strconv.FormatBool(r.Converged),
			fmtFloat(r.Convergence.Max),
		}
		m := r.Map()
		for _, k := range model.IndexKeys {
			row = append(row, fmtFloat(m[k]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
