package model

// YearIndices are the reliability samples extracted from one simulated year.
type YearIndices struct {
	Interruptions      int
	DurationHours      int
	EnergyNotServedKWh float64
	EnergyFromGridKWh  float64
}

// YearlySummary pairs the DER-aware sample with the no-DER baseline drawn
// from the same load point history.
type YearlySummary struct {
	DER   YearIndices
	NoDER YearIndices
}

// Indices are the converged means over every simulated year.
//   - AIF: interruptions/year
//   - AID: hours of outage/year
//   - AENS: kWh not served/year
//   - AEFG: kWh drawn from the grid/year
type Indices struct {
	AIF  float64 `json:"AIF"`
	AID  float64 `json:"AID"`
	AENS float64 `json:"AENS"`
	AEFG float64 `json:"AEFG"`

	AIFNoDER  float64 `json:"AIF_noder"`
	AIDNoDER  float64 `json:"AID_noder"`
	AENSNoDER float64 `json:"AENS_noder"`
	AEFGNoDER float64 `json:"AEFG_noder"`
}

// Map returns the indices keyed the way reports and API clients expect.
func (i Indices) Map() map[string]float64 {
	return map[string]float64{
		"AIF":        i.AIF,
		"AID":        i.AID,
		"AENS":       i.AENS,
		"AEFG":       i.AEFG,
		"AIF_noder":  i.AIFNoDER,
		"AID_noder":  i.AIDNoDER,
		"AENS_noder": i.AENSNoDER,
		"AEFG_noder": i.AEFGNoDER,
	}
}

// IndexKeys is the stable ordering of Map keys for tabular output.
var IndexKeys = []string{"AIF", "AID", "AENS", "AEFG", "AIF_noder", "AID_noder", "AENS_noder", "AEFG_noder"}
