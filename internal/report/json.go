package report

import (
	"encoding/json"
	"io"
	"math"

	"der-reliability/internal/engine"
	"der-reliability/internal/model"
)

// CoV carries the convergence figures. An index that has not converged yet
// may have an infinite CoV, which is reported as null.
type CoV struct {
	AIF  *float64 `json:"AIF"`
	AID  *float64 `json:"AID"`
	AENS *float64 `json:"AENS,omitempty"`
	Max  *float64 `json:"max"`
}

// Summary is the JSON form of one evaluation.
type Summary struct {
	Configuration model.Configuration `json:"configuration"`
	Indices       model.Indices       `json:"indices"`
	Years         int                 `json:"years"`
	Rounds        int                 `json:"rounds"`
	Converged     bool                `json:"converged"`
	CoV           CoV                 `json:"cov"`
	Seed          int64               `json:"seed"`
	ElapsedMS     int64               `json:"elapsed_ms"`
}

func Summarize(r *engine.Result) Summary {
	c := CoV{
		AIF: finite(r.Convergence.AIF),
		AID: finite(r.Convergence.AID),
		Max: finite(r.Convergence.Max),
	}
	if r.Configuration == model.PVBESSStandalone {
		c.AENS = finite(r.Convergence.AENS)
	}
	return Summary{
		Configuration: r.Configuration,
		Indices:       r.Indices,
		Years:         r.Years,
		Rounds:        r.Rounds,
		Converged:     r.Converged,
		CoV:           c,
		Seed:          r.Seed,
		ElapsedMS:     r.Elapsed.Milliseconds(),
	}
}

func finite(x float64) *float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return nil
	}
	return &x
}

// WriteJSON writes an indented JSON array with one summary per result.
func WriteJSON(w io.Writer, results []*engine.Result) error {
	out := make([]Summary, len(results))
	for i, r := range results {
		out[i] = Summarize(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
