package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"der-reliability/internal/model"
)

// Moments is a streaming summary of a sample: count, mean and the sum of
// squared deviations from the mean.
type Moments struct {
	N    int
	Mean float64
	M2   float64
}

// MomentsOf summarises x in one pass.
func MomentsOf(x []float64) Moments {
	if len(x) == 0 {
		return Moments{}
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	return Moments{N: len(x), Mean: mean, M2: variance * float64(len(x))}
}

// Merge folds o into m with the pairwise update of Chan et al.; the result
// does not depend on merge order beyond float rounding.
func (m *Moments) Merge(o Moments) {
	if o.N == 0 {
		return
	}
	if m.N == 0 {
		*m = o
		return
	}
	n := m.N + o.N
	delta := o.Mean - m.Mean
	m.Mean += delta * float64(o.N) / float64(n)
	m.M2 += o.M2 + delta*delta*float64(m.N)*float64(o.N)/float64(n)
	m.N = n
}

// PopVariance is the population variance of the merged sample.
func (m Moments) PopVariance() float64 {
	if m.N == 0 {
		return 0
	}
	return m.M2 / float64(m.N)
}

// CoV is the standard error of the mean relative to the mean.
//
// A zero mean means no event has been observed yet. Samples are non-negative,
// so the estimate is exact once enough years back it up: below minYears the
// index reports +Inf (not converged), from minYears on it reports 0.
func (m Moments) CoV(minYears int) float64 {
	if m.N == 0 {
		return math.Inf(1)
	}
	if m.Mean == 0 {
		if m.N < minYears {
			return math.Inf(1)
		}
		return 0
	}
	return math.Sqrt(m.PopVariance()/float64(m.N)) / m.Mean
}

type index int

const (
	aif index = iota
	aid
	aens
	aefg
	aifNoDER
	aidNoDER
	aensNoDER
	aefgNoDER
	numIndices
)

// Accumulator collects yearly samples across batches without keeping them.
type Accumulator struct {
	m [numIndices]Moments
}

// Add summarises one batch of yearly samples.
func (a *Accumulator) Add(years []model.YearlySummary) {
	var cols [numIndices][]float64
	for i := range cols {
		cols[i] = make([]float64, len(years))
	}
	for y, s := range years {
		cols[aif][y] = float64(s.DER.Interruptions)
		cols[aid][y] = float64(s.DER.DurationHours)
		cols[aens][y] = s.DER.EnergyNotServedKWh
		cols[aefg][y] = s.DER.EnergyFromGridKWh
		cols[aifNoDER][y] = float64(s.NoDER.Interruptions)
		cols[aidNoDER][y] = float64(s.NoDER.DurationHours)
		cols[aensNoDER][y] = s.NoDER.EnergyNotServedKWh
		cols[aefgNoDER][y] = s.NoDER.EnergyFromGridKWh
	}
	for i := range cols {
		a.m[i].Merge(MomentsOf(cols[i]))
	}
}

// Merge folds another accumulator into a.
func (a *Accumulator) Merge(o *Accumulator) {
	if o == nil {
		return
	}
	for i := range a.m {
		a.m[i].Merge(o.m[i])
	}
}

// Years is the number of simulated years folded in so far.
func (a *Accumulator) Years() int { return a.m[aif].N }

// Means returns the average of every index over all years.
func (a *Accumulator) Means() model.Indices {
	return model.Indices{
		AIF:       a.m[aif].Mean,
		AID:       a.m[aid].Mean,
		AENS:      a.m[aens].Mean,
		AEFG:      a.m[aefg].Mean,
		AIFNoDER:  a.m[aifNoDER].Mean,
		AIDNoDER:  a.m[aidNoDER].Mean,
		AENSNoDER: a.m[aensNoDER].Mean,
		AEFGNoDER: a.m[aefgNoDER].Mean,
	}
}

// Convergence is the coefficient of variation of the indices that decide
// when to stop.
type Convergence struct {
	AIF  float64
	AID  float64
	AENS float64
	Max  float64
}

// Convergence evaluates the stopping indices for cfg. Standalone customers
// also wait for energy not served to settle.
func (a *Accumulator) Convergence(cfg model.Configuration, minYears int) Convergence {
	c := Convergence{
		AIF: a.m[aif].CoV(minYears),
		AID: a.m[aid].CoV(minYears),
	}
	c.Max = math.Max(c.AIF, c.AID)
	if cfg == model.PVBESSStandalone {
		c.AENS = a.m[aens].CoV(minYears)
		c.Max = math.Max(c.Max, c.AENS)
	}
	return c
}
