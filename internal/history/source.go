// Package history synthesises hourly operating histories for the grid load
// point, the battery and the solar array.
package history

import "math/rand"

// Source is the uniform random stream every generator draws from.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns an independent stream for batch index within a run
// seeded by seed. Streams for different indexes do not overlap in practice.
func NewSource(seed int64, index int) *rand.Rand {
	return rand.New(rand.NewSource(int64(splitmix64(uint64(seed) + uint64(index)*0x9e3779b97f4a7c15))))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// uniform draws from (0,1); rand.Float64 may return exactly 0.
func uniform(rng Source) float64 {
	for {
		if u := rng.Float64(); u > 0 {
			return u
		}
	}
}
