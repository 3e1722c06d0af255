// Package visibility decides when a deep-sky object is worth observing on a
// given night: above a minimum altitude, below a maximum altitude, and with
// the sun below the horizon.
//
// Everything here is a pure function of its inputs. Altitude series come from
// an ephemeris (see package astro); this package only classifies them.
package visibility

import "time"

const (
	// GridSpan is the half-width, in hours, of the nightly grid around local midnight.
	GridSpan = 12.0

	// SparsePoints is the grid resolution used by the batch report.
	SparsePoints = 24

	// DensePoints is the grid resolution used for charting a single object.
	DensePoints = 1000
)

// TimeGrid is an ordered sequence of signed hour offsets relative to local midnight.
type TimeGrid []float64

// Linspace returns n evenly spaced offsets from start to stop inclusive.
// n < 2 yields a single point at start (or nothing for n <= 0).
func Linspace(start, stop float64, n int) TimeGrid {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return TimeGrid{start}
	}

	g := make(TimeGrid, n)
	step := (stop - start) / float64(n-1)
	for i := range g {
		g[i] = start + float64(i)*step
	}
	// Pin the end point so the grid stays symmetric despite rounding.
	g[n-1] = stop
	return g
}

// SparseGrid is the coarse ±12h grid used when scanning a whole catalog.
func SparseGrid() TimeGrid {
	return Linspace(-GridSpan, GridSpan, SparsePoints)
}

// DenseGrid is the fine ±12h grid used for plotting.
func DenseGrid() TimeGrid {
	return Linspace(-GridSpan, GridSpan, DensePoints)
}

// Times converts the grid into instants relative to midnight.
func (g TimeGrid) Times(midnight time.Time) []time.Time {
	out := make([]time.Time, len(g))
	for i, h := range g {
		out[i] = midnight.Add(time.Duration(h * float64(time.Hour)))
	}
	return out
}

// Increasing reports whether the grid is strictly increasing.
func (g TimeGrid) Increasing() bool {
	for i := 1; i < len(g); i++ {
		if g[i] <= g[i-1] {
			return false
		}
	}
	return true
}
