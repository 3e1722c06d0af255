package report

import (
	"time"

	"github.com/ngmaloney/astroscope/internal/astro"
	"github.com/ngmaloney/astroscope/internal/visibility"
)

// Night is one object's track over a night grid, the data behind the
// detail panel and its chart.
type Night struct {
	Midnight time.Time
	Grid     visibility.TimeGrid
	Alts     []float64
	Azs      []float64
	SunAlts  []float64

	Window  visibility.Window
	Visible bool // false when no grid point qualifies
}

// NightOptions selects the grid and window rules for ComputeNight.
type NightOptions struct {
	Grid       visibility.TimeGrid // DenseGrid when nil
	Thresholds visibility.Thresholds
	Policy     visibility.Policy
}

// ComputeNight tracks pos and the Sun over the night centered on midnight.
// Unlike the report it keeps windows of any duration, including zero.
func ComputeNight(eph astro.Ephemeris, pos astro.Equatorial, obs astro.Observer, midnight time.Time, opts NightOptions) Night {
	grid := opts.Grid
	if grid == nil {
		grid = visibility.DenseGrid()
	}
	times := grid.Times(midnight)

	n := Night{
		Midnight: midnight,
		Grid:     grid,
		SunAlts:  astro.SunTrack(eph, times, obs),
	}
	n.Alts, n.Azs = astro.Track(eph, pos, times, obs)
	n.Window, n.Visible = visibility.ComputeWindowWithPolicy(n.Alts, n.SunAlts, grid, opts.Thresholds, opts.Policy)
	return n
}

// Caption is the one-line verdict shown under the chart.
func (n Night) Caption() string {
	if !n.Visible {
		return "This object cannot be observed tonight."
	}
	return "Best observed: " + n.Window.String()
}
