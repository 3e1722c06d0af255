package visibility

import (
	"fmt"
	"math"
)

// Default viewing band, in degrees.
const (
	DefaultMinAltitude    = 30.0
	DefaultMaxAltitude    = 70.0
	DefaultSunMaxAltitude = 0.0

	// AstronomicalNightAltitude is the sun altitude below which the sky is fully dark.
	// Only used for chart shading.
	AstronomicalNightAltitude = -18.0
)

// Thresholds bound the "good viewing" band.
type Thresholds struct {
	MinAlt    float64 // object altitude lower bound (inclusive)
	MaxAlt    float64 // object altitude upper bound (inclusive)
	SunMaxAlt float64 // sun must be at or below this altitude
}

// DefaultThresholds returns the 30°-70° band with the sun below the horizon.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAlt:    DefaultMinAltitude,
		MaxAlt:    DefaultMaxAltitude,
		SunMaxAlt: DefaultSunMaxAltitude,
	}
}

// Policy selects how a window is extracted from a mask.
type Policy int

const (
	// PolicySpan spans from the first qualifying offset to the last one,
	// including any non-qualifying gap in between.
	PolicySpan Policy = iota

	// PolicyLongestRun keeps only the longest contiguous qualifying run.
	PolicyLongestRun
)

// String returns the config name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicySpan:
		return "span"
	case PolicyLongestRun:
		return "longest"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a config name to a Policy. Empty means PolicySpan.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "span":
		return PolicySpan, nil
	case "longest":
		return PolicyLongestRun, nil
	default:
		return PolicySpan, fmt.Errorf("unknown window policy %q (want span or longest)", s)
	}
}

// Window is a visibility window in raw grid offsets (hours from local midnight).
type Window struct {
	StartOffset float64
	EndOffset   float64
}

// Start is the rebased 24h clock hour of the first qualifying offset.
func (w Window) Start() int { return Rebase(w.StartOffset) }

// End is the rebased 24h clock hour of the last qualifying offset.
// It can be smaller than Start when the window crosses midnight.
func (w Window) End() int { return Rebase(w.EndOffset) }

// Duration is the elapsed time in hours, computed before rebasing and rounded to 2 decimals.
func (w Window) Duration() float64 {
	return round2(w.EndOffset - w.StartOffset)
}

// String renders the window as the dashboard caption does.
func (w Window) String() string {
	return fmt.Sprintf("%dh - %dh", w.Start(), w.End())
}

// Rebase maps a signed hour offset onto a 24h clock: (24 + floor(offset)) mod 24.
func Rebase(offset float64) int {
	h := (24 + int(math.Floor(offset))) % 24
	if h < 0 {
		h += 24
	}
	return h
}

// Mask classifies each grid point. Only the common prefix of the two series is used.
func Mask(alts, sunAlts []float64, th Thresholds) []bool {
	n := min(len(alts), len(sunAlts))
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		mask[i] = alts[i] >= th.MinAlt && alts[i] <= th.MaxAlt && sunAlts[i] <= th.SunMaxAlt
	}
	return mask
}

// ComputeWindow returns the first-to-last visibility window of an object for
// one night. ok is false when no grid point qualifies.
func ComputeWindow(alts, sunAlts []float64, offsets TimeGrid, th Thresholds) (Window, bool) {
	return ComputeWindowWithPolicy(alts, sunAlts, offsets, th, PolicySpan)
}

// ComputeWindowWithPolicy is ComputeWindow with an explicit extraction policy.
func ComputeWindowWithPolicy(alts, sunAlts []float64, offsets TimeGrid, th Thresholds, p Policy) (Window, bool) {
	mask := Mask(alts, sunAlts, th)
	if len(mask) > len(offsets) {
		mask = mask[:len(offsets)]
	}
	return WindowFromMask(mask, offsets, p)
}

// WindowFromMask extracts a window from an already computed mask.
func WindowFromMask(mask []bool, offsets TimeGrid, p Policy) (Window, bool) {
	if p == PolicyLongestRun {
		best, ok := longestRun(Runs(mask))
		if !ok {
			return Window{}, false
		}
		return Window{StartOffset: offsets[best.First], EndOffset: offsets[best.Last]}, true
	}

	first, last := -1, -1
	for i, v := range mask {
		if !v {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return Window{}, false
	}
	return Window{StartOffset: offsets[first], EndOffset: offsets[last]}, true
}

// Run is a contiguous stretch of true mask entries, as inclusive indices.
type Run struct {
	First int
	Last  int
}

// Len is the number of grid points in the run.
func (r Run) Len() int { return r.Last - r.First + 1 }

// Runs lists the contiguous true runs of a mask in order.
func Runs(mask []bool) []Run {
	var runs []Run
	start := -1
	for i, v := range mask {
		switch {
		case v && start < 0:
			start = i
		case !v && start >= 0:
			runs = append(runs, Run{First: start, Last: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{First: start, Last: len(mask) - 1})
	}
	return runs
}

// longestRun picks the longest run; ties go to the earliest.
func longestRun(runs []Run) (Run, bool) {
	if len(runs) == 0 {
		return Run{}, false
	}
	best := runs[0]
	for _, r := range runs[1:] {
		if r.Len() > best.Len() {
			best = r
		}
	}
	return best, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
