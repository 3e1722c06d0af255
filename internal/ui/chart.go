package ui

import (
	"math"
	"sort"
	"strconv"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/ngmaloney/astroscope/internal/report"
	"github.com/ngmaloney/astroscope/internal/visibility"
)

const (
	chartMinAlt = 0.0
	chartMaxAlt = 90.0
)

// hourLabel labels an offset from midnight with the wall-clock hour.
func hourLabel(_ int, offset float64) string {
	h := int(math.Round(offset))
	return strconv.Itoa(((h % 24) + 24) % 24)
}

func degreeLabel(_ int, v float64) string {
	return strconv.Itoa(int(math.Round(v))) + "°"
}

// nightShade picks the background for a column given the sun altitude.
func nightShade(sunAlt float64) (lipgloss.Style, bool) {
	switch {
	case sunAlt < visibility.AstronomicalNightAltitude:
		return astroNightStyle, true
	case sunAlt < 0:
		return nightStyle, true
	}
	return lipgloss.Style{}, false
}

// sampleAt returns the series value at the grid point nearest to offset.
func sampleAt(grid visibility.TimeGrid, values []float64, offset float64) (float64, bool) {
	if len(grid) == 0 || len(values) != len(grid) {
		return 0, false
	}
	i := sort.SearchFloat64s(grid, offset)
	switch {
	case i == len(grid):
		i--
	case i > 0 && offset-grid[i-1] < grid[i]-offset:
		i--
	}
	return values[i], true
}

// renderChart draws the altitude track of one night: shaded night bands,
// the altitude limits and the object colored by azimuth.
func renderChart(n report.Night, th visibility.Thresholds, width, height int) string {
	if width < 24 {
		width = 24
	}
	if height < 8 {
		height = 8
	}

	lc := linechart.New(width, height,
		-visibility.GridSpan, visibility.GridSpan, chartMinAlt, chartMaxAlt,
		linechart.WithXYSteps(max(width/12, 2), max(height/4, 1)),
		linechart.WithXLabelFormatter(hourLabel),
		linechart.WithYLabelFormatter(degreeLabel),
	)
	lc.DrawXYAxisAndLabel()

	xAt := func(col int) float64 {
		return -visibility.GridSpan + 2*visibility.GridSpan*float64(col)/float64(width-1)
	}
	yAt := func(row int) float64 {
		return chartMinAlt + (chartMaxAlt-chartMinAlt)*float64(row)/float64(height-1)
	}

	for c := 0; c < width; c++ {
		x := xAt(c)
		sun, ok := sampleAt(n.Grid, n.SunAlts, x)
		if !ok {
			continue
		}
		style, night := nightShade(sun)
		if !night {
			continue
		}
		for r := 0; r < height; r++ {
			lc.DrawRuneWithStyle(canvas.Float64Point{X: x, Y: yAt(r)}, '░', style)
		}
	}

	for c := 0; c < width; c++ {
		for _, alt := range []float64{th.MinAlt, th.MaxAlt} {
			if alt < chartMinAlt || alt > chartMaxAlt {
				continue
			}
			lc.DrawRuneWithStyle(canvas.Float64Point{X: xAt(c), Y: alt}, '─', thresholdStyle)
		}
	}

	for i, offset := range n.Grid {
		if i >= len(n.Alts) || i >= len(n.Azs) {
			break
		}
		alt := n.Alts[i]
		if alt < chartMinAlt || alt > chartMaxAlt {
			continue
		}
		style := lipgloss.NewStyle().Foreground(azimuthColor(n.Azs[i]))
		lc.DrawRuneWithStyle(canvas.Float64Point{X: offset, Y: alt}, '•', style)
	}

	return lc.View()
}
