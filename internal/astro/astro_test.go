package astro

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ghent = Observer{Lat: 51.053822, Lon: 3.722270, Name: "Ghent"}

func TestJulianDate(t *testing.T) {
	assert.InDelta(t, JulianDateJ2000, JulianDate(j2000), 1e-9)
	assert.InDelta(t, 2460676.5, JulianDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), 1e-6)
}

func TestGMST(t *testing.T) {
	assert.InDelta(t, 280.46061837, GMST(j2000), 1e-6)

	lst := LST(j2000, -90)
	assert.InDelta(t, 190.46061837, lst, 1e-6)
}

func TestEquatorialToHorizontal_Polaris(t *testing.T) {
	polaris := Equatorial{RA: 37.9546, Dec: 89.2641}

	for _, hour := range []int{0, 6, 12, 18} {
		tm := time.Date(2025, time.March, 3, hour, 0, 0, 0, time.UTC)
		h := EquatorialToHorizontal(polaris, ghent, tm)
		assert.InDelta(t, ghent.Lat, h.Alt, 1.0, "Polaris altitude tracks latitude at %02d:00", hour)
	}
}

func TestModel_SunAtSolstices(t *testing.T) {
	m := NewModel()
	greenwich := Observer{Lat: 51.4779, Lon: 0}

	noon := m.Sun(time.Date(2025, time.June, 21, 12, 0, 0, 0, time.UTC), greenwich)
	assert.InDelta(t, 90-51.4779+23.44, noon.Alt, 1.0)
	assert.InDelta(t, 180, noon.Az, 3.0)

	midnight := m.Sun(time.Date(2025, time.December, 21, 23, 45, 0, 0, time.UTC), ghent)
	assert.InDelta(t, ghent.Lat-23.44-90, midnight.Alt, 1.5)
}

func TestSunEquatorial_Equinox(t *testing.T) {
	eq := SunEquatorial(time.Date(2025, time.March, 20, 9, 1, 0, 0, time.UTC))
	assert.InDelta(t, 0, eq.Dec, 0.1)
	assert.True(t, eq.RA < 0.5 || eq.RA > 359.5, "RA near 0 at the March equinox, got %v", eq.RA)
}

func TestTrack(t *testing.T) {
	m := NewModel()
	mid := time.Date(2025, time.October, 17, 0, 0, 0, 0, time.UTC)
	times := []time.Time{mid.Add(-time.Hour), mid, mid.Add(time.Hour)}

	m31 := Equatorial{RA: 10.6847, Dec: 41.2689}
	alts, azs := Track(m, m31, times, ghent)
	require.Len(t, alts, 3)
	require.Len(t, azs, 3)
	for i := range times {
		want := m.Position(m31, times[i], ghent)
		assert.Equal(t, want.Alt, alts[i])
		assert.Equal(t, want.Az, azs[i])
		assert.GreaterOrEqual(t, azs[i], 0.0)
		assert.Less(t, azs[i], 360.0)
	}

	sun := SunTrack(m, times, ghent)
	require.Len(t, sun, 3)
	for _, a := range sun {
		assert.Less(t, a, 0.0, "sun is down around midnight in October")
	}
}

func TestParseRADec(t *testing.T) {
	ra, err := ParseRA("00:42:44.3")
	require.NoError(t, err)
	assert.InDelta(t, 10.6846, ra, 1e-3)

	dec, err := ParseDec("+41:16:09")
	require.NoError(t, err)
	assert.InDelta(t, 41.2692, dec, 1e-3)

	dec, err = ParseDec("-05:23:28")
	require.NoError(t, err)
	assert.InDelta(t, -5.3911, dec, 1e-3)

	_, err = ParseRA("25:00:00")
	assert.Error(t, err)
	_, err = ParseDec("abc")
	assert.Error(t, err)
	_, err = ParseDec("")
	assert.Error(t, err)
}

func TestFormatDMS(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{41.26875, `41° 16' 7.50"`},
		{-12.5, `-12° 30' 0.00"`},
		{0, `0° 0' 0.00"`},
		{29.999999999, `30° 0' 0.00"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDMS(tt.in), "FormatDMS(%v)", tt.in)
	}
}

func TestNearestMidnight(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)

	evening := time.Date(2025, time.October, 17, 21, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2025, time.October, 18, 0, 0, 0, 0, loc), NearestMidnight(evening))

	morning := time.Date(2025, time.October, 17, 3, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, time.October, 17, 0, 0, 0, 0, loc), NearestMidnight(morning))

	endOfMonth := time.Date(2025, time.October, 31, 13, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, loc), NearestMidnight(endOfMonth))
}

func TestNormalize360(t *testing.T) {
	assert.Equal(t, 10.0, Normalize360(370))
	assert.Equal(t, 350.0, Normalize360(-10))
	assert.False(t, math.IsNaN(Normalize360(0)))
}
