package astro

import (
	"math"
	"time"
)

// j2000 is the J2000.0 epoch: 2000-01-01 12:00:00 UTC.
var j2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// JulianDateJ2000 is the Julian Date of the J2000.0 epoch.
const JulianDateJ2000 = 2451545.0

// DaysSinceJ2000 returns the number of (UTC) days since J2000.0.
// UTC stands in for TT/UT1; the difference is far below what a
// 30°-70° viewing band can notice.
func DaysSinceJ2000(t time.Time) float64 {
	return t.UTC().Sub(j2000).Hours() / 24.0
}

// JulianDate converts t to a Julian Date.
func JulianDate(t time.Time) float64 {
	return JulianDateJ2000 + DaysSinceJ2000(t)
}

// GMST returns Greenwich Mean Sidereal Time in degrees [0, 360).
func GMST(t time.Time) float64 {
	d := DaysSinceJ2000(t)
	return Normalize360(280.46061837 + 360.98564736629*d)
}

// LST returns local sidereal time in degrees for an east-positive longitude.
func LST(t time.Time, lonDeg float64) float64 {
	return Normalize360(GMST(t) + lonDeg)
}

// Midnight returns 00:00 of t's calendar date in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NearestMidnight returns the local midnight closest to t: today's for
// morning hours, tomorrow's once past noon. This is "tonight" for a
// stargazer looking at the dashboard in the evening.
func NearestMidnight(t time.Time) time.Time {
	m := Midnight(t)
	if t.Hour() >= 12 {
		y, mo, d := m.Date()
		return time.Date(y, mo, d+1, 0, 0, 0, 0, t.Location())
	}
	return m
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }

func rad2deg(r float64) float64 { return r * 180.0 / math.Pi }

// Normalize360 wraps an angle into [0, 360).
func Normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}
