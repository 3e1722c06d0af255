package astro

import (
	"math"
	"time"
)

// SunEquatorial returns an approximate geocentric RA/Dec for the Sun at t.
//
// Low-precision NOAA/Meeus-style model, good to about an arcminute:
//
//	g   = mean anomaly of the Sun
//	q   = mean longitude of the Sun
//	L   = ecliptic longitude of the Sun
//	eps = obliquity of the ecliptic
func SunEquatorial(t time.Time) Equatorial {
	d := DaysSinceJ2000(t)

	g := deg2rad(357.529 + 0.98560028*d)
	q := deg2rad(280.459 + 0.98564736*d)

	L := q + deg2rad(1.915)*math.Sin(g) + deg2rad(0.020)*math.Sin(2*g)
	eps := deg2rad(23.439 - 0.00000036*d)

	ra := math.Atan2(math.Cos(eps)*math.Sin(L), math.Cos(L))
	dec := math.Asin(math.Sin(eps) * math.Sin(L))

	return Equatorial{
		RA:  Normalize360(rad2deg(ra)),
		Dec: rad2deg(dec),
	}
}
