// Package astro is the ephemeris used by astroscope: sidereal time, a
// low-precision solar model and the equatorial to horizontal transform.
package astro

import "time"

// Ephemeris answers "where is it in my sky at time t".
type Ephemeris interface {
	// Position returns the horizontal coordinates of a fixed J2000 position.
	Position(c Equatorial, t time.Time, obs Observer) Horizontal

	// Sun returns the horizontal coordinates of the Sun.
	Sun(t time.Time, obs Observer) Horizontal
}

// Model is the default Ephemeris. It ignores precession, nutation and
// refraction, which shift altitudes by well under a degree over the
// catalog's lifetime.
type Model struct{}

// NewModel returns the default ephemeris.
func NewModel() Model { return Model{} }

// Position implements Ephemeris.
func (Model) Position(c Equatorial, t time.Time, obs Observer) Horizontal {
	return EquatorialToHorizontal(c, obs, t)
}

// Sun implements Ephemeris.
func (Model) Sun(t time.Time, obs Observer) Horizontal {
	return EquatorialToHorizontal(SunEquatorial(t), obs, t)
}

// Track evaluates an object's altitude and azimuth at each instant.
func Track(e Ephemeris, c Equatorial, times []time.Time, obs Observer) (alts, azs []float64) {
	alts = make([]float64, len(times))
	azs = make([]float64, len(times))
	for i, t := range times {
		h := e.Position(c, t, obs)
		alts[i] = h.Alt
		azs[i] = h.Az
	}
	return alts, azs
}

// SunTrack evaluates the Sun's altitude at each instant.
func SunTrack(e Ephemeris, times []time.Time, obs Observer) []float64 {
	alts := make([]float64, len(times))
	for i, t := range times {
		alts[i] = e.Sun(t, obs).Alt
	}
	return alts
}
