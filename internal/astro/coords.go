package astro

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Equatorial holds J2000 right ascension and declination in degrees.
type Equatorial struct {
	RA  float64 // right ascension, degrees [0, 360)
	Dec float64 // declination, degrees [-90, 90]
}

// Horizontal holds topocentric altitude and azimuth in degrees.
type Horizontal struct {
	Alt float64 // 0 = horizon, 90 = zenith
	Az  float64 // 0 = north, clockwise
}

// Observer is a location on Earth.
type Observer struct {
	Lat  float64 // degrees, north positive
	Lon  float64 // degrees, east positive
	Name string
}

// String renders the observer for logs and headers.
func (o Observer) String() string {
	if o.Name != "" {
		return fmt.Sprintf("%s (%.4f, %.4f)", o.Name, o.Lat, o.Lon)
	}
	return fmt.Sprintf("%.4f, %.4f", o.Lat, o.Lon)
}

// EquatorialToHorizontal converts RA/Dec to altitude/azimuth for an observer at time t.
func EquatorialToHorizontal(c Equatorial, obs Observer, t time.Time) Horizontal {
	lat := deg2rad(obs.Lat)
	dec := deg2rad(c.Dec)

	// Hour angle H = LST - RA, in (-π, π].
	h := deg2rad(LST(t, obs.Lon) - c.RA)
	h = math.Remainder(h, 2*math.Pi)

	sinAlt := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(h)
	sinAlt = math.Max(-1, math.Min(1, sinAlt))
	alt := math.Asin(sinAlt)

	// Azimuth measured from north through east.
	y := -math.Sin(h) * math.Cos(dec)
	x := math.Sin(dec)*math.Cos(lat) - math.Cos(dec)*math.Sin(lat)*math.Cos(h)
	az := math.Atan2(y, x)

	return Horizontal{
		Alt: rad2deg(alt),
		Az:  Normalize360(rad2deg(az)),
	}
}

// ParseRA parses a sexagesimal right ascension ("HH:MM:SS.ss") into degrees.
func ParseRA(s string) (float64, error) {
	h, err := parseSexagesimal(s)
	if err != nil {
		return 0, fmt.Errorf("parsing right ascension %q: %w", s, err)
	}
	if h < 0 || h >= 24 {
		return 0, fmt.Errorf("right ascension %q out of range", s)
	}
	return h * 15.0, nil
}

// ParseDec parses a sexagesimal declination ("+DD:MM:SS.s") into degrees.
func ParseDec(s string) (float64, error) {
	d, err := parseSexagesimal(s)
	if err != nil {
		return 0, fmt.Errorf("parsing declination %q: %w", s, err)
	}
	if d < -90 || d > 90 {
		return 0, fmt.Errorf("declination %q out of range", s)
	}
	return d, nil
}

func parseSexagesimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ' ' })
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("expected up to three fields")
	}

	var value float64
	scale := 1.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		if v < 0 {
			return 0, fmt.Errorf("negative field %q", p)
		}
		value += v / scale
		scale *= 60
	}
	return sign * value, nil
}
