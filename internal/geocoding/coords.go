package geocoding

import (
	"fmt"
	"regexp"
	"strconv"
)

var coordsRegex = regexp.MustCompile(`^\s*([+-]?\d+(?:\.\d+)?)\s*[,; ]\s*([+-]?\d+(?:\.\d+)?)\s*$`)

// ParseCoordinates recognizes "lat, lon" input. ok reports whether the input
// looks like a coordinate pair; err is set when it does but is out of range.
func ParseCoordinates(s string) (loc *Location, ok bool, err error) {
	m := coordsRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, false, nil
	}
	lat, _ := strconv.ParseFloat(m[1], 64)
	lon, _ := strconv.ParseFloat(m[2], 64)
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, true, err
	}
	return &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      fmt.Sprintf("%.4f, %.4f", lat, lon),
	}, true, nil
}

// ValidateCoordinates checks latitude and longitude ranges.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180, 180]", lon)
	}
	return nil
}
