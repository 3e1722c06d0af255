package astro

import (
	"fmt"
	"math"
)

// FormatDMS renders an angle as degrees, arcminutes and arcseconds: 41° 16' 7.50".
func FormatDMS(deg float64) string {
	sign := ""
	if deg < 0 {
		sign = "-"
		deg = -deg
	}

	d := math.Floor(deg)
	rem := (deg - d) * 60
	m := math.Floor(rem)
	s := (rem - m) * 60

	// Avoid printing 60.00" after rounding.
	if math.Round(s*100)/100 >= 60 {
		s = 0
		m++
	}
	if m >= 60 {
		m = 0
		d++
	}
	return fmt.Sprintf("%s%d° %d' %.2f\"", sign, int(d), int(m), s)
}
