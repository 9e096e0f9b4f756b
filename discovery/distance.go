package discovery

import (
	"math"
)

// earthRadiusMiles is the mean Earth radius used for proximity ranking.
const earthRadiusMiles = 3959

// Haversine returns the great-circle distance in miles between two points
// given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// roundMiles rounds a distance to one decimal place for display.
func roundMiles(d float64) float64 {
	return math.Round(d*10) / 10
}
