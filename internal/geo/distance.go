package geo

import (
	"math"

	t "github.com/zlocal/deliveryeta-service/internal/types"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Midpoint returns the arithmetic midpoint of two coordinates. Good
// enough for picking a weather sample point on hyperlocal trips.
func Midpoint(a, b t.Coordinate) t.Coordinate {
	return t.Coordinate{
		Latitude:  (a.Latitude + b.Latitude) / 2,
		Longitude: (a.Longitude + b.Longitude) / 2,
	}
}
