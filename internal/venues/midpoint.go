package venues

import (
	"math"

	"github.com/getahuddle/huddle/pkg/models"
)

const earthRadiusKm = 6371.0

// Midpoint computes the geographic midpoint between two coordinates by
// averaging their unit vectors, which stays correct across the
// antimeridian where naive lat/lng averaging does not.
func Midpoint(a, b models.Coordinates) models.Coordinates {
	latA, lngA := radians(a.Latitude), radians(a.Longitude)
	latB, lngB := radians(b.Latitude), radians(b.Longitude)

	x := math.Cos(latA)*math.Cos(lngA) + math.Cos(latB)*math.Cos(lngB)
	y := math.Cos(latA)*math.Sin(lngA) + math.Cos(latB)*math.Sin(lngB)
	z := math.Sin(latA) + math.Sin(latB)

	lng := math.Atan2(y, x)
	hyp := math.Sqrt(x*x + y*y)
	lat := math.Atan2(z, hyp)

	return models.Coordinates{
		Latitude:  lat * 180 / math.Pi,
		Longitude: lng * 180 / math.Pi,
	}
}

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(a, b models.Coordinates) float64 {
	latA, lngA := radians(a.Latitude), radians(a.Longitude)
	latB, lngB := radians(b.Latitude), radians(b.Longitude)

	dLat := latB - latA
	dLng := lngB - lngA

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
