// Package geo provides the great-circle distance helper spec.md §3
// reserves for dispatcher heuristics only — every actual travel-time
// lookup goes through internal/travelmap instead.
package geo

import "math"

const earthRadiusKM = 6371.0088

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// HaversineKM returns the great-circle distance between a and b in
// kilometers.
func HaversineKM(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}
