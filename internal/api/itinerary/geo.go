package itinerary

import (
	"math"

	"github.com/tripwalk/tripwalk-api/internal/types"
)

const (
	earthRadiusKm   = 6371.0
	walkingSpeedKmh = 4.2

	maxStops = 5
	minStops = 3 // declared but not enforced during route construction

	semanticWeight          = 2.6
	semanticReasonThreshold = 0.32
)

// haversineKm returns the great-circle distance between two points in km.
func haversineKm(a, b types.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lon1 := a.Longitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	lon2 := b.Longitude * math.Pi / 180

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(h))
	return earthRadiusKm * c
}

// walkingMinutes converts a walking distance into minutes at the default pace.
func walkingMinutes(distanceKm float64) float64 {
	return (distanceKm / walkingSpeedKmh) * 60.0
}
