package services

import (
	"math"

	"transport-routing-service/internal/domain"
)

const (
	earthRadiusKm = 6371

	// SentinelDistanceKm is returned for any pair involving unknown (0,0)
	// coordinates so that unknown stops sort after every real one.
	SentinelDistanceKm = 999999
)

// Distance returns the great-circle distance in kilometers between two
// coordinate pairs using the haversine formula. Pairs involving the unknown
// sentinel never produce a computed value.
func Distance(a, b domain.Coordinates) float64 {
	if !a.Known() || !b.Known() {
		return SentinelDistanceKm
	}

	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// TotalRouteDistance sums the consecutive-stop distances of an ordered stop
// list. Legs touching unknown coordinates contribute the sentinel value.
func TotalRouteDistance(stops []*domain.RouteStop) float64 {
	var total float64
	for i := 1; i < len(stops); i++ {
		total += Distance(stops[i-1].Location, stops[i].Location)
	}
	return total
}
