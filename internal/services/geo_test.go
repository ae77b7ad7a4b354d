package services

import (
	"testing"

	"transport-routing-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]domain.Coordinates{
		{{Lat: 48.8566, Lon: 2.3522}, {Lat: 51.5074, Lon: -0.1278}},
		{{Lat: -33.8688, Lon: 151.2093}, {Lat: 35.6762, Lon: 139.6503}},
		{{Lat: 1, Lon: 0}, {Lat: 1, Lon: 1}},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]))
	}
}

func TestDistanceZeroForSamePoint(t *testing.T) {
	p := domain.Coordinates{Lat: 52.52, Lon: 13.405}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistanceKnownValue(t *testing.T) {
	// Paris -> London is roughly 344 km great-circle.
	paris := domain.Coordinates{Lat: 48.8566, Lon: 2.3522}
	london := domain.Coordinates{Lat: 51.5074, Lon: -0.1278}
	assert.InDelta(t, 344, Distance(paris, london), 2)
}

func TestDistanceSentinelForUnknown(t *testing.T) {
	unknown := domain.Coordinates{}
	known := domain.Coordinates{Lat: 40, Lon: -3}

	assert.Equal(t, float64(SentinelDistanceKm), Distance(unknown, known))
	assert.Equal(t, float64(SentinelDistanceKm), Distance(known, unknown))
	assert.Equal(t, float64(SentinelDistanceKm), Distance(unknown, unknown))
}

func TestTotalRouteDistance(t *testing.T) {
	stops := []*domain.RouteStop{
		{Location: domain.Coordinates{Lat: 1, Lon: 0}},
		{Location: domain.Coordinates{Lat: 1, Lon: 1}},
		{Location: domain.Coordinates{Lat: 2, Lon: 1}},
	}
	want := Distance(stops[0].Location, stops[1].Location) +
		Distance(stops[1].Location, stops[2].Location)
	assert.InDelta(t, want, TotalRouteDistance(stops), 1e-9)

	assert.Equal(t, 0.0, TotalRouteDistance(stops[:1]))
	assert.Equal(t, 0.0, TotalRouteDistance(nil))
}
