package services

import (
	"time"

	"transport-routing-service/internal/config"
	"transport-routing-service/internal/domain"
)

// EstimateTiming walks the ordered stop list computing planned arrival and
// departure per stop, writing them onto the stops and returning them.
//
// Travel time per leg is geodesic distance at the configured average speed;
// a leg touching unknown coordinates is assumed to be DefaultLegKm long.
// Arrival waits for the stop's time window to open; service time is
// max(MinServiceTime, PerDeliveryTime x delivery count) and the clock
// advances to departure before the next leg.
func EstimateTiming(stops []*domain.RouteStop, depot domain.Coordinates, startAt time.Time, p config.Planning) []domain.StopTiming {
	timings := make([]domain.StopTiming, 0, len(stops))

	clock := startAt
	prev := depot

	for _, stop := range stops {
		legKm := Distance(prev, stop.Location)
		if !prev.Known() || !stop.Location.Known() {
			legKm = p.DefaultLegKm
		}

		travel := time.Duration(legKm / p.AvgSpeedKmh * float64(time.Hour))
		arrival := clock.Add(travel)
		if stop.WindowStart != nil && arrival.Before(*stop.WindowStart) {
			arrival = *stop.WindowStart
		}

		service := time.Duration(stop.DeliveryCount) * p.PerDeliveryTime
		if service < p.MinServiceTime {
			service = p.MinServiceTime
		}
		departure := arrival.Add(service)

		a, d := arrival, departure
		stop.PlannedArrival = &a
		stop.PlannedDeparture = &d
		timings = append(timings, domain.StopTiming{StopID: stop.ID, Arrival: arrival, Departure: departure})

		clock = departure
		if stop.Location.Known() {
			prev = stop.Location
		}
	}

	return timings
}
