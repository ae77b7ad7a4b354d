package services

import (
	"slices"
	"strings"
	"time"

	"transport-routing-service/internal/domain"
)

// compareDispatch orders stops by the dispatch key:
// priority flag first, then time window start (unset windows count as "now"),
// then customer name for a deterministic final tie-break.
func compareDispatch(a, b *domain.RouteStop, now time.Time) int {
	pa, pb := 1, 1
	if a.Priority {
		pa = 0
	}
	if b.Priority {
		pb = 0
	}
	if pa != pb {
		return pa - pb
	}

	wa, wb := now, now
	if a.WindowStart != nil {
		wa = *a.WindowStart
	}
	if b.WindowStart != nil {
		wb = *b.WindowStart
	}
	if c := wa.Compare(wb); c != 0 {
		return c
	}

	return strings.Compare(a.CustomerName, b.CustomerName)
}

// SortStopsForDispatch returns the stops stable-sorted by the dispatch key.
// Equal-key stops keep their input relative order.
func SortStopsForDispatch(stops []*domain.RouteStop, now time.Time) []*domain.RouteStop {
	sorted := slices.Clone(stops)
	slices.SortStableFunc(sorted, func(a, b *domain.RouteStop) int {
		return compareDispatch(a, b, now)
	})
	return sorted
}

// NearestNeighborWalk orders stops with a greedy nearest-neighbor tour from
// the given start position: repeatedly append the unvisited stop closest to
// the current position and advance to it.
//
// The heuristic minimizes immediate travel distance at each step. It does not
// attempt global route optimization (e.g., VRP solvers); determinism and
// simplicity win over optimality. Unknown-coordinate stops carry the sentinel
// distance and therefore land at the end of the walk. When several stops are
// equally near, the first one encountered in input order wins.
func NearestNeighborWalk(start domain.Coordinates, stops []*domain.RouteStop) []*domain.RouteStop {
	remaining := slices.Clone(stops)
	ordered := make([]*domain.RouteStop, 0, len(stops))
	current := start

	for len(remaining) > 0 {
		best := 0
		bestDist := Distance(current, remaining[0].Location)
		for i := 1; i < len(remaining); i++ {
			if d := Distance(current, remaining[i].Location); d < bestDist {
				best = i
				bestDist = d
			}
		}

		next := remaining[best]
		ordered = append(ordered, next)
		remaining = append(remaining[:best], remaining[best+1:]...)

		// Stay put when the chosen stop has no usable position, otherwise
		// every later pick would be measured from (0,0).
		if next.Location.Known() {
			current = next.Location
		}
	}

	return ordered
}

// SuggestStopSequence produces a geography-aware stop order: priority stops
// first (input order preserved), then time-critical stops whose window has
// already opened, then a nearest-neighbor walk over the remainder starting
// from the vehicle depot.
//
// When the depot coordinate is unknown, the walk starts from the first stop
// with a known location instead.
func SuggestStopSequence(stops []*domain.RouteStop, depot domain.Coordinates, now time.Time) []*domain.RouteStop {
	var priority, timeCritical, rest []*domain.RouteStop
	for _, s := range stops {
		switch {
		case s.Priority:
			priority = append(priority, s)
		case s.WindowStart != nil && !s.WindowStart.After(now):
			timeCritical = append(timeCritical, s)
		default:
			rest = append(rest, s)
		}
	}

	start := depot
	if !start.Known() {
		for _, s := range rest {
			if s.Location.Known() {
				start = s.Location
				break
			}
		}
	}

	ordered := make([]*domain.RouteStop, 0, len(stops))
	ordered = append(ordered, priority...)
	ordered = append(ordered, timeCritical...)
	ordered = append(ordered, NearestNeighborWalk(start, rest)...)
	return ordered
}

// OptimizeByDistance reorders stops with the nearest-neighbor walk starting
// from the first stop of the current order, and reports the total route
// distance before and after as an informational metric.
// Routes with fewer than two stops are returned unchanged.
func OptimizeByDistance(stops []*domain.RouteStop) (ordered []*domain.RouteStop, beforeKm, afterKm float64) {
	if len(stops) < 2 {
		return stops, 0, 0
	}

	beforeKm = TotalRouteDistance(stops)

	first := stops[0]
	walked := NearestNeighborWalk(first.Location, stops[1:])
	ordered = append(make([]*domain.RouteStop, 0, len(stops)), first)
	ordered = append(ordered, walked...)

	afterKm = TotalRouteDistance(ordered)
	return ordered, beforeKm, afterKm
}
