package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lifecycle state of a route.
type RouteState string

const (
	RouteDraft     RouteState = "draft"
	RouteConfirmed RouteState = "confirmed"
	RouteInTransit RouteState = "in_transit"
	RouteDelivered RouteState = "delivered"
	RouteCancelled RouteState = "cancelled"
)

// Legal forward transitions. Cancelled is reachable from every
// non-terminal state and handled separately in Transition.
var routeTransitions = map[RouteState]RouteState{
	RouteDraft:     RouteConfirmed,
	RouteConfirmed: RouteInTransit,
	RouteInTransit: RouteDelivered,
}

// An ordered set of stops assigned to one vehicle for one delivery run.
// FamiliarityScore is informational (driver familiarity with the zone) and
// never read by the planning algorithms.
type Route struct {
	ID               uuid.UUID
	Name             string
	State            RouteState
	Vehicle          *Vehicle
	AreaID           *uuid.UUID
	AreaName         string
	BatchRef         string
	FamiliarityScore float64
	DepartAt         *time.Time
	Stops            []*RouteStop
}

// Terminal reports whether the state admits no further transitions.
func (st RouteState) Terminal() bool {
	return st == RouteDelivered || st == RouteCancelled
}

// Transition moves the route to the target state, enforcing
// draft -> confirmed -> in_transit -> delivered with cancellation allowed
// from any non-terminal state.
func (r *Route) Transition(target RouteState) error {
	if target == RouteCancelled {
		if r.State.Terminal() {
			return fmt.Errorf("%w: route %s: cannot cancel from state %q", ErrValidation, r.ID, r.State)
		}
		r.State = RouteCancelled
		return nil
	}
	if next, ok := routeTransitions[r.State]; ok && next == target {
		r.State = target
		return nil
	}
	return fmt.Errorf("%w: route %s: illegal transition %q -> %q", ErrValidation, r.ID, r.State, target)
}

// TotalWeightKg sums the aggregated weight of all stops.
func (r *Route) TotalWeightKg() float64 {
	var total float64
	for _, s := range r.Stops {
		total += s.WeightKg
	}
	return total
}

// TotalVolumeM3 sums the aggregated volume of all stops.
func (r *Route) TotalVolumeM3() float64 {
	var total float64
	for _, s := range r.Stops {
		total += s.VolumeM3
	}
	return total
}

// Resequence assigns sequence numbers 1..N in current stop order so that
// sequence values stay unique, positive and consistent with list order.
func (r *Route) Resequence() {
	for i, s := range r.Stops {
		s.Sequence = i + 1
	}
}

// NewSubRoute creates a draft route inheriting the parent's vehicle, batch
// reference, area and familiarity score, ready to receive reassigned stops.
func (r *Route) NewSubRoute(name string) *Route {
	return &Route{
		ID:               uuid.New(),
		Name:             name,
		State:            RouteDraft,
		Vehicle:          r.Vehicle,
		AreaID:           r.AreaID,
		AreaName:         r.AreaName,
		BatchRef:         r.BatchRef,
		FamiliarityScore: r.FamiliarityScore,
		DepartAt:         r.DepartAt,
	}
}

// AdoptStops reassigns the given stops to this route and resequences them.
func (r *Route) AdoptStops(stops []*RouteStop) {
	for _, s := range stops {
		s.RouteID = r.ID
	}
	r.Stops = append(r.Stops, stops...)
	r.Resequence()
}
