package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Delivery state of a single stop.
type StopState string

const (
	StopPending    StopState = "pending"
	StopArrived    StopState = "arrived"
	StopInProgress StopState = "in_progress"
	StopDelivered  StopState = "delivered"
	StopFailed     StopState = "failed"
	StopSkipped    StopState = "skipped"
)

// A single customer visit within a route. Weight, volume and delivery count
// are aggregates over the stop's shipments, maintained by the planner when
// shipments are split or reassigned.
type RouteStop struct {
	ID            uuid.UUID
	RouteID       uuid.UUID
	Sequence      int
	CustomerID    uuid.UUID
	CustomerName  string
	City          string
	AreaID        *uuid.UUID
	AreaName      string
	Location      Coordinates
	WindowStart   *time.Time
	WindowEnd     *time.Time
	Priority      bool
	WeightKg      float64
	VolumeM3      float64
	DeliveryCount int
	State         StopState

	PlannedArrival   *time.Time
	PlannedDeparture *time.Time

	// Pending manual override, kept apart from the authoritative sequence
	// and window until ApplyAdjustment copies it in.
	Adjustment *StopAdjustment
}

// Manual override of a stop's sequence and/or time window, recorded with a
// reason. Nil fields leave the corresponding authoritative value untouched.
type StopAdjustment struct {
	Reason      string
	Sequence    *int
	WindowStart *time.Time
	WindowEnd   *time.Time
	RequestedAt time.Time
}

// Validate checks the stop's own invariants.
func (s *RouteStop) Validate() error {
	if s.Sequence < 1 {
		return fmt.Errorf("%w: stop %s: sequence must be a positive integer", ErrValidation, s.ID)
	}
	if s.WindowStart != nil && s.WindowEnd != nil && s.WindowEnd.Before(*s.WindowStart) {
		return fmt.Errorf("%w: stop %s: time window end before start", ErrValidation, s.ID)
	}
	return nil
}

// RequestAdjustment records a pending manual override without touching the
// authoritative fields.
func (s *RouteStop) RequestAdjustment(adj StopAdjustment) error {
	if adj.Sequence != nil && *adj.Sequence < 1 {
		return fmt.Errorf("%w: adjustment sequence must be a positive integer", ErrValidation)
	}
	if adj.WindowStart != nil && adj.WindowEnd != nil && adj.WindowEnd.Before(*adj.WindowStart) {
		return fmt.Errorf("%w: adjustment window end before start", ErrValidation)
	}
	s.Adjustment = &adj
	return nil
}

// ApplyAdjustment copies the pending override into the authoritative fields
// and clears it. Applying with no pending adjustment is a validation error.
func (s *RouteStop) ApplyAdjustment() error {
	if s.Adjustment == nil {
		return fmt.Errorf("%w: stop %s has no pending adjustment", ErrValidation, s.ID)
	}
	adj := s.Adjustment
	if adj.Sequence != nil {
		s.Sequence = *adj.Sequence
	}
	if adj.WindowStart != nil {
		s.WindowStart = adj.WindowStart
	}
	if adj.WindowEnd != nil {
		s.WindowEnd = adj.WindowEnd
	}
	s.Adjustment = nil
	return s.Validate()
}
