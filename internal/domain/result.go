package domain

import (
	"time"

	"github.com/google/uuid"
)

// How a planning operation concluded. Blocked conditions (missing vehicle,
// single oversized stop) are reported here, not as Go errors: only data-layer
// failures surface as errors.
type Disposition string

const (
	DispositionSuccess  Disposition = "success"
	DispositionNoAction Disposition = "no_action_needed"
	DispositionBlocked  Disposition = "blocked"
)

// Common result header shared by all planner operations.
type Outcome struct {
	Disposition Disposition
	Message     string
}

func Success(msg string) Outcome  { return Outcome{Disposition: DispositionSuccess, Message: msg} }
func NoAction(msg string) Outcome { return Outcome{Disposition: DispositionNoAction, Message: msg} }
func Blocked(msg string) Outcome  { return Outcome{Disposition: DispositionBlocked, Message: msg} }

// Result of a split or combine operation.
type PartitionResult struct {
	Outcome
	CreatedRouteIDs []uuid.UUID
}

// Result of a sequencing operation.
type SequenceResult struct {
	Outcome
	StopOrder []uuid.UUID
}

// Planned arrival and departure for one stop.
type StopTiming struct {
	StopID    uuid.UUID
	Arrival   time.Time
	Departure time.Time
}

// Result of a timing calculation.
type TimingResult struct {
	Outcome
	Timings []StopTiming
}

// Result of the pure-distance optimizer, with the informational
// before/after total route distance.
type DistanceOptimizeResult struct {
	Outcome
	BeforeKm float64
	AfterKm  float64
}

// Result of the oversized-shipment scan.
type OversizedResult struct {
	Outcome
	SplitShipmentIDs []uuid.UUID
	CreatedStopIDs   []uuid.UUID
}
