package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteTransitions(t *testing.T) {
	r := &Route{ID: uuid.New(), State: RouteDraft}

	require.NoError(t, r.Transition(RouteConfirmed))
	require.NoError(t, r.Transition(RouteInTransit))
	require.NoError(t, r.Transition(RouteDelivered))

	err := r.Transition(RouteCancelled)
	assert.ErrorIs(t, err, ErrValidation, "delivered is terminal")
}

func TestRouteTransitionSkipIsRejected(t *testing.T) {
	r := &Route{ID: uuid.New(), State: RouteDraft}
	err := r.Transition(RouteInTransit)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, RouteDraft, r.State)
}

func TestRouteCancelFromNonTerminal(t *testing.T) {
	for _, st := range []RouteState{RouteDraft, RouteConfirmed, RouteInTransit} {
		r := &Route{ID: uuid.New(), State: st}
		require.NoError(t, r.Transition(RouteCancelled), "cancel from %q", st)
		assert.Equal(t, RouteCancelled, r.State)
	}
}

func TestRouteResequence(t *testing.T) {
	r := &Route{
		Stops: []*RouteStop{{Sequence: 7}, {Sequence: 2}, {Sequence: 9}},
	}
	r.Resequence()
	for i, s := range r.Stops {
		assert.Equal(t, i+1, s.Sequence)
	}
}

func TestNewSubRouteInheritsParentFields(t *testing.T) {
	areaID := uuid.New()
	parent := &Route{
		ID:               uuid.New(),
		State:            RouteConfirmed,
		Vehicle:          &Vehicle{Name: "van-1", MaxWeightKg: 800},
		AreaID:           &areaID,
		AreaName:         "North",
		BatchRef:         "BATCH/042",
		FamiliarityScore: 0.7,
	}

	sub := parent.NewSubRoute("BATCH/042/1")

	assert.Equal(t, RouteDraft, sub.State)
	assert.Equal(t, parent.Vehicle, sub.Vehicle)
	assert.Equal(t, parent.AreaID, sub.AreaID)
	assert.Equal(t, parent.BatchRef, sub.BatchRef)
	assert.Equal(t, parent.FamiliarityScore, sub.FamiliarityScore)
	assert.NotEqual(t, parent.ID, sub.ID)
}

func TestAdoptStopsReassignsAndResequences(t *testing.T) {
	sub := &Route{ID: uuid.New(), State: RouteDraft}
	stops := []*RouteStop{
		{ID: uuid.New(), Sequence: 4},
		{ID: uuid.New(), Sequence: 8},
	}

	sub.AdoptStops(stops)

	require.Len(t, sub.Stops, 2)
	for i, s := range sub.Stops {
		assert.Equal(t, sub.ID, s.RouteID)
		assert.Equal(t, i+1, s.Sequence)
	}
}

func TestStopAdjustmentApply(t *testing.T) {
	stop := &RouteStop{ID: uuid.New(), Sequence: 3}
	seq := 1
	ws := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	we := ws.Add(2 * time.Hour)

	require.NoError(t, stop.RequestAdjustment(StopAdjustment{
		Reason:      "customer asked for morning delivery",
		Sequence:    &seq,
		WindowStart: &ws,
		WindowEnd:   &we,
	}))

	// Authoritative fields untouched until applied.
	assert.Equal(t, 3, stop.Sequence)
	assert.Nil(t, stop.WindowStart)

	require.NoError(t, stop.ApplyAdjustment())
	assert.Equal(t, 1, stop.Sequence)
	require.NotNil(t, stop.WindowStart)
	assert.True(t, stop.WindowStart.Equal(ws))
	assert.Nil(t, stop.Adjustment)

	// A second apply has nothing pending.
	assert.ErrorIs(t, stop.ApplyAdjustment(), ErrValidation)
}

func TestStopAdjustmentRejectsInvertedWindow(t *testing.T) {
	stop := &RouteStop{ID: uuid.New(), Sequence: 1}
	ws := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	we := ws.Add(-time.Hour)
	err := stop.RequestAdjustment(StopAdjustment{WindowStart: &ws, WindowEnd: &we})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestShipmentDerivedAggregates(t *testing.T) {
	s := &Shipment{Lines: []ShipmentLine{
		{Product: "pallet A", Quantity: 4, UnitWeightKg: 25, UnitVolumeM3: 0.5},
		{Product: "pallet B", Quantity: 2, UnitWeightKg: 10, UnitVolumeM3: 0.25},
	}}

	assert.Equal(t, 6, s.Quantity())
	assert.InDelta(t, 120.0, s.WeightKg(), 1e-9)
	assert.InDelta(t, 2.5, s.VolumeM3(), 1e-9)
}

func TestVehicleFits(t *testing.T) {
	v := &Vehicle{MaxWeightKg: 100, MaxVolumeM3: 10}
	assert.True(t, v.Fits(100, 10))
	assert.False(t, v.Fits(100.1, 5))
	assert.False(t, v.Fits(50, 10.5))

	unlimited := &Vehicle{}
	assert.True(t, unlimited.Fits(1e6, 1e6))
}
