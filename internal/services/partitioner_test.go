package services

import (
	"testing"
	"time"

	"transport-routing-service/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var packNow = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func TestBinPackStopsSplitsAtCapacity(t *testing.T) {
	// Two 60 kg stops against a 100 kg limit: second cannot join the first bucket.
	v := &domain.Vehicle{MaxWeightKg: 100}
	stops := []*domain.RouteStop{
		{ID: uuid.New(), CustomerName: "a", WeightKg: 60},
		{ID: uuid.New(), CustomerName: "b", WeightKg: 60},
	}

	buckets, oversized := BinPackStops(stops, v, packNow)

	require.Nil(t, oversized)
	require.Len(t, buckets, 2)
	assert.Len(t, buckets[0], 1)
	assert.Len(t, buckets[1], 1)
}

func TestBinPackStopsCapacityInvariant(t *testing.T) {
	v := &domain.Vehicle{MaxWeightKg: 100, MaxVolumeM3: 10}
	var stops []*domain.RouteStop
	weights := []float64{30, 45, 20, 25, 50, 10, 40}
	volumes := []float64{2, 6, 1, 3, 4, 1, 5}
	for i := range weights {
		stops = append(stops, &domain.RouteStop{
			ID: uuid.New(), CustomerName: string(rune('a' + i)),
			WeightKg: weights[i], VolumeM3: volumes[i],
		})
	}

	buckets, oversized := BinPackStops(stops, v, packNow)

	require.Nil(t, oversized)
	total := 0
	for _, b := range buckets {
		total += len(b)
		var w, vol float64
		for _, s := range b {
			w += s.WeightKg
			vol += s.VolumeM3
		}
		if len(b) > 1 {
			assert.LessOrEqual(t, w, v.MaxWeightKg)
			assert.LessOrEqual(t, vol, v.MaxVolumeM3)
		}
	}
	assert.Equal(t, len(stops), total, "every stop lands in exactly one bucket")
}

func TestBinPackStopsOrdersByDispatchKey(t *testing.T) {
	v := &domain.Vehicle{MaxWeightKg: 1000}
	plain := &domain.RouteStop{ID: uuid.New(), CustomerName: "plain", WeightKg: 10}
	prio := &domain.RouteStop{ID: uuid.New(), CustomerName: "prio", WeightKg: 10, Priority: true}

	buckets, oversized := BinPackStops([]*domain.RouteStop{plain, prio}, v, packNow)

	require.Nil(t, oversized)
	require.Len(t, buckets, 1)
	assert.Equal(t, prio.ID, buckets[0][0].ID)
}

func TestBinPackStopsOversizedStopBlocks(t *testing.T) {
	v := &domain.Vehicle{MaxWeightKg: 100}
	heavy := &domain.RouteStop{ID: uuid.New(), CustomerName: "heavy", WeightKg: 150}
	light := &domain.RouteStop{ID: uuid.New(), CustomerName: "light", WeightKg: 10}

	buckets, oversized := BinPackStops([]*domain.RouteStop{light, heavy}, v, packNow)

	require.NotNil(t, oversized)
	assert.Equal(t, heavy.ID, oversized.ID)
	assert.Nil(t, buckets, "no partial output on a blocking condition")
}

func TestGroupStopsByCityFirstOccurrenceOrder(t *testing.T) {
	stops := []*domain.RouteStop{
		{ID: uuid.New(), City: "Lyon"},
		{ID: uuid.New(), City: "Nantes"},
		{ID: uuid.New(), City: "Lyon"},
	}

	groups := GroupStopsByCity(stops)

	require.Len(t, groups, 2)
	assert.Equal(t, "Lyon", groups[0].Key)
	assert.Len(t, groups[0].Stops, 2)
	assert.Equal(t, "Nantes", groups[1].Key)
}

func areaGroup(t *testing.T, name string, coords []domain.Coordinates, weights []float64) StopGroup {
	t.Helper()
	id := uuid.New()
	g := StopGroup{Key: id.String(), AreaID: &id, AreaName: name}
	for i := range coords {
		g.Stops = append(g.Stops, &domain.RouteStop{
			ID: uuid.New(), AreaID: &id, AreaName: name,
			Location: coords[i], WeightKg: weights[i],
		})
	}
	return g
}

func TestGroupsAdjacent(t *testing.T) {
	// ~10 km apart at the equator (0.09 degrees of latitude).
	near := areaGroup(t, "A", []domain.Coordinates{{Lat: 10.00, Lon: 10}}, []float64{40})
	nearby := areaGroup(t, "B", []domain.Coordinates{{Lat: 10.09, Lon: 10}}, []float64{50})
	far := areaGroup(t, "C", []domain.Coordinates{{Lat: 20, Lon: 20}}, []float64{10})
	noArea := StopGroup{Stops: []*domain.RouteStop{{ID: uuid.New()}}}

	assert.True(t, GroupsAdjacent(near, nearby, 50))
	assert.False(t, GroupsAdjacent(near, far, 50))
	assert.True(t, GroupsAdjacent(near, noArea, 50), "missing area is compatible by default")
	assert.True(t, GroupsAdjacent(near, near, 50), "same area id")
}

func TestGroupsAdjacentUnknownCoordinatesNeverAdjacent(t *testing.T) {
	a := areaGroup(t, "A", []domain.Coordinates{{}}, []float64{10})
	b := areaGroup(t, "B", []domain.Coordinates{{Lat: 10, Lon: 10}}, []float64{10})
	assert.False(t, GroupsAdjacent(a, b, 50))
}

func TestCombineGroupsMergesAdjacentWithinCapacity(t *testing.T) {
	// Areas A (40 kg) and B (50 kg) 10 km apart, 100 kg vehicle: one bucket.
	v := &domain.Vehicle{MaxWeightKg: 100}
	a := areaGroup(t, "A", []domain.Coordinates{{Lat: 10.00, Lon: 10}}, []float64{40})
	b := areaGroup(t, "B", []domain.Coordinates{{Lat: 10.09, Lon: 10}}, []float64{50})

	buckets := CombineGroups([]StopGroup{a, b}, v, 50)

	require.Len(t, buckets, 1)
	assert.Len(t, buckets[0], 2)
}

func TestCombineGroupsRespectsCapacity(t *testing.T) {
	v := &domain.Vehicle{MaxWeightKg: 100}
	a := areaGroup(t, "A", []domain.Coordinates{{Lat: 10.00, Lon: 10}}, []float64{70})
	b := areaGroup(t, "B", []domain.Coordinates{{Lat: 10.09, Lon: 10}}, []float64{60})

	buckets := CombineGroups([]StopGroup{a, b}, v, 50)

	require.Len(t, buckets, 2, "adjacent but over capacity together")
}

func TestCombineGroupsSkipsNonAdjacent(t *testing.T) {
	v := &domain.Vehicle{MaxWeightKg: 1000}
	a := areaGroup(t, "A", []domain.Coordinates{{Lat: 10, Lon: 10}}, []float64{10})
	b := areaGroup(t, "B", []domain.Coordinates{{Lat: 40, Lon: 40}}, []float64{10})

	buckets := CombineGroups([]StopGroup{a, b}, v, 50)

	require.Len(t, buckets, 2)
}

func TestSmartPartitionTwoPhase(t *testing.T) {
	// Area A overflows (60+60 vs 100) and must be bin-packed; areas B and C
	// are small, adjacent and combine into one bucket.
	v := &domain.Vehicle{MaxWeightKg: 100}
	a := areaGroup(t, "A", []domain.Coordinates{{Lat: 10.0, Lon: 10}, {Lat: 10.01, Lon: 10}}, []float64{60, 60})
	b := areaGroup(t, "B", []domain.Coordinates{{Lat: 10.05, Lon: 10}}, []float64{30})
	c := areaGroup(t, "C", []domain.Coordinates{{Lat: 10.09, Lon: 10}}, []float64{40})

	var stops []*domain.RouteStop
	stops = append(stops, a.Stops...)
	stops = append(stops, b.Stops...)
	stops = append(stops, c.Stops...)

	buckets, oversized := SmartPartition(stops, v, packNow, 50)

	require.Nil(t, oversized)
	require.Len(t, buckets, 3)
	// Overflowing area's buckets come first (split before combine).
	assert.Len(t, buckets[0], 1)
	assert.Len(t, buckets[1], 1)
	assert.Len(t, buckets[2], 2, "B and C combined")
}

func TestSmartPartitionOversizedStopBlocks(t *testing.T) {
	v := &domain.Vehicle{MaxWeightKg: 100}
	g := areaGroup(t, "A", []domain.Coordinates{{Lat: 10, Lon: 10}}, []float64{150})

	buckets, oversized := SmartPartition(g.Stops, v, packNow, 50)

	require.NotNil(t, oversized)
	assert.Nil(t, buckets)
}
