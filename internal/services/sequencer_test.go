package services

import (
	"testing"
	"time"

	"transport-routing-service/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tw(t time.Time) *time.Time { return &t }

func TestSortStopsForDispatchPriorityFirst(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	stops := []*domain.RouteStop{
		{CustomerName: "Carol"},
		{CustomerName: "Bob", Priority: true},
		{CustomerName: "Alice"},
		{CustomerName: "Dave", Priority: true},
	}

	sorted := SortStopsForDispatch(stops, now)

	assert.Equal(t, "Bob", sorted[0].CustomerName)
	assert.Equal(t, "Dave", sorted[1].CustomerName)
	// Non-priority with equal (unset) windows fall back to customer name.
	assert.Equal(t, "Alice", sorted[2].CustomerName)
	assert.Equal(t, "Carol", sorted[3].CustomerName)
}

func TestSortStopsForDispatchWindowOrder(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	stops := []*domain.RouteStop{
		{CustomerName: "late", WindowStart: tw(now.Add(4 * time.Hour))},
		{CustomerName: "early", WindowStart: tw(now.Add(-time.Hour))},
		{CustomerName: "unset"}, // counts as "now"
	}

	sorted := SortStopsForDispatch(stops, now)

	assert.Equal(t, "early", sorted[0].CustomerName)
	assert.Equal(t, "unset", sorted[1].CustomerName)
	assert.Equal(t, "late", sorted[2].CustomerName)
}

func TestSortStopsForDispatchIsStable(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	// Identical keys: same priority, same window, same name.
	a := &domain.RouteStop{ID: uuid.New(), CustomerName: "Acme"}
	b := &domain.RouteStop{ID: uuid.New(), CustomerName: "Acme"}
	c := &domain.RouteStop{ID: uuid.New(), CustomerName: "Acme"}

	sorted := SortStopsForDispatch([]*domain.RouteStop{a, b, c}, now)

	require.Len(t, sorted, 3)
	assert.Equal(t, a.ID, sorted[0].ID)
	assert.Equal(t, b.ID, sorted[1].ID)
	assert.Equal(t, c.ID, sorted[2].ID)
}

func TestNearestNeighborWalkVisitsEveryStopOnce(t *testing.T) {
	stops := []*domain.RouteStop{
		{ID: uuid.New(), Location: domain.Coordinates{Lat: 3, Lon: 3}},
		{ID: uuid.New(), Location: domain.Coordinates{Lat: 1, Lon: 1}},
		{ID: uuid.New(), Location: domain.Coordinates{Lat: 2, Lon: 2}},
		{ID: uuid.New(), Location: domain.Coordinates{Lat: 5, Lon: 5}},
	}

	ordered := NearestNeighborWalk(domain.Coordinates{Lat: 0.5, Lon: 0.5}, stops)

	require.Len(t, ordered, len(stops))
	seen := map[uuid.UUID]bool{}
	for _, s := range ordered {
		assert.False(t, seen[s.ID], "stop visited twice")
		seen[s.ID] = true
	}
	// Greedy from (0.5,0.5) climbs outward.
	assert.Equal(t, stops[1].ID, ordered[0].ID)
	assert.Equal(t, stops[2].ID, ordered[1].ID)
	assert.Equal(t, stops[0].ID, ordered[2].ID)
	assert.Equal(t, stops[3].ID, ordered[3].ID)
}

func TestNearestNeighborWalkUnknownLocationLast(t *testing.T) {
	unknown := &domain.RouteStop{ID: uuid.New()}
	near := &domain.RouteStop{ID: uuid.New(), Location: domain.Coordinates{Lat: 1, Lon: 0}}
	far := &domain.RouteStop{ID: uuid.New(), Location: domain.Coordinates{Lat: 1, Lon: 1}}

	ordered := NearestNeighborWalk(domain.Coordinates{Lat: 0.1, Lon: 0.1}, []*domain.RouteStop{unknown, far, near})

	assert.Equal(t, near.ID, ordered[0].ID)
	assert.Equal(t, far.ID, ordered[1].ID)
	assert.Equal(t, unknown.ID, ordered[2].ID)
}

func TestNearestNeighborWalkTieBreakIsFirstEncountered(t *testing.T) {
	// Two stops at the same location: input order decides.
	a := &domain.RouteStop{ID: uuid.New(), Location: domain.Coordinates{Lat: 1, Lon: 1}}
	b := &domain.RouteStop{ID: uuid.New(), Location: domain.Coordinates{Lat: 1, Lon: 1}}

	ordered := NearestNeighborWalk(domain.Coordinates{Lat: 0.5, Lon: 0.5}, []*domain.RouteStop{a, b})

	assert.Equal(t, a.ID, ordered[0].ID)
	assert.Equal(t, b.ID, ordered[1].ID)
}

func TestSuggestStopSequencePartitions(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	prio := &domain.RouteStop{ID: uuid.New(), CustomerName: "prio", Priority: true,
		Location: domain.Coordinates{Lat: 9, Lon: 9}}
	critical := &domain.RouteStop{ID: uuid.New(), CustomerName: "critical",
		WindowStart: tw(now.Add(-30 * time.Minute)),
		Location:    domain.Coordinates{Lat: 8, Lon: 8}}
	nearRest := &domain.RouteStop{ID: uuid.New(), CustomerName: "near",
		Location: domain.Coordinates{Lat: 1, Lon: 0}}
	farRest := &domain.RouteStop{ID: uuid.New(), CustomerName: "far",
		WindowStart: tw(now.Add(3 * time.Hour)), // window not yet open: plain remainder
		Location:    domain.Coordinates{Lat: 1, Lon: 1}}

	depot := domain.Coordinates{Lat: 0.01, Lon: 0.01}
	ordered := SuggestStopSequence([]*domain.RouteStop{farRest, nearRest, critical, prio}, depot, now)

	require.Len(t, ordered, 4)
	assert.Equal(t, prio.ID, ordered[0].ID)
	assert.Equal(t, critical.ID, ordered[1].ID)
	assert.Equal(t, nearRest.ID, ordered[2].ID)
	assert.Equal(t, farRest.ID, ordered[3].ID)
}

func TestSuggestStopSequenceDepotFallback(t *testing.T) {
	// Unknown depot: walk starts from the first known stop location.
	a := &domain.RouteStop{ID: uuid.New(), Location: domain.Coordinates{Lat: 10, Lon: 10}}
	b := &domain.RouteStop{ID: uuid.New(), Location: domain.Coordinates{Lat: 10.1, Lon: 10}}
	c := &domain.RouteStop{ID: uuid.New(), Location: domain.Coordinates{Lat: 20, Lon: 20}}

	ordered := SuggestStopSequence([]*domain.RouteStop{a, b, c}, domain.Coordinates{}, time.Now())

	require.Len(t, ordered, 3)
	assert.Equal(t, a.ID, ordered[0].ID)
	assert.Equal(t, b.ID, ordered[1].ID)
	assert.Equal(t, c.ID, ordered[2].ID)
}

func TestOptimizeByDistance(t *testing.T) {
	// Zig-zag order: A(0,0ish) -> C(2,2) -> B(1,1); NN fixes it to A -> B -> C.
	a := &domain.RouteStop{ID: uuid.New(), CustomerName: "A", Location: domain.Coordinates{Lat: 0.01, Lon: 0.01}}
	b := &domain.RouteStop{ID: uuid.New(), CustomerName: "B", Location: domain.Coordinates{Lat: 1, Lon: 1}}
	c := &domain.RouteStop{ID: uuid.New(), CustomerName: "C", Location: domain.Coordinates{Lat: 2, Lon: 2}}

	ordered, before, after := OptimizeByDistance([]*domain.RouteStop{a, c, b})

	require.Len(t, ordered, 3)
	assert.Equal(t, a.ID, ordered[0].ID)
	assert.Equal(t, b.ID, ordered[1].ID)
	assert.Equal(t, c.ID, ordered[2].ID)
	assert.Less(t, after, before)
}

func TestOptimizeByDistanceTooFewStops(t *testing.T) {
	one := []*domain.RouteStop{{ID: uuid.New()}}
	ordered, before, after := OptimizeByDistance(one)
	assert.Len(t, ordered, 1)
	assert.Zero(t, before)
	assert.Zero(t, after)
}
