package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"transport-routing-service/internal/config"
	"transport-routing-service/internal/domain"
	"transport-routing-service/internal/ports"

	"github.com/google/uuid"
)

// Planner exposes the route-level planning operations. Each operation reads
// one route (and its stops/shipments) at the start, runs the pure algorithms
// in memory, and writes the outcome back through the ports in a single save
// call so the backing store can commit it atomically.
//
// Blocking conditions (missing vehicle, single oversized stop or shipment)
// are reported as dispositions on the result, not as errors; only data-layer
// failures come back as errors.
type Planner struct {
	routes    ports.RouteRepository
	shipments ports.ShipmentRepository
	customers ports.CustomerDirectory
	cfg       config.Planning
	now       func() time.Time
}

func NewPlanner(routes ports.RouteRepository, shipments ports.ShipmentRepository, customers ports.CustomerDirectory, cfg config.Planning) *Planner {
	return &Planner{
		routes:    routes,
		shipments: shipments,
		customers: customers,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Manual stop override parameters. Nil fields leave the corresponding value
// untouched.
type AdjustStopRequest struct {
	Reason      string
	Sequence    *int
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// Optimize re-sequences the route's stops with the simple dispatch sort:
// priority first, then time window start, then customer name, stable.
func (p *Planner) Optimize(ctx context.Context, routeID uuid.UUID) (domain.SequenceResult, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.SequenceResult{}, fmt.Errorf("optimize route: %w", err)
	}
	if len(route.Stops) == 0 {
		return domain.SequenceResult{Outcome: domain.NoAction("route has no stops to sequence")}, nil
	}

	route.Stops = SortStopsForDispatch(route.Stops, p.now())
	route.Resequence()

	if err := p.routes.SaveRoute(ctx, route); err != nil {
		return domain.SequenceResult{}, fmt.Errorf("optimize route: save: %w", err)
	}
	return domain.SequenceResult{
		Outcome:   domain.Success(fmt.Sprintf("sequenced %d stops", len(route.Stops))),
		StopOrder: stopIDs(route.Stops),
	}, nil
}

// SuggestSequence re-sequences with the geography-aware heuristic: refresh
// stop coordinates from the customer directory, then priority stops, then
// time-critical stops, then a nearest-neighbor walk from the vehicle depot.
// Blocked when the route's load already exceeds the assigned vehicle.
func (p *Planner) SuggestSequence(ctx context.Context, routeID uuid.UUID) (domain.SequenceResult, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.SequenceResult{}, fmt.Errorf("suggest sequence: %w", err)
	}
	if len(route.Stops) == 0 {
		return domain.SequenceResult{Outcome: domain.NoAction("route has no stops to sequence")}, nil
	}

	if err := p.refreshLocations(ctx, route.Stops); err != nil {
		return domain.SequenceResult{}, fmt.Errorf("suggest sequence: %w", err)
	}

	if v := route.Vehicle; v != nil && !v.Fits(route.TotalWeightKg(), route.TotalVolumeM3()) {
		return domain.SequenceResult{Outcome: domain.Blocked(fmt.Sprintf(
			"route load %.1f kg / %.2f m3 exceeds vehicle %q capacity; split the route before sequencing",
			route.TotalWeightKg(), route.TotalVolumeM3(), v.Name,
		))}, nil
	}

	depot := domain.Coordinates{}
	if route.Vehicle != nil {
		depot = route.Vehicle.Depot
	}
	route.Stops = SuggestStopSequence(route.Stops, depot, p.now())
	route.Resequence()

	if err := p.routes.SaveRoute(ctx, route); err != nil {
		return domain.SequenceResult{}, fmt.Errorf("suggest sequence: save: %w", err)
	}
	return domain.SequenceResult{
		Outcome:   domain.Success(fmt.Sprintf("suggested sequence for %d stops", len(route.Stops))),
		StopOrder: stopIDs(route.Stops),
	}, nil
}

// OptimizeByDistance re-sequences with the pure nearest-neighbor walk from
// the current first stop and reports before/after total route distance.
func (p *Planner) OptimizeByDistance(ctx context.Context, routeID uuid.UUID) (domain.DistanceOptimizeResult, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.DistanceOptimizeResult{}, fmt.Errorf("optimize by distance: %w", err)
	}
	if len(route.Stops) < 2 {
		return domain.DistanceOptimizeResult{Outcome: domain.NoAction("route has fewer than two stops")}, nil
	}

	ordered, before, after := OptimizeByDistance(route.Stops)
	route.Stops = ordered
	route.Resequence()

	if err := p.routes.SaveRoute(ctx, route); err != nil {
		return domain.DistanceOptimizeResult{}, fmt.Errorf("optimize by distance: save: %w", err)
	}
	return domain.DistanceOptimizeResult{
		Outcome:  domain.Success(fmt.Sprintf("route distance %.1f km -> %.1f km", before, after)),
		BeforeKm: before,
		AfterKm:  after,
	}, nil
}

// CalculateTiming computes planned arrival/departure over the route's
// current sequence, starting from the route departure time (or now).
func (p *Planner) CalculateTiming(ctx context.Context, routeID uuid.UUID) (domain.TimingResult, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.TimingResult{}, fmt.Errorf("calculate timing: %w", err)
	}
	if len(route.Stops) == 0 {
		return domain.TimingResult{Outcome: domain.NoAction("route has no stops")}, nil
	}

	startAt := p.now()
	if route.DepartAt != nil {
		startAt = *route.DepartAt
	}
	depot := domain.Coordinates{}
	if route.Vehicle != nil {
		depot = route.Vehicle.Depot
	}

	timings := EstimateTiming(route.Stops, depot, startAt, p.cfg)

	if err := p.routes.SaveRoute(ctx, route); err != nil {
		return domain.TimingResult{}, fmt.Errorf("calculate timing: save: %w", err)
	}
	return domain.TimingResult{
		Outcome: domain.Success(fmt.Sprintf("timed %d stops", len(timings))),
		Timings: timings,
	}, nil
}

// SplitForCapacity splits an overloaded route into capacity-feasible
// sub-routes, grouping stops by customer city before bin-packing.
func (p *Planner) SplitForCapacity(ctx context.Context, routeID uuid.UUID) (domain.PartitionResult, error) {
	return p.partition(ctx, routeID, "split for capacity", GroupStopsByCity)
}

// SplitByArea splits an overloaded route into capacity-feasible sub-routes,
// grouping stops by their customer's area before bin-packing.
func (p *Planner) SplitByArea(ctx context.Context, routeID uuid.UUID) (domain.PartitionResult, error) {
	return p.partition(ctx, routeID, "split by area", GroupStopsByArea)
}

func (p *Planner) partition(ctx context.Context, routeID uuid.UUID, op string, group func([]*domain.RouteStop) []StopGroup) (domain.PartitionResult, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.PartitionResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if route.Vehicle == nil {
		return domain.PartitionResult{Outcome: domain.Blocked("no vehicle assigned to the route")}, nil
	}
	if route.Vehicle.Fits(route.TotalWeightKg(), route.TotalVolumeM3()) {
		return domain.PartitionResult{Outcome: domain.NoAction("route fits vehicle capacity")}, nil
	}

	now := p.now()
	var buckets [][]*domain.RouteStop
	for _, g := range group(route.Stops) {
		packed, oversized := BinPackStops(g.Stops, route.Vehicle, now)
		if oversized != nil {
			return domain.PartitionResult{Outcome: blockedOversized(oversized)}, nil
		}
		buckets = append(buckets, packed...)
	}
	if len(buckets) < 2 {
		return domain.PartitionResult{Outcome: domain.NoAction("partitioning produced a single load")}, nil
	}

	return p.materialize(ctx, op, route, buckets)
}

// CombineAdjacentAreas merges the route's small, geographically adjacent
// area groups into shared sub-routes. Every group must fit the vehicle on
// its own; an overflowing area blocks the operation (split it first).
func (p *Planner) CombineAdjacentAreas(ctx context.Context, routeID uuid.UUID) (domain.PartitionResult, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.PartitionResult{}, fmt.Errorf("combine areas: %w", err)
	}
	if route.Vehicle == nil {
		return domain.PartitionResult{Outcome: domain.Blocked("no vehicle assigned to the route")}, nil
	}

	groups := GroupStopsByArea(route.Stops)
	if len(groups) < 2 {
		return domain.PartitionResult{Outcome: domain.NoAction("route has fewer than two area groups")}, nil
	}
	for _, g := range groups {
		if !route.Vehicle.Fits(g.WeightKg(), g.VolumeM3()) {
			return domain.PartitionResult{Outcome: domain.Blocked(fmt.Sprintf(
				"area %q exceeds vehicle capacity; split it before combining", areaLabel(g),
			))}, nil
		}
	}

	buckets := CombineGroups(groups, route.Vehicle, p.cfg.AreaAdjacencyKm)
	if len(buckets) == len(groups) {
		return domain.PartitionResult{Outcome: domain.NoAction("no adjacent area groups to combine")}, nil
	}

	return p.materialize(ctx, "combine areas", route, buckets)
}

// SmartSplitCombine runs the two-phase split-then-combine: bin-pack every
// overflowing area first, then combine the remaining (already fitting)
// adjacent areas.
func (p *Planner) SmartSplitCombine(ctx context.Context, routeID uuid.UUID) (domain.PartitionResult, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.PartitionResult{}, fmt.Errorf("smart split: %w", err)
	}
	if route.Vehicle == nil {
		return domain.PartitionResult{Outcome: domain.Blocked("no vehicle assigned to the route")}, nil
	}

	buckets, oversized := SmartPartition(route.Stops, route.Vehicle, p.now(), p.cfg.AreaAdjacencyKm)
	if oversized != nil {
		return domain.PartitionResult{Outcome: blockedOversized(oversized)}, nil
	}
	if len(buckets) < 2 {
		return domain.PartitionResult{Outcome: domain.NoAction("route already fits a single vehicle load")}, nil
	}

	return p.materialize(ctx, "smart split", route, buckets)
}

// materialize turns buckets into draft sub-routes inheriting the parent's
// batch/area/familiarity, reassigns the stops, cancels the replaced parent
// and persists everything in one atomic save. A single bucket is a valid
// outcome for combine operations (a full merge); split callers guard
// against it before calling.
func (p *Planner) materialize(ctx context.Context, op string, parent *domain.Route, buckets [][]*domain.RouteStop) (domain.PartitionResult, error) {
	subRoutes := make([]*domain.Route, 0, len(buckets))
	for i, bucket := range buckets {
		sub := parent.NewSubRoute(fmt.Sprintf("%s/%d", parent.Name, i+1))
		sub.AdoptStops(bucket)
		subRoutes = append(subRoutes, sub)
	}

	parent.Stops = nil
	if err := parent.Transition(domain.RouteCancelled); err != nil {
		return domain.PartitionResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := p.routes.SavePartition(ctx, parent, subRoutes); err != nil {
		return domain.PartitionResult{}, fmt.Errorf("%s: save partition: %w", op, err)
	}

	ids := make([]uuid.UUID, 0, len(subRoutes))
	for _, r := range subRoutes {
		ids = append(ids, r.ID)
	}
	return domain.PartitionResult{
		Outcome:         domain.Success(fmt.Sprintf("created %d sub-route(s)", len(subRoutes))),
		CreatedRouteIDs: ids,
	}, nil
}

// HandleOversizedShipments scans the route's shipments and splits any whose
// aggregate weight or volume alone exceeds the vehicle. The first split
// stays on the original stop; each further split gets a new stop at the same
// customer and time window. The whole scan persists as one atomic unit:
// either every split and stop reassignment commits, or none do.
func (p *Planner) HandleOversizedShipments(ctx context.Context, routeID uuid.UUID) (domain.OversizedResult, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.OversizedResult{}, fmt.Errorf("handle oversized shipments: %w", err)
	}
	if route.Vehicle == nil {
		return domain.OversizedResult{Outcome: domain.Blocked("no vehicle assigned to the route")}, nil
	}

	all, err := p.shipments.ListByRoute(ctx, routeID)
	if err != nil {
		return domain.OversizedResult{}, fmt.Errorf("handle oversized shipments: %w", err)
	}

	stopsByID := make(map[uuid.UUID]*domain.RouteStop, len(route.Stops))
	for _, s := range route.Stops {
		stopsByID[s.ID] = s
	}

	var result domain.OversizedResult
	var batch []ports.ShipmentSplit
	var newStops []*domain.RouteStop
	touchedByID := make(map[uuid.UUID]*domain.RouteStop)
	nextSeq := len(route.Stops) + 1

	for _, shipment := range all {
		if shipment.State != domain.ShipmentPlanned {
			continue
		}
		origWeight, origVolume := shipment.WeightKg(), shipment.VolumeM3()

		splits := SplitShipment(shipment, route.Vehicle, p.cfg.MaxShipmentSplits)
		if len(splits) == 0 {
			continue
		}

		stop, ok := stopsByID[shipment.StopID]
		if !ok {
			return domain.OversizedResult{}, fmt.Errorf("handle oversized shipments: shipment %s references unknown stop %s", shipment.ID, shipment.StopID)
		}

		// The first split replaces the original on its stop.
		stop.WeightKg += splits[0].WeightKg() - origWeight
		stop.VolumeM3 += splits[0].VolumeM3() - origVolume
		touchedByID[stop.ID] = stop

		for _, sp := range splits[1:] {
			ns := &domain.RouteStop{
				ID:            uuid.New(),
				RouteID:       route.ID,
				Sequence:      nextSeq,
				CustomerID:    stop.CustomerID,
				CustomerName:  stop.CustomerName,
				City:          stop.City,
				AreaID:        stop.AreaID,
				AreaName:      stop.AreaName,
				Location:      stop.Location,
				WindowStart:   stop.WindowStart,
				WindowEnd:     stop.WindowEnd,
				Priority:      stop.Priority,
				WeightKg:      sp.WeightKg(),
				VolumeM3:      sp.VolumeM3(),
				DeliveryCount: 1,
				State:         domain.StopPending,
			}
			nextSeq++
			sp.StopID = ns.ID
			newStops = append(newStops, ns)
			result.CreatedStopIDs = append(result.CreatedStopIDs, ns.ID)
		}

		batch = append(batch, ports.ShipmentSplit{Original: shipment, Splits: splits})
		for _, sp := range splits {
			result.SplitShipmentIDs = append(result.SplitShipmentIDs, sp.ID)
		}
	}

	if len(batch) == 0 {
		return domain.OversizedResult{Outcome: domain.NoAction("no shipment exceeds vehicle capacity")}, nil
	}

	touched := make([]*domain.RouteStop, 0, len(touchedByID))
	for _, s := range route.Stops {
		if t, ok := touchedByID[s.ID]; ok {
			touched = append(touched, t)
		}
	}
	if err := p.shipments.SaveSplits(ctx, batch, newStops, touched); err != nil {
		return domain.OversizedResult{}, fmt.Errorf("handle oversized shipments: save splits: %w", err)
	}
	result.Outcome = domain.Success(fmt.Sprintf(
		"split %d oversized shipments, created %d extra stops",
		len(result.SplitShipmentIDs), len(result.CreatedStopIDs),
	))
	return result, nil
}

// TransitionRoute moves the route to the target lifecycle state.
func (p *Planner) TransitionRoute(ctx context.Context, routeID uuid.UUID, target domain.RouteState) (domain.Outcome, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("transition route: %w", err)
	}
	if err := route.Transition(target); err != nil {
		return domain.Outcome{}, err
	}
	if err := p.routes.SaveRoute(ctx, route); err != nil {
		return domain.Outcome{}, fmt.Errorf("transition route: save: %w", err)
	}
	return domain.Success(fmt.Sprintf("route is now %s", target)), nil
}

// AdjustStop records a pending manual override on a stop.
func (p *Planner) AdjustStop(ctx context.Context, routeID, stopID uuid.UUID, req AdjustStopRequest) (domain.Outcome, error) {
	route, stop, err := p.findStop(ctx, routeID, stopID)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("adjust stop: %w", err)
	}

	adj := domain.StopAdjustment{
		Reason:      req.Reason,
		Sequence:    req.Sequence,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
		RequestedAt: p.now(),
	}
	if err := stop.RequestAdjustment(adj); err != nil {
		return domain.Outcome{}, err
	}
	if err := p.routes.SaveRoute(ctx, route); err != nil {
		return domain.Outcome{}, fmt.Errorf("adjust stop: save: %w", err)
	}
	return domain.Success("adjustment recorded"), nil
}

// ApplyStopAdjustment copies a stop's pending override into its
// authoritative sequence and window, then moves the stop to the requested
// position so list order stays consistent with sequence values.
func (p *Planner) ApplyStopAdjustment(ctx context.Context, routeID, stopID uuid.UUID) (domain.Outcome, error) {
	route, stop, err := p.findStop(ctx, routeID, stopID)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("apply stop adjustment: %w", err)
	}
	if err := stop.ApplyAdjustment(); err != nil {
		return domain.Outcome{}, err
	}

	moveStopToPosition(route.Stops, stop)
	route.Resequence()

	if err := p.routes.SaveRoute(ctx, route); err != nil {
		return domain.Outcome{}, fmt.Errorf("apply stop adjustment: save: %w", err)
	}
	return domain.Success("adjustment applied"), nil
}

func (p *Planner) findStop(ctx context.Context, routeID, stopID uuid.UUID) (*domain.Route, *domain.RouteStop, error) {
	route, err := p.routes.GetRoute(ctx, routeID)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range route.Stops {
		if s.ID == stopID {
			return route, s, nil
		}
	}
	return nil, nil, fmt.Errorf("stop %s: %w", stopID, domain.ErrNotFound)
}

// refreshLocations pulls each stop's current coordinates, city and area from
// the customer directory. A customer missing from the directory leaves the
// stop's stored values in place.
func (p *Planner) refreshLocations(ctx context.Context, stops []*domain.RouteStop) error {
	for _, s := range stops {
		loc, err := p.customers.Locate(ctx, s.CustomerID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("locate customer %s: %w", s.CustomerID, err)
		}
		s.Location = loc.Coords
		if loc.City != "" {
			s.City = loc.City
		}
		if loc.AreaID != nil {
			s.AreaID = loc.AreaID
			s.AreaName = loc.AreaName
		}
	}
	return nil
}

func blockedOversized(stop *domain.RouteStop) domain.Outcome {
	return domain.Blocked(fmt.Sprintf(
		"stop for %q alone exceeds vehicle capacity (%.1f kg / %.2f m3); split its shipments or handle manually",
		stop.CustomerName, stop.WeightKg, stop.VolumeM3,
	))
}

func areaLabel(g StopGroup) string {
	if g.AreaName != "" {
		return g.AreaName
	}
	return g.Key
}

func stopIDs(stops []*domain.RouteStop) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ID)
	}
	return ids
}

// moveStopToPosition removes the stop from the list and reinserts it at the
// slot named by its (just adjusted) sequence value, clamped to the list.
func moveStopToPosition(stops []*domain.RouteStop, stop *domain.RouteStop) {
	from := slices.Index(stops, stop)
	if from < 0 {
		return
	}
	to := stop.Sequence - 1
	if to < 0 {
		to = 0
	}
	if to >= len(stops) {
		to = len(stops) - 1
	}
	switch {
	case from < to:
		copy(stops[from:], stops[from+1:to+1])
	case from > to:
		copy(stops[to+1:], stops[to:from])
	default:
		return
	}
	stops[to] = stop
}
