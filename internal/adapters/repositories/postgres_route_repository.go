package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"transport-routing-service/internal/domain"
	"transport-routing-service/internal/platform/obs"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

// Return the route with its vehicle and its stops in sequence order.
func (r *PostgresRouteRepository) GetRoute(ctx context.Context, id uuid.UUID) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "repo.GetRoute")(&err)

	if r.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}

	query := `
	SELECT
		r.route_id, r.name, r.state, r.area_id,
		COALESCE(a.name, ''), r.batch_ref, r.familiarity_score, r.depart_at,
		v.vehicle_id, v.name, v.max_weight_kg, v.max_volume_m3, v.depot_lat, v.depot_lon
	FROM routes r
	LEFT JOIN areas a ON a.area_id = r.area_id
	LEFT JOIN vehicles v ON v.vehicle_id = r.vehicle_id
	WHERE r.route_id = $1;
	`

	route := &domain.Route{}
	var (
		vehicleID   *uuid.UUID
		vehicleName *string
		maxWeight   *float64
		maxVol      *float64
		depotLat    *float64
		depotLon    *float64
	)
	err = r.DB.QueryRowContext(ctx, query, id).Scan(
		&route.ID, &route.Name, &route.State, &route.AreaID,
		&route.AreaName, &route.BatchRef, &route.FamiliarityScore, &route.DepartAt,
		&vehicleID, &vehicleName, &maxWeight, &maxVol, &depotLat, &depotLon,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}

	if vehicleID != nil {
		route.Vehicle = &domain.Vehicle{
			ID:          *vehicleID,
			Name:        *vehicleName,
			MaxWeightKg: *maxWeight,
			MaxVolumeM3: *maxVol,
			Depot:       domain.Coordinates{Lat: *depotLat, Lon: *depotLon},
		}
	}

	route.Stops, err = r.listStops(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}
	return route, nil
}

func (r *PostgresRouteRepository) listStops(ctx context.Context, routeID uuid.UUID) ([]*domain.RouteStop, error) {
	query := `
	SELECT
		s.stop_id, s.route_id, s.sequence, s.customer_id,
		c.name, c.city, c.area_id, COALESCE(a.name, ''), c.lat, c.lon,
		s.priority, s.window_start, s.window_end,
		s.weight_kg, s.volume_m3, s.delivery_count, s.state,
		s.planned_arrival, s.planned_departure,
		s.adj_reason, s.adj_sequence, s.adj_window_start, s.adj_window_end, s.adj_requested_at
	FROM route_stops s
	JOIN customers c ON c.customer_id = s.customer_id
	LEFT JOIN areas a ON a.area_id = c.area_id
	WHERE s.route_id = $1
	ORDER BY s.sequence;
	`
	rows, err := r.DB.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	defer rows.Close()

	var stops []*domain.RouteStop
	for rows.Next() {
		s := &domain.RouteStop{}
		var adj domain.StopAdjustment
		var adjReason *string
		var adjRequestedAt sql.NullTime
		if err := rows.Scan(
			&s.ID, &s.RouteID, &s.Sequence, &s.CustomerID,
			&s.CustomerName, &s.City, &s.AreaID, &s.AreaName, &s.Location.Lat, &s.Location.Lon,
			&s.Priority, &s.WindowStart, &s.WindowEnd,
			&s.WeightKg, &s.VolumeM3, &s.DeliveryCount, &s.State,
			&s.PlannedArrival, &s.PlannedDeparture,
			&adjReason, &adj.Sequence, &adj.WindowStart, &adj.WindowEnd, &adjRequestedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		if adjReason != nil {
			adj.Reason = *adjReason
			if adjRequestedAt.Valid {
				adj.RequestedAt = adjRequestedAt.Time
			}
			s.Adjustment = &adj
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	return stops, nil
}

// Return routes in the given lifecycle state, stops included.
func (r *PostgresRouteRepository) ListRoutesByState(ctx context.Context, state domain.RouteState) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "repo.ListRoutesByState")(&err)

	rows, err := r.DB.QueryContext(ctx, `SELECT route_id FROM routes WHERE state = $1 ORDER BY name;`, state)
	if err != nil {
		return nil, fmt.Errorf("list routes by state %q: %w", state, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan route id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes by state %q: %w", state, err)
	}

	routes := make([]*domain.Route, 0, len(ids))
	for _, id := range ids {
		route, err := r.GetRoute(ctx, id)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// Persist sequence, timing, adjustment and state changes of a route and its
// stops in one transaction.
func (r *PostgresRouteRepository) SaveRoute(ctx context.Context, route *domain.Route) (err error) {
	defer obs.Time(ctx, "repo.SaveRoute")(&err)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := updateRoute(ctx, tx, route); err != nil {
		return fmt.Errorf("save route: %w", err)
	}
	for _, s := range route.Stops {
		if err := updateStop(ctx, tx, s); err != nil {
			return fmt.Errorf("save route: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save route: commit tx: %w", err)
	}
	return nil
}

// Atomically persist a partition: new sub-routes, stop reassignments and the
// parent's final state commit together or not at all.
func (r *PostgresRouteRepository) SavePartition(ctx context.Context, parent *domain.Route, subRoutes []*domain.Route) (err error) {
	defer obs.Time(ctx, "repo.SavePartition")(&err)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save partition: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, sub := range subRoutes {
		var vehicleID *uuid.UUID
		if sub.Vehicle != nil {
			vehicleID = &sub.Vehicle.ID
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO routes (route_id, name, state, vehicle_id, area_id, batch_ref, familiarity_score, depart_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, sub.ID, sub.Name, sub.State, vehicleID, sub.AreaID, sub.BatchRef, sub.FamiliarityScore, sub.DepartAt); err != nil {
			return fmt.Errorf("save partition: insert sub-route %q: %w", sub.Name, err)
		}

		for _, s := range sub.Stops {
			if _, err := tx.ExecContext(ctx, `
				UPDATE route_stops SET route_id = $1, sequence = $2 WHERE stop_id = $3;
			`, sub.ID, s.Sequence, s.ID); err != nil {
				return fmt.Errorf("save partition: reassign stop %s: %w", s.ID, err)
			}
		}
	}

	if err := updateRoute(ctx, tx, parent); err != nil {
		return fmt.Errorf("save partition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save partition: commit tx: %w", err)
	}
	return nil
}

func updateRoute(ctx context.Context, tx *sql.Tx, route *domain.Route) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE routes SET state = $1, depart_at = $2 WHERE route_id = $3;
	`, route.State, route.DepartAt, route.ID); err != nil {
		return fmt.Errorf("update route %s: %w", route.ID, err)
	}
	return nil
}

func updateStop(ctx context.Context, tx *sql.Tx, s *domain.RouteStop) error {
	var (
		adjReason      *string
		adjSequence    *int
		adjWindowStart any
		adjWindowEnd   any
		adjRequestedAt any
	)
	if s.Adjustment != nil {
		adjReason = &s.Adjustment.Reason
		adjSequence = s.Adjustment.Sequence
		adjWindowStart = s.Adjustment.WindowStart
		adjWindowEnd = s.Adjustment.WindowEnd
		adjRequestedAt = s.Adjustment.RequestedAt
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE route_stops SET
			sequence = $1,
			window_start = $2,
			window_end = $3,
			weight_kg = $4,
			volume_m3 = $5,
			delivery_count = $6,
			state = $7,
			planned_arrival = $8,
			planned_departure = $9,
			adj_reason = $10,
			adj_sequence = $11,
			adj_window_start = $12,
			adj_window_end = $13,
			adj_requested_at = $14
		WHERE stop_id = $15;
	`, s.Sequence, s.WindowStart, s.WindowEnd, s.WeightKg, s.VolumeM3,
		s.DeliveryCount, s.State, s.PlannedArrival, s.PlannedDeparture,
		adjReason, adjSequence, adjWindowStart, adjWindowEnd, adjRequestedAt,
		s.ID); err != nil {
		return fmt.Errorf("update stop %s: %w", s.ID, err)
	}
	return nil
}
