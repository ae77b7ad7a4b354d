package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"transport-routing-service/internal/domain"
	"transport-routing-service/internal/platform/obs"
	"transport-routing-service/internal/ports"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the ShipmentRepository port.
type PostgresShipmentRepository struct{ DB *sql.DB }

func NewPostgresShipmentRepository(db *sql.DB) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{DB: db}
}

// Return all shipments attached to the route's stops, lines included.
func (r *PostgresShipmentRepository) ListByRoute(ctx context.Context, routeID uuid.UUID) (_ []*domain.Shipment, err error) {
	defer obs.Time(ctx, "repo.ListShipmentsByRoute")(&err)

	query := `
	SELECT sh.shipment_id, sh.stop_id, sh.customer_id, sh.state, sh.note, sh.origin_id
	FROM shipments sh
	JOIN route_stops s ON s.stop_id = sh.stop_id
	WHERE s.route_id = $1
	ORDER BY s.sequence, sh.shipment_id;
	`
	rows, err := r.DB.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("list shipments for route %s: %w", routeID, err)
	}
	defer rows.Close()

	var shipments []*domain.Shipment
	byID := map[uuid.UUID]*domain.Shipment{}
	for rows.Next() {
		s := &domain.Shipment{}
		if err := rows.Scan(&s.ID, &s.StopID, &s.CustomerID, &s.State, &s.Note, &s.OriginID); err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		shipments = append(shipments, s)
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shipments for route %s: %w", routeID, err)
	}
	if len(shipments) == 0 {
		return shipments, nil
	}

	lineQuery := `
	SELECT l.shipment_id, l.product, l.quantity, l.unit_weight_kg, l.unit_volume_m3
	FROM shipment_lines l
	JOIN shipments sh ON sh.shipment_id = l.shipment_id
	JOIN route_stops s ON s.stop_id = sh.stop_id
	WHERE s.route_id = $1
	ORDER BY l.shipment_id, l.line_no;
	`
	lineRows, err := r.DB.QueryContext(ctx, lineQuery, routeID)
	if err != nil {
		return nil, fmt.Errorf("list shipment lines for route %s: %w", routeID, err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var shipmentID uuid.UUID
		var line domain.ShipmentLine
		if err := lineRows.Scan(&shipmentID, &line.Product, &line.Quantity, &line.UnitWeightKg, &line.UnitVolumeM3); err != nil {
			return nil, fmt.Errorf("scan shipment line: %w", err)
		}
		if s, ok := byID[shipmentID]; ok {
			s.Lines = append(s.Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("list shipment lines for route %s: %w", routeID, err)
	}

	return shipments, nil
}

// Persist the full outcome of an oversized-shipment scan in one transaction:
// superseded originals, replacement shipments with their lines, stops created
// for the extra splits, and the updated aggregates on the touched stops.
func (r *PostgresShipmentRepository) SaveSplits(ctx context.Context, splits []ports.ShipmentSplit, newStops []*domain.RouteStop, touched []*domain.RouteStop) (err error) {
	defer obs.Time(ctx, "repo.SaveShipmentSplits")(&err)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save shipment splits: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, ns := range newStops {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO route_stops (stop_id, route_id, sequence, customer_id, priority,
				window_start, window_end, weight_kg, volume_m3, delivery_count, state)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
		`, ns.ID, ns.RouteID, ns.Sequence, ns.CustomerID, ns.Priority,
			ns.WindowStart, ns.WindowEnd, ns.WeightKg, ns.VolumeM3, ns.DeliveryCount, ns.State); err != nil {
			return fmt.Errorf("save shipment splits: insert stop %s: %w", ns.ID, err)
		}
	}

	for _, split := range splits {
		if _, err := tx.ExecContext(ctx, `
			UPDATE shipments SET state = $1 WHERE shipment_id = $2;
		`, split.Original.State, split.Original.ID); err != nil {
			return fmt.Errorf("save shipment splits: supersede %s: %w", split.Original.ID, err)
		}

		for _, sp := range split.Splits {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO shipments (shipment_id, stop_id, customer_id, state, note, origin_id)
				VALUES ($1, $2, $3, $4, $5, $6);
			`, sp.ID, sp.StopID, sp.CustomerID, sp.State, sp.Note, sp.OriginID); err != nil {
				return fmt.Errorf("save shipment splits: insert shipment %s: %w", sp.ID, err)
			}
			for i, line := range sp.Lines {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO shipment_lines (shipment_id, line_no, product, quantity, unit_weight_kg, unit_volume_m3)
					VALUES ($1, $2, $3, $4, $5, $6);
				`, sp.ID, i+1, line.Product, line.Quantity, line.UnitWeightKg, line.UnitVolumeM3); err != nil {
					return fmt.Errorf("save shipment splits: insert line %d of %s: %w", i+1, sp.ID, err)
				}
			}
		}
	}

	for _, s := range touched {
		if _, err := tx.ExecContext(ctx, `
			UPDATE route_stops SET weight_kg = $1, volume_m3 = $2, delivery_count = $3 WHERE stop_id = $4;
		`, s.WeightKg, s.VolumeM3, s.DeliveryCount, s.ID); err != nil {
			return fmt.Errorf("save shipment splits: update stop %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save shipment splits: commit tx: %w", err)
	}
	return nil
}
