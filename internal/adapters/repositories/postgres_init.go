package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createAreasQuery := `
	CREATE TABLE IF NOT EXISTS areas (
		area_id UUID PRIMARY KEY,
		name TEXT NOT NULL
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		vehicle_id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		max_weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_volume_m3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		depot_lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		depot_lon DOUBLE PRECISION NOT NULL DEFAULT 0
	);
	`

	createCustomersQuery := `
	CREATE TABLE IF NOT EXISTS customers (
		customer_id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		lon DOUBLE PRECISION NOT NULL DEFAULT 0,
		area_id UUID REFERENCES areas(area_id)
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		state TEXT NOT NULL,
		vehicle_id UUID REFERENCES vehicles(vehicle_id),
		area_id UUID REFERENCES areas(area_id),
		batch_ref TEXT NOT NULL DEFAULT '',
		familiarity_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		depart_at TIMESTAMPTZ
	);
	`

	createRouteStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_stops (
		stop_id UUID PRIMARY KEY,
		route_id UUID NOT NULL REFERENCES routes(route_id),
		sequence INTEGER NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(customer_id),
		priority BOOLEAN NOT NULL DEFAULT FALSE,
		window_start TIMESTAMPTZ,
		window_end TIMESTAMPTZ,
		weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		volume_m3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		delivery_count INTEGER NOT NULL DEFAULT 0,
		state TEXT NOT NULL DEFAULT 'pending',
		planned_arrival TIMESTAMPTZ,
		planned_departure TIMESTAMPTZ,
		adj_reason TEXT,
		adj_sequence INTEGER,
		adj_window_start TIMESTAMPTZ,
		adj_window_end TIMESTAMPTZ,
		adj_requested_at TIMESTAMPTZ
	);
	`

	createShipmentsQuery := `
	CREATE TABLE IF NOT EXISTS shipments (
		shipment_id UUID PRIMARY KEY,
		stop_id UUID NOT NULL REFERENCES route_stops(stop_id),
		customer_id UUID NOT NULL REFERENCES customers(customer_id),
		state TEXT NOT NULL DEFAULT 'planned',
		note TEXT NOT NULL DEFAULT '',
		origin_id UUID
	);
	`

	createShipmentLinesQuery := `
	CREATE TABLE IF NOT EXISTS shipment_lines (
		shipment_id UUID NOT NULL REFERENCES shipments(shipment_id),
		line_no INTEGER NOT NULL,
		product TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit_volume_m3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (shipment_id, line_no)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_stops_route_sequence
	ON route_stops(route_id, sequence);
	`

	statements := []string{
		createAreasQuery,
		createVehiclesQuery,
		createCustomersQuery,
		createRoutesQuery,
		createRouteStopsQuery,
		createShipmentsQuery,
		createShipmentLinesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type AreaSeed struct {
	AreaID uuid.UUID `json:"area_id"`
	Name   string    `json:"name"`
}

type VehicleSeed struct {
	VehicleID   uuid.UUID `json:"vehicle_id"`
	Name        string    `json:"name"`
	MaxWeightKg float64   `json:"max_weight_kg"`
	MaxVolumeM3 float64   `json:"max_volume_m3"`
	DepotLat    float64   `json:"depot_lat"`
	DepotLon    float64   `json:"depot_lon"`
}

type CustomerSeed struct {
	CustomerID uuid.UUID  `json:"customer_id"`
	Name       string     `json:"name"`
	City       string     `json:"city"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	AreaID     *uuid.UUID `json:"area_id"`
}

type StopSeed struct {
	StopID        uuid.UUID  `json:"stop_id"`
	Sequence      int        `json:"sequence"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	Priority      bool       `json:"priority"`
	WindowStart   *time.Time `json:"window_start"`
	WindowEnd     *time.Time `json:"window_end"`
	WeightKg      float64    `json:"weight_kg"`
	VolumeM3      float64    `json:"volume_m3"`
	DeliveryCount int        `json:"delivery_count"`
}

type RouteSeed struct {
	RouteID   uuid.UUID  `json:"route_id"`
	Name      string     `json:"name"`
	State     string     `json:"state"`
	VehicleID *uuid.UUID `json:"vehicle_id"`
	AreaID    *uuid.UUID `json:"area_id"`
	BatchRef  string     `json:"batch_ref"`
	Stops     []StopSeed `json:"stops"`
}

type SeedFile struct {
	Areas     []AreaSeed     `json:"areas"`
	Vehicles  []VehicleSeed  `json:"vehicles"`
	Customers []CustomerSeed `json:"customers"`
	Routes    []RouteSeed    `json:"routes"`
}

// Populate the database with demo routing data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed routes: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed routes: parse json: %w", err)
	}

	for i, r := range data.Routes {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("seed routes: route at index %d: name cannot be empty", i+1)
		}
		for j, s := range r.Stops {
			if s.Sequence < 1 {
				return fmt.Errorf("seed routes: route %q stop at index %d: invalid sequence %d", r.Name, j+1, s.Sequence)
			}
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed routes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range data.Areas {
		if _, err := tx.Exec(`
			INSERT INTO areas (area_id, name) VALUES ($1, $2)
			ON CONFLICT (area_id) DO UPDATE SET name = EXCLUDED.name;
		`, a.AreaID, a.Name); err != nil {
			return fmt.Errorf("seed routes: insert area %q: %w", a.Name, err)
		}
	}

	for _, v := range data.Vehicles {
		if _, err := tx.Exec(`
			INSERT INTO vehicles (vehicle_id, name, max_weight_kg, max_volume_m3, depot_lat, depot_lon)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (vehicle_id) DO UPDATE SET
				name = EXCLUDED.name,
				max_weight_kg = EXCLUDED.max_weight_kg,
				max_volume_m3 = EXCLUDED.max_volume_m3,
				depot_lat = EXCLUDED.depot_lat,
				depot_lon = EXCLUDED.depot_lon;
		`, v.VehicleID, v.Name, v.MaxWeightKg, v.MaxVolumeM3, v.DepotLat, v.DepotLon); err != nil {
			return fmt.Errorf("seed routes: insert vehicle %q: %w", v.Name, err)
		}
	}

	for _, c := range data.Customers {
		if _, err := tx.Exec(`
			INSERT INTO customers (customer_id, name, city, lat, lon, area_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (customer_id) DO UPDATE SET
				name = EXCLUDED.name,
				city = EXCLUDED.city,
				lat = EXCLUDED.lat,
				lon = EXCLUDED.lon,
				area_id = EXCLUDED.area_id;
		`, c.CustomerID, c.Name, c.City, c.Lat, c.Lon, c.AreaID); err != nil {
			return fmt.Errorf("seed routes: insert customer %q: %w", c.Name, err)
		}
	}

	for _, r := range data.Routes {
		state := r.State
		if state == "" {
			state = "draft"
		}
		if _, err := tx.Exec(`
			INSERT INTO routes (route_id, name, state, vehicle_id, area_id, batch_ref)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (route_id) DO NOTHING;
		`, r.RouteID, r.Name, state, r.VehicleID, r.AreaID, r.BatchRef); err != nil {
			return fmt.Errorf("seed routes: insert route %q: %w", r.Name, err)
		}

		for _, s := range r.Stops {
			if _, err := tx.Exec(`
				INSERT INTO route_stops (stop_id, route_id, sequence, customer_id, priority,
					window_start, window_end, weight_kg, volume_m3, delivery_count)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (stop_id) DO NOTHING;
			`, s.StopID, r.RouteID, s.Sequence, s.CustomerID, s.Priority,
				s.WindowStart, s.WindowEnd, s.WeightKg, s.VolumeM3, s.DeliveryCount); err != nil {
				return fmt.Errorf("seed routes: insert stop for route %q: %w", r.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed routes: commit tx: %w", err)
	}

	return nil
}
