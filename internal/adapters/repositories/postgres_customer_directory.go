package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"transport-routing-service/internal/domain"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the CustomerDirectory port.
type PostgresCustomerDirectory struct{ DB *sql.DB }

func NewPostgresCustomerDirectory(db *sql.DB) *PostgresCustomerDirectory {
	return &PostgresCustomerDirectory{DB: db}
}

// Return the customer's current coordinates, city and area.
func (d *PostgresCustomerDirectory) Locate(ctx context.Context, customerID uuid.UUID) (domain.CustomerLocation, error) {
	query := `
	SELECT c.lat, c.lon, c.city, c.area_id, COALESCE(a.name, '')
	FROM customers c
	LEFT JOIN areas a ON a.area_id = c.area_id
	WHERE c.customer_id = $1;
	`
	var loc domain.CustomerLocation
	err := d.DB.QueryRowContext(ctx, query, customerID).Scan(
		&loc.Coords.Lat, &loc.Coords.Lon, &loc.City, &loc.AreaID, &loc.AreaName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CustomerLocation{}, fmt.Errorf("customer %s: %w", customerID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.CustomerLocation{}, fmt.Errorf("locate customer %s: %w", customerID, err)
	}
	return loc, nil
}
