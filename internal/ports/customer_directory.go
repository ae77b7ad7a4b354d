package ports

import (
	"context"
	"transport-routing-service/internal/domain"

	"github.com/google/uuid"
)

// Port: lookup of a customer's current coordinates, city and area.
// Geography-aware sequencing refreshes stop locations through this boundary
// before walking the route.
type CustomerDirectory interface {
	Locate(ctx context.Context, customerID uuid.UUID) (domain.CustomerLocation, error)
}
