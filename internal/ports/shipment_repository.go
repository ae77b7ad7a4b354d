package ports

import (
	"context"
	"transport-routing-service/internal/domain"

	"github.com/google/uuid"
)

// ShipmentSplit pairs a superseded oversized shipment with its replacements.
type ShipmentSplit struct {
	Original *domain.Shipment
	Splits   []*domain.Shipment
}

// Port: boundary for shipment retrieval and the shipment-split write path.
type ShipmentRepository interface {
	// ListByRoute returns all shipments attached to the route's stops.
	ListByRoute(ctx context.Context, routeID uuid.UUID) ([]*domain.Shipment, error)

	// SaveSplits persists the full outcome of an oversized-shipment scan as
	// one atomic unit: every superseded original with its replacement
	// shipments, the stops created for them, and the updated aggregates on
	// the touched stops. Either the whole scan commits or none of it does.
	SaveSplits(ctx context.Context, splits []ShipmentSplit, newStops []*domain.RouteStop, touched []*domain.RouteStop) error
}
