package ports

import (
	"context"
	"transport-routing-service/internal/domain"

	"github.com/google/uuid"
)

// Port: boundary for loading and persisting routes with their stops.
// The narrow surface is deliberate: the planner reads one route at the start
// of an operation and writes results once at the end.
type RouteRepository interface {
	// GetRoute returns the route with its stops in sequence order and its
	// vehicle populated. Returns domain.ErrNotFound if it does not exist.
	GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error)

	// ListRoutesByState returns routes in the given lifecycle state.
	ListRoutesByState(ctx context.Context, state domain.RouteState) ([]*domain.Route, error)

	// SaveRoute persists sequence, timing, adjustment and state changes of a
	// route and its stops.
	SaveRoute(ctx context.Context, route *domain.Route) error

	// SavePartition atomically persists the outcome of a split/combine:
	// the new sub-routes with their reassigned stops plus the parent's final
	// state. Either everything commits or nothing does.
	SavePartition(ctx context.Context, parent *domain.Route, subRoutes []*domain.Route) error
}
