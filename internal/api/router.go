package api

import (
	"database/sql"
	"net/http"

	"transport-routing-service/internal/api/handlers"
)

// NewRouter wires every endpoint onto a ServeMux and wraps the result in the
// request logging middleware.
func NewRouter(db *sql.DB, routes *handlers.RouteHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /ready", handlers.Ready(db))

	mux.HandleFunc("GET /routes", routes.List)
	mux.HandleFunc("GET /routes/{id}", routes.Get)

	mux.HandleFunc("POST /routes/{id}/optimize", routes.Optimize)
	mux.HandleFunc("POST /routes/{id}/suggest", routes.SuggestSequence)
	mux.HandleFunc("POST /routes/{id}/optimize-distance", routes.OptimizeByDistance)
	mux.HandleFunc("POST /routes/{id}/timing", routes.CalculateTiming)

	mux.HandleFunc("POST /routes/{id}/split", routes.SplitForCapacity)
	mux.HandleFunc("POST /routes/{id}/split-by-area", routes.SplitByArea)
	mux.HandleFunc("POST /routes/{id}/smart-split", routes.SmartSplitCombine)
	mux.HandleFunc("POST /routes/{id}/combine-areas", routes.CombineAdjacentAreas)
	mux.HandleFunc("POST /routes/{id}/split-oversized", routes.HandleOversizedShipments)

	mux.HandleFunc("POST /routes/{id}/transition", routes.Transition)
	mux.HandleFunc("POST /routes/{id}/stops/{stopID}/adjustment", routes.AdjustStop)
	mux.HandleFunc("POST /routes/{id}/stops/{stopID}/adjustment/apply", routes.ApplyStopAdjustment)

	return loggingMiddleware(mux)
}
