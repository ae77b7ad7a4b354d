package handlers

import (
	"context"
	"net/http"

	"transport-routing-service/internal/api/dto"
	"transport-routing-service/internal/domain"
	"transport-routing-service/internal/ports"
	"transport-routing-service/internal/services"

	"github.com/google/uuid"
)

// RouteHandler exposes route retrieval and the planner's route-scoped
// operations. Handlers stay thin: decode, delegate, encode.
type RouteHandler struct {
	Repo    ports.RouteRepository
	Planner *services.Planner
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	route, err := h.Repo.GetRoute(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, "get route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRouteResponse(route))
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	state := domain.RouteState(r.URL.Query().Get("state"))
	if state == "" {
		state = domain.RouteDraft
	}

	routes, err := h.Repo.ListRoutesByState(r.Context(), state)
	if err != nil {
		writeDomainError(w, r, "list routes", err)
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, route := range routes {
		res.Routes = append(res.Routes, toRouteResponse(route))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	h.sequenceOp(w, r, "optimize route", h.Planner.Optimize)
}

func (h *RouteHandler) SuggestSequence(w http.ResponseWriter, r *http.Request) {
	h.sequenceOp(w, r, "suggest sequence", h.Planner.SuggestSequence)
}

func (h *RouteHandler) sequenceOp(w http.ResponseWriter, r *http.Request, op string, run func(context.Context, uuid.UUID) (domain.SequenceResult, error)) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	res, err := run(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.OperationResponse{
		Disposition: string(res.Disposition),
		Message:     res.Message,
		StopOrder:   res.StopOrder,
	})
}

func (h *RouteHandler) OptimizeByDistance(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.Planner.OptimizeByDistance(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, "optimize by distance", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.DistanceOptimizeResponse{
		Disposition: string(res.Disposition),
		Message:     res.Message,
		BeforeKm:    res.BeforeKm,
		AfterKm:     res.AfterKm,
	})
}

func (h *RouteHandler) CalculateTiming(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.Planner.CalculateTiming(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, "calculate timing", err)
		return
	}

	out := dto.TimingResponse{Disposition: string(res.Disposition), Message: res.Message}
	for _, t := range res.Timings {
		out.Timings = append(out.Timings, dto.StopTimingResponse{
			StopID: t.StopID, Arrival: t.Arrival, Departure: t.Departure,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *RouteHandler) SplitForCapacity(w http.ResponseWriter, r *http.Request) {
	h.partitionOp(w, r, "split for capacity", h.Planner.SplitForCapacity)
}

func (h *RouteHandler) SplitByArea(w http.ResponseWriter, r *http.Request) {
	h.partitionOp(w, r, "split by area", h.Planner.SplitByArea)
}

func (h *RouteHandler) SmartSplitCombine(w http.ResponseWriter, r *http.Request) {
	h.partitionOp(w, r, "smart split", h.Planner.SmartSplitCombine)
}

func (h *RouteHandler) CombineAdjacentAreas(w http.ResponseWriter, r *http.Request) {
	h.partitionOp(w, r, "combine areas", h.Planner.CombineAdjacentAreas)
}

func (h *RouteHandler) partitionOp(w http.ResponseWriter, r *http.Request, op string, run func(context.Context, uuid.UUID) (domain.PartitionResult, error)) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	res, err := run(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.OperationResponse{
		Disposition:     string(res.Disposition),
		Message:         res.Message,
		CreatedRouteIDs: res.CreatedRouteIDs,
	})
}

func (h *RouteHandler) HandleOversizedShipments(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	res, err := h.Planner.HandleOversizedShipments(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, "handle oversized shipments", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.OversizedResponse{
		Disposition:      string(res.Disposition),
		Message:          res.Message,
		SplitShipmentIDs: res.SplitShipmentIDs,
		CreatedStopIDs:   res.CreatedStopIDs,
	})
}

func (h *RouteHandler) Transition(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.State == "" {
		writeError(w, r, http.StatusBadRequest, "state is required")
		return
	}

	out, err := h.Planner.TransitionRoute(r.Context(), routeID, domain.RouteState(req.State))
	if err != nil {
		writeDomainError(w, r, "transition route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.OperationResponse{
		Disposition: string(out.Disposition),
		Message:     out.Message,
	})
}

func (h *RouteHandler) AdjustStop(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stopID, ok := pathUUID(w, r, "stopID")
	if !ok {
		return
	}

	var req dto.AdjustStopRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.Planner.AdjustStop(r.Context(), routeID, stopID, services.AdjustStopRequest{
		Reason:      req.Reason,
		Sequence:    req.Sequence,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
	})
	if err != nil {
		writeDomainError(w, r, "adjust stop", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.OperationResponse{
		Disposition: string(out.Disposition),
		Message:     out.Message,
	})
}

func (h *RouteHandler) ApplyStopAdjustment(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stopID, ok := pathUUID(w, r, "stopID")
	if !ok {
		return
	}

	out, err := h.Planner.ApplyStopAdjustment(r.Context(), routeID, stopID)
	if err != nil {
		writeDomainError(w, r, "apply stop adjustment", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.OperationResponse{
		Disposition: string(out.Disposition),
		Message:     out.Message,
	})
}

func toRouteResponse(route *domain.Route) dto.RouteResponse {
	res := dto.RouteResponse{
		RouteID:     route.ID,
		Name:        route.Name,
		State:       string(route.State),
		AreaName:    route.AreaName,
		BatchRef:    route.BatchRef,
		DepartAt:    route.DepartAt,
		TotalWeight: route.TotalWeightKg(),
		TotalVolume: route.TotalVolumeM3(),
		Stops:       make([]dto.StopResponse, 0, len(route.Stops)),
	}
	if route.Vehicle != nil {
		res.VehicleName = route.Vehicle.Name
	}
	for _, s := range route.Stops {
		res.Stops = append(res.Stops, dto.StopResponse{
			StopID:           s.ID,
			Sequence:         s.Sequence,
			CustomerName:     s.CustomerName,
			City:             s.City,
			AreaName:         s.AreaName,
			Lat:              s.Location.Lat,
			Lon:              s.Location.Lon,
			Priority:         s.Priority,
			WindowStart:      s.WindowStart,
			WindowEnd:        s.WindowEnd,
			WeightKg:         s.WeightKg,
			VolumeM3:         s.VolumeM3,
			DeliveryCount:    s.DeliveryCount,
			State:            string(s.State),
			PlannedArrival:   s.PlannedArrival,
			PlannedDeparture: s.PlannedDeparture,
			HasAdjustment:    s.Adjustment != nil,
		})
	}
	return res
}
