package dto

import (
	"time"

	"github.com/google/uuid"
)

type StopResponse struct {
	StopID           uuid.UUID  `json:"stop_id"`
	Sequence         int        `json:"sequence"`
	CustomerName     string     `json:"customer_name"`
	City             string     `json:"city"`
	AreaName         string     `json:"area_name,omitempty"`
	Lat              float64    `json:"lat"`
	Lon              float64    `json:"lon"`
	Priority         bool       `json:"priority"`
	WindowStart      *time.Time `json:"window_start,omitempty"`
	WindowEnd        *time.Time `json:"window_end,omitempty"`
	WeightKg         float64    `json:"weight_kg"`
	VolumeM3         float64    `json:"volume_m3"`
	DeliveryCount    int        `json:"delivery_count"`
	State            string     `json:"state"`
	PlannedArrival   *time.Time `json:"planned_arrival,omitempty"`
	PlannedDeparture *time.Time `json:"planned_departure,omitempty"`
	HasAdjustment    bool       `json:"has_adjustment"`
}

type RouteResponse struct {
	RouteID     uuid.UUID      `json:"route_id"`
	Name        string         `json:"name"`
	State       string         `json:"state"`
	VehicleName string         `json:"vehicle_name,omitempty"`
	AreaName    string         `json:"area_name,omitempty"`
	BatchRef    string         `json:"batch_ref,omitempty"`
	DepartAt    *time.Time     `json:"depart_at,omitempty"`
	TotalWeight float64        `json:"total_weight_kg"`
	TotalVolume float64        `json:"total_volume_m3"`
	Stops       []StopResponse `json:"stops"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

// OperationResponse reports the disposition of a planning operation plus
// whatever the operation produced.
type OperationResponse struct {
	Disposition     string      `json:"disposition"`
	Message         string      `json:"message"`
	CreatedRouteIDs []uuid.UUID `json:"created_route_ids,omitempty"`
	StopOrder       []uuid.UUID `json:"stop_order,omitempty"`
}

type StopTimingResponse struct {
	StopID    uuid.UUID `json:"stop_id"`
	Arrival   time.Time `json:"arrival"`
	Departure time.Time `json:"departure"`
}

type TimingResponse struct {
	Disposition string               `json:"disposition"`
	Message     string               `json:"message"`
	Timings     []StopTimingResponse `json:"timings,omitempty"`
}

type DistanceOptimizeResponse struct {
	Disposition string  `json:"disposition"`
	Message     string  `json:"message"`
	BeforeKm    float64 `json:"before_km"`
	AfterKm     float64 `json:"after_km"`
}

type OversizedResponse struct {
	Disposition      string      `json:"disposition"`
	Message          string      `json:"message"`
	SplitShipmentIDs []uuid.UUID `json:"split_shipment_ids,omitempty"`
	CreatedStopIDs   []uuid.UUID `json:"created_stop_ids,omitempty"`
}

type TransitionRequest struct {
	State string `json:"state"`
}

type AdjustStopRequest struct {
	Reason      string     `json:"reason"`
	Sequence    *int       `json:"sequence"`
	WindowStart *time.Time `json:"window_start"`
	WindowEnd   *time.Time `json:"window_end"`
}
