package domain

import "github.com/google/uuid"

// Fulfillment state of a shipment.
type ShipmentState string

const (
	ShipmentPlanned    ShipmentState = "planned"
	ShipmentDelivered  ShipmentState = "delivered"
	ShipmentSuperseded ShipmentState = "superseded"
)

// One quantity line of a shipment carrying per-unit weight and volume.
type ShipmentLine struct {
	Product      string
	Quantity     int
	UnitWeightKg float64
	UnitVolumeM3 float64
}

// A deliverable unit (goods for one customer) attached to a route stop.
// OriginID links a split shipment back to the shipment it was carved from.
type Shipment struct {
	ID         uuid.UUID
	StopID     uuid.UUID
	CustomerID uuid.UUID
	State      ShipmentState
	Note       string
	OriginID   *uuid.UUID
	Lines      []ShipmentLine
}

// Quantity is the total quantity over all lines.
func (s *Shipment) Quantity() int {
	var total int
	for _, l := range s.Lines {
		total += l.Quantity
	}
	return total
}

// WeightKg is the aggregate weight, derived from lines on demand.
func (s *Shipment) WeightKg() float64 {
	var total float64
	for _, l := range s.Lines {
		total += float64(l.Quantity) * l.UnitWeightKg
	}
	return total
}

// VolumeM3 is the aggregate volume, derived from lines on demand.
func (s *Shipment) VolumeM3() float64 {
	var total float64
	for _, l := range s.Lines {
		total += float64(l.Quantity) * l.UnitVolumeM3
	}
	return total
}
