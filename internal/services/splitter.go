package services

import (
	"fmt"
	"math"

	"transport-routing-service/internal/domain"

	"github.com/google/uuid"
)

// SplitShipment breaks a shipment that alone exceeds the vehicle's capacity
// into several smaller shipments whose combined quantity equals the original.
//
// The split count is max(ceil(weight/maxWeight), ceil(volume/maxVolume), 1),
// capped at maxSplits. Each line's quantity is divided evenly across the
// splits with the final split absorbing the remainder. Split shipments carry
// a provenance note back to the original, which is marked superseded.
//
// Returns nil when no split is needed: the shipment already fits the vehicle
// or its total quantity is non-positive.
func SplitShipment(s *domain.Shipment, v *domain.Vehicle, maxSplits int) []*domain.Shipment {
	if s.Quantity() <= 0 {
		return nil
	}
	if v.Fits(s.WeightKg(), s.VolumeM3()) {
		return nil
	}

	splits := 1
	if v.MaxWeightKg > 0 {
		if n := int(math.Ceil(s.WeightKg() / v.MaxWeightKg)); n > splits {
			splits = n
		}
	}
	if v.MaxVolumeM3 > 0 {
		if n := int(math.Ceil(s.VolumeM3() / v.MaxVolumeM3)); n > splits {
			splits = n
		}
	}
	if splits > maxSplits {
		splits = maxSplits
	}
	if splits < 2 {
		return nil
	}

	out := make([]*domain.Shipment, splits)
	for i := range out {
		origin := s.ID
		out[i] = &domain.Shipment{
			ID:         uuid.New(),
			StopID:     s.StopID,
			CustomerID: s.CustomerID,
			State:      domain.ShipmentPlanned,
			Note:       fmt.Sprintf("split %d/%d of shipment %s", i+1, splits, s.ID),
			OriginID:   &origin,
		}
	}

	// Divide each line evenly; the last split takes the remainder so the
	// total quantity round-trips exactly.
	for _, line := range s.Lines {
		per := line.Quantity / splits
		rest := line.Quantity - per*(splits-1)
		for i := range out {
			qty := per
			if i == splits-1 {
				qty = rest
			}
			if qty == 0 {
				continue
			}
			out[i].Lines = append(out[i].Lines, domain.ShipmentLine{
				Product:      line.Product,
				Quantity:     qty,
				UnitWeightKg: line.UnitWeightKg,
				UnitVolumeM3: line.UnitVolumeM3,
			})
		}
	}

	s.State = domain.ShipmentSuperseded
	return out
}
