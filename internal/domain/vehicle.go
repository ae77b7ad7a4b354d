package domain

import "github.com/google/uuid"

// Delivery vehicle with hard capacity limits and a home depot.
type Vehicle struct {
	ID          uuid.UUID
	Name        string
	MaxWeightKg float64
	MaxVolumeM3 float64
	Depot       Coordinates
}

// Fits reports whether a load of the given weight and volume is within
// the vehicle's capacity. A zero limit means "unlimited" for that dimension.
func (v *Vehicle) Fits(weightKg, volumeM3 float64) bool {
	if v.MaxWeightKg > 0 && weightKg > v.MaxWeightKg {
		return false
	}
	if v.MaxVolumeM3 > 0 && volumeM3 > v.MaxVolumeM3 {
		return false
	}
	return true
}
