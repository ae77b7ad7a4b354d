package domain

import "github.com/google/uuid"

// Named geographic coverage zone. Areas are only a grouping key for
// partitioning and combining; adjacency between two areas is decided by
// proximity of their member customer coordinates, not by explicit links.
type Area struct {
	ID   uuid.UUID
	Name string
}

// Customer location data as exposed by the customer directory, used to
// refresh stop coordinates before geography-aware sequencing.
type CustomerLocation struct {
	Coords   Coordinates
	City     string
	AreaID   *uuid.UUID
	AreaName string
}
