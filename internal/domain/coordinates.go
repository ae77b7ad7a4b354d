package domain

// Geographic coordinates (WGS 84 latitude/longitude).
// The zero value (0,0) is the "unknown location" sentinel used throughout
// the planner: distance calculations involving it return a fixed huge value
// so unknown stops sort last instead of failing.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Known reports whether the coordinates carry a real location.
func (c Coordinates) Known() bool { return c.Lat != 0 || c.Lon != 0 }
