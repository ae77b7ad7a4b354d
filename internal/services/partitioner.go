package services

import (
	"time"

	"transport-routing-service/internal/domain"

	"github.com/google/uuid"
)

// A set of stops sharing a grouping key (customer city or area). Groups are
// the unit of bin-packing and of area combination.
type StopGroup struct {
	Key      string
	AreaID   *uuid.UUID
	AreaName string
	Stops    []*domain.RouteStop
}

func (g StopGroup) WeightKg() float64 {
	var total float64
	for _, s := range g.Stops {
		total += s.WeightKg
	}
	return total
}

func (g StopGroup) VolumeM3() float64 {
	var total float64
	for _, s := range g.Stops {
		total += s.VolumeM3
	}
	return total
}

// BinPackStops splits stops into capacity-feasible buckets with a greedy
// first-fit walk: stops are sorted by the dispatch key, accumulated into the
// current bucket, and a new bucket starts whenever adding the next stop would
// exceed the vehicle's weight or volume limit.
//
// A single stop that alone exceeds capacity is a blocking condition: it is
// returned as oversized with no buckets, since only a shipment-level split
// can resolve it.
func BinPackStops(stops []*domain.RouteStop, v *domain.Vehicle, now time.Time) (buckets [][]*domain.RouteStop, oversized *domain.RouteStop) {
	sorted := SortStopsForDispatch(stops, now)

	var bucket []*domain.RouteStop
	var weight, volume float64

	for _, stop := range sorted {
		if !v.Fits(stop.WeightKg, stop.VolumeM3) {
			return nil, stop
		}

		if len(bucket) > 0 && !v.Fits(weight+stop.WeightKg, volume+stop.VolumeM3) {
			buckets = append(buckets, bucket)
			bucket = nil
			weight, volume = 0, 0
		}

		bucket = append(bucket, stop)
		weight += stop.WeightKg
		volume += stop.VolumeM3
	}

	if len(bucket) > 0 {
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// GroupStopsByCity groups stops by their customer city string (informal
// grouping). Groups appear in order of first occurrence; stops with no city
// form their own trailing group.
func GroupStopsByCity(stops []*domain.RouteStop) []StopGroup {
	return groupStops(stops, func(s *domain.RouteStop) string { return s.City })
}

// GroupStopsByArea groups stops by their customer's area reference.
// Stops without an area share a single "no area" group.
func GroupStopsByArea(stops []*domain.RouteStop) []StopGroup {
	groups := groupStops(stops, func(s *domain.RouteStop) string {
		if s.AreaID == nil {
			return ""
		}
		return s.AreaID.String()
	})
	for i := range groups {
		first := groups[i].Stops[0]
		groups[i].AreaID = first.AreaID
		groups[i].AreaName = first.AreaName
	}
	return groups
}

func groupStops(stops []*domain.RouteStop, keyOf func(*domain.RouteStop) string) []StopGroup {
	index := map[string]int{}
	var groups []StopGroup
	for _, s := range stops {
		key := keyOf(s)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, StopGroup{Key: key})
		}
		groups[i].Stops = append(groups[i].Stops, s)
	}
	return groups
}

// GroupsAdjacent reports whether two stop groups are close enough to combine
// into one route. Groups with no area are compatible by default; groups
// sharing an area id are trivially adjacent; groups with distinct areas are
// adjacent when the minimum distance between any pair of member customer
// coordinates is within maxKm. Unknown coordinates carry the sentinel
// distance and so never make two areas adjacent.
func GroupsAdjacent(a, b StopGroup, maxKm float64) bool {
	if a.AreaID == nil || b.AreaID == nil {
		return true
	}
	if *a.AreaID == *b.AreaID {
		return true
	}

	min := SentinelDistanceKm + 1.0
	for _, sa := range a.Stops {
		for _, sb := range b.Stops {
			if d := Distance(sa.Location, sb.Location); d < min {
				min = d
			}
		}
	}
	return min <= maxKm
}

// CombineGroups merges small, geographically adjacent groups into shared
// buckets to reduce route count. Each input group is expected to fit the
// vehicle on its own (overflowing groups must be bin-packed first, see
// SmartPartition).
//
// Greedy procedure: take the next unprocessed group as a seed, absorb every
// remaining unprocessed group that is adjacent to the seed and keeps the
// running weight/volume within capacity, then materialize the accumulated
// stops as one bucket.
func CombineGroups(groups []StopGroup, v *domain.Vehicle, maxKm float64) [][]*domain.RouteStop {
	processed := make([]bool, len(groups))
	var buckets [][]*domain.RouteStop

	for i := range groups {
		if processed[i] {
			continue
		}
		processed[i] = true

		seed := groups[i]
		stops := append([]*domain.RouteStop(nil), seed.Stops...)
		weight := seed.WeightKg()
		volume := seed.VolumeM3()

		for j := i + 1; j < len(groups); j++ {
			if processed[j] {
				continue
			}
			cand := groups[j]
			if !GroupsAdjacent(seed, cand, maxKm) {
				continue
			}
			if !v.Fits(weight+cand.WeightKg(), volume+cand.VolumeM3()) {
				continue
			}
			stops = append(stops, cand.Stops...)
			weight += cand.WeightKg()
			volume += cand.VolumeM3()
			processed[j] = true
		}

		buckets = append(buckets, stops)
	}

	return buckets
}

// SmartPartition runs the two-phase split-then-combine over a route's stops:
// every area group whose total exceeds capacity is bin-packed into multiple
// buckets first, then area combination runs over the remaining groups that
// already fit. An area is never considered for combination before its own
// overflow has been resolved.
func SmartPartition(stops []*domain.RouteStop, v *domain.Vehicle, now time.Time, maxKm float64) (buckets [][]*domain.RouteStop, oversized *domain.RouteStop) {
	groups := GroupStopsByArea(stops)

	var fitting []StopGroup
	for _, g := range groups {
		if v.Fits(g.WeightKg(), g.VolumeM3()) {
			fitting = append(fitting, g)
			continue
		}

		packed, over := BinPackStops(g.Stops, v, now)
		if over != nil {
			return nil, over
		}
		buckets = append(buckets, packed...)
	}

	buckets = append(buckets, CombineGroups(fitting, v, maxKm)...)
	return buckets, nil
}
