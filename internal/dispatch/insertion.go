package dispatch

import (
	"math"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/geo"
)

func point(loc domain.Location) geo.Point { return geo.Point{Lat: loc.Lat, Lng: loc.Lng} }

// bestInsertionIndex finds the index in [minIndex, len(nodes)] that
// minimises the additional haversine path length from inserting a stop
// at newLoc, per spec.md §4.4 Phase 3. Ties favour the lowest index.
func bestInsertionIndex(nodes []domain.Node, minIndex int, newLoc domain.Location, locs map[string]domain.Location) int {
	if minIndex < 0 {
		minIndex = 0
	}
	if len(nodes) == 0 {
		return 0
	}
	bestIdx := minIndex
	bestCost := math.Inf(1)
	for idx := minIndex; idx <= len(nodes); idx++ {
		cost := insertionCost(nodes, idx, newLoc, locs)
		if cost < bestCost {
			bestCost = cost
			bestIdx = idx
		}
	}
	return bestIdx
}

func insertionCost(nodes []domain.Node, idx int, newLoc domain.Location, locs map[string]domain.Location) float64 {
	var cost float64
	if idx > 0 {
		prev := locs[nodes[idx-1].LocationID]
		cost += geo.HaversineKM(point(prev), point(newLoc))
		if idx < len(nodes) {
			next := locs[nodes[idx].LocationID]
			cost += geo.HaversineKM(point(newLoc), point(next))
			cost -= geo.HaversineKM(point(prev), point(next))
		}
	} else if len(nodes) > 0 {
		next := locs[nodes[0].LocationID]
		cost += geo.HaversineKM(point(newLoc), point(next))
	}
	return cost
}

// insertNode returns a new slice with n inserted at idx.
func insertNode(nodes []domain.Node, idx int, n domain.Node) []domain.Node {
	out := make([]domain.Node, 0, len(nodes)+1)
	out = append(out, nodes[:idx]...)
	out = append(out, n)
	out = append(out, nodes[idx:]...)
	return out
}
