package dispatch

import (
	"sort"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/geo"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

// v1Policy is the alternate "nearest available driver, TSP over carried
// only" policy (spec.md §9 Design Notes): unallocated orders are simply
// appended to the nearest eligible driver's route rather than inserted
// at a cost-minimising position. Kept for implementers who want to
// diff against the source's original behaviour; v2 is the default.
type v1Policy struct {
	cfg Config
	log *obslog.Logger
}

func (p *v1Policy) Dispatch(in *domain.InputInform, tm *travelmap.Map) (*domain.DispatchResult, error) {
	allOrders := make(map[string]*domain.Order, len(in.UnallocatedOrders)+len(in.OngoingOrders))
	for id, o := range in.UnallocatedOrders {
		allOrders[id] = o
	}
	for id, o := range in.OngoingOrders {
		allOrders[id] = o
	}
	orders := orderTableOf(in)

	driverIDs := make([]string, 0, len(in.Drivers))
	for id := range in.Drivers {
		driverIDs = append(driverIDs, id)
	}
	sort.Strings(driverIDs)

	routes := make(map[string][]domain.Node, len(driverIDs))
	origDestination := make(map[string]*domain.Node, len(driverIDs))
	anchors := make(map[string]string, len(driverIDs))
	preMatched := make(map[string]bool)

	distByTravelMap := func(a, b string) float64 {
		d, err := tm.Distance(a, b)
		if err != nil {
			d = geo.HaversineKM(point(in.Locations[a]), point(in.Locations[b]))
		}
		return d
	}

	for _, driverID := range driverIDs {
		d := in.Drivers[driverID]
		anchor, hasAnchor := d.Anchor()
		anchors[driverID] = anchor

		// Orders the committed destination already delivers are served
		// there and are not routed again.
		atDestination := make(map[string]bool)
		if d.Destination != nil {
			for _, oid := range d.Destination.DeliveryOrders {
				atDestination[oid] = true
			}
		}
		byLocation := make(map[string][]string)
		for _, oid := range d.CarryingOrders {
			o, ok := allOrders[oid]
			if !ok || atDestination[oid] {
				continue
			}
			byLocation[o.DeliveryLocationID] = append(byLocation[o.DeliveryLocationID], oid)
		}
		points := make([]string, 0, len(byLocation))
		for loc := range byLocation {
			points = append(points, loc)
		}
		sort.Strings(points)

		var phase1 []domain.Node
		if hasAnchor && len(points) > 0 {
			for _, loc := range solveOpenTSP(anchor, points, distByTravelMap) {
				l := in.Locations[loc]
				sort.Strings(byLocation[loc])
				phase1 = append(phase1, domain.Node{LocationID: loc, Lat: l.Lat, Lng: l.Lng, DeliveryOrders: append([]string(nil), byLocation[loc]...)})
			}
		}

		var merged []domain.Node
		if d.Destination != nil {
			destCopy := *d.Destination
			origDestination[driverID] = &destCopy
			merged = append(merged, destCopy)
			for _, oid := range destCopy.PickupOrders {
				preMatched[oid] = true
				o, ok := allOrders[oid]
				if !ok {
					continue
				}
				l := in.Locations[o.DeliveryLocationID]
				merged = append(merged, domain.Node{LocationID: o.DeliveryLocationID, Lat: l.Lat, Lng: l.Lng, DeliveryOrders: []string{oid}})
			}
		}
		merged = append(merged, phase1...)
		routes[driverID] = merged
	}

	unallocIDs := make([]string, 0, len(in.UnallocatedOrders))
	for id := range in.UnallocatedOrders {
		if !preMatched[id] {
			unallocIDs = append(unallocIDs, id)
		}
	}
	sort.Strings(unallocIDs)

	for _, oid := range unallocIDs {
		o := in.UnallocatedOrders[oid]
		pickupLoc := in.Locations[o.PickupLocationID]

		best := ""
		bestDist := 0.0
		for _, id := range driverIDs {
			if len(routes[id]) >= p.cfg.SoftRouteCap {
				continue
			}
			dd := haversineAnchor(anchors[id], pickupLoc, in.Locations)
			if best == "" || dd < bestDist || (dd == bestDist && id < best) {
				best, bestDist = id, dd
			}
		}
		if best == "" {
			for _, id := range driverIDs {
				dd := haversineAnchor(anchors[id], pickupLoc, in.Locations)
				if best == "" || dd < bestDist || (dd == bestDist && id < best) {
					best, bestDist = id, dd
				}
			}
		}
		if best == "" {
			continue
		}

		deliveryLoc := in.Locations[o.DeliveryLocationID]
		routes[best] = append(routes[best],
			domain.Node{LocationID: o.PickupLocationID, Lat: pickupLoc.Lat, Lng: pickupLoc.Lng, PickupOrders: []string{oid}},
			domain.Node{LocationID: o.DeliveryLocationID, Lat: deliveryLoc.Lat, Lng: deliveryLoc.Lng, DeliveryOrders: []string{oid}},
		)
	}

	result := domain.NewDispatchResult()
	for _, driverID := range driverIDs {
		raw := routes[driverID]
		nodes := domain.MergeAdjacent(raw)
		if len(nodes) == 0 {
			result.Destinations[driverID] = nil
			result.PlannedRoute[driverID] = []domain.Node{}
			continue
		}
		head := nodes[0]
		if orig, ok := origDestination[driverID]; ok {
			head.ArriveTime = orig.ArriveTime
			head.LeaveTime = head.ArriveTime + head.ServiceTime(orders)
		}
		hc := head
		result.Destinations[driverID] = &hc
		rest := make([]domain.Node, len(nodes)-1)
		copy(rest, nodes[1:])
		result.PlannedRoute[driverID] = rest
	}

	return result, nil
}
