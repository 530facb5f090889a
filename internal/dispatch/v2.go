package dispatch

import (
	"math/rand"
	"sort"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/geo"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

// v2Policy is the reference insertion-heuristic policy (spec.md §4.4),
// the default dispatcher.
type v2Policy struct {
	cfg Config
	log *obslog.Logger
}

func (p *v2Policy) Dispatch(in *domain.InputInform, tm *travelmap.Map) (*domain.DispatchResult, error) {
	orders := orderTableOf(in)
	allOrders := make(map[string]*domain.Order, len(in.UnallocatedOrders)+len(in.OngoingOrders))
	for id, o := range in.UnallocatedOrders {
		allOrders[id] = o
	}
	for id, o := range in.OngoingOrders {
		allOrders[id] = o
	}

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

		// Phase 1: route carried orders. Orders the committed destination
		// already delivers are served there and are not routed again.
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
		for _, oids := range byLocation {
			sort.Strings(oids)
		}

		var phase1 []domain.Node
		if hasAnchor && len(points) > 0 {
			visitOrder := solveOpenTSP(anchor, points, distByTravelMap)
			for _, loc := range visitOrder {
				l := in.Locations[loc]
				phase1 = append(phase1, domain.Node{
					LocationID:     loc,
					Lat:            l.Lat,
					Lng:            l.Lng,
					DeliveryOrders: append([]string(nil), byLocation[loc]...),
				})
			}
		} else if len(points) > 0 {
			for _, loc := range points {
				l := in.Locations[loc]
				phase1 = append(phase1, domain.Node{
					LocationID:     loc,
					Lat:            l.Lat,
					Lng:            l.Lng,
					DeliveryOrders: append([]string(nil), byLocation[loc]...),
				})
			}
		}

		// Phase 2: honour pre-matched pickups. The committed destination
		// (if any) always leads the merged route, since Phase 1's anchor
		// already rooted the TSP there when the driver is in transit.
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
				merged = append(merged, domain.Node{
					LocationID:     o.DeliveryLocationID,
					Lat:            l.Lat,
					Lng:            l.Lng,
					DeliveryOrders: []string{oid},
				})
			}
		}
		merged = append(merged, phase1...)
		routes[driverID] = merged
	}

	// Phase 3: assign unallocated orders.
	unallocIDs := make([]string, 0, len(in.UnallocatedOrders))
	for id := range in.UnallocatedOrders {
		if !preMatched[id] {
			unallocIDs = append(unallocIDs, id)
		}
	}
	sort.Strings(unallocIDs)

	rng := rand.New(rand.NewSource(p.cfg.RandomSeed))

	for _, oid := range unallocIDs {
		if p.cfg.PerOrderReseed {
			rng = rand.New(rand.NewSource(p.cfg.RandomSeed))
		}
		o := in.UnallocatedOrders[oid]

		eligible := make([]string, 0, len(driverIDs))
		for _, id := range driverIDs {
			if len(routes[id]) < p.cfg.SoftRouteCap {
				eligible = append(eligible, id)
			}
		}
		if len(eligible) == 0 {
			eligible = driverIDs
		}
		if len(eligible) == 0 {
			continue
		}

		pickupLoc := in.Locations[o.PickupLocationID]
		candA := eligible[0]
		bestDist := haversineAnchor(anchors[candA], pickupLoc, in.Locations)
		for _, id := range eligible[1:] {
			dd := haversineAnchor(anchors[id], pickupLoc, in.Locations)
			if dd < bestDist || (dd == bestDist && id < candA) {
				bestDist = dd
				candA = id
			}
		}

		candB := eligible[0]
		for _, id := range eligible[1:] {
			if len(routes[id]) < len(routes[candB]) || (len(routes[id]) == len(routes[candB]) && id < candB) {
				candB = id
			}
		}

		chosen := candB
		if rng.Float64() < 0.5 {
			chosen = candA
			if len(routes[candA]) > p.cfg.TightRouteCap {
				chosen = candB
			}
		}

		minPickupIdx := 1
		if len(routes[chosen]) == 0 {
			minPickupIdx = 0
		}
		pIdx := bestInsertionIndex(routes[chosen], minPickupIdx, pickupLoc, in.Locations)
		pickupNode := domain.Node{
			LocationID:   o.PickupLocationID,
			Lat:          pickupLoc.Lat,
			Lng:          pickupLoc.Lng,
			PickupOrders: []string{oid},
		}
		routes[chosen] = insertNode(routes[chosen], pIdx, pickupNode)

		deliveryLoc := in.Locations[o.DeliveryLocationID]
		dIdx := bestInsertionIndex(routes[chosen], pIdx+1, deliveryLoc, in.Locations)
		deliveryNode := domain.Node{
			LocationID:     o.DeliveryLocationID,
			Lat:            deliveryLoc.Lat,
			Lng:            deliveryLoc.Lng,
			DeliveryOrders: []string{oid},
		}
		routes[chosen] = insertNode(routes[chosen], dIdx, deliveryNode)
	}

	// Phase 4: finalise.
	result := domain.NewDispatchResult()
	for _, driverID := range driverIDs {
		raw := routes[driverID]
		if domain.HasAdjacentDuplicates(raw) && p.log != nil {
			p.log.Warnw("adjacent duplicate nodes before merge", "driver_id", driverID)
		}
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

func haversineAnchor(anchorID string, to domain.Location, locs map[string]domain.Location) float64 {
	if anchorID == "" {
		return geo.HaversineKM(geo.Point{}, point(to))
	}
	return geo.HaversineKM(point(locs[anchorID]), point(to))
}
