// Package replay implements driver timeline replay: given a driver's
// committed route and a "from" time, deterministically reconstruct
// where the driver was/will be, what it carried, and what service
// events it crossed, at any query time (spec.md §4.2).
package replay

import (
	"github.com/YJFKD/Food-delivery-simulator/internal/apperrors"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

// Stop is one entry of a replayed timeline: either the driver's current
// location (Node == nil) or a committed destination/planned-route node.
type Stop struct {
	LocationID string
	Arrive     int64
	Leave      int64
	Node       *domain.Node // nil only for the synthetic current-location entry
}

// Timeline is the ordered, fully-timed replay of a driver's committed
// route from a given t0. Replay is a pure function of its inputs.
type Timeline struct {
	Stops []Stop
}

// Build replays driver d from t0 against travel map tm, consulting
// orders for each stop's service time. Any unknown travel-map pair is
// logged as a replay inconsistency and that leg is treated as traversed
// instantly (§7); it never aborts the simulation.
func Build(d *domain.Driver, t0 int64, tm *travelmap.Map, orders *domain.OrderTable, log *obslog.Logger) Timeline {
	var stops []Stop

	if !d.InTransit() {
		stops = append(stops, Stop{
			LocationID: d.CurrentLocationID,
			Arrive:     d.ArriveTimeAtCurrentLocation,
			Leave:      d.LeaveTimeAtCurrentLocation,
		})
	}
	if d.Destination != nil {
		dest := *d.Destination
		stops = append(stops, Stop{LocationID: dest.LocationID, Node: &dest})
	}
	for i := range d.PlannedRoute {
		n := d.PlannedRoute[i]
		stops = append(stops, Stop{LocationID: n.LocationID, Node: &n})
	}

	if len(stops) == 0 {
		return Timeline{}
	}

	for i := range stops {
		if i == 0 {
			if stops[i].Node == nil {
				// Driver was already servicing/parked here; it simply
				// hasn't departed yet if it finished before t0.
				stops[i].Leave = maxInt64(d.LeaveTimeAtCurrentLocation, t0)
			} else {
				// Mid-transit: first element is the committed destination.
				arrive := stops[i].Node.ArriveTime
				if arrive < t0 {
					if log != nil {
						log.Warnw("replay inconsistency: destination arrival precedes query time, treating leg as instant",
							"driver_id", d.ID, "location_id", stops[i].LocationID, "arrive", arrive, "t0", t0)
					}
					arrive = t0
				}
				stops[i].Arrive = arrive
				stops[i].Leave = arrive + stops[i].Node.ServiceTime(orders)
			}
			continue
		}

		prev := stops[i-1]
		travelTime, err := tm.Time(prev.LocationID, stops[i].LocationID)
		if err != nil {
			if log != nil {
				log.Errorw("replay inconsistency: unknown travel-map pair, treating leg as instant",
					"from", prev.LocationID, "to", stops[i].LocationID, "err", err)
			}
			_ = apperrors.ReplayInconsistencyError(err.Error())
			travelTime = 0
		}
		arrive := prev.Leave + travelTime
		var svc int64
		if stops[i].Node != nil {
			svc = stops[i].Node.ServiceTime(orders)
		}
		stops[i].Arrive = arrive
		stops[i].Leave = arrive + svc
	}

	return Timeline{Stops: stops}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Position returns the driver's location at tQuery, or ("", true) if
// the driver is in transit between two stops.
func (tl Timeline) Position(tQuery int64) (locationID string, inTransit bool) {
	if len(tl.Stops) == 0 {
		return "", true
	}
	for i, s := range tl.Stops {
		if tQuery >= s.Arrive && tQuery <= s.Leave {
			return s.LocationID, false
		}
		if i < len(tl.Stops)-1 {
			next := tl.Stops[i+1]
			if tQuery > s.Leave && tQuery < next.Arrive {
				return "", true
			}
		}
	}
	last := tl.Stops[len(tl.Stops)-1]
	if tQuery > last.Leave {
		return last.LocationID, false
	}
	return "", true
}

// NextDestination returns the smallest stop with Arrive > tQuery, if any.
func (tl Timeline) NextDestination(tQuery int64) (Stop, bool) {
	for _, s := range tl.Stops {
		if s.Arrive > tQuery {
			return s, true
		}
	}
	return Stop{}, false
}

// CarriedOrders starts from the initial carrying set and applies every
// stop with Arrive <= tQuery: pickups add to the set, deliveries
// remove from it.
func (tl Timeline) CarriedOrders(initial []string, tQuery int64) []string {
	carrying := make(map[string]bool, len(initial))
	for _, id := range initial {
		carrying[id] = true
	}
	for _, s := range tl.Stops {
		if s.Node == nil || s.Arrive > tQuery {
			continue
		}
		for _, id := range s.Node.PickupOrders {
			carrying[id] = true
		}
		for _, id := range s.Node.DeliveryOrders {
			delete(carrying, id)
		}
	}
	out := make([]string, 0, len(carrying))
	for id := range carrying {
		out = append(out, id)
	}
	return out
}

// VisitedUpTo returns every stop with Leave <= tQuery, in timeline
// order, for History Log driver-position entries.
func (tl Timeline) VisitedUpTo(tQuery int64) []Stop {
	var out []Stop
	for _, s := range tl.Stops {
		if s.Leave <= tQuery {
			out = append(out, s)
		}
	}
	return out
}

// ServicedUpTo returns every stop with Arrive <= tQuery and a non-nil
// Node, for driving order-state transitions and History Log order
// entries.
func (tl Timeline) ServicedUpTo(tQuery int64) []Stop {
	var out []Stop
	for _, s := range tl.Stops {
		if s.Node != nil && s.Arrive <= tQuery {
			out = append(out, s)
		}
	}
	return out
}

// Remaining returns the driver's new current-location fields, committed
// destination, and planned route after replaying up to tQuery. Nodes
// already reached (Arrive <= tQuery and past Leave) are dropped from
// the planned route; a destination already reached (tQuery >= its
// Leave) is cleared so the next dispatch is free to assign a new one.
func (tl Timeline) Remaining(tQuery int64) (currentLocationID string, arrive, leave int64, destination *domain.Node, plannedRoute []domain.Node) {
	locID, inTransit := tl.Position(tQuery)
	if !inTransit {
		currentLocationID = locID
		for _, s := range tl.Stops {
			if s.LocationID == locID && tQuery >= s.Arrive && tQuery <= s.Leave {
				arrive, leave = s.Arrive, s.Leave
				break
			}
		}
	}

	for _, s := range tl.Stops {
		if s.Node == nil {
			continue
		}
		if s.Leave <= tQuery {
			continue // already fully serviced
		}
		if destination == nil && (inTransit || s.Arrive > tQuery || (s.Arrive <= tQuery && s.Leave > tQuery)) {
			n := *s.Node
			n.ArriveTime, n.LeaveTime = s.Arrive, s.Leave
			destination = &n
			continue
		}
		if destination != nil {
			plannedRoute = append(plannedRoute, *s.Node)
		}
	}
	return
}
