// Package snapshot builds the dispatcher-facing InputInform value each
// tick (spec.md §4.4): partitioning orders into unallocated/ongoing,
// promoting newly-visible orders from INITIALIZATION to GENERATED, and
// deep-copying driver state so the dispatcher can never mutate the
// simulation's authoritative tables.
package snapshot

import (
	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
)

// Build produces the InputInform for curTime. Every order whose
// CreationTime <= curTime and still in StateInitialization is promoted
// to StateGenerated in place (the promotion is a simulation-driver side
// effect, not a pure function of the snapshot).
func Build(orders *domain.OrderTable, drivers *domain.DriverTable, locations *domain.LocationTable, curTime int64) *domain.InputInform {
	for _, id := range orders.ByState(domain.StateInitialization) {
		o, ok := orders.Get(id)
		if !ok || o.CreationTime > curTime {
			continue
		}
		_ = o.Transition(domain.StateGenerated)
	}

	in := &domain.InputInform{
		UnallocatedOrders: make(map[string]*domain.Order),
		OngoingOrders:     make(map[string]*domain.Order),
		Drivers:           make(map[string]*domain.Driver),
		Locations:         locations.Snapshot(),
		CurTime:           curTime,
	}

	for id, o := range orders.All() {
		switch o.State {
		case domain.StateGenerated:
			cp := *o
			in.UnallocatedOrders[id] = &cp
		case domain.StateOngoing:
			cp := *o
			in.OngoingOrders[id] = &cp
		}
	}

	for id, d := range drivers.All() {
		in.Drivers[id] = deepCopyDriver(d)
	}

	return in
}

func deepCopyDriver(d *domain.Driver) *domain.Driver {
	cp := *d
	cp.CarryingOrders = append([]string(nil), d.CarryingOrders...)
	if d.Destination != nil {
		dest := *d.Destination
		dest.PickupOrders = append([]string(nil), d.Destination.PickupOrders...)
		dest.DeliveryOrders = append([]string(nil), d.Destination.DeliveryOrders...)
		cp.Destination = &dest
	}
	cp.PlannedRoute = make([]domain.Node, len(d.PlannedRoute))
	for i, n := range d.PlannedRoute {
		nc := n
		nc.PickupOrders = append([]string(nil), n.PickupOrders...)
		nc.DeliveryOrders = append([]string(nil), n.DeliveryOrders...)
		cp.PlannedRoute[i] = nc
	}
	return &cp
}
