// Package checker validates a DispatchResult against the hard
// constraints of spec.md §4.6 before the simulation driver applies it.
// Any failure is fatal to the instance (§7); C6 is a warning only.
package checker

import (
	"fmt"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
)

// Violation is a single constraint failure, carrying the constraint id
// for callers that need to distinguish fatal from warning severity.
type Violation struct {
	Constraint string // "C1".."C6"
	DriverID   string
	Detail     string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: driver %s: %s", v.Constraint, v.DriverID, v.Detail)
}

// Check runs C1-C6 against result for the given snapshot. Fatal
// violations (C1-C5) are returned as a non-empty slice; C6 is logged as
// a warning and never included in the returned slice.
func Check(in *domain.InputInform, result *domain.DispatchResult, orders *domain.OrderTable, log *obslog.Logger) []*Violation {
	var violations []*Violation

	violations = append(violations, checkC1(in, result)...)
	for driverID, d := range in.Drivers {
		violations = append(violations, checkC2(driverID, d, result)...)
		violations = append(violations, checkC3(driverID, d, result, orders)...)
		violations = append(violations, checkC5(driverID, result, orders)...)
	}
	violations = append(violations, checkC4(in, result)...)
	checkC6(in, result, log)

	return violations
}

// C1: every driver id in the input appears exactly once in both output maps.
func checkC1(in *domain.InputInform, result *domain.DispatchResult) []*Violation {
	var out []*Violation
	for id := range in.Drivers {
		if _, ok := result.Destinations[id]; !ok {
			out = append(out, &Violation{Constraint: "C1", DriverID: id, Detail: "missing from destinations map"})
		}
		if _, ok := result.PlannedRoute[id]; !ok {
			out = append(out, &Violation{Constraint: "C1", DriverID: id, Detail: "missing from planned_route map"})
		}
	}
	for id := range result.Destinations {
		if _, ok := in.Drivers[id]; !ok {
			out = append(out, &Violation{Constraint: "C1", DriverID: id, Detail: "unknown driver id in destinations map"})
		}
	}
	return out
}

// C2: committed-destination immutability / in-transit destination presence.
func checkC2(driverID string, d *domain.Driver, result *domain.DispatchResult) []*Violation {
	newDest, ok := result.Destinations[driverID]
	if !ok {
		return nil // already flagged by C1
	}
	if d.Destination != nil {
		if newDest == nil || newDest.LocationID != d.Destination.LocationID || newDest.ArriveTime != d.Destination.ArriveTime {
			return []*Violation{{Constraint: "C2", DriverID: driverID, Detail: "committed destination was altered"}}
		}
		return nil
	}
	if d.InTransit() && newDest == nil {
		return []*Violation{{Constraint: "C2", DriverID: driverID, Detail: "in-transit driver given no destination"}}
	}
	return nil
}

// C3: capacity invariant along [destination] ++ planned_route.
func checkC3(driverID string, d *domain.Driver, result *domain.DispatchResult, orders *domain.OrderTable) []*Violation {
	route := fullRoute(driverID, result)
	load := d.CarriedWeight(orders)
	if load < 0 || load > d.Capacity {
		return []*Violation{{Constraint: "C3", DriverID: driverID, Detail: "initial carrying load violates capacity"}}
	}
	for _, n := range route {
		for _, oid := range n.PickupOrders {
			if o, ok := orders.Get(oid); ok {
				load += o.Demand
			}
		}
		for _, oid := range n.DeliveryOrders {
			if o, ok := orders.Get(oid); ok {
				load -= o.Demand
			}
		}
		if load > d.Capacity {
			return []*Violation{{Constraint: "C3", DriverID: driverID, Detail: "running load exceeds capacity"}}
		}
		if load < 0 {
			return []*Violation{{Constraint: "C3", DriverID: driverID, Detail: "running load dropped below zero"}}
		}
	}
	return nil
}

// C4: no order id appears in more than one pickup_orders position across
// the whole dispatch result.
func checkC4(in *domain.InputInform, result *domain.DispatchResult) []*Violation {
	var out []*Violation
	seen := make(map[string]string) // order id -> driver id first seen on
	for driverID := range in.Drivers {
		for _, n := range fullRoute(driverID, result) {
			for _, oid := range n.PickupOrders {
				if prior, ok := seen[oid]; ok {
					out = append(out, &Violation{Constraint: "C4", DriverID: driverID, Detail: fmt.Sprintf("order %s already picked up on driver %s", oid, prior)})
					continue
				}
				seen[oid] = driverID
			}
		}
	}
	return out
}

// C5: every node's pickup/delivery orders reference this node's location.
func checkC5(driverID string, result *domain.DispatchResult, orders *domain.OrderTable) []*Violation {
	var out []*Violation
	for _, n := range fullRoute(driverID, result) {
		if err := n.Validate(orders); err != nil {
			out = append(out, &Violation{Constraint: "C5", DriverID: driverID, Detail: err.Error()})
		}
	}
	return out
}

// C6: adjacent duplicate nodes. Warning only.
func checkC6(in *domain.InputInform, result *domain.DispatchResult, log *obslog.Logger) {
	for driverID := range in.Drivers {
		if domain.HasAdjacentDuplicates(fullRoute(driverID, result)) && log != nil {
			log.Warnw("C6: adjacent duplicate nodes present, should be merged", "driver_id", driverID)
		}
	}
}

func fullRoute(driverID string, result *domain.DispatchResult) []domain.Node {
	var route []domain.Node
	if dest, ok := result.Destinations[driverID]; ok && dest != nil {
		route = append(route, *dest)
	}
	route = append(route, result.PlannedRoute[driverID]...)
	return route
}
