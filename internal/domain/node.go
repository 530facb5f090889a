package domain

// Node is one stop on a planned route. Orders are referenced by id,
// never by pointer, so a Node can be copied and compared cheaply and
// never creates a reference cycle back into the order table.
type Node struct {
	LocationID string
	Lat        float64
	Lng        float64

	PickupOrders   []string
	DeliveryOrders []string

	ArriveTime int64
	LeaveTime  int64
}

// ServiceTime sums the load time of every pickup order and the unload
// time of every delivery order at this node.
func (n Node) ServiceTime(orders *OrderTable) int64 {
	var total int64
	for _, id := range n.PickupOrders {
		if o, ok := orders.Get(id); ok {
			total += o.LoadTimeSec
		}
	}
	for _, id := range n.DeliveryOrders {
		if o, ok := orders.Get(id); ok {
			total += o.UnloadTimeSec
		}
	}
	return total
}

// Validate checks the node invariants from spec.md §3: every pickup
// order's pickup location must be this node, every delivery order's
// delivery location must be this node.
func (n Node) Validate(orders *OrderTable) error {
	for _, id := range n.PickupOrders {
		o, ok := orders.Get(id)
		if !ok {
			continue
		}
		if o.PickupLocationID != n.LocationID {
			return &NodeInvariantError{NodeID: n.LocationID, OrderID: id, Reason: "pickup_location_id mismatch"}
		}
	}
	for _, id := range n.DeliveryOrders {
		o, ok := orders.Get(id)
		if !ok {
			continue
		}
		if o.DeliveryLocationID != n.LocationID {
			return &NodeInvariantError{NodeID: n.LocationID, OrderID: id, Reason: "delivery_location_id mismatch"}
		}
	}
	return nil
}

type NodeInvariantError struct {
	NodeID  string
	OrderID string
	Reason  string
}

func (e *NodeInvariantError) Error() string {
	return "node " + e.NodeID + ", order " + e.OrderID + ": " + e.Reason
}

// MergeAdjacent collapses adjacent nodes sharing the same LocationID,
// concatenating their pickup/delivery lists. This is semantics-preserving
// per spec.md §3 and is a no-op on visitation semantics (property #7).
func MergeAdjacent(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nodes
	}
	out := make([]Node, 0, len(nodes))
	out = append(out, nodes[0])
	for _, n := range nodes[1:] {
		last := &out[len(out)-1]
		if last.LocationID == n.LocationID {
			last.PickupOrders = append(last.PickupOrders, n.PickupOrders...)
			last.DeliveryOrders = append(last.DeliveryOrders, n.DeliveryOrders...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// HasAdjacentDuplicates reports whether nodes contains two consecutive
// entries sharing a LocationID (checker C6, warning-only).
func HasAdjacentDuplicates(nodes []Node) bool {
	for i := 1; i < len(nodes); i++ {
		if nodes[i].LocationID == nodes[i-1].LocationID {
			return true
		}
	}
	return false
}
