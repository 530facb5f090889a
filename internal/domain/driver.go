package domain

import "sort"

// Driver is mutable; the simulation driver's commit step is the only
// place allowed to mutate it. CurrentLocationID == "" means "in transit
// between nodes" — the Design Notes flag this string-empty-means-null
// encoding as worth replacing with a discriminated union in a from-scratch
// design, but it is kept here to mirror the wire format in spec.md §6
// exactly; InTransit() is the single predicate everything else uses so
// the encoding never leaks past this file.
type Driver struct {
	ID            string
	Capacity      int
	OperationTime int64
	GPSID         string

	CurrentLocationID           string
	ArriveTimeAtCurrentLocation int64
	LeaveTimeAtCurrentLocation  int64
	GPSUpdateTime               int64

	CarryingOrders []string

	// Destination is the committed next stop. Nil means absent. Once set
	// with a given (LocationID, ArriveTime) it is irrevocable until the
	// driver arrives (spec.md §3).
	Destination *Node
	// PlannedRoute is the ordered remainder of work after Destination.
	PlannedRoute []Node
}

// InTransit reports whether the driver has no current stop.
func (d *Driver) InTransit() bool { return d.CurrentLocationID == "" }

// CarriedWeight sums the demand of every order currently on board.
func (d *Driver) CarriedWeight(orders *OrderTable) int {
	total := 0
	for _, id := range d.CarryingOrders {
		if o, ok := orders.Get(id); ok {
			total += o.Demand
		}
	}
	return total
}

// Anchor is the driver's route-planning origin: its current location,
// or its committed destination's location if in transit.
func (d *Driver) Anchor() (string, bool) {
	if !d.InTransit() {
		return d.CurrentLocationID, true
	}
	if d.Destination != nil {
		return d.Destination.LocationID, true
	}
	return "", false
}

// CheckInvariants validates the two structural invariants from spec.md §3:
// capacity is respected, and an in-transit driver has a destination.
func (d *Driver) CheckInvariants(orders *OrderTable) error {
	if d.CarriedWeight(orders) > d.Capacity {
		return &DriverInvariantError{DriverID: d.ID, Reason: "carrying_orders exceed capacity"}
	}
	if d.InTransit() && d.Destination == nil {
		return &DriverInvariantError{DriverID: d.ID, Reason: "in transit with no destination"}
	}
	return nil
}

type DriverInvariantError struct {
	DriverID string
	Reason   string
}

func (e *DriverInvariantError) Error() string {
	return "driver " + e.DriverID + ": " + e.Reason
}

// DriverTable is the simulation driver's authoritative driver collection.
type DriverTable struct {
	byID map[string]*Driver
}

func NewDriverTable() *DriverTable {
	return &DriverTable{byID: make(map[string]*Driver)}
}

func (t *DriverTable) Put(d *Driver) { t.byID[d.ID] = d }

func (t *DriverTable) Get(id string) (*Driver, bool) {
	d, ok := t.byID[id]
	return d, ok
}

func (t *DriverTable) All() map[string]*Driver { return t.byID }

// IDsSorted returns driver ids in ascending order, used wherever the
// spec requires a stable tie-break by lowest driver id.
func (t *DriverTable) IDsSorted() []string {
	ids := make([]string, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
