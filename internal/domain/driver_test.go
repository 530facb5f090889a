package domain

import "testing"

func TestDriverCarriedWeightAndInvariants(t *testing.T) {
	orders := NewOrderTable()
	orders.Put(&Order{ID: "o1", Demand: 2, State: StateOngoing})
	orders.Put(&Order{ID: "o2", Demand: 3, State: StateOngoing})

	d := &Driver{ID: "d1", Capacity: 4, CurrentLocationID: "R1", CarryingOrders: []string{"o1", "o2"}}
	if w := d.CarriedWeight(orders); w != 5 {
		t.Fatalf("want carried weight 5, got %d", w)
	}
	if err := d.CheckInvariants(orders); err == nil {
		t.Fatal("expected capacity violation error, got nil")
	}

	d.CarryingOrders = []string{"o1"}
	if err := d.CheckInvariants(orders); err != nil {
		t.Fatalf("unexpected invariant error: %v", err)
	}
}

func TestDriverInTransitRequiresDestination(t *testing.T) {
	orders := NewOrderTable()
	d := &Driver{ID: "d1", Capacity: 1, CurrentLocationID: ""}
	if err := d.CheckInvariants(orders); err == nil {
		t.Fatal("expected error: in transit with no destination")
	}
	d.Destination = &Node{LocationID: "C1"}
	if err := d.CheckInvariants(orders); err != nil {
		t.Fatalf("unexpected error once destination set: %v", err)
	}
}

func TestDriverAnchor(t *testing.T) {
	d := &Driver{ID: "d1", CurrentLocationID: "R1"}
	loc, ok := d.Anchor()
	if !ok || loc != "R1" {
		t.Fatalf("want anchor R1, got %q ok=%v", loc, ok)
	}

	d2 := &Driver{ID: "d2", CurrentLocationID: "", Destination: &Node{LocationID: "C2"}}
	loc, ok = d2.Anchor()
	if !ok || loc != "C2" {
		t.Fatalf("want anchor C2, got %q ok=%v", loc, ok)
	}

	d3 := &Driver{ID: "d3", CurrentLocationID: ""}
	if _, ok := d3.Anchor(); ok {
		t.Fatal("expected no anchor for in-transit driver with no destination")
	}
}

func TestDriverTableIDsSorted(t *testing.T) {
	tbl := NewDriverTable()
	tbl.Put(&Driver{ID: "d3"})
	tbl.Put(&Driver{ID: "d1"})
	tbl.Put(&Driver{ID: "d2"})

	ids := tbl.IDsSorted()
	want := []string{"d1", "d2", "d3"}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("want sorted ids %v, got %v", want, ids)
		}
	}
}
