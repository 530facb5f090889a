package domain

import "testing"

func TestNodeValidate(t *testing.T) {
	orders := NewOrderTable()
	orders.Put(&Order{ID: "o1", PickupLocationID: "R1", DeliveryLocationID: "C1"})

	good := Node{LocationID: "R1", PickupOrders: []string{"o1"}}
	if err := good.Validate(orders); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Node{LocationID: "R2", PickupOrders: []string{"o1"}}
	if err := bad.Validate(orders); err == nil {
		t.Fatal("expected pickup_location_id mismatch error")
	}
}

func TestMergeAdjacent(t *testing.T) {
	nodes := []Node{
		{LocationID: "R1", PickupOrders: []string{"o1"}},
		{LocationID: "R1", PickupOrders: []string{"o2"}},
		{LocationID: "C1", DeliveryOrders: []string{"o1"}},
		{LocationID: "C2", DeliveryOrders: []string{"o2"}},
	}
	merged := MergeAdjacent(nodes)
	if len(merged) != 3 {
		t.Fatalf("want 3 merged nodes, got %d", len(merged))
	}
	if len(merged[0].PickupOrders) != 2 {
		t.Fatalf("want merged pickup list of 2, got %d", len(merged[0].PickupOrders))
	}
}

func TestHasAdjacentDuplicates(t *testing.T) {
	if !HasAdjacentDuplicates([]Node{{LocationID: "R1"}, {LocationID: "R1"}}) {
		t.Fatal("expected adjacent duplicates to be detected")
	}
	if HasAdjacentDuplicates([]Node{{LocationID: "R1"}, {LocationID: "C1"}}) {
		t.Fatal("did not expect adjacent duplicates")
	}
}

func TestNodeServiceTime(t *testing.T) {
	orders := NewOrderTable()
	orders.Put(&Order{ID: "o1", LoadTimeSec: 30})
	orders.Put(&Order{ID: "o2", UnloadTimeSec: 20})

	n := Node{PickupOrders: []string{"o1"}, DeliveryOrders: []string{"o2"}}
	if st := n.ServiceTime(orders); st != 50 {
		t.Fatalf("want service time 50, got %d", st)
	}
}
