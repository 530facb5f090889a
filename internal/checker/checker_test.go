package checker

import (
	"testing"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
)

func baseInput() (*domain.InputInform, *domain.OrderTable) {
	orders := domain.NewOrderTable()
	orders.Put(&domain.Order{ID: "o1", Demand: 1, PickupLocationID: "R1", DeliveryLocationID: "C1"})
	in := &domain.InputInform{
		Drivers: map[string]*domain.Driver{
			"d1": {ID: "d1", Capacity: 5, CurrentLocationID: "R1"},
		},
	}
	return in, orders
}

func TestCheckPassesOnWellFormedResult(t *testing.T) {
	in, orders := baseInput()
	result := domain.NewDispatchResult()
	result.Destinations["d1"] = &domain.Node{LocationID: "R1", PickupOrders: []string{"o1"}}
	result.PlannedRoute["d1"] = []domain.Node{{LocationID: "C1", DeliveryOrders: []string{"o1"}}}

	if v := Check(in, result, orders, nil); len(v) != 0 {
		t.Fatalf("want no violations, got %v", v)
	}
}

func TestC1MissingDriverFromResult(t *testing.T) {
	in, orders := baseInput()
	result := domain.NewDispatchResult()
	// d1 entirely missing from both maps.

	v := Check(in, result, orders, nil)
	found := false
	for _, vi := range v {
		if vi.Constraint == "C1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("want a C1 violation, got %v", v)
	}
}

func TestC2CommittedDestinationAltered(t *testing.T) {
	in, orders := baseInput()
	in.Drivers["d1"].Destination = &domain.Node{LocationID: "R1", ArriveTime: 100}

	result := domain.NewDispatchResult()
	result.Destinations["d1"] = &domain.Node{LocationID: "R1", ArriveTime: 200} // arrive time changed
	result.PlannedRoute["d1"] = nil

	v := Check(in, result, orders, nil)
	found := false
	for _, vi := range v {
		if vi.Constraint == "C2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("want a C2 violation for altered committed destination, got %v", v)
	}
}

func TestC3CapacityExceeded(t *testing.T) {
	in, orders := baseInput()
	orders.Put(&domain.Order{ID: "o2", Demand: 10, PickupLocationID: "R1", DeliveryLocationID: "C1"})

	result := domain.NewDispatchResult()
	result.Destinations["d1"] = &domain.Node{LocationID: "R1", PickupOrders: []string{"o1", "o2"}}
	result.PlannedRoute["d1"] = []domain.Node{{LocationID: "C1", DeliveryOrders: []string{"o1", "o2"}}}

	v := Check(in, result, orders, nil)
	found := false
	for _, vi := range v {
		if vi.Constraint == "C3" {
			found = true
		}
	}
	if !found {
		t.Fatalf("want a C3 capacity violation, got %v", v)
	}
}

func TestC4DuplicatePickup(t *testing.T) {
	in, orders := baseInput()
	in.Drivers["d2"] = &domain.Driver{ID: "d2", Capacity: 5, CurrentLocationID: "R1"}

	result := domain.NewDispatchResult()
	result.Destinations["d1"] = &domain.Node{LocationID: "R1", PickupOrders: []string{"o1"}}
	result.PlannedRoute["d1"] = nil
	result.Destinations["d2"] = &domain.Node{LocationID: "R1", PickupOrders: []string{"o1"}}
	result.PlannedRoute["d2"] = nil

	v := Check(in, result, orders, nil)
	found := false
	for _, vi := range v {
		if vi.Constraint == "C4" {
			found = true
		}
	}
	if !found {
		t.Fatalf("want a C4 duplicate-pickup violation, got %v", v)
	}
}

func TestC5LocationMismatch(t *testing.T) {
	in, orders := baseInput()
	result := domain.NewDispatchResult()
	result.Destinations["d1"] = &domain.Node{LocationID: "WRONG", PickupOrders: []string{"o1"}}
	result.PlannedRoute["d1"] = nil

	v := Check(in, result, orders, nil)
	found := false
	for _, vi := range v {
		if vi.Constraint == "C5" {
			found = true
		}
	}
	if !found {
		t.Fatalf("want a C5 location-mismatch violation, got %v", v)
	}
}
