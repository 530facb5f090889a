package snapshot

import (
	"testing"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
)

func TestBuildPromotesInitializationOrdersAtOrBeforeCurTime(t *testing.T) {
	orders := domain.NewOrderTable()
	orders.Put(&domain.Order{ID: "o1", State: domain.StateInitialization, CreationTime: 50})
	orders.Put(&domain.Order{ID: "o2", State: domain.StateInitialization, CreationTime: 200})

	drivers := domain.NewDriverTable()
	locations := domain.NewLocationTable()

	in := Build(orders, drivers, locations, 100)

	o1, _ := orders.Get("o1")
	if o1.State != domain.StateGenerated {
		t.Fatalf("want o1 promoted to GENERATED, got %v", o1.State)
	}
	o2, _ := orders.Get("o2")
	if o2.State != domain.StateInitialization {
		t.Fatalf("want o2 to remain INITIALIZATION (creation_time in the future), got %v", o2.State)
	}

	if _, ok := in.UnallocatedOrders["o1"]; !ok {
		t.Fatal("want promoted o1 present in UnallocatedOrders")
	}
	if _, ok := in.UnallocatedOrders["o2"]; ok {
		t.Fatal("o2 should not be visible yet")
	}
}

func TestBuildPartitionsByState(t *testing.T) {
	orders := domain.NewOrderTable()
	orders.Put(&domain.Order{ID: "gen", State: domain.StateGenerated})
	orders.Put(&domain.Order{ID: "ongoing", State: domain.StateOngoing})
	orders.Put(&domain.Order{ID: "done", State: domain.StateCompleted})

	drivers := domain.NewDriverTable()
	locations := domain.NewLocationTable()

	in := Build(orders, drivers, locations, 0)

	if _, ok := in.UnallocatedOrders["gen"]; !ok {
		t.Fatal("want GENERATED order in UnallocatedOrders")
	}
	if _, ok := in.OngoingOrders["ongoing"]; !ok {
		t.Fatal("want ONGOING order in OngoingOrders")
	}
	if _, ok := in.UnallocatedOrders["done"]; ok {
		t.Fatal("COMPLETED orders should not appear in UnallocatedOrders")
	}
	if _, ok := in.OngoingOrders["done"]; ok {
		t.Fatal("COMPLETED orders should not appear in OngoingOrders")
	}
}

func TestBuildDeepCopiesDriverState(t *testing.T) {
	orders := domain.NewOrderTable()
	drivers := domain.NewDriverTable()
	drivers.Put(&domain.Driver{
		ID:             "d1",
		CarryingOrders: []string{"o1"},
		Destination:    &domain.Node{LocationID: "C1", PickupOrders: []string{"o1"}},
		PlannedRoute:   []domain.Node{{LocationID: "C2"}},
	})
	locations := domain.NewLocationTable()

	in := Build(orders, drivers, locations, 0)

	cp := in.Drivers["d1"]
	cp.CarryingOrders[0] = "mutated"
	cp.Destination.LocationID = "mutated"
	cp.PlannedRoute[0].LocationID = "mutated"

	orig, _ := drivers.Get("d1")
	if orig.CarryingOrders[0] != "o1" {
		t.Fatal("snapshot copy must not alias the original CarryingOrders slice")
	}
	if orig.Destination.LocationID != "C1" {
		t.Fatal("snapshot copy must not alias the original Destination")
	}
	if orig.PlannedRoute[0].LocationID != "C2" {
		t.Fatal("snapshot copy must not alias the original PlannedRoute")
	}
}
