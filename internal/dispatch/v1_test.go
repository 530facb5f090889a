package dispatch

import (
	"testing"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

func TestV1DispatchAssignsOrderToNearestDriver(t *testing.T) {
	in := &domain.InputInform{
		Drivers: map[string]*domain.Driver{
			"near": {ID: "near", Capacity: 5, CurrentLocationID: "R1"},
			"far":  {ID: "far", Capacity: 5, CurrentLocationID: "R2"},
		},
		UnallocatedOrders: map[string]*domain.Order{
			"o1": {ID: "o1", Demand: 1, PickupLocationID: "R1", DeliveryLocationID: "C1", Deadline: 100000},
		},
		OngoingOrders: map[string]*domain.Order{},
		Locations: map[string]domain.Location{
			"R1": domain.NewRestaurant("R1", 0, 0, 5, 5, 60),
			"R2": domain.NewRestaurant("R2", 50, 50, 5, 5, 60),
			"C1": domain.NewCustomer("C1", 1, 1),
		},
		CurTime: 0,
	}
	tm := travelmap.New([]travelmap.Record{{Start: "R1", End: "C1", Distance: 5, Time: 100}})

	policy := NewV1(NewConfig(1), nil)
	result, err := policy.Dispatch(in, tm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Destinations["far"] != nil {
		t.Fatalf("want the far driver left idle, got %+v", result.Destinations["far"])
	}
	dest := result.Destinations["near"]
	if dest == nil || dest.LocationID != "R1" || len(dest.PickupOrders) != 1 || dest.PickupOrders[0] != "o1" {
		t.Fatalf("want the near driver to pick up o1 at R1, got %+v", dest)
	}
	route := result.PlannedRoute["near"]
	if len(route) != 1 || route[0].LocationID != "C1" || len(route[0].DeliveryOrders) != 1 || route[0].DeliveryOrders[0] != "o1" {
		t.Fatalf("want delivery of o1 appended at C1, got %+v", route)
	}
}

func TestV1DispatchSkipsDriversAtSoftCap(t *testing.T) {
	cfg := NewConfig(1)
	cfg.SoftRouteCap = 1
	in := &domain.InputInform{
		Drivers: map[string]*domain.Driver{
			"busy": {ID: "busy", Capacity: 5, CurrentLocationID: "R1", CarryingOrders: []string{"o0"}},
			"open": {ID: "open", Capacity: 5, CurrentLocationID: "R1"},
		},
		UnallocatedOrders: map[string]*domain.Order{
			"o1": {ID: "o1", Demand: 1, PickupLocationID: "R1", DeliveryLocationID: "C1", Deadline: 100000},
		},
		OngoingOrders: map[string]*domain.Order{
			"o0": {ID: "o0", Demand: 1, PickupLocationID: "R1", DeliveryLocationID: "C2", Deadline: 100000},
		},
		Locations: map[string]domain.Location{
			"R1": domain.NewRestaurant("R1", 0, 0, 5, 5, 60),
			"C1": domain.NewCustomer("C1", 1, 1),
			"C2": domain.NewCustomer("C2", 2, 2),
		},
		CurTime: 0,
	}
	tm := travelmap.New([]travelmap.Record{
		{Start: "R1", End: "C1", Distance: 5, Time: 100},
		{Start: "R1", End: "C2", Distance: 8, Time: 150},
	})

	policy := NewV1(cfg, nil)
	result, err := policy.Dispatch(in, tm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	busyRoute := result.PlannedRoute["busy"]
	for _, n := range busyRoute {
		for _, oid := range n.PickupOrders {
			if oid == "o1" {
				t.Fatalf("want the driver already at its soft cap skipped for new pickups, got %+v", busyRoute)
			}
		}
	}
	openDest := result.Destinations["open"]
	if openDest == nil || len(openDest.PickupOrders) != 1 || openDest.PickupOrders[0] != "o1" {
		t.Fatalf("want the order routed to the only open driver, got %+v", openDest)
	}
}

func TestV1DispatchNoUnallocatedOrdersLeavesDriverIdle(t *testing.T) {
	in := &domain.InputInform{
		Drivers: map[string]*domain.Driver{
			"d1": {ID: "d1", Capacity: 5, CurrentLocationID: "R1"},
		},
		UnallocatedOrders: map[string]*domain.Order{},
		OngoingOrders:     map[string]*domain.Order{},
		Locations: map[string]domain.Location{
			"R1": domain.NewRestaurant("R1", 0, 0, 5, 5, 60),
		},
		CurTime: 0,
	}
	tm := travelmap.New(nil)

	policy := NewV1(NewConfig(1), nil)
	result, err := policy.Dispatch(in, tm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Destinations["d1"] != nil {
		t.Fatalf("want nil destination for idle driver, got %+v", result.Destinations["d1"])
	}
	if len(result.PlannedRoute["d1"]) != 0 {
		t.Fatalf("want empty planned route, got %v", result.PlannedRoute["d1"])
	}
}

func TestV1DispatchHonoursPreMatchedDestinationImmutability(t *testing.T) {
	committedArrive := int64(500)
	in := &domain.InputInform{
		Drivers: map[string]*domain.Driver{
			"d1": {
				ID:       "d1",
				Capacity: 5,
				Destination: &domain.Node{
					LocationID:   "R1",
					ArriveTime:   committedArrive,
					PickupOrders: []string{"o1"},
				},
			},
		},
		UnallocatedOrders: map[string]*domain.Order{},
		OngoingOrders: map[string]*domain.Order{
			"o1": {ID: "o1", Demand: 1, PickupLocationID: "R1", DeliveryLocationID: "C1", Deadline: 100000},
		},
		Locations: map[string]domain.Location{
			"R1": domain.NewRestaurant("R1", 0, 0, 5, 5, 60),
			"C1": domain.NewCustomer("C1", 1, 1),
		},
		CurTime: 400,
	}
	tm := travelmap.New([]travelmap.Record{{Start: "R1", End: "C1", Distance: 5, Time: 100}})

	policy := NewV1(NewConfig(1), nil)
	result, err := policy.Dispatch(in, tm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dest := result.Destinations["d1"]
	if dest == nil || dest.LocationID != "R1" || dest.ArriveTime != committedArrive {
		t.Fatalf("want committed destination preserved unchanged, got %+v", dest)
	}
	route := result.PlannedRoute["d1"]
	if len(route) != 1 || route[0].LocationID != "C1" {
		t.Fatalf("want delivery of pre-matched order appended to route, got %+v", route)
	}
}
