// Command dispatcher implements the external dispatch-policy process
// boundary of spec.md §6: reads the three input JSON files, computes a
// DispatchResult, writes the two output JSON files, and prints a line
// containing SUCCESS. One invocation serves one tick.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YJFKD/Food-delivery-simulator/internal/config"
	"github.com/YJFKD/Food-delivery-simulator/internal/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/ioformat"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

func main() {
	dataDir := flag.String("data-dir", "./data", "directory containing customers.csv, restaurants.csv and routes.csv")
	tickDir := flag.String("tick-dir", ".", "directory containing this tick's input/output JSON files")
	curTime := flag.Int64("cur-time", 0, "the snapshot's cur_time, seconds")
	useV1 := flag.Bool("v1", false, "use the alternate nearest-available-driver policy")
	flag.Parse()

	if err := run(*dataDir, *tickDir, *curTime, *useV1); err != nil {
		fmt.Fprintln(os.Stderr, "FAILURE:", err)
		os.Exit(1)
	}
	fmt.Println("SUCCESS")
}

func run(dataDir, tickDir string, curTime int64, useV1 bool) error {
	cfg := config.Load()
	log := obslog.Default()

	customers, err := ioformat.LoadCustomers(filepath.Join(dataDir, "customers.csv"))
	if err != nil {
		return err
	}
	restaurants, err := ioformat.LoadRestaurants(filepath.Join(dataDir, "restaurants.csv"))
	if err != nil {
		return err
	}
	routes, err := ioformat.LoadRoutes(filepath.Join(dataDir, "routes.csv"))
	if err != nil {
		return err
	}

	locations := make(map[string]domain.Location, len(customers)+len(restaurants))
	for _, l := range customers {
		locations[l.ID] = l
	}
	for _, l := range restaurants {
		locations[l.ID] = l
	}

	drivers, err := ioformat.ReadDriverInputInfo(filepath.Join(tickDir, "driver_input_info.json"))
	if err != nil {
		return err
	}
	unallocated, err := ioformat.ReadOrders(filepath.Join(tickDir, "unallocated_orders.json"))
	if err != nil {
		return err
	}
	ongoing, err := ioformat.ReadOrders(filepath.Join(tickDir, "ongoing_orders.json"))
	if err != nil {
		return err
	}

	in := &domain.InputInform{
		UnallocatedOrders: toOrderMap(unallocated),
		OngoingOrders:     toOrderMap(ongoing),
		Drivers:           toDriverMap(drivers),
		Locations:         locations,
		CurTime:           curTime,
	}

	tm := travelmap.New(routes)

	dcfg := dispatch.NewConfig(cfg.Sim.RandomSeed)
	var policy dispatch.Policy
	if useV1 {
		policy = dispatch.NewV1(dcfg, log)
	} else {
		policy = dispatch.New(dcfg, log)
	}

	result, err := policy.Dispatch(in, tm)
	if err != nil {
		return err
	}

	return ioformat.WriteDispatchResult(
		filepath.Join(tickDir, "destination.json"),
		filepath.Join(tickDir, "planned_route.json"),
		result,
	)
}

func toOrderMap(orders []*domain.Order) map[string]*domain.Order {
	out := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		out[o.ID] = o
	}
	return out
}

func toDriverMap(drivers []*domain.Driver) map[string]*domain.Driver {
	out := make(map[string]*domain.Driver, len(drivers))
	for _, d := range drivers {
		out[d.ID] = d
	}
	return out
}
