// Command simulate runs the meal-delivery fleet simulator across the
// configured selected instances and reports each instance's score plus
// the batch mean (spec.md §6, §7).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/YJFKD/Food-delivery-simulator/internal/batch"
	"github.com/YJFKD/Food-delivery-simulator/internal/config"
	"github.com/YJFKD/Food-delivery-simulator/internal/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/eventlog"
	"github.com/YJFKD/Food-delivery-simulator/internal/historylog"
	"github.com/YJFKD/Food-delivery-simulator/internal/ioformat"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/simulation"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

func main() {
	dataDir := flag.String("data-dir", "./data", "directory containing customers.csv, restaurants.csv, routes.csv and per-instance subdirectories")
	useV1 := flag.Bool("v1", false, "use the alternate nearest-available-driver dispatch policy instead of the default insertion heuristic")
	flag.Parse()

	cfg := config.Load()
	log, err := obslog.New(cfg.Service.Name, cfg.Service.Environment, cfg.Service.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer log.Sync()

	instances := cfg.Sim.SelectedInstances
	if len(instances) == 0 {
		fmt.Fprintln(os.Stderr, "no selected instances configured (SELECTED_INSTANCES)")
		os.Exit(1)
	}

	publisher := eventlog.New("batch", cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	defer publisher.Close()

	report := batch.Run(context.Background(), instances, log, func(instance string) (*simulation.Engine, error) {
		return buildEngine(*dataDir, instance, cfg, log, *useV1, publisher)
	})

	for _, r := range report.Instances {
		if r.Err != nil {
			log.Errorw("instance failed", "instance", r.Instance, "err", r.Err)
			continue
		}
		log.Infow("instance complete", "instance", r.Instance, "score", r.Score.Value,
			"total_distance", r.Score.TotalDistance, "total_lateness", r.Score.TotalLateness)
	}
	log.Infow("batch complete", "mean_score", report.MeanScore)

	for _, r := range report.Instances {
		if r.Err != nil {
			os.Exit(1)
		}
	}
}

func buildEngine(dataDir, instance string, cfg *config.Config, log *obslog.Logger, useV1 bool, publisher *eventlog.Publisher) (*simulation.Engine, error) {
	customers, err := ioformat.LoadCustomers(filepath.Join(dataDir, "customers.csv"))
	if err != nil {
		return nil, err
	}
	restaurants, err := ioformat.LoadRestaurants(filepath.Join(dataDir, "restaurants.csv"))
	if err != nil {
		return nil, err
	}
	routes, err := ioformat.LoadRoutes(filepath.Join(dataDir, "routes.csv"))
	if err != nil {
		return nil, err
	}

	locations := domain.NewLocationTable()
	for _, l := range customers {
		locations.Put(l)
	}
	for _, l := range restaurants {
		locations.Put(l)
	}
	startLocationID := ""
	if len(restaurants) > 0 {
		startLocationID = restaurants[0].ID
	}

	instanceDir := filepath.Join(dataDir, instance)
	driverList, err := ioformat.LoadDrivers(filepath.Join(instanceDir, "driver.csv"), startLocationID)
	if err != nil {
		return nil, err
	}
	orderList, err := ioformat.LoadOrders(filepath.Join(instanceDir, "orders.csv"))
	if err != nil {
		return nil, err
	}

	drivers := domain.NewDriverTable()
	for _, d := range driverList {
		drivers.Put(d)
	}
	orders := domain.NewOrderTable()
	for _, o := range orderList {
		orders.Put(o)
	}

	tm := travelmap.New(routes)

	var policy dispatch.Policy
	dcfg := dispatch.NewConfig(cfg.Sim.RandomSeed)
	if useV1 {
		policy = dispatch.NewV1(dcfg, log)
	} else {
		policy = dispatch.New(dcfg, log)
	}

	engine := &simulation.Engine{
		Orders:          orders,
		Drivers:         drivers,
		Locations:       locations,
		TravelMap:       tm,
		History:         historylog.New(),
		Policy:          policy,
		Log:             log.With("instance", instance),
		IntervalSeconds: int64(cfg.Sim.AlgRunFrequency.Seconds()),
		MaxRuntime:      cfg.Sim.MaxRuntimeOfAlgorithm,
		Lambda:          cfg.Sim.Lamda,
	}
	if publisher != nil {
		engine.Sinks = append(engine.Sinks, publisher)
	}
	return engine, nil
}
