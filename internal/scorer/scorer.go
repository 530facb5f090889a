// Package scorer reduces a History Log to the composite objective of
// spec.md §4.7.
package scorer

import (
	"math"

	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/historylog"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

// Sentinel is returned when any order never reached COMPLETED.
var Sentinel = math.Inf(1)

// Score bundles the final objective plus its two components, useful for
// reporting and tests.
type Score struct {
	TotalDistance float64
	TotalLateness float64
	DriverCount   int
	Value         float64
}

// Compute derives total distance per driver (from the history log's
// visited-location sequence) plus lambda-weighted total lateness.
// Returns Sentinel if any order in orders lacks a COMPLETED event.
func Compute(log *historylog.Log, orders *domain.OrderTable, tm *travelmap.Map, lambda float64) Score {
	completedAt := make(map[string]int64)
	for _, e := range log.OrderEvents() {
		if e.State == int(domain.StateCompleted) {
			completedAt[e.OrderID] = e.UpdateTime
		}
	}
	for id := range orders.All() {
		if _, ok := completedAt[id]; !ok {
			return Score{Value: Sentinel}
		}
	}

	totalDistance := 0.0
	perDriver := make(map[string][]historylog.DriverEvent)
	for _, e := range log.DriverEvents() {
		perDriver[e.DriverID] = append(perDriver[e.DriverID], e)
	}
	for _, events := range perDriver {
		for i := 1; i < len(events); i++ {
			d, err := tm.Distance(events[i-1].LocationID, events[i].LocationID)
			if err != nil {
				continue
			}
			totalDistance += d
		}
	}

	totalLateness := 0.0
	for id, o := range orders.All() {
		completeTime := completedAt[id]
		lateness := float64(completeTime - o.Deadline)
		if lateness > 0 {
			totalLateness += lateness
		}
	}

	driverCount := len(perDriver)
	if driverCount == 0 {
		driverCount = 1
	}

	value := totalDistance/float64(driverCount) + lambda*totalLateness/3600.0
	return Score{
		TotalDistance: totalDistance,
		TotalLateness: totalLateness,
		DriverCount:   driverCount,
		Value:         value,
	}
}
