// Package simulation implements the tick-driven Simulation Driver of
// spec.md §4.8: replay → snapshot → dispatch → check → commit → advance,
// terminating when every order reaches at least ONGOING, followed by a
// drain replay and final scoring.
package simulation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/YJFKD/Food-delivery-simulator/internal/apperrors"
	"github.com/YJFKD/Food-delivery-simulator/internal/checker"
	"github.com/YJFKD/Food-delivery-simulator/internal/dispatch"
	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/historylog"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/replay"
	"github.com/YJFKD/Food-delivery-simulator/internal/scorer"
	"github.com/YJFKD/Food-delivery-simulator/internal/snapshot"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

// Sink receives tick-boundary and order-transition notifications. Both
// internal/eventlog and internal/store implement it; either may be nil.
type Sink interface {
	OnTick(ctx context.Context, tickIndex int, curTime int64, score *scorer.Score)
	OnOrderEvent(ctx context.Context, ev historylog.OrderEvent)
}

// Engine owns the authoritative collections for a single simulated
// instance and runs the tick loop.
type Engine struct {
	Orders    *domain.OrderTable
	Drivers   *domain.DriverTable
	Locations *domain.LocationTable
	TravelMap *travelmap.Map
	History   *historylog.Log
	Policy    dispatch.Policy
	Log       *obslog.Logger

	IntervalSeconds int64
	MaxRuntime      time.Duration
	Lambda          float64

	Sinks []Sink
}

// Result is the outcome of a single instance run.
type Result struct {
	Score       scorer.Score
	Ticks       int
	FinalTime   int64
	TerminateOK bool
}

// Run drives the tick loop to termination, or returns a fatal
// *apperrors.AppError on any of the §7 fatal conditions.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	var preTime int64
	var usedSeconds int64
	tick := 0

	for {
		curTime := preTime + overrun(usedSeconds, e.IntervalSeconds)

		outcomes := e.replayAll(preTime, curTime)
		e.commitReplay(outcomes)
		e.transitionOrders(outcomes)
		e.appendHistory(ctx, outcomes, curTime)

		in := snapshot.Build(e.Orders, e.Drivers, e.Locations, curTime)

		start := time.Now()
		result, err := e.dispatchWithTimeout(ctx, in)
		usedSeconds = int64(math.Ceil(time.Since(start).Seconds()))
		if err != nil {
			return Result{}, err
		}

		if violations := checker.Check(in, result, e.Orders, e.Log); len(violations) > 0 {
			detail := violations[0].Error()
			return Result{}, apperrors.PolicyInfeasibleError(violations[0].Constraint, detail)
		}

		e.commitDispatch(result)

		if err := e.checkOverdueIgnored(result, curTime); err != nil {
			return Result{}, err
		}

		for _, s := range e.Sinks {
			s.OnTick(ctx, tick, curTime, nil)
		}

		tick++
		terminated := e.terminated()
		preTime = curTime
		if terminated {
			break
		}
	}

	e.drain(ctx, preTime)

	score := scorer.Compute(e.History, e.Orders, e.TravelMap, e.Lambda)
	for _, s := range e.Sinks {
		s.OnTick(ctx, tick, preTime, &score)
	}

	return Result{Score: score, Ticks: tick, FinalTime: preTime, TerminateOK: true}, nil
}

// overrun computes how far curTime must advance past preTime given a
// dispatch call that took usedSeconds of wall-clock time against a
// tick interval of intervalSeconds. It always advances by at least one
// full interval — a dispatch call that finishes within the interval
// still costs one tick's worth of virtual time, and one that spans k
// whole intervals costs k+1 intervals.
func overrun(usedSeconds, intervalSeconds int64) int64 {
	if intervalSeconds <= 0 {
		return 0
	}
	if usedSeconds < 0 {
		usedSeconds = 0
	}
	return (usedSeconds/intervalSeconds + 1) * intervalSeconds
}

type replayOutcome struct {
	driverID string

	currentLocationID string
	arrive, leave      int64
	destination        *domain.Node
	plannedRoute       []domain.Node
	carrying           []string

	visited  []replay.Stop
	serviced []replay.Stop
}

func (e *Engine) replayAll(preTime, curTime int64) []replayOutcome {
	ids := e.Drivers.IDsSorted()
	out := make([]replayOutcome, 0, len(ids))
	for _, id := range ids {
		d, ok := e.Drivers.Get(id)
		if !ok {
			continue
		}
		tl := replay.Build(d, preTime, e.TravelMap, e.Orders, e.Log)
		locID, arrive, leave, dest, route := tl.Remaining(curTime)
		out = append(out, replayOutcome{
			driverID:           id,
			currentLocationID:  locID,
			arrive:             arrive,
			leave:              leave,
			destination:        dest,
			plannedRoute:       route,
			carrying:           tl.CarriedOrders(d.CarryingOrders, curTime),
			visited:            tl.VisitedUpTo(curTime),
			serviced:           tl.ServicedUpTo(curTime),
		})
	}
	return out
}

func (e *Engine) commitReplay(outcomes []replayOutcome) {
	for _, o := range outcomes {
		d, ok := e.Drivers.Get(o.driverID)
		if !ok {
			continue
		}
		d.CurrentLocationID = o.currentLocationID
		d.ArriveTimeAtCurrentLocation = o.arrive
		d.LeaveTimeAtCurrentLocation = o.leave
		d.Destination = o.destination
		d.PlannedRoute = o.plannedRoute
		d.CarryingOrders = o.carrying
	}
}

func (e *Engine) transitionOrders(outcomes []replayOutcome) {
	for _, o := range outcomes {
		for _, s := range o.serviced {
			if s.Node == nil {
				continue
			}
			for _, oid := range s.Node.PickupOrders {
				if ord, ok := e.Orders.Get(oid); ok {
					_ = ord.Transition(domain.StateOngoing)
				}
			}
			for _, oid := range s.Node.DeliveryOrders {
				if ord, ok := e.Orders.Get(oid); ok {
					_ = ord.Transition(domain.StateCompleted)
				}
			}
		}
	}
}

func (e *Engine) appendHistory(ctx context.Context, outcomes []replayOutcome, curTime int64) {
	for _, o := range outcomes {
		for _, v := range o.visited {
			e.History.AppendDriver(historylog.DriverEvent{
				DriverID: o.driverID, LocationID: v.LocationID, ArriveTime: v.Arrive, LeaveTime: v.Leave,
			})
		}
		for _, s := range o.serviced {
			if s.Node == nil {
				continue
			}
			for _, oid := range s.Node.PickupOrders {
				e.appendOrderEvent(ctx, historylog.OrderEvent{
					OrderID: oid, State: int(domain.StateOngoing), UpdateTime: s.Arrive,
					CommittedCompletionTime: e.deadlineOf(oid),
				})
			}
			for _, oid := range s.Node.DeliveryOrders {
				e.appendOrderEvent(ctx, historylog.OrderEvent{
					OrderID: oid, State: int(domain.StateCompleted), UpdateTime: s.Arrive,
					CommittedCompletionTime: e.deadlineOf(oid),
				})
			}
		}
	}
}

// appendOrderEvent records ev in the History Log and, if it is newly
// appended (not a dedup hit), fans it out to every sink as an
// order.state_changed notification.
func (e *Engine) appendOrderEvent(ctx context.Context, ev historylog.OrderEvent) {
	if !e.History.AppendOrder(ev) {
		return
	}
	for _, s := range e.Sinks {
		s.OnOrderEvent(ctx, ev)
	}
}

// deadlineOf returns order oid's committed_completion_time for a
// History Log entry. Deadline is fixed at order creation and invariant
// once GENERATED, so every entry for a given order carries the same
// value regardless of which tick appended it.
func (e *Engine) deadlineOf(oid string) int64 {
	if o, ok := e.Orders.Get(oid); ok {
		return o.Deadline
	}
	return 0
}

func (e *Engine) dispatchWithTimeout(ctx context.Context, in *domain.InputInform) (*domain.DispatchResult, error) {
	type res struct {
		result *domain.DispatchResult
		err    error
	}
	ch := make(chan res, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- res{err: apperrors.PolicyCrashedError(fmt.Sprintf("%v", r))}
			}
		}()
		r, err := e.Policy.Dispatch(in, e.TravelMap)
		ch <- res{result: r, err: err}
	}()

	timer := time.NewTimer(e.MaxRuntime)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, apperrors.PolicyCrashedError(r.err.Error())
		}
		return r.result, nil
	case <-timer.C:
		return nil, apperrors.PolicyTimeoutError(e.MaxRuntime.String())
	case <-ctx.Done():
		return nil, apperrors.PolicyCrashedError(ctx.Err().Error())
	}
}

func (e *Engine) commitDispatch(result *domain.DispatchResult) {
	for id, d := range e.Drivers.All() {
		d.Destination = result.Destinations[id]
		d.PlannedRoute = result.PlannedRoute[id]
	}
}

func (e *Engine) checkOverdueIgnored(result *domain.DispatchResult, curTime int64) error {
	assigned := make(map[string]bool)
	for _, d := range e.Drivers.All() {
		for _, oid := range d.CarryingOrders {
			assigned[oid] = true
		}
	}
	for driverID := range e.Drivers.All() {
		if dest, ok := result.Destinations[driverID]; ok && dest != nil {
			for _, oid := range dest.PickupOrders {
				assigned[oid] = true
			}
			for _, oid := range dest.DeliveryOrders {
				assigned[oid] = true
			}
		}
		for _, n := range result.PlannedRoute[driverID] {
			for _, oid := range n.PickupOrders {
				assigned[oid] = true
			}
			for _, oid := range n.DeliveryOrders {
				assigned[oid] = true
			}
		}
	}

	for _, oid := range e.Orders.ByState(domain.StateGenerated) {
		o, ok := e.Orders.Get(oid)
		if !ok {
			continue
		}
		if o.Deadline < curTime && !assigned[oid] {
			return apperrors.OverdueIgnoredError(oid, o.Deadline, curTime)
		}
	}
	return nil
}

func (e *Engine) terminated() bool {
	for _, o := range e.Orders.All() {
		if o.State < domain.StateOngoing {
			return false
		}
	}
	return true
}

// drain replays every driver through the remainder of its committed
// route to completion, pushing remaining events into the History Log.
func (e *Engine) drain(ctx context.Context, preTime int64) {
	const maxDrainSteps = 100000
	t := preTime
	for step := 0; step < maxDrainSteps; step++ {
		farthest := t
		outcomes := make([]replayOutcome, 0, len(e.Drivers.All()))
		for _, id := range e.Drivers.IDsSorted() {
			d, ok := e.Drivers.Get(id)
			if !ok {
				continue
			}
			tl := replay.Build(d, t, e.TravelMap, e.Orders, e.Log)
			if len(tl.Stops) == 0 {
				continue
			}
			last := tl.Stops[len(tl.Stops)-1]
			if last.Leave > farthest {
				farthest = last.Leave
			}
			locID, arrive, leave, dest, route := tl.Remaining(last.Leave)
			outcomes = append(outcomes, replayOutcome{
				driverID: id, currentLocationID: locID, arrive: arrive, leave: leave,
				destination: dest, plannedRoute: route,
				carrying: tl.CarriedOrders(d.CarryingOrders, last.Leave),
				visited:  tl.VisitedUpTo(last.Leave), serviced: tl.ServicedUpTo(last.Leave),
			})
		}
		e.commitReplay(outcomes)
		e.transitionOrders(outcomes)
		e.appendHistory(ctx, outcomes, farthest)
		if farthest <= t {
			break
		}
		t = farthest
	}
}
