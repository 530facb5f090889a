package domain

// InputInform is the read-only snapshot value passed to the dispatcher
// every tick (spec.md §3). The dispatcher must not mutate the maps it
// is handed.
type InputInform struct {
	UnallocatedOrders map[string]*Order
	OngoingOrders     map[string]*Order
	Drivers           map[string]*Driver
	Locations         map[string]Location
	CurTime           int64
}

// DispatchResult bundles the per-driver destination and planned route
// a dispatch policy emits (spec.md §3).
type DispatchResult struct {
	Destinations map[string]*Node // nil entry means "absent"
	PlannedRoute map[string][]Node
}

func NewDispatchResult() *DispatchResult {
	return &DispatchResult{
		Destinations: make(map[string]*Node),
		PlannedRoute: make(map[string][]Node),
	}
}
