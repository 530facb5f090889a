// Package dispatch implements the per-tick dispatch policy (spec.md
// §4.4): the reference v2 insertion-heuristic policy by default, and an
// alternate v1 nearest-available-driver policy behind a config flag.
package dispatch

import (
	"github.com/YJFKD/Food-delivery-simulator/internal/domain"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/travelmap"
)

// Policy computes a DispatchResult from a snapshot.
type Policy interface {
	Dispatch(in *domain.InputInform, tm *travelmap.Map) (*domain.DispatchResult, error)
}

// Config tunes the reference policy. Zero value is not valid; use
// NewConfig.
type Config struct {
	SoftRouteCap   int
	TightRouteCap  int
	RandomSeed     int64
	PerOrderReseed bool
}

// NewConfig returns the reference tunables from spec.md §4.4.
func NewConfig(seed int64) Config {
	return Config{SoftRouteCap: 8, TightRouteCap: 6, RandomSeed: seed}
}

// WithPerOrderReseed preserves the source implementation's per-order RNG
// re-seeding quirk, which nullifies the randomised (a)/(b) tie-break.
// The default (false) is the corrected, once-per-dispatch seeding.
func (c Config) WithPerOrderReseed(v bool) Config {
	c.PerOrderReseed = v
	return c
}

func orderTableOf(in *domain.InputInform) *domain.OrderTable {
	t := domain.NewOrderTable()
	for _, o := range in.UnallocatedOrders {
		t.Put(o)
	}
	for _, o := range in.OngoingOrders {
		t.Put(o)
	}
	return t
}

// New builds the default (v2) policy.
func New(cfg Config, log *obslog.Logger) Policy {
	return &v2Policy{cfg: cfg, log: log}
}

// NewV1 builds the alternate nearest-available-driver policy.
func NewV1(cfg Config, log *obslog.Logger) Policy {
	return &v1Policy{cfg: cfg, log: log}
}
