// Package eventlog publishes tick and score events to Kafka. It is an
// optional sink: a nil *Publisher is safe to call and is a no-op.
package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"

	"github.com/YJFKD/Food-delivery-simulator/internal/historylog"
	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/scorer"
)

// Event is the envelope published for every tick, for the final score,
// and for every History Log order transition.
type Event struct {
	ID        string     `json:"id"`
	Instance  string     `json:"instance"`
	Type      string     `json:"type"`
	TickIndex int        `json:"tick_index,omitempty"`
	CurTime   int64      `json:"cur_time,omitempty"`
	Score     *ScoreView `json:"score,omitempty"`

	OrderID                 string `json:"order_id,omitempty"`
	NewState                int    `json:"new_state,omitempty"`
	UpdateTime              int64  `json:"update_time,omitempty"`
	CommittedCompletionTime int64  `json:"committed_completion_time,omitempty"`
}

// ScoreView is the JSON-safe projection of scorer.Score.
type ScoreView struct {
	TotalDistance float64 `json:"total_distance"`
	TotalLateness float64 `json:"total_lateness"`
	DriverCount   int     `json:"driver_count"`
	Value         float64 `json:"value"`
}

// Publisher writes Events to a Kafka topic. The zero value is not
// usable; construct with New.
type Publisher struct {
	instance string
	writer   *kafka.Writer
	log      *obslog.Logger
}

// New builds a Publisher for the given brokers/topic. Returns nil (a
// valid no-op sink) if brokers is empty.
func New(instance string, brokers []string, topic string, log *obslog.Logger) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &Publisher{
		instance: instance,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
		log: log,
	}
}

// OnTick implements simulation.Sink. A nil *Publisher is a no-op.
func (p *Publisher) OnTick(ctx context.Context, tickIndex int, curTime int64, score *scorer.Score) {
	if p == nil {
		return
	}
	ev := Event{
		ID:        uuid.NewString(),
		Instance:  p.instance,
		Type:      "tick",
		TickIndex: tickIndex,
		CurTime:   curTime,
	}
	if score != nil {
		ev.Type = "final_score"
		ev.Score = &ScoreView{
			TotalDistance: score.TotalDistance,
			TotalLateness: score.TotalLateness,
			DriverCount:   score.DriverCount,
			Value:         score.Value,
		}
	}
	p.publish(ctx, ev)
}

// OnOrderEvent implements simulation.Sink, publishing one
// order.state_changed event per History Log order transition. A nil
// *Publisher is a no-op.
func (p *Publisher) OnOrderEvent(ctx context.Context, ev historylog.OrderEvent) {
	if p == nil {
		return
	}
	p.publish(ctx, Event{
		ID:                      uuid.NewString(),
		Instance:                p.instance,
		Type:                    "order.state_changed",
		OrderID:                 ev.OrderID,
		NewState:                ev.State,
		UpdateTime:              ev.UpdateTime,
		CommittedCompletionTime: ev.CommittedCompletionTime,
	})
}

func (p *Publisher) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		if p.log != nil {
			p.log.Errorw("eventlog: marshal failed", "err", err)
		}
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(p.instance), Value: payload}); err != nil {
		if p.log != nil {
			p.log.Errorw("eventlog: publish failed", "err", err)
		}
	}
}

// Close flushes and closes the underlying Kafka writer. Safe on nil.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
