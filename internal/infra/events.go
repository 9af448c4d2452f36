package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/smashpoint/league/internal/domain"
)

const publishTimeout = 5 * time.Second

// EventFanout delivers committed ledger events to Kafka and to live WebSocket subscribers.
// Delivery is best effort: the mutation has already been persisted, so failures are logged
// and never reported back to the caller.
type EventFanout struct {
	producer *KafkaProducer
	topic    string
	hub      *WSHub
	logger   *slog.Logger
}

// NewEventFanout creates a publisher. producer and hub may be nil.
func NewEventFanout(producer *KafkaProducer, topic string, hub *WSHub, logger *slog.Logger) *EventFanout {
	return &EventFanout{producer: producer, topic: topic, hub: hub, logger: logger}
}

// Publish sends each event to every configured sink.
func (f *EventFanout) Publish(ctx context.Context, events ...domain.Event) {
	for _, evt := range events {
		f.toKafka(ctx, evt)
		f.toHub(evt)
	}
}

func (f *EventFanout) toKafka(ctx context.Context, evt domain.Event) {
	if f.producer == nil || !f.producer.Enabled() {
		return
	}
	value, err := json.Marshal(evt)
	if err != nil {
		f.logger.Error("encode event", "event_type", evt.EventType, "error", err)
		return
	}

	key := evt.Season
	if key == "" {
		key = string(evt.AggregateType)
	}

	// detached from the request so a client disconnect does not drop the event
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := f.producer.Publish(pctx, f.topic, []byte(key), value); err != nil {
		f.logger.Error("kafka publish failed",
			"event_id", evt.EventID,
			"event_type", evt.EventType,
			"topic", f.topic,
			"error", err,
		)
	}
}

func (f *EventFanout) toHub(evt domain.Event) {
	if f.hub == nil {
		return
	}
	f.hub.Publish(RoomLeague, string(evt.EventType), evt)
	if evt.Season != "" {
		f.hub.Publish(SeasonRoom(evt.Season), string(evt.EventType), evt)
	}
}
