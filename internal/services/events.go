package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sendico/apiserver/internal/logger"
	"github.com/sendico/apiserver/internal/mq"
	"github.com/sendico/apiserver/types"
)

// EventPublisher sends raw messages to a channel. *mq.MQ satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Events announces resource mutations on a message channel. A nil *Events
// or one without a publisher drops everything.
type Events struct {
	publisher EventPublisher
	channel   string
	now       func() time.Time
}

func NewEvents(publisher EventPublisher, channel string) *Events {
	return &Events{publisher: publisher, channel: channel, now: time.Now}
}

// Emit publishes one event. Failures are logged and never returned.
func (e *Events) Emit(ctx context.Context, eventType, resourceID, actor string) {
	if e == nil || e.publisher == nil {
		return
	}
	event := types.Event{
		Type:       eventType,
		ResourceID: resourceID,
		Actor:      actor,
		OccurredAt: e.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warningf("encode event %s: %v", eventType, err)
		return
	}
	attrs := map[string]string{
		"type":                  eventType,
		mq.ContentTypeAttribute: "application/json",
	}
	if _, err := e.publisher.Publish(ctx, e.channel, data, attrs); err != nil {
		logger.Warningf("publish event %s for %s: %v", eventType, resourceID, err)
	}
}
