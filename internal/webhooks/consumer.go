package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/enums"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/logger"
	"github.com/semprebellasuporte2025/semprebella-backend/pkg/outbox"
)

type deliverer interface {
	Deliver(ctx context.Context, eventType string, payload []byte) error
}

// Consumer drains the order events subscription and forwards each
// event to the configured webhook endpoint. A failed delivery is
// nacked so Pub/Sub redelivers it; malformed messages are acked
// because redelivery cannot fix them.
type Consumer struct {
	dispatcher   deliverer
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

func NewConsumer(dispatcher deliverer, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		dispatcher:   dispatcher,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run processes order events until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	if aggregateID := msg.Attributes["aggregate_id"]; aggregateID != "" {
		fields["aggregate_id"] = aggregateID
	}
	logCtx := c.logg.WithFields(ctx, fields)

	parsed, err := enums.ParseOutboxEventType(eventType)
	if err != nil {
		c.logg.Warn(logCtx, "skipping message with unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode event envelope", err)
		return processResult{ack: true}
	}
	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.logg.Warn(logCtx, "skipping event with empty payload")
		return processResult{ack: true}
	}

	if err := c.dispatcher.Deliver(logCtx, string(parsed), msg.Data); err != nil {
		c.logg.Error(logCtx, "webhook delivery exhausted retries", err)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "order event delivered")
	return processResult{ack: true}
}
