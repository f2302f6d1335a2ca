package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stretchr/testify/require"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/outbox"
)

type fakeDeliverer struct {
	calls     int
	eventType string
	payload   []byte
	err       error
}

func (f *fakeDeliverer) Deliver(_ context.Context, eventType string, payload []byte) error {
	f.calls++
	f.eventType = eventType
	f.payload = payload
	return f.err
}

func testEnvelope(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    "evt-1",
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{"numero":"SB000042"}`),
	})
	require.NoError(t, err)
	return payload
}

func newTestConsumer(t *testing.T, d deliverer) *Consumer {
	t.Helper()
	c, err := NewConsumer(d, &pubsub.Subscriber{}, testLogger())
	require.NoError(t, err)
	return c
}

func TestConsumerDeliversKnownEvent(t *testing.T) {
	d := &fakeDeliverer{}
	c := newTestConsumer(t, d)

	data := testEnvelope(t)
	result := c.process(context.Background(), &pubsub.Message{
		ID:         "m1",
		Data:       data,
		Attributes: map[string]string{"event_type": "order_paid"},
	})

	require.True(t, result.ack)
	require.False(t, result.nack)
	require.Equal(t, 1, d.calls)
	require.Equal(t, "order_paid", d.eventType)
	require.Equal(t, data, d.payload)
}

func TestConsumerNacksWhenDeliveryFails(t *testing.T) {
	d := &fakeDeliverer{err: errors.New("endpoint down")}
	c := newTestConsumer(t, d)

	result := c.process(context.Background(), &pubsub.Message{
		ID:         "m2",
		Data:       testEnvelope(t),
		Attributes: map[string]string{"event_type": "order_created"},
	})

	require.True(t, result.nack)
}

func TestConsumerAcksUnknownEventType(t *testing.T) {
	d := &fakeDeliverer{}
	c := newTestConsumer(t, d)

	result := c.process(context.Background(), &pubsub.Message{
		ID:         "m3",
		Data:       testEnvelope(t),
		Attributes: map[string]string{"event_type": "order_exploded"},
	})

	require.True(t, result.ack)
	require.Zero(t, d.calls)
}

func TestConsumerAcksMalformedEnvelope(t *testing.T) {
	d := &fakeDeliverer{}
	c := newTestConsumer(t, d)

	result := c.process(context.Background(), &pubsub.Message{
		ID:         "m4",
		Data:       []byte("not json"),
		Attributes: map[string]string{"event_type": "order_created"},
	})

	require.True(t, result.ack)
	require.Zero(t, d.calls)
}

func TestConsumerAcksEmptyPayload(t *testing.T) {
	d := &fakeDeliverer{}
	c := newTestConsumer(t, d)

	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version: 1,
		EventID: "evt-2",
		Data:    json.RawMessage(`null`),
	})
	require.NoError(t, err)

	result := c.process(context.Background(), &pubsub.Message{
		ID:         "m5",
		Data:       payload,
		Attributes: map[string]string{"event_type": "order_canceled"},
	})

	require.True(t, result.ack)
	require.Zero(t, d.calls)
}
