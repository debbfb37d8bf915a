package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tablepos/internal/dto"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "7.ticket.created", RoutingKey(dto.KitchenEvent{Type: dto.EventTicketCreated, RestaurantID: 7}))
}

func TestPublish_SendsJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{ch: ch, exchange: "kitchen_events", logger: zap.NewNop()}

	ticketID := uint(3)
	event := dto.KitchenEvent{
		Type:         dto.EventTicketStatusChanged,
		RestaurantID: 1,
		TicketID:     &ticketID,
		Status:       "Ready",
		OccurredAt:   time.Now().UTC(),
	}

	require.NoError(t, p.Publish(context.Background(), event))
	assert.Equal(t, "kitchen_events", ch.exchange)
	assert.Equal(t, "1.ticket.status_changed", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var decoded dto.KitchenEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "Ready", decoded.Status)
	assert.Equal(t, uint(3), *decoded.TicketID)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), dto.KitchenEvent{}))
	assert.NoError(t, p.Close())
}

func TestPublish_ClosedChannelResetsForReconnect(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := &Publisher{ch: ch, exchange: "kitchen_events", logger: zap.NewNop()}

	err := p.Publish(context.Background(), dto.KitchenEvent{Type: dto.EventOrderCreated, RestaurantID: 1})

	assert.True(t, errors.Is(err, amqp.ErrClosed))
	assert.Nil(t, p.ch)
}

func TestPublish_OtherErrorKeepsChannel(t *testing.T) {
	ch := &fakeChannel{err: errors.New("nack")}
	p := &Publisher{ch: ch, exchange: "kitchen_events", logger: zap.NewNop()}

	err := p.Publish(context.Background(), dto.KitchenEvent{Type: dto.EventOrderCreated, RestaurantID: 1})

	assert.Error(t, err)
	assert.NotNil(t, p.ch)
}
