package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"tablepos/internal/config"
	"tablepos/internal/dto"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends kitchen events to a durable topic exchange. Routing keys
// are "<restaurantId>.<event type>", so a kitchen display can bind to one
// restaurant with "7.ticket.#".
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	url      string
	exchange string
	logger   *zap.Logger
}

func NewPublisher(cfg config.BrokerConfig, logger *zap.Logger) (*Publisher, error) {
	p := &Publisher{
		url:      cfg.URL,
		exchange: cfg.Exchange,
		logger:   logger,
	}

	if err := p.connect(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dialing broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("opening channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declaring exchange %s: %w", p.exchange, err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func RoutingKey(event dto.KitchenEvent) string {
	return fmt.Sprintf("%d.%s", event.RestaurantID, event.Type)
}

func (p *Publisher) Publish(ctx context.Context, event dto.KitchenEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.connect(); err != nil {
			return fmt.Errorf("reconnecting: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	})
	if err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			p.ch = nil
		}
		return fmt.Errorf("publishing %s: %w", event.Type, err)
	}

	p.logger.Debug("event published", zap.String("type", event.Type), zap.Int("restaurantId", event.RestaurantID))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher drops events; used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, dto.KitchenEvent) error { return nil }
func (NopPublisher) Close() error                                   { return nil }
