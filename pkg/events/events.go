package events

import (
	"context"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderStatusChanged Type = "order.status_changed"
	StockChanged       Type = "inventory.stock_changed"
)

type Event struct {
	ID         string                 `json:"id"`
	Type       Type                   `json:"type"`
	EntityID   int64                  `json:"entityId"`
	UserID     int64                  `json:"userId,omitempty"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func New(t Type, entityID, userID int64, data map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		EntityID:   entityID,
		UserID:     userID,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

// EntityType names the kind of record EntityID refers to.
func (e Event) EntityType() string {
	if e.Type == StockChanged {
		return "product"
	}
	return "order"
}

// Priority follows the order queue convention: large orders first, then cancellations.
func (e Event) Priority() uint8 {
	if total, ok := e.Data["total"].(float64); ok && total > 1000 {
		return 9
	}
	if status, ok := e.Data["status"].(string); ok && status == "cancelled" {
		return 8
	}
	return 5
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(ctx context.Context, event Event) error { return nil }
func (Nop) Close() error                                   { return nil }

// NewPublisher connects the broker selected by cfg.Driver.
func NewPublisher(cfg config.EventsConfig, logger *zap.Logger) (Publisher, error) {
	switch cfg.Driver {
	case "", "none":
		return Nop{}, nil
	case "rabbitmq":
		p, err := NewRabbitMQ(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("failed to connect rabbitmq: %w", err)
		}
		logger.Info("Publishing events to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
		return p, nil
	case "kafka":
		p, err := NewKafka(cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka client: %w", err)
		}
		logger.Info("Publishing events to Kafka", zap.String("topic", cfg.Kafka.Topic))
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.Driver)
	}
}
