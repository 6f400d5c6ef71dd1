// Package events publishes order lifecycle messages for the kitchen and
// notification consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/gspot/models"
)

const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type         string             `json:"type"`
	OrderID      uuid.UUID          `json:"order_id"`
	ShortID      string             `json:"short_id"`
	Status       models.OrderStatus `json:"status"`
	ServiceType  models.ServiceType `json:"service_type,omitempty"`
	CustomerName string             `json:"customer_name,omitempty"`
	Total        decimal.Decimal    `json:"total"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

// NewOrderEvent snapshots the fields consumers care about.
func NewOrderEvent(kind string, o *models.Order) OrderEvent {
	return OrderEvent{
		Type:         kind,
		OrderID:      o.ID,
		ShortID:      o.ShortID(),
		Status:       o.Status,
		ServiceType:  o.ServiceType,
		CustomerName: o.CustomerName,
		Total:        o.Total,
		OccurredAt:   time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, OrderEvent) error { return nil }
func (Noop) Close() error                               { return nil }
