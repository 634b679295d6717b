package services

import (
	"context"
	"time"

	"webstore/internal/models"
)

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks webstore/internal/services ReportCache,EventPublisher

// ReportCache stores computed reports. Entries are keyed by a generation
// number that Invalidate advances, so a report computed before a write can
// never be served after it.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation int64, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, generation int64, key string, value interface{}) error
	Invalidate(ctx context.Context) error
}

// EventPublisher delivers order lifecycle events after they are committed.
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderDeleted       EventType = "order.deleted"
)

type OrderEvent struct {
	Type           EventType          `json:"type"`
	OrderID        uint               `json:"order_id"`
	OrderNumber    string             `json:"order_number"`
	ClientEmail    string             `json:"client_email,omitempty"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	TotalAmount    string             `json:"total_amount"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

type noopPublisher struct{}

// NoopPublisher discards events. It is used when no broker is configured.
func NoopPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, OrderEvent) error { return nil }

type noopCache struct{}

// NoopCache never stores anything, so every report is computed.
func NoopCache() ReportCache { return noopCache{} }

func (noopCache) Generation(context.Context) (int64, error) { return 0, nil }
func (noopCache) Get(context.Context, int64, string, interface{}) (bool, error) {
	return false, nil
}
func (noopCache) Set(context.Context, int64, string, interface{}) error { return nil }
func (noopCache) Invalidate(context.Context) error                      { return nil }
