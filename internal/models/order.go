package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderNumber string          `json:"order_number" gorm:"size:64;uniqueIndex;not null"`
	ClientID    uint            `json:"client_id" gorm:"not null;index"`
	Client      *Client         `json:"client,omitempty"`
	Status      OrderStatus     `json:"status" gorm:"size:20;not null;default:'pending';index"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	Items       []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// CommittedStatuses are the statuses counted in current quantity and revenue.
var CommittedStatuses = []OrderStatus{OrderConfirmed, OrderShipped, OrderDelivered}

// OutstandingStatuses are the statuses that hold stock against new orders.
var OutstandingStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered}

// AllOrderStatuses lists every status in lifecycle order.
var AllOrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
	OrderDelivered: nil,
	OrderCancelled: nil,
}

// ParseOrderStatus returns the status named by s, or false if s is not a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	_, ok := orderTransitions[status]
	return status, ok
}

func (s OrderStatus) IsCommitted() bool {
	for _, c := range CommittedStatuses {
		if s == c {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	next, ok := orderTransitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func StatusStrings(statuses []OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
