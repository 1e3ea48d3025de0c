package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment stage of an order.
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusComposing  OrderStatus = "composing"
	OrderStatusComposed   OrderStatus = "composed"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ErrInvalidTransition is returned when a status change would move an order
// backwards or out of a terminal state.
var ErrInvalidTransition = errors.New("invalid order status transition")

// workflowRank orders the non-cancelled statuses along the fulfillment path.
var workflowRank = map[OrderStatus]int{
	OrderStatusCreated:    0,
	OrderStatusComposing:  1,
	OrderStatusComposed:   2,
	OrderStatusDelivering: 3,
	OrderStatusDelivered:  4,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := workflowRank[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
// Moves go forward only (stages may be skipped); cancelled is reachable from
// any non-terminal status.
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return workflowRank[to] > workflowRank[from]
}

// NonCancelledStatuses lists every status except cancelled. Dashboard statistics
// are computed over orders in these statuses only.
func NonCancelledStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusCreated,
		OrderStatusComposing,
		OrderStatusComposed,
		OrderStatusDelivering,
		OrderStatusDelivered,
	}
}

// Order is one customer purchase. Price is a snapshot taken at checkout and
// does not follow later bouquet price changes.
type Order struct {
	ID               int64           `db:"id" json:"id"`
	BouquetID        int64           `db:"bouquet_id" json:"bouquet_id"`
	BouquetName      string          `db:"-" json:"bouquet_name,omitempty"`
	Price            decimal.Decimal `db:"price" json:"price"`
	ClientName       string          `db:"client_name" json:"client_name"`
	Phone            string          `db:"phone" json:"phone"`
	DeliveryAddress  string          `db:"delivery_address" json:"delivery_address"`
	DeliveryWindowID *int64          `db:"delivery_window_id" json:"delivery_window_id"` // nil means "as soon as possible"
	Email            string          `db:"email" json:"email,omitempty"`
	Paid             bool            `db:"paid" json:"paid"`
	Comment          string          `db:"comment" json:"comment,omitempty"`
	Status           OrderStatus     `db:"status" json:"status"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	ComposedAt       *time.Time      `db:"composed_at" json:"composed_at,omitempty"`
	DeliveredAt      *time.Time      `db:"delivered_at" json:"delivered_at,omitempty"`
	FloristID        *int64          `db:"florist_id" json:"florist_id,omitempty"` // who composed it
	CourierID        *int64          `db:"courier_id" json:"courier_id,omitempty"` // who delivered it
}

// ErrTimestampOrder is returned when lifecycle timestamps are out of order.
var ErrTimestampOrder = errors.New("order timestamps out of order")

// CheckTimestamps verifies composed_at >= created_at and delivered_at >= the
// latest earlier stamp. Orders may skip explicit composition tracking.
func (o *Order) CheckTimestamps() error {
	if o.ComposedAt != nil && o.ComposedAt.Before(o.CreatedAt) {
		return ErrTimestampOrder
	}
	if o.DeliveredAt != nil {
		floor := o.CreatedAt
		if o.ComposedAt != nil {
			floor = *o.ComposedAt
		}
		if o.DeliveredAt.Before(floor) {
			return ErrTimestampOrder
		}
	}
	return nil
}
