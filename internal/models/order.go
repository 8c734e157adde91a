package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the order life-cycle state. COMPLETED and CANCELLED are
// terminal.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderPreparing  OrderStatus = "PREPARING"
	OrderDelivering OrderStatus = "DELIVERING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// orderStatusRank orders the forward path for the strict transition policy.
var orderStatusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderConfirmed:  1,
	OrderPreparing:  2,
	OrderDelivering: 3,
	OrderCompleted:  4,
}

// ParseOrderStatus normalizes and validates a caller-supplied status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderDelivering, OrderCompleted, OrderCancelled:
		return status, nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of PENDING, CONFIRMED, PREPARING, DELIVERING, COMPLETED, CANCELLED", s)
}

// Terminal reports whether no further transitions are allowed from s under the
// strict policy.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo reports whether the strict forward-only policy permits
// moving from s to next. CANCELLED is reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return orderStatusRank[next] == orderStatusRank[s]+1
}

// DeliveryType selects between courier delivery and customer pickup.
type DeliveryType string

const (
	DeliveryCourier DeliveryType = "delivery"
	DeliveryPickup  DeliveryType = "pickup"
)

// ParseDeliveryType validates a caller-supplied delivery type, defaulting to
// pickup when empty.
func ParseDeliveryType(s string) (DeliveryType, error) {
	switch DeliveryType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DeliveryPickup, nil
	case DeliveryCourier:
		return DeliveryCourier, nil
	case DeliveryPickup:
		return DeliveryPickup, nil
	}
	return "", fmt.Errorf("invalid delivery type %q: must be delivery or pickup", s)
}

// Order is a customer order. Items are immutable after creation; TotalPrice is
// fixed at creation time and never recomputed.
type Order struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"userId" db:"user_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	DeliveryType    DeliveryType    `json:"deliveryType" db:"delivery_type"`
	DeliveryAddress *string         `json:"deliveryAddress" db:"delivery_address"`
	TotalPrice      decimal.Decimal `json:"totalPrice" db:"total_price"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`

	User  *User        `json:"user,omitempty"`
	Items []*OrderItem `json:"items,omitempty"`
}
