package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents all possible states of an order's fulfillment
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPreparing  OrderStatus = "preparing"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DeliveryType selects between courier delivery and counter pickup
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// PaymentMethod is gathered at checkout; settlement happens upstream
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentPix  PaymentMethod = "pix"
)

// GuestUserID is the owner key for orders placed without an account.
const GuestUserID = "guest"

// DeliveryTimeASAP is the sentinel for "as soon as possible" in
// DeliveryInfo.Time; any other value is a fixed HH:MM slot.
const DeliveryTimeASAP = "as-soon-as-possible"

// OrderLineItem is a snapshot of a cart line at checkout time.
// Name and price are copied so later menu edits never touch placed orders.
type OrderLineItem struct {
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
	Observations string  `json:"observations,omitempty"`
}

// LineTotal returns unit price times quantity.
func (i OrderLineItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// DeliveryInfo holds the contact and destination details submitted at
// checkout. Address is required only for delivery orders.
type DeliveryInfo struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address,omitempty"`
	Complement string `json:"complement,omitempty"`
	Time       string `json:"time"`
}

type Order struct {
	ID                string               `json:"id" gorm:"primaryKey"`
	UserID            string               `json:"user_id" gorm:"index;not null"`
	Items             []OrderLineItem      `json:"items" gorm:"serializer:json;not null"`
	Total             float64              `json:"total"`
	DeliveryType      DeliveryType         `json:"delivery_type" gorm:"not null"`
	DeliveryInfo      DeliveryInfo         `json:"delivery_info" gorm:"serializer:json"`
	PaymentMethod     PaymentMethod        `json:"payment_method" gorm:"not null"`
	Status            OrderStatus          `json:"status" gorm:"not null;default:'pending'"`
	EstimatedDelivery *time.Time           `json:"estimated_delivery,omitempty"`
	CurrentLocation   string               `json:"current_location,omitempty"`
	StatusHistory     []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// NewOrderID generates a process-unique order id in the order_<token> form.
func NewOrderID() string {
	return "order_" + uuid.NewString()
}

// DisplayNumber is the short reference shown to customers: everything after
// the first underscore of the id.
func (o *Order) DisplayNumber() string {
	if _, token, found := strings.Cut(o.ID, "_"); found {
		return token
	}
	return o.ID
}

// ItemsTotal recomputes the sum of line totals over the snapshot.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}

// OrderStatusHistory tracks every status change — audit trail
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"order_id" gorm:"index;not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	Actor      string      `json:"actor"` // "customer", "kitchen", "dispatch"
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
