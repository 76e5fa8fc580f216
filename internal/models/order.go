package models

import "time"

// OrderStatus is a step of the order lifecycle.
type OrderStatus string

const (
	OrderPlaced                OrderStatus = "placed"
	OrderShipped               OrderStatus = "shipped"
	OrderInTransit             OrderStatus = "in_transit"
	OrderDelivered             OrderStatus = "delivered"
	OrderCancelled             OrderStatus = "cancelled"
	OrderReturnRequested       OrderStatus = "return_requested"
	OrderReturnPickupScheduled OrderStatus = "return_pickup_scheduled"
	OrderReturnPicked          OrderStatus = "return_picked"
	OrderReturnInTransit       OrderStatus = "return_in_transit"
	OrderReturned              OrderStatus = "returned"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced:                {OrderShipped, OrderCancelled},
	OrderShipped:               {OrderInTransit, OrderCancelled},
	OrderInTransit:             {OrderDelivered, OrderCancelled},
	OrderDelivered:             {OrderReturnRequested},
	OrderReturnRequested:       {OrderReturnPickupScheduled},
	OrderReturnPickupScheduled: {OrderReturnPicked},
	OrderReturnPicked:          {OrderReturnInTransit},
	OrderReturnInTransit:       {OrderReturned},
}

var orderDescriptions = map[OrderStatus]string{
	OrderPlaced:                "Order has been placed",
	OrderShipped:               "Order has been shipped",
	OrderInTransit:             "Order is in transit",
	OrderDelivered:             "Order has been delivered",
	OrderCancelled:             "Order has been cancelled",
	OrderReturnRequested:       "Return request initiated",
	OrderReturnPickupScheduled: "Return pickup scheduled",
	OrderReturnPicked:          "Product picked up for return",
	OrderReturnInTransit:       "Product in transit back to seller",
	OrderReturned:              "Product returned to seller",
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderDescriptions[s]
	return ok
}

// IsTerminal reports whether tracking stops at s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled || s == OrderReturned
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next returns the automatic forward step, if any. Cancellation and return
// requests are never automatic.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderPlaced, OrderShipped, OrderInTransit,
		OrderReturnRequested, OrderReturnPickupScheduled, OrderReturnPicked, OrderReturnInTransit:
		return orderTransitions[s][0], true
	}
	return "", false
}

// Description is the human readable label shown on the tracking timeline.
func (s OrderStatus) Description() string {
	return orderDescriptions[s]
}

// OrderItem is the frozen snapshot of a product at checkout time.
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"` // Price at the time of order
	Image       string  `json:"image,omitempty"`
}

// TrackingEvent is one entry of an order's status timeline.
type TrackingEvent struct {
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	Description string      `json:"description"`
}

// ShippingAddress is copied onto the order at checkout.
type ShippingAddress struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
}

// Order represents a buyer's purchase. Items, prices and the payment snapshot
// never change after creation; only status and tracking history do.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerEmail      string          `json:"buyer_email" gorm:"type:varchar(255);index"`
	Items           []OrderItem     `json:"items" gorm:"serializer:json"`
	Subtotal        float64         `json:"subtotal"`
	Discount        float64         `json:"discount"`
	TotalAmount     float64         `json:"total_amount"`
	CouponCode      string          `json:"coupon_code,omitempty" gorm:"type:varchar(64)"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"serializer:json"`
	PaymentMethod   PaymentSnapshot `json:"payment_method" gorm:"serializer:json"`
	PaymentRef      string          `json:"payment_ref" gorm:"type:varchar(64)"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(32);index"`
	TrackingHistory []TrackingEvent `json:"tracking_history" gorm:"serializer:json"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LastTransition returns when the current status was entered.
func (o *Order) LastTransition() time.Time {
	if n := len(o.TrackingHistory); n > 0 {
		return o.TrackingHistory[n-1].Timestamp
	}
	return o.CreatedAt
}

// Advance moves the order to next and appends a tracking entry.
func (o *Order) Advance(next OrderStatus, at time.Time) {
	o.Status = next
	o.UpdatedAt = at
	o.TrackingHistory = append(o.TrackingHistory, TrackingEvent{
		Status:      next,
		Timestamp:   at,
		Description: next.Description(),
	})
}
