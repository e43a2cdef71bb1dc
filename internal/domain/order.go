package domain

import (
	"encoding/json"
	"time"
)

// OrderStatus is the payment lifecycle of an order.
type OrderStatus string

const (
	OrderCreated        OrderStatus = "CREATED"
	OrderPaymentPending OrderStatus = "PAYMENT_PENDING"
	OrderPaid           OrderStatus = "PAID"
	OrderFulfilled      OrderStatus = "FULFILLED"
	OrderCancelled      OrderStatus = "CANCELLED"
	OrderFailed         OrderStatus = "FAILED"
)

// FulfillmentStatus is the physical shipping lifecycle, orthogonal to the
// payment status and only advanced once the order is PAID.
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "UNFULFILLED"
	FulfillmentProcessing  FulfillmentStatus = "PROCESSING"
	FulfillmentShipped     FulfillmentStatus = "SHIPPED"
	FulfillmentDelivered   FulfillmentStatus = "DELIVERED"
	FulfillmentReturned    FulfillmentStatus = "RETURNED"
)

var orderStatusNext = map[OrderStatus][]OrderStatus{
	OrderCreated:        {OrderPaymentPending, OrderPaid, OrderCancelled, OrderFailed},
	OrderPaymentPending: {OrderPaid, OrderCancelled, OrderFailed},
	OrderPaid:           {OrderFulfilled, OrderCancelled, OrderFailed},
	OrderFulfilled:      {},
	OrderCancelled:      {},
	OrderFailed:         {},
}

var fulfillmentNext = map[FulfillmentStatus][]FulfillmentStatus{
	FulfillmentUnfulfilled: {FulfillmentProcessing, FulfillmentShipped},
	FulfillmentProcessing:  {FulfillmentShipped},
	FulfillmentShipped:     {FulfillmentDelivered},
	FulfillmentDelivered:   {FulfillmentReturned},
	FulfillmentReturned:    {},
}

// ValidOrderStatus reports whether s is a known payment status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderStatusNext[s]
	return ok
}

// ValidFulfillmentStatus reports whether s is a known fulfillment status.
func ValidFulfillmentStatus(s FulfillmentStatus) bool {
	_, ok := fulfillmentNext[s]
	return ok
}

// CanTransition reports whether the payment status may advance from one
// state to the next.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderStatusNext[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition reports whether the fulfillment status may advance.
func (s FulfillmentStatus) CanTransition(to FulfillmentStatus) bool {
	for _, next := range fulfillmentNext[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is created exactly once per successful checkout. Its items and
// shipping address are snapshots, causally disconnected from the catalog
// and address book after creation.
type Order struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId"`
	AddressID         string            `json:"addressId"`
	Status            OrderStatus       `json:"status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillmentStatus"`
	SubtotalCents     int64             `json:"subtotalCents"`
	TaxCents          int64             `json:"taxCents"`
	ShippingFeeCents  int64             `json:"shippingFeeCents"`
	TotalCents        int64             `json:"totalCents"`
	Currency          string            `json:"currency"`
	ShippingAddress   json.RawMessage   `json:"shippingAddress"`
	PaymentMethod     string            `json:"paymentMethod"`
	ShippingMethod    string            `json:"shippingMethod"`
	Items             []OrderItem       `json:"items"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// OrderItem freezes product name, unit price and quantity at checkout time.
type OrderItem struct {
	ID             string `json:"id"`
	OrderID        string `json:"orderId"`
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	TotalCents     int64  `json:"totalCents"`
}
