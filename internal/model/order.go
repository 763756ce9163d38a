package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPending = "Pending"

// OrderItem is an opaque line item as submitted by the client
type OrderItem map[string]interface{}

// Order is a placed order. UserID is a weak reference to the owning user.
type Order struct {
	StorageID     string          `json:"_id"`
	OrderID       string          `json:"orderId"`
	UserID        string          `json:"userId"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"date"`
}

// OrderOwner is the subset of the owning user shown to administrators
type OrderOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminOrder is an order with its owner resolved. Owner is nil when the user no longer exists.
type AdminOrder struct {
	Order
	Owner *OrderOwner `json:"user"`
}

type orderAlias Order

type orderJSON struct {
	orderAlias
	TotalAmount json.Number `json:"totalAmount"`
}

func newOrderJSON(o Order) orderJSON {
	return orderJSON{orderAlias: orderAlias(o), TotalAmount: jsonNumber(o.TotalAmount)}
}

// MarshalJSON writes the total as a JSON number
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(newOrderJSON(o))
}

// MarshalJSON keeps the owner next to the order fields; without it the promoted
// Order.MarshalJSON would drop it.
func (o AdminOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		orderJSON
		Owner *OrderOwner `json:"user"`
	}{newOrderJSON(o.Order), o.Owner})
}

// CreateOrderRequest is the body of POST /createorder
type CreateOrderRequest struct {
	Items         []OrderItem     `json:"items" binding:"required"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod" binding:"required"`
}

// UpdateOrderStatusRequest is the body of PUT /admin/updateorder/:id
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
