package model

import "time"

// Order is a placed order.  The total is computed by the caller before
// persistence and never recomputed by the store; CreatedAt is assigned
// by the store at creation.  Orders are immutable once placed.
type Order struct {
	ID        int64     `json:"id" bson:"_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	Total     float64   `json:"total" bson:"total"`
	Status    string    `json:"status" bson:"status"`
	Address   string    `json:"address" bson:"address"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// OrderStatusPending is the initial status of every order placed through
// checkout.
const OrderStatusPending = "pending"

// NewOrder carries the fields for order creation.
type NewOrder struct {
	UserID  int64
	Total   float64
	Status  string
	Address string
}

// OrderItem is one line of a placed order.  Price is a snapshot of the
// product's effective price at order time and must never be recomputed,
// so historical orders survive later price changes.
type OrderItem struct {
	ID        int64   `json:"id" bson:"_id"`
	OrderID   int64   `json:"order_id" bson:"order_id"`
	ProductID int64   `json:"product_id" bson:"product_id"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
}

// NewOrderItem carries the fields for order line creation.
type NewOrderItem struct {
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     float64
}
