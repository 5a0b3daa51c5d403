// Package queue defines the order.placed message payload, its
// publisher and the background consumer that logs placed orders.
package queue

// OrderPlacedEvent is published after a checkout completes.  It carries
// enough for downstream consumers (notifications, analytics) to act
// without querying the primary store.
type OrderPlacedEvent struct {
	OrderID   int64   `json:"order_id"`
	UserID    int64   `json:"user_id"`
	Total     float64 `json:"total"`
	LineCount int     `json:"line_count"`
	Address   string  `json:"address"`
	PlacedAt  string  `json:"placed_at"`
}
