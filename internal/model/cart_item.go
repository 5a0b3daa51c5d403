package model

// CartItem is one line of a user's cart.  At most one line exists per
// (UserID, ProductID) pair; callers enforce this with a lookup before
// insert (see store.Store.GetCartItemByUserAndProduct).  No price is
// stored on the line; prices are resolved at checkout time.
type CartItem struct {
	ID        int64 `json:"id" bson:"_id"`
	UserID    int64 `json:"user_id" bson:"user_id"`
	ProductID int64 `json:"product_id" bson:"product_id"`
	Quantity  int   `json:"quantity" bson:"quantity"`
}

// NewCartItem carries the fields for cart line creation.  Quantity must
// be at least 1.
type NewCartItem struct {
	UserID    int64
	ProductID int64
	Quantity  int
}
