package model

// Product is a purchasable catalog entry with a unique slug.  CategoryID
// references a Category by id; the reference is advisory and only the
// relational backend declares a foreign key for it.  SalePrice is
// meaningful only while IsOnSale is set.
type Product struct {
	ID          int64    `json:"id" bson:"_id"`
	Name        string   `json:"name" bson:"name"`
	Slug        string   `json:"slug" bson:"slug"`
	Description string   `json:"description" bson:"description"`
	Price       float64  `json:"price" bson:"price"`
	IsOnSale    bool     `json:"is_on_sale" bson:"is_on_sale"`
	SalePrice   *float64 `json:"sale_price,omitempty" bson:"sale_price,omitempty"`
	Stock       int      `json:"stock" bson:"stock"`
	CategoryID  int64    `json:"category_id" bson:"category_id"`
	ImageURL    string   `json:"image_url" bson:"image_url"`
	Rating      float64  `json:"rating" bson:"rating"`
	ReviewCount int      `json:"review_count" bson:"review_count"`
}

// EffectivePrice returns the sale price while the product is on sale and
// a sale price is set, otherwise the list price.  Order items snapshot
// this value at checkout time.
func (p *Product) EffectivePrice() float64 {
	if p.IsOnSale && p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// NewProduct carries the fields for product creation.
type NewProduct struct {
	Name        string
	Slug        string
	Description string
	Price       float64
	IsOnSale    bool
	SalePrice   *float64
	Stock       int
	CategoryID  int64
	ImageURL    string
	Rating      float64
	ReviewCount int
}
