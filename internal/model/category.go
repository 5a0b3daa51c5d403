package model

// Category groups products for browsing.  The slug is unique and is the
// handle used in routes.  Categories are created during catalog setup
// and are read-only afterwards.
type Category struct {
	ID   int64  `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	Slug string `json:"slug" bson:"slug"`
}

// NewCategory carries the fields for category creation.
type NewCategory struct {
	Name string
	Slug string
}
