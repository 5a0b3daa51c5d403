// Package seed installs a starter catalog so a fresh database, or the
// in-memory store after a startup fallback, has something to browse.
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/mkurov/storefront/internal/model"
	"github.com/mkurov/storefront/internal/store"
)

func ptr(v float64) *float64 { return &v }

type seedProduct struct {
	model.NewProduct
	category string // category slug, resolved to an id at insert time
}

var categories = []model.NewCategory{
	{Name: "Electronics", Slug: "electronics"},
	{Name: "Books", Slug: "books"},
	{Name: "Home & Kitchen", Slug: "home-kitchen"},
}

var products = []seedProduct{
	{category: "electronics", NewProduct: model.NewProduct{
		Name: "Wireless Earbuds", Slug: "wireless-earbuds",
		Description: "Bluetooth 5.3 earbuds with charging case.",
		Price:       59.99, IsOnSale: true, SalePrice: ptr(44.99), Stock: 120,
		ImageURL: "/img/earbuds.jpg", Rating: 4.4, ReviewCount: 312,
	}},
	{category: "electronics", NewProduct: model.NewProduct{
		Name: "Mechanical Keyboard", Slug: "mechanical-keyboard",
		Description: "Hot-swappable tenkeyless board, brown switches.",
		Price:       89.00, Stock: 45,
		ImageURL: "/img/keyboard.jpg", Rating: 4.7, ReviewCount: 128,
	}},
	{category: "books", NewProduct: model.NewProduct{
		Name: "The Pragmatic Shopper", Slug: "pragmatic-shopper",
		Description: "Essays on buying well.",
		Price:       24.50, IsOnSale: true, SalePrice: ptr(19.99), Stock: 200,
		ImageURL: "/img/book.jpg", Rating: 4.1, ReviewCount: 57,
	}},
	{category: "home-kitchen", NewProduct: model.NewProduct{
		Name: "Pour-Over Coffee Set", Slug: "pour-over-coffee-set",
		Description: "Glass carafe, dripper and 40 filters.",
		Price:       32.00, Stock: 80,
		ImageURL: "/img/coffee.jpg", Rating: 4.6, ReviewCount: 203,
	}},
}

// Run inserts the starter catalog if no products exist yet.  It is safe
// to call on every boot.
func Run(ctx context.Context, st store.Store) error {
	existing, err := st.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("seed: list products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	catIDs := make(map[string]int64, len(categories))
	for _, nc := range categories {
		// The category may exist from an earlier partial seed.
		if cat, err := st.GetCategoryBySlug(ctx, nc.Slug); err == nil {
			catIDs[nc.Slug] = cat.ID
			continue
		}
		cat, err := st.CreateCategory(ctx, nc)
		if err != nil {
			return fmt.Errorf("seed: create category %q: %w", nc.Slug, err)
		}
		catIDs[nc.Slug] = cat.ID
	}

	for _, sp := range products {
		np := sp.NewProduct
		np.CategoryID = catIDs[sp.category]
		if _, err := st.CreateProduct(ctx, np); err != nil {
			return fmt.Errorf("seed: create product %q: %w", np.Slug, err)
		}
	}
	log.Printf("seed: installed %d categories and %d products", len(categories), len(products))
	return nil
}
