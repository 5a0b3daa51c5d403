package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/mkurov/storefront/internal/model"
)

// MySQLStore implements Store over MySQL.  Id generation is the
// table's AUTO_INCREMENT column, read back through LastInsertId, so
// this adapter never touches an explicit counter.
//
// Expected schema (see migrations in the deployment repo):
//
//	users       (id BIGINT AUTO_INCREMENT PK, username VARCHAR UNIQUE,
//	             email VARCHAR UNIQUE, password_hash, first_name,
//	             last_name, is_admin BOOL, created_at DATETIME)
//	categories  (id PK, name, slug VARCHAR UNIQUE)
//	products    (id PK, name, slug VARCHAR UNIQUE, description,
//	             price DECIMAL, is_on_sale BOOL, sale_price DECIMAL NULL,
//	             stock INT, category_id BIGINT FK, image_url,
//	             rating DECIMAL, review_count INT)
//	orders      (id PK, user_id, total DECIMAL, status, address,
//	             created_at DATETIME)
//	order_items (id PK, order_id, product_id, quantity, price DECIMAL)
//	cart_items  (id PK, user_id, product_id, quantity)
//
// The UNIQUE keys are a backstop behind the caller-side pre-checks;
// a lost race surfaces as ErrDuplicate instead of a raw driver error.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to an open connection pool.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

func (s *MySQLStore) Name() string { return "mysql" }

func (s *MySQLStore) Close(ctx context.Context) error { return s.db.Close() }

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrDuplicate
	}
	return err
}

// ----- users -----

const userCols = "id, username, email, password_hash, first_name, last_name, is_admin, created_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *MySQLStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

func (s *MySQLStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE username=? LIMIT 1", username))
}

func (s *MySQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

func (s *MySQLStore) CreateUser(ctx context.Context, n model.NewUser) (*model.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, first_name, last_name, is_admin, created_at) VALUES (?,?,?,?,?,?,?)",
		n.Username, n.Email, n.PasswordHash, n.FirstName, n.LastName, false, now)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:           id,
		Username:     n.Username,
		Email:        n.Email,
		PasswordHash: n.PasswordHash,
		FirstName:    n.FirstName,
		LastName:     n.LastName,
		CreatedAt:    now,
	}, nil
}

// ----- categories -----

func (s *MySQLStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, slug FROM categories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *MySQLStore) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, slug FROM categories WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *MySQLStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, slug FROM categories WHERE slug=? LIMIT 1", slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *MySQLStore) CreateCategory(ctx context.Context, n model.NewCategory) (*model.Category, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name, slug) VALUES (?,?)", n.Name, n.Slug)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Category{ID: id, Name: n.Name, Slug: n.Slug}, nil
}

// ----- products -----

const productCols = "id, name, slug, description, price, is_on_sale, sale_price, stock, category_id, image_url, rating, review_count"

func scanProductRow(scan func(dest ...any) error) (*model.Product, error) {
	var p model.Product
	var sale sql.NullFloat64
	err := scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.IsOnSale,
		&sale, &p.Stock, &p.CategoryID, &p.ImageURL, &p.Rating, &p.ReviewCount)
	if err != nil {
		return nil, translate(err)
	}
	if sale.Valid {
		v := sale.Float64
		p.SalePrice = &v
	}
	return &p, nil
}

func (s *MySQLStore) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProductRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *MySQLStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.queryProducts(ctx, "SELECT "+productCols+" FROM products")
}

func (s *MySQLStore) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	return scanProductRow(s.db.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? LIMIT 1", id).Scan)
}

func (s *MySQLStore) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return scanProductRow(s.db.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE slug=? LIMIT 1", slug).Scan)
}

func (s *MySQLStore) ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	return s.queryProducts(ctx,
		"SELECT "+productCols+" FROM products WHERE category_id=?", categoryID)
}

func (s *MySQLStore) ListProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.queryProducts(ctx,
		fmt.Sprintf("SELECT %s FROM products WHERE id IN (%s)", productCols, placeholders),
		args...)
}

func (s *MySQLStore) CreateProduct(ctx context.Context, n model.NewProduct) (*model.Product, error) {
	var sale sql.NullFloat64
	if n.SalePrice != nil {
		sale = sql.NullFloat64{Float64: *n.SalePrice, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO products (name, slug, description, price, is_on_sale, sale_price, stock, category_id, image_url, rating, review_count) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		n.Name, n.Slug, n.Description, n.Price, n.IsOnSale, sale, n.Stock,
		n.CategoryID, n.ImageURL, n.Rating, n.ReviewCount)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Product{
		ID:          id,
		Name:        n.Name,
		Slug:        n.Slug,
		Description: n.Description,
		Price:       n.Price,
		IsOnSale:    n.IsOnSale,
		SalePrice:   n.SalePrice,
		Stock:       n.Stock,
		CategoryID:  n.CategoryID,
		ImageURL:    n.ImageURL,
		Rating:      n.Rating,
		ReviewCount: n.ReviewCount,
	}, nil
}

// ----- orders -----

func (s *MySQLStore) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, total, status, address, created_at FROM orders WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.Address, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *MySQLStore) GetOrderByID(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, total, status, address, created_at FROM orders WHERE id=? LIMIT 1", id).
		Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.Address, &o.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *MySQLStore) CreateOrder(ctx context.Context, n model.NewOrder) (*model.Order, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO orders (user_id, total, status, address, created_at) VALUES (?,?,?,?,?)",
		n.UserID, n.Total, n.Status, n.Address, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Order{
		ID:        id,
		UserID:    n.UserID,
		Total:     n.Total,
		Status:    n.Status,
		Address:   n.Address,
		CreatedAt: now,
	}, nil
}

// ----- order items -----

func (s *MySQLStore) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id=?", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *MySQLStore) CreateOrderItem(ctx context.Context, n model.NewOrderItem) (*model.OrderItem, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (?,?,?,?)",
		n.OrderID, n.ProductID, n.Quantity, n.Price)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.OrderItem{
		ID:        id,
		OrderID:   n.OrderID,
		ProductID: n.ProductID,
		Quantity:  n.Quantity,
		Price:     n.Price,
	}, nil
}

// ----- cart items -----

func (s *MySQLStore) ListCartItemsByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, product_id, quantity FROM cart_items WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.CartItem{}
	for rows.Next() {
		var ci model.CartItem
		if err := rows.Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity); err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

func (s *MySQLStore) GetCartItemByUserAndProduct(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	var ci model.CartItem
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id, quantity FROM cart_items WHERE user_id=? AND product_id=? LIMIT 1",
		userID, productID).
		Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity)
	if err != nil {
		return nil, translate(err)
	}
	return &ci, nil
}

func (s *MySQLStore) CreateCartItem(ctx context.Context, n model.NewCartItem) (*model.CartItem, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO cart_items (user_id, product_id, quantity) VALUES (?,?,?)",
		n.UserID, n.ProductID, n.Quantity)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.CartItem{ID: id, UserID: n.UserID, ProductID: n.ProductID, Quantity: n.Quantity}, nil
}

func (s *MySQLStore) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*model.CartItem, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity=? WHERE id=?", quantity, id)
	if err != nil {
		return nil, err
	}
	// RowsAffected is 0 both for a missing row and for an unchanged
	// quantity, so confirm with a read instead of guessing.
	if _, err := res.RowsAffected(); err != nil {
		return nil, err
	}
	var ci model.CartItem
	err = s.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id, quantity FROM cart_items WHERE id=? LIMIT 1", id).
		Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity)
	if err != nil {
		return nil, translate(err)
	}
	return &ci, nil
}

func (s *MySQLStore) DeleteCartItem(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MySQLStore) ClearCart(ctx context.Context, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id=?", userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
