package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/velora/goshop/core/cart"
	"github.com/velora/goshop/core/product"
	"github.com/velora/goshop/database"
)

var ErrNotFound = errors.New("order not found")

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders (order_id, user_id, email, status, charge_id, total, created_at, updated_at)
	VALUES (:order_id, :user_id, :email, :status, :charge_id, :total, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO order_items (order_id, product_id, title, price, description, image_url, quantity)
	VALUES (:order_id, :product_id, :title, :price, :description, :image_url, :quantity)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}

	return nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, id string, status Status, chargeID string) error {
	const q = `
	UPDATE orders SET
		status = $2,
		charge_id = $3,
		updated_at = $4
	WHERE order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status, chargeID, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating status of order[%s]: %w", id, err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Order, error) {
	const q = `SELECT * FROM orders WHERE order_id = $1`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("selecting order[%s]: %w", id, err)
	}

	const qi = `SELECT * FROM order_items WHERE order_id = $1 ORDER BY product_id`
	if err := sqlx.SelectContext(ctx, db, &ord.Items, qi, id); err != nil {
		return Order{}, fmt.Errorf("selecting items of order[%s]: %w", id, err)
	}

	return ord, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Order, error) {
	const q = `SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC, order_id`

	var orders []Order
	if err := sqlx.SelectContext(ctx, db, &orders, q, userID); err != nil {
		return nil, fmt.Errorf("selecting orders of user[%s]: %w", userID, err)
	}

	const qi = `SELECT * FROM order_items WHERE order_id = $1 ORDER BY product_id`
	for i := range orders {
		if err := sqlx.SelectContext(ctx, db, &orders[i].Items, qi, orders[i].ID); err != nil {
			return nil, fmt.Errorf("selecting items of order[%s]: %w", orders[i].ID, err)
		}
	}

	return orders, nil
}

// SQLStore adapts the database to the checkout workflow's Store
// contract.
type SQLStore struct {
	DB *sqlx.DB
}

// Lines resolves each cart item against the live catalog. A product
// that no longer exists fails the whole resolution.
func (s SQLStore) Lines(ctx context.Context, userID string) ([]cart.Line, error) {
	items, err := cart.FetchItems(ctx, s.DB, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching cart items: %w", err)
	}

	lines := make([]cart.Line, 0, len(items))
	for _, it := range items {
		p, err := product.Fetch(ctx, s.DB, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolving product[%s]: %w", it.ProductID, err)
		}

		lines = append(lines, cart.Line{
			ProductID:   p.ID,
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Quantity:    it.Quantity,
		})
	}

	return lines, nil
}

func (s SQLStore) SavePending(ctx context.Context, ord Order) error {
	return database.Transaction(s.DB, func(tx sqlx.ExtContext) error {
		if err := Create(ctx, tx, ord); err != nil {
			return err
		}

		for _, it := range ord.Items {
			if err := CreateItem(ctx, tx, it); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s SQLStore) Fulfill(ctx context.Context, orderID string, chargeID string, userID string) error {
	return database.Transaction(s.DB, func(tx sqlx.ExtContext) error {
		if err := UpdateStatus(ctx, tx, orderID, Paid, chargeID); err != nil {
			return err
		}

		if err := cart.Clear(ctx, tx, userID); err != nil {
			return fmt.Errorf("flushing cart: %w", err)
		}

		return nil
	})
}

func (s SQLStore) Abort(ctx context.Context, orderID string) error {
	return UpdateStatus(ctx, s.DB, orderID, Failed, "")
}
