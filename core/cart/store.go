package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrQuantityLimit rejects an add that would push an entry past the
// configured per-product cap.
var ErrQuantityLimit = errors.New("quantity limit reached for this product")

// AddItem merges one unit of productID into the user's cart. The
// increment is relative and happens inside a single statement, so two
// concurrent adds of the same product both count; an absolute write
// computed from a prior read would let one overwrite the other on the
// first insert. The cap predicate rides on the conflict branch: a
// capped entry matches zero rows.
func AddItem(ctx context.Context, db sqlx.ExtContext, userID string, productID string, maxQty int) ([]Item, error) {
	const q = `
	INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
	VALUES ($1, $2, 1, $3, $3)
	ON CONFLICT (user_id, product_id) DO UPDATE SET
		quantity = cart_items.quantity + 1,
		updated_at = excluded.updated_at
	WHERE cart_items.quantity < $4`

	res, err := db.ExecContext(ctx, q, userID, productID, time.Now().UTC(), maxQty)
	if err != nil {
		return nil, fmt.Errorf("adding product[%s] to cart of user[%s]: %w", productID, userID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrQuantityLimit
	}

	return FetchItems(ctx, db, userID)
}

// RemoveItem deletes the entry for productID. A missing entry is not an
// error.
func RemoveItem(ctx context.Context, db sqlx.ExtContext, userID string, productID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	if _, err := db.ExecContext(ctx, q, userID, productID); err != nil {
		return fmt.Errorf("removing product[%s] from cart of user[%s]: %w", productID, userID, err)
	}

	return nil
}

// Clear empties the user's cart. Clearing an empty cart succeeds.
func Clear(ctx context.Context, db sqlx.ExtContext, userID string) error {
	const q = `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("clearing cart of user[%s]: %w", userID, err)
	}

	return nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, userID string) ([]Item, error) {
	const q = `SELECT * FROM cart_items WHERE user_id = $1 ORDER BY created_at, product_id`

	var items []Item
	if err := sqlx.SelectContext(ctx, db, &items, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart items of user[%s]: %w", userID, err)
	}

	return items, nil
}

// FetchLines resolves the cart against the live catalog: current
// titles and prices, not the ones seen at add-to-cart time.
func FetchLines(ctx context.Context, db sqlx.ExtContext, userID string) ([]Line, error) {
	const q = `
	SELECT c.product_id, p.title, p.price, p.description, p.image_url, c.quantity
	FROM cart_items AS c
	JOIN products AS p ON p.product_id = c.product_id
	WHERE c.user_id = $1
	ORDER BY c.created_at, c.product_id`

	var lines []Line
	if err := sqlx.SelectContext(ctx, db, &lines, q, userID); err != nil {
		return nil, fmt.Errorf("selecting cart lines of user[%s]: %w", userID, err)
	}

	return lines, nil
}
