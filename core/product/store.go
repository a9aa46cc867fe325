package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("product not found")

func Create(ctx context.Context, db sqlx.ExtContext, prod Product) error {
	const q = `
	INSERT INTO products (product_id, title, price, description, image_url, user_id, created_at, updated_at)
	VALUES (:product_id, :title, :price, :description, :image_url, :user_id, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prod); err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, prod Product) error {
	const q = `
	UPDATE products SET
		title = :title,
		price = :price,
		description = :description,
		image_url = :image_url,
		updated_at = :updated_at
	WHERE product_id = :product_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prod); err != nil {
		return fmt.Errorf("updating product[%s]: %w", prod.ID, err)
	}

	return nil
}

// Delete removes a product belonging to owner. The owner predicate is
// part of the statement so a non-owner delete is a silent zero-row
// match surfaced as ErrNotFound.
func Delete(ctx context.Context, db sqlx.ExtContext, id string, owner string) error {
	const q = `DELETE FROM products WHERE product_id = $1 AND user_id = $2`

	res, err := db.ExecContext(ctx, q, id, owner)
	if err != nil {
		return fmt.Errorf("deleting product[%s]: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1`

	var prod Product
	if err := sqlx.GetContext(ctx, db, &prod, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("selecting product[%s]: %w", id, err)
	}

	return prod, nil
}

// List returns one page of the catalog plus the total count. An empty
// owner lists the whole catalog; otherwise only that user's products.
func List(ctx context.Context, db sqlx.ExtContext, owner string, page, size int) ([]Product, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * size

	var total int
	var prods []Product

	if owner == "" {
		const qc = `SELECT count(*) FROM products`
		if err := sqlx.GetContext(ctx, db, &total, qc); err != nil {
			return nil, 0, fmt.Errorf("counting products: %w", err)
		}

		const q = `SELECT * FROM products ORDER BY created_at, product_id LIMIT $1 OFFSET $2`
		if err := sqlx.SelectContext(ctx, db, &prods, q, size, offset); err != nil {
			return nil, 0, fmt.Errorf("selecting products: %w", err)
		}
		return prods, total, nil
	}

	const qc = `SELECT count(*) FROM products WHERE user_id = $1`
	if err := sqlx.GetContext(ctx, db, &total, qc, owner); err != nil {
		return nil, 0, fmt.Errorf("counting products of user[%s]: %w", owner, err)
	}

	const q = `SELECT * FROM products WHERE user_id = $1 ORDER BY created_at, product_id LIMIT $2 OFFSET $3`
	if err := sqlx.SelectContext(ctx, db, &prods, q, owner, size, offset); err != nil {
		return nil, 0, fmt.Errorf("selecting products of user[%s]: %w", owner, err)
	}

	return prods, total, nil
}
