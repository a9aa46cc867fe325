package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	UserID    string    `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
}

// Line is a cart item joined with its live product data, as shown on
// the cart page and consumed by checkout.
type Line struct {
	ProductID   string          `json:"productId" db:"product_id"`
	Title       string          `json:"title" db:"title"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description" db:"description"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	Quantity    int             `json:"quantity" db:"quantity"`
}

// Add increments the quantity of productID or appends a new unit entry.
// The input is never mutated; a cart holds at most one entry per
// product.
func Add(items []Item, productID string, now time.Time) []Item {
	out := make([]Item, 0, len(items)+1)

	found := false
	for _, it := range items {
		if it.ProductID == productID {
			it.Quantity++
			it.UpdatedAt = now
			found = true
		}
		out = append(out, it)
	}

	if !found {
		out = append(out, Item{
			ProductID: productID,
			Quantity:  1,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return out
}

// Remove filters out the entry for productID. Removing an absent
// product is a no-op, not an error.
func Remove(items []Item, productID string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// Total sums quantity times unit price over resolved lines, rounded to
// two decimal places.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}
