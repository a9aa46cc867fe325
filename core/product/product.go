package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id" db:"product_id"`
	Title       string          `json:"title" db:"title"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description" db:"description"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	UserID      string          `json:"userId" db:"user_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

type ProductNew struct {
	Title       string `validate:"required"`
	Price       string `validate:"required"`
	Description string `validate:"required"`
}

// Meta describes the position of a listing page, computed from the
// 1-indexed page, the page size and the total number of items.
type Meta struct {
	CurrentPage     int  `json:"currentPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	NextPage        int  `json:"nextPage"`
	PreviousPage    int  `json:"previousPage"`
	LastPage        int  `json:"lastPage"`
	TotalItems      int  `json:"totalItems"`
}

// Paginate normalizes page and computes the listing metadata. A
// non-positive page means the first one; a page past the end simply
// yields an empty listing, not an error.
func Paginate(page, size, total int) Meta {
	if page < 1 {
		page = 1
	}

	last := (total + size - 1) / size

	return Meta{
		CurrentPage:     page,
		HasNextPage:     page*size < total,
		HasPreviousPage: page > 1,
		NextPage:        page + 1,
		PreviousPage:    page - 1,
		LastPage:        last,
		TotalItems:      total,
	}
}
