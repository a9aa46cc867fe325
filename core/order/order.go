package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	Pending Status = "pending"
	Paid    Status = "paid"
	Failed  Status = "failed"
)

// Order is an immutable snapshot of a checkout: buyer identity plus
// copies of the purchased products as they were at purchase time.
// Later catalog edits never reach past orders.
type Order struct {
	ID        string          `json:"id" db:"order_id"`
	UserID    string          `json:"userId" db:"user_id"`
	Email     string          `json:"email" db:"email"`
	Status    Status          `json:"status" db:"status"`
	ChargeID  string          `json:"-" db:"charge_id"`
	Total     decimal.Decimal `json:"total" db:"total"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
	Items     []Item          `json:"items" db:"-"`
}

// Item carries the copied product fields, not a live reference.
type Item struct {
	OrderID     string          `json:"-" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	Title       string          `json:"title" db:"title"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description" db:"description"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
	Quantity    int             `json:"quantity" db:"quantity"`
}

type CheckoutNew struct {
	Token string `json:"token" validate:"required"`
}
