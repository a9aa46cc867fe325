package order

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/velora/goshop/core/cart"
	"github.com/velora/goshop/core/claims"
	"github.com/velora/goshop/validate"
)

var (
	// ErrEmptyCart rejects a checkout before the gateway is ever
	// contacted.
	ErrEmptyCart = errors.New("no items to checkout")

	// ErrRejected wraps a charge the gateway refused. The cart stays
	// intact so the user can retry.
	ErrRejected = errors.New("charge rejected by the payment gateway")
)

// Gateway is the narrow payment-provider contract: one charge in minor
// units, tagged with the order id for reconciliation.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

type ChargeRequest struct {
	AmountMinor    int64
	Currency       string
	SourceToken    string
	OrderID        string
	IdempotencyKey string
}

type ChargeResult struct {
	ChargeID string
}

// Store is what the checkout workflow needs from persistence. The
// sqlx-backed implementation lives in store.go; tests substitute fakes.
type Store interface {
	// Lines resolves the user's cart against the live catalog at
	// current prices. A cart item whose product no longer resolves is
	// an error, not a silent drop.
	Lines(ctx context.Context, userID string) ([]cart.Line, error)

	// SavePending persists the order snapshot with status pending.
	SavePending(ctx context.Context, ord Order) error

	// Fulfill marks the order paid and clears the buyer's cart in one
	// transaction.
	Fulfill(ctx context.Context, orderID string, chargeID string, userID string) error

	// Abort marks the order failed, leaving the cart untouched.
	Abort(ctx context.Context, orderID string) error
}

// Build assembles an order snapshot from resolved cart lines: copied
// product fields, total at current prices rounded to two decimals.
func Build(clm claims.Claims, lines []cart.Line, now time.Time) (Order, error) {
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}

	ord := Order{
		ID:        validate.GenerateID(),
		UserID:    clm.UserID,
		Email:     clm.Email,
		Status:    Pending,
		Total:     cart.Total(lines),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, l := range lines {
		ord.Items = append(ord.Items, Item{
			OrderID:     ord.ID,
			ProductID:   l.ProductID,
			Title:       l.Title,
			Price:       l.Price,
			Description: l.Description,
			ImageURL:    l.ImageURL,
			Quantity:    l.Quantity,
		})
	}

	return ord, nil
}

// MinorUnits converts a currency amount to its integer minor units,
// e.g. 10.00 to 1000.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// IdempotencyKey derives a stable key from the user and the exact cart
// content, so a double-submitted checkout cannot double-charge.
func IdempotencyKey(userID string, lines []cart.Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s:%d", l.ProductID, l.Quantity))
	}
	sort.Strings(parts)

	h := sha256.New()
	h.Write([]byte(userID))
	for _, p := range parts {
		h.Write([]byte("|"))
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Checkout runs the purchase workflow: resolve the cart, persist the order as
// pending, charge, then either fulfill (paid, cart cleared) or abort
// (failed, cart intact). The order write always precedes the charge so
// a customer is never charged for an order the store failed to record.
func Checkout(ctx context.Context, st Store, gw Gateway, clm claims.Claims, sourceToken string, currency string) (Order, error) {
	lines, err := st.Lines(ctx, clm.UserID)
	if err != nil {
		return Order{}, fmt.Errorf("resolving cart of user[%s]: %w", clm.UserID, err)
	}

	ord, err := Build(clm, lines, time.Now().UTC())
	if err != nil {
		return Order{}, err
	}

	if err := st.SavePending(ctx, ord); err != nil {
		return Order{}, fmt.Errorf("persisting order[%s]: %w", ord.ID, err)
	}

	res, err := gw.Charge(ctx, ChargeRequest{
		AmountMinor:    MinorUnits(ord.Total),
		Currency:       currency,
		SourceToken:    sourceToken,
		OrderID:        ord.ID,
		IdempotencyKey: IdempotencyKey(clm.UserID, lines),
	})
	if err != nil {
		if aerr := st.Abort(ctx, ord.ID); aerr != nil {
			return Order{}, fmt.Errorf("aborting order[%s] after charge failure %v: %w", ord.ID, err, aerr)
		}
		return Order{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	if err := st.Fulfill(ctx, ord.ID, res.ChargeID, clm.UserID); err != nil {
		return Order{}, fmt.Errorf("fulfilling order[%s] after accepted charge[%s]: %w", ord.ID, res.ChargeID, err)
	}

	ord.Status = Paid
	ord.ChargeID = res.ChargeID
	return ord, nil
}
