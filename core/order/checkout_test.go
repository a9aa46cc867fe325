package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/velora/goshop/core/cart"
	"github.com/velora/goshop/core/claims"
)

type fakeStore struct {
	lines    []cart.Line
	linesErr error

	pending   []Order
	saveErr   error
	fulfilled []string
	aborted   []string
	cleared   bool
}

func (f *fakeStore) Lines(ctx context.Context, userID string) ([]cart.Line, error) {
	return f.lines, f.linesErr
}

func (f *fakeStore) SavePending(ctx context.Context, ord Order) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.pending = append(f.pending, ord)
	return nil
}

func (f *fakeStore) Fulfill(ctx context.Context, orderID string, chargeID string, userID string) error {
	f.fulfilled = append(f.fulfilled, orderID)
	f.cleared = true
	f.lines = nil
	return nil
}

func (f *fakeStore) Abort(ctx context.Context, orderID string) error {
	f.aborted = append(f.aborted, orderID)
	return nil
}

type fakeGateway struct {
	requests []ChargeRequest
	err      error
}

func (f *fakeGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return ChargeResult{}, f.err
	}
	return ChargeResult{ChargeID: "ch_1"}, nil
}

var buyer = claims.Claims{UserID: "u1", Email: "buyer@test.com"}

func oneLine(price string, qty int) []cart.Line {
	return []cart.Line{{
		ProductID:   "p1",
		Title:       "Widget",
		Price:       decimal.RequireFromString(price),
		Description: "a widget",
		ImageURL:    "images/widget.png",
		Quantity:    qty,
	}}
}

func TestCheckoutEmptyCart(t *testing.T) {
	st := &fakeStore{}
	gw := &fakeGateway{}

	_, err := Checkout(context.Background(), st, gw, buyer, "tok_visa", "usd")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	if len(gw.requests) != 0 {
		t.Fatal("gateway was called for an empty cart")
	}
	if len(st.pending) != 0 {
		t.Fatal("an order was persisted for an empty cart")
	}
}

func TestCheckoutSuccess(t *testing.T) {
	st := &fakeStore{lines: oneLine("10.00", 1)}
	gw := &fakeGateway{}

	ord, err := Checkout(context.Background(), st, gw, buyer, "tok_visa", "usd")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if !ord.Total.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected total 10.00, got %s", ord.Total)
	}
	if ord.Status != Paid {
		t.Fatalf("expected status %s, got %s", Paid, ord.Status)
	}
	if ord.ChargeID != "ch_1" {
		t.Fatalf("expected charge id ch_1, got %s", ord.ChargeID)
	}

	if len(gw.requests) != 1 {
		t.Fatalf("expected one charge, got %d", len(gw.requests))
	}
	req := gw.requests[0]
	if req.AmountMinor != 1000 {
		t.Fatalf("expected 1000 minor units, got %d", req.AmountMinor)
	}
	if req.Currency != "usd" || req.SourceToken != "tok_visa" {
		t.Fatalf("unexpected charge request: %+v", req)
	}
	if req.OrderID != ord.ID {
		t.Fatal("charge not tagged with the order id")
	}

	if !st.cleared {
		t.Fatal("cart was not cleared after a paid order")
	}
	if len(st.fulfilled) != 1 || st.fulfilled[0] != ord.ID {
		t.Fatalf("order was not fulfilled: %+v", st.fulfilled)
	}
}

func TestCheckoutPersistsBeforeCharging(t *testing.T) {
	st := &fakeStore{lines: oneLine("10.00", 1), saveErr: errors.New("disk full")}
	gw := &fakeGateway{}

	_, err := Checkout(context.Background(), st, gw, buyer, "tok_visa", "usd")
	if err == nil {
		t.Fatal("expected an error when the order write fails")
	}

	if len(gw.requests) != 0 {
		t.Fatal("customer was charged for an order that failed to persist")
	}
}

func TestCheckoutGatewayRejection(t *testing.T) {
	st := &fakeStore{lines: oneLine("10.00", 2)}
	gw := &fakeGateway{err: errors.New("card declined")}

	_, err := Checkout(context.Background(), st, gw, buyer, "tok_visa", "usd")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	if st.cleared {
		t.Fatal("cart was cleared after a rejected charge")
	}
	if len(st.aborted) != 1 {
		t.Fatalf("order was not marked failed: %+v", st.aborted)
	}
	if len(st.fulfilled) != 0 {
		t.Fatal("order was fulfilled despite the rejection")
	}
}

func TestBuildSnapshotsProducts(t *testing.T) {
	lines := oneLine("10.00", 1)

	ord, err := Build(buyer, lines, time.Now().UTC())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// A later catalog price change must not reach the snapshot.
	lines[0].Price = decimal.RequireFromString("99.99")

	if !ord.Items[0].Price.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("snapshot price changed to %s", ord.Items[0].Price)
	}
	if !ord.Total.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("snapshot total changed to %s", ord.Total)
	}
}

func TestBuildTotalRounding(t *testing.T) {
	lines := []cart.Line{
		{ProductID: "p1", Price: decimal.RequireFromString("3.333"), Quantity: 3},
	}

	ord, err := Build(buyer, lines, time.Now().UTC())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if got := ord.Total.StringFixed(2); got != "10.00" {
		t.Fatalf("expected total 10.00, got %s", got)
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"10.00", 1000},
		{"0.01", 1},
		{"17.05", 1705},
		{"100", 10000},
	}

	for _, tt := range tests {
		if got := MinorUnits(decimal.RequireFromString(tt.amount)); got != tt.want {
			t.Fatalf("MinorUnits(%s): expected %d, got %d", tt.amount, tt.want, got)
		}
	}
}

func TestIdempotencyKey(t *testing.T) {
	a := oneLine("10.00", 1)
	b := oneLine("10.00", 1)

	if IdempotencyKey("u1", a) != IdempotencyKey("u1", b) {
		t.Fatal("same cart produced different keys")
	}

	b[0].Quantity = 2
	if IdempotencyKey("u1", a) == IdempotencyKey("u1", b) {
		t.Fatal("different carts produced the same key")
	}

	if IdempotencyKey("u1", a) == IdempotencyKey("u2", a) {
		t.Fatal("different users produced the same key")
	}
}
