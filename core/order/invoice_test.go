package order

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/velora/goshop/core/claims"
)

func sampleOrder() Order {
	created := time.Date(2023, 4, 2, 15, 4, 5, 0, time.UTC)
	return Order{
		ID:        "ord1",
		UserID:    "u1",
		Email:     "buyer@test.com",
		Status:    Paid,
		Total:     decimal.RequireFromString("17.05"),
		CreatedAt: created,
		UpdatedAt: created,
		Items: []Item{
			{OrderID: "ord1", ProductID: "p1", Title: "Widget", Price: decimal.RequireFromString("10.00"), Quantity: 1},
			{OrderID: "ord1", ProductID: "p2", Title: "Gadget", Price: decimal.RequireFromString("2.35"), Quantity: 3},
		},
	}
}

func TestInvoiceName(t *testing.T) {
	if got := InvoiceName("ord1"); got != "invoice-ord1.pdf" {
		t.Fatalf("expected invoice-ord1.pdf, got %s", got)
	}
}

func TestAuthorizeInvoice(t *testing.T) {
	ord := sampleOrder()

	if err := AuthorizeInvoice(ord, claims.Claims{UserID: "u1"}); err != nil {
		t.Fatalf("buyer was denied: %v", err)
	}
	if err := AuthorizeInvoice(ord, claims.Claims{UserID: "u2"}); err == nil {
		t.Fatal("non-buyer was allowed")
	}
}

func TestInvoiceTotal(t *testing.T) {
	if got := InvoiceTotal(sampleOrder()); got != "17.05" {
		t.Fatalf("expected 17.05, got %s", got)
	}

	empty := sampleOrder()
	empty.Items = nil
	if got := InvoiceTotal(empty); got != "0.00" {
		t.Fatalf("expected 0.00, got %s", got)
	}
}

func TestRenderInvoice(t *testing.T) {
	ord := sampleOrder()

	first, err := RenderInvoice(ord)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("rendered an empty document")
	}
	if !bytes.HasPrefix(first, []byte("%PDF")) {
		t.Fatal("output is not a pdf document")
	}

	second, err := RenderInvoice(ord)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("same order rendered different bytes")
	}
}

func TestPersistInvoice(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "invoices")
	ord := sampleOrder()

	pdf, err := RenderInvoice(ord)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	path, err := PersistInvoice(dir, ord, pdf)
	if err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if filepath.Base(path) != InvoiceName(ord.ID) {
		t.Fatalf("unexpected file name %s", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading persisted invoice: %v", err)
	}
	if !bytes.Equal(got, pdf) {
		t.Fatal("persisted bytes differ from the rendered document")
	}
}
