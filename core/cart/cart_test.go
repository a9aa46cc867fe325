package cart

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestAddSameProductTwice(t *testing.T) {
	now := time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)

	items := Add(nil, "p1", now)
	items = Add(items, "p1", now.Add(time.Minute))

	if len(items) != 1 {
		t.Fatalf("expected a single entry, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", items[0].Quantity)
	}
}

func TestAddDifferentProducts(t *testing.T) {
	now := time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)

	items := Add(nil, "p1", now)
	items = Add(items, "p2", now)

	if len(items) != 2 {
		t.Fatalf("expected two entries, got %d", len(items))
	}
	for _, it := range items {
		if it.Quantity != 1 {
			t.Fatalf("expected quantity 1 for %s, got %d", it.ProductID, it.Quantity)
		}
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	now := time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)

	orig := []Item{{ProductID: "p1", Quantity: 1, CreatedAt: now, UpdatedAt: now}}
	_ = Add(orig, "p1", now.Add(time.Minute))

	if orig[0].Quantity != 1 {
		t.Fatalf("input slice was mutated: quantity %d", orig[0].Quantity)
	}
}

func TestRemoveAbsentProduct(t *testing.T) {
	now := time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)

	items := Add(nil, "p1", now)
	got := Remove(items, "p2")

	if diff := cmp.Diff(items, got); diff != "" {
		t.Fatalf("cart changed after removing an absent product:\n%s", diff)
	}
}

func TestRemovePresentProduct(t *testing.T) {
	now := time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)

	items := Add(nil, "p1", now)
	items = Add(items, "p2", now)
	items = Remove(items, "p1")

	if len(items) != 1 || items[0].ProductID != "p2" {
		t.Fatalf("unexpected cart after removal: %+v", items)
	}
}

func TestRemoveFromEmpty(t *testing.T) {
	got := Remove(nil, "p1")
	if len(got) != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}
}

func TestTotal(t *testing.T) {
	lines := []Line{
		{ProductID: "p1", Price: decimal.RequireFromString("10.00"), Quantity: 1},
		{ProductID: "p2", Price: decimal.RequireFromString("2.35"), Quantity: 3},
	}

	got := Total(lines)
	want := decimal.RequireFromString("17.05")

	if !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestTotalEmpty(t *testing.T) {
	if got := Total(nil); !got.IsZero() {
		t.Fatalf("expected zero total, got %s", got)
	}
}
