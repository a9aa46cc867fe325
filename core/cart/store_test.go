package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("opening mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

// Two concurrent adds of a product must both count, so the statement
// has to increment the stored quantity rather than overwrite it with a
// value computed from an earlier read.
func TestAddItemIncrementsInPlace(t *testing.T) {
	db, mock := newMockDB(t)

	now := time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`ON CONFLICT \(user_id, product_id\) DO UPDATE SET\s+quantity = cart_items\.quantity \+ 1`).
		WithArgs("u1", "p1", sqlmock.AnyArg(), 100).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT \* FROM cart_items WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "product_id", "quantity", "created_at", "updated_at"}).
			AddRow("u1", "p1", 2, now, now))

	items, err := AddItem(context.Background(), db, "u1", "p1", 100)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("unexpected cart after add: %+v", items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A capped entry matches zero rows in the conflict branch; the add is
// rejected and the cart is never reloaded.
func TestAddItemQuantityLimit(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`ON CONFLICT \(user_id, product_id\) DO UPDATE SET`).
		WithArgs("u1", "p1", sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := AddItem(context.Background(), db, "u1", "p1", 3)
	if !errors.Is(err, ErrQuantityLimit) {
		t.Fatalf("expected ErrQuantityLimit, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
