package token

import (
	"context"
	"errors"
	"testing"

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

func TestConsumeInstallsHashOnce(t *testing.T) {
	db, mock := newMockDB(t)

	hash := []byte("new-hash")

	// The statement both verifies the token and clears it, so the
	// matched row count decides validity.
	mock.ExpectExec(`UPDATE users SET\s+password_hash = \$3,\s+reset_token = NULL`).
		WithArgs("u1", "tok", hash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := Consume(context.Background(), db, "u1", "tok", hash); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A mismatched, expired or already-consumed token matches zero rows and
// must surface as ErrInvalidToken, never as success.
func TestConsumeRejectsSpentToken(t *testing.T) {
	db, mock := newMockDB(t)

	hash := []byte("new-hash")

	mock.ExpectExec(`UPDATE users SET`).
		WithArgs("u1", "spent", hash).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := Consume(context.Background(), db, "u1", "spent", hash)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
