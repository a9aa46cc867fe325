package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrInvalidToken covers every rejection: unknown user, token
// mismatch, expired token, or a token that was already consumed.
var ErrInvalidToken = errors.New("reset token invalid or expired")

// Save stores the reset token and its expiry on the user, replacing
// any earlier one.
func Save(ctx context.Context, db sqlx.ExtContext, userID string, tok string, expiry time.Time) error {
	const q = `
	UPDATE users SET
		reset_token = $2,
		reset_expiry = $3,
		updated_at = now()
	WHERE user_id = $1`

	if _, err := db.ExecContext(ctx, q, userID, tok, expiry); err != nil {
		return fmt.Errorf("saving reset token of user[%s]: %w", userID, err)
	}

	return nil
}

// Consume atomically verifies the token and installs the new password
// hash. The WHERE clause matches only an unexpired, identical token,
// and the update clears it, so a token works exactly once.
func Consume(ctx context.Context, db sqlx.ExtContext, userID string, tok string, newHash []byte) error {
	const q = `
	UPDATE users SET
		password_hash = $3,
		reset_token = NULL,
		reset_expiry = NULL,
		updated_at = now()
	WHERE user_id = $1
	  AND reset_token = $2
	  AND reset_expiry > now()`

	res, err := db.ExecContext(ctx, q, userID, tok, newHash)
	if err != nil {
		return fmt.Errorf("consuming reset token of user[%s]: %w", userID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrInvalidToken
	}

	return nil
}
