package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/velora/goshop/api/background"
	"github.com/velora/goshop/api/web"
	"github.com/velora/goshop/api/weberr"
	"github.com/velora/goshop/core/auth"
	"github.com/velora/goshop/core/user"
	"github.com/velora/goshop/email"
	"github.com/velora/goshop/random"
	"github.com/velora/goshop/validate"
	"golang.org/x/crypto/bcrypt"
)

// tokenLength in charset characters; 48 characters over a 62-symbol
// alphabet carry well above 256 bits of entropy.
const tokenLength = 48

type RecoverNew struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetNew struct {
	UserID          string `json:"userId" validate:"required,uuid4"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// HandleRecovery issues a reset token and mails the reset link. The
// response is 204 whether or not the email is registered, so the
// endpoint cannot be used to enumerate accounts; only the logs and the
// mailbox differ.
func HandleRecovery(db *sqlx.DB, mail *email.Mailer, bg *background.Background, timeout time.Duration) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in RecoverNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding recovery request: %w", err))
		}

		if field, err := validate.CheckField(in); err != nil {
			return weberr.Validation(err, field)
		}

		usr, err := user.FetchByEmail(ctx, db, strings.ToLower(strings.TrimSpace(in.Email)))
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		tok, err := random.StringSecure(tokenLength)
		if err != nil {
			return fmt.Errorf("generating reset token: %w", err)
		}

		expiry := time.Now().UTC().Add(timeout)
		if err := Save(ctx, db, usr.ID, tok, expiry); err != nil {
			return err
		}

		bg.Go(func() error {
			return mail.SendRecovery(usr.Email, usr.ID, tok)
		})

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// HandleReset consumes a token and installs the new password. A
// mismatched, expired or already-used token fails; nothing else about
// the account is revealed.
func HandleReset(db *sqlx.DB, policy auth.Policy, bcryptCost int) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ResetNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding reset request: %w", err))
		}

		if field, err := validate.CheckField(in); err != nil {
			return weberr.Validation(err, field)
		}

		if err := policy.Check(in.Password); err != nil {
			return weberr.Validation(err, "password")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("hashing new password: %w", err)
		}

		if err := Consume(ctx, db, in.UserID, in.Token, hash); err != nil {
			if errors.Is(err, ErrInvalidToken) {
				return weberr.Unprocessable(err, err.Error())
			}
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
