package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/velora/goshop/api/background"
	"github.com/velora/goshop/api/web"
	"github.com/velora/goshop/api/weberr"
	"github.com/velora/goshop/core/user"
	"github.com/velora/goshop/email"
	"github.com/velora/goshop/validate"
	"golang.org/x/crypto/bcrypt"
)

// invalidCredentials builds the authentication failure returned to the
// client. Unknown email and wrong password must be indistinguishable
// here; reason only ever reaches the logs.
func invalidCredentials(reason string) error {
	err := errors.New("login failed: " + reason)
	return weberr.NewError(
		err,
		"invalid email or password",
		http.StatusUnauthorized,
		weberr.WithFields(map[string]interface{}{"reason": reason}),
	)
}

func HandleSignup(db *sqlx.DB, session *scs.SessionManager, mail *email.Mailer, bg *background.Background, policy Policy, bcryptCost int) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in user.UserNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding signup request: %w", err))
		}

		if field, err := validate.CheckField(in); err != nil {
			return weberr.Validation(err, field)
		}

		if err := policy.Check(in.Password); err != nil {
			return weberr.Validation(err, "password")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:           validate.GenerateID(),
			Email:        strings.ToLower(strings.TrimSpace(in.Email)),
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, usr); err != nil {
			var pqerr *pq.Error
			if errors.As(err, &pqerr) && pqerr.Code.Name() == "unique_violation" {
				verr := errors.New("email exists already, please pick a different one")
				return weberr.Validation(verr, "email")
			}
			return fmt.Errorf("creating user: %w", err)
		}

		bg.Go(func() error {
			return mail.SendWelcome(usr.Email)
		})

		if err := session.RenewToken(ctx); err != nil {
			return fmt.Errorf("renewing session token: %w", err)
		}
		session.Put(ctx, userIDKey, usr.ID)
		session.Put(ctx, emailKey, usr.Email)

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in user.UserLogin
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding login request: %w", err))
		}

		if field, err := validate.CheckField(in); err != nil {
			return weberr.Validation(err, field)
		}

		usr, err := user.FetchByEmail(ctx, db, strings.ToLower(strings.TrimSpace(in.Email)))
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return invalidCredentials("unknown email")
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(in.Password)); err != nil {
			return invalidCredentials("password mismatch")
		}

		if err := session.RenewToken(ctx); err != nil {
			return fmt.Errorf("renewing session token: %w", err)
		}
		session.Put(ctx, userIDKey, usr.ID)
		session.Put(ctx, emailKey, usr.Email)

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
