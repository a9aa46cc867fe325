package claims

import (
	"context"
	"errors"
)

// Claims carries the identity of the session behind the current
// request. Entitlement in this shop is ownership-based: a user manages
// their own products, cart and orders.
type Claims struct {
	UserID string
	Email  string
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("claim value missing from context")
	}
	return v, nil
}
