package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/velora/goshop/api/web"
	"github.com/velora/goshop/api/weberr"
	"github.com/velora/goshop/rate"
)

// RateLimit rejects clients exceeding their per-address budget. Used on
// the credential and token endpoints to slow down guessing.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
