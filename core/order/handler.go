package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/velora/goshop/api/background"
	"github.com/velora/goshop/api/web"
	"github.com/velora/goshop/api/weberr"
	"github.com/velora/goshop/core/claims"
	"github.com/velora/goshop/core/product"
	"github.com/velora/goshop/validate"
)

// HandleCheckout charges the user's cart and records the order. The
// order is written before the gateway is contacted; a rejected charge
// leaves the cart intact for a retry.
func HandleCheckout(db *sqlx.DB, gw Gateway, ev *Events, bg *background.Background, currency string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in CheckoutNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding checkout request: %w", err))
		}

		if field, err := validate.CheckField(in); err != nil {
			return weberr.Validation(err, field)
		}

		ord, err := Checkout(ctx, SQLStore{DB: db}, gw, clm, in.Token, currency)
		if err != nil {
			switch {
			case errors.Is(err, ErrEmptyCart):
				return weberr.Unprocessable(err, err.Error())
			case errors.Is(err, product.ErrNotFound):
				return weberr.Unprocessable(err, "a product in the cart is no longer available")
			case errors.Is(err, ErrRejected):
				return weberr.NewError(err, "the payment could not be completed", http.StatusPaymentRequired)
			default:
				return fmt.Errorf("checking out cart of user[%s]: %w", clm.UserID, err)
			}
		}

		bg.Go(func() error {
			return ev.OrderPaid(context.Background(), ord)
		})

		return web.Respond(ctx, w, ord, http.StatusCreated)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orders, err := FetchByUser(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("listing orders of user[%s]: %w", clm.UserID, err)
		}
		if orders == nil {
			orders = []Order{}
		}

		return web.Respond(ctx, w, orders, http.StatusOK)
	}
}

// HandleInvoice renders an order's invoice, persists it under the
// invoice directory and streams it inline. Only the buyer may fetch
// it; no file is written on a failed authorization.
func HandleInvoice(db *sqlx.DB, invoiceDir string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing order id: %w", err))
		}

		ord, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching order[%s]: %w", id, err)
		}

		if err := AuthorizeInvoice(ord, clm); err != nil {
			return weberr.Forbidden(err)
		}

		pdf, err := RenderInvoice(ord)
		if err != nil {
			return fmt.Errorf("rendering invoice of order[%s]: %w", id, err)
		}

		if _, err := PersistInvoice(invoiceDir, ord, pdf); err != nil {
			return fmt.Errorf("persisting invoice of order[%s]: %w", id, err)
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", InvoiceName(ord.ID)))
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write(pdf); err != nil {
			return fmt.Errorf("streaming invoice of order[%s]: %w", id, err)
		}

		return nil
	}
}
