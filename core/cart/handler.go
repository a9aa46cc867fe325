package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/velora/goshop/api/web"
	"github.com/velora/goshop/api/weberr"
	"github.com/velora/goshop/core/claims"
	"github.com/velora/goshop/core/product"
	"github.com/velora/goshop/validate"
)

type view struct {
	Lines []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		lines, err := FetchLines(ctx, db, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching cart of user[%s]: %w", clm.UserID, err)
		}
		if lines == nil {
			lines = []Line{}
		}

		return web.Respond(ctx, w, view{Lines: lines, Total: Total(lines)}, http.StatusOK)
	}
}

// HandleCreateItem adds one unit of a product to the cart. The product
// must resolve in the catalog before the cart is touched.
func HandleCreateItem(db *sqlx.DB, maxQty int) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding cart item: %w", err))
		}

		if field, err := validate.CheckField(in); err != nil {
			return weberr.Validation(err, field)
		}

		if _, err := product.Fetch(ctx, db, in.ProductID); err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("resolving product[%s]: %w", in.ProductID, err)
		}

		items, err := AddItem(ctx, db, clm.UserID, in.ProductID, maxQty)
		if err != nil {
			if errors.Is(err, ErrQuantityLimit) {
				return weberr.Unprocessable(err, err.Error())
			}
			return err
		}

		return web.Respond(ctx, w, items, http.StatusOK)
	}
}

func HandleDeleteItem(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing product id: %w", err))
		}

		if err := RemoveItem(ctx, db, clm.UserID, productID); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := Clear(ctx, db, clm.UserID); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
