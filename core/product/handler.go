package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/velora/goshop/api/web"
	"github.com/velora/goshop/api/weberr"
	"github.com/velora/goshop/cache"
	"github.com/velora/goshop/core/claims"
	"github.com/velora/goshop/validate"
)

const maxUploadBytes = 10 << 20

type listPage struct {
	Products []Product `json:"products"`
	Meta     Meta      `json:"meta"`
}

// HandleList serves one page of the public catalog. Rendered pages are
// cached for a short TTL; a redis failure silently degrades to the
// database.
func HandleList(db *sqlx.DB, cch *cache.Client, pageSize int) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		page := web.QueryInt(r, "page", 1)
		if page < 1 {
			page = 1
		}

		key := fmt.Sprintf("catalog:page:%d:%d", page, pageSize)
		if b, ok := cch.Get(ctx, key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, err := w.Write(b)
			return err
		}

		prods, total, err := List(ctx, db, "", page, pageSize)
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}
		if prods == nil {
			prods = []Product{}
		}

		body := listPage{Products: prods, Meta: Paginate(page, pageSize, total)}

		if b, err := json.Marshal(body); err == nil {
			cch.Set(ctx, key, b)
		}

		return web.Respond(ctx, w, body, http.StatusOK)
	}
}

// HandleListOwned serves the authenticated user's own catalog view.
func HandleListOwned(db *sqlx.DB, pageSize int) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		page := web.QueryInt(r, "page", 1)

		prods, total, err := List(ctx, db, clm.UserID, page, pageSize)
		if err != nil {
			return fmt.Errorf("listing products of user[%s]: %w", clm.UserID, err)
		}
		if prods == nil {
			prods = []Product{}
		}

		body := listPage{Products: prods, Meta: Paginate(page, pageSize, total)}
		return web.Respond(ctx, w, body, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing product id: %w", err))
		}

		prod, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, prod, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB, cch *cache.Client, uploadDir string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing multipart form: %w", err))
		}

		pn := ProductNew{
			Title:       r.FormValue("title"),
			Price:       r.FormValue("price"),
			Description: r.FormValue("description"),
		}

		if field, err := validate.CheckField(pn); err != nil {
			return weberr.Validation(err, field)
		}

		price, err := parsePrice(pn.Price)
		if err != nil {
			return weberr.Validation(err, "price")
		}

		_, fh, err := r.FormFile("image")
		if err != nil {
			return weberr.Validation(errors.New("an image file is required"), "image")
		}

		imagePath, err := SaveImage(uploadDir, fh)
		if err != nil {
			if errors.Is(err, ErrBadImageType) {
				return weberr.Validation(err, "image")
			}
			return fmt.Errorf("storing product image: %w", err)
		}

		now := time.Now().UTC()
		prod := Product{
			ID:          validate.GenerateID(),
			Title:       pn.Title,
			Price:       price,
			Description: pn.Description,
			ImageURL:    imagePath,
			UserID:      clm.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, prod); err != nil {
			return fmt.Errorf("creating product: %w", err)
		}

		bustListing(ctx, cch)

		return web.Respond(ctx, w, prod, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB, cch *cache.Client, uploadDir string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing product id: %w", err))
		}

		prod, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", id, err)
		}

		// Products are mutable only by their owner.
		if prod.UserID != clm.UserID {
			return weberr.Forbidden(fmt.Errorf("user[%s] does not own product[%s]", clm.UserID, id))
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing multipart form: %w", err))
		}

		if v := r.FormValue("title"); v != "" {
			prod.Title = v
		}
		if v := r.FormValue("description"); v != "" {
			prod.Description = v
		}
		if v := r.FormValue("price"); v != "" {
			price, err := parsePrice(v)
			if err != nil {
				return weberr.Validation(err, "price")
			}
			prod.Price = price
		}

		// A new image replaces the old file; absence keeps the current one.
		if _, fh, err := r.FormFile("image"); err == nil {
			imagePath, err := SaveImage(uploadDir, fh)
			if err != nil {
				if errors.Is(err, ErrBadImageType) {
					return weberr.Validation(err, "image")
				}
				return fmt.Errorf("storing product image: %w", err)
			}

			os.Remove(prod.ImageURL)
			prod.ImageURL = imagePath
		}

		prod.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, prod); err != nil {
			return fmt.Errorf("updating product[%s]: %w", id, err)
		}

		bustListing(ctx, cch)

		return web.Respond(ctx, w, prod, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB, cch *cache.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(fmt.Errorf("parsing product id: %w", err))
		}

		prod, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", id, err)
		}

		if err := Delete(ctx, db, id, clm.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.Forbidden(fmt.Errorf("user[%s] does not own product[%s]", clm.UserID, id))
			}
			return fmt.Errorf("deleting product[%s]: %w", id, err)
		}

		// Image removal is best-effort; the record is already gone.
		os.Remove(prod.ImageURL)

		bustListing(ctx, cch)

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.New("price is not a valid decimal number")
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, errors.New("price must be greater than zero")
	}
	return price.Round(2), nil
}

func bustListing(ctx context.Context, cch *cache.Client) {
	// Cache invalidation failures only shorten freshness, never fail
	// the write that triggered them.
	_ = cch.DeletePrefix(ctx, "catalog:page:")
}
