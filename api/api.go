package api

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/velora/goshop/api/background"
	"github.com/velora/goshop/api/middleware"
	"github.com/velora/goshop/api/web"
	"github.com/velora/goshop/api/weberr"
	"github.com/velora/goshop/cache"
	"github.com/velora/goshop/core/auth"
	"github.com/velora/goshop/core/cart"
	"github.com/velora/goshop/core/order"
	"github.com/velora/goshop/core/product"
	"github.com/velora/goshop/core/token"
	"github.com/velora/goshop/database"
	"github.com/velora/goshop/email"
	"github.com/velora/goshop/rate"
)

type APIConfig struct {
	CorsOrigin   string
	Log          logrus.FieldLogger
	DB           *sqlx.DB
	Session      *scs.SessionManager
	Mailer       *email.Mailer
	Background   *background.Background
	Gateway      order.Gateway
	Events       *order.Events
	Cache        *cache.Client
	Limiter      *rate.Limiter
	Policy       auth.Policy
	BcryptCost   int
	TokenTimeout time.Duration
	PageSize     int
	CartMaxQty   int
	Currency     string
	InvoiceDir   string
	UploadDir    string
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	limited := middleware.RateLimit(cfg.Limiter)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session, cfg.Mailer, cfg.Background, cfg.Policy, cfg.BcryptCost), limited)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session), authen)

	a.Handle(http.MethodPost, "/tokens/recover", token.HandleRecovery(cfg.DB, cfg.Mailer, cfg.Background, cfg.TokenTimeout), limited)
	a.Handle(http.MethodPost, "/tokens/reset", token.HandleReset(cfg.DB, cfg.Policy, cfg.BcryptCost), limited)

	a.Handle(http.MethodGet, "/products/owned", product.HandleListOwned(cfg.DB, cfg.PageSize), authen)
	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.DB, cfg.Cache, cfg.PageSize))
	a.Handle(http.MethodPost, "/products", product.HandleCreate(cfg.DB, cfg.Cache, cfg.UploadDir), authen)
	a.Handle(http.MethodPut, "/products/{id}", product.HandleUpdate(cfg.DB, cfg.Cache, cfg.UploadDir), authen)
	a.Handle(http.MethodDelete, "/products/{id}", product.HandleDelete(cfg.DB, cfg.Cache), authen)

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleDelete(cfg.DB), authen)
	a.Handle(http.MethodPut, "/cart/items", cart.HandleCreateItem(cfg.DB, cfg.CartMaxQty), authen)
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleDeleteItem(cfg.DB), authen)

	a.Handle(http.MethodPost, "/orders/checkout", order.HandleCheckout(cfg.DB, cfg.Gateway, cfg.Events, cfg.Background, cfg.Currency), authen)
	a.Handle(http.MethodGet, "/orders/{id}/invoice", order.HandleInvoice(cfg.DB, cfg.InvoiceDir), authen)
	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), authen)

	a.Handle(http.MethodGet, "/health", handleHealth(cfg.DB))
	a.Router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return a.Router
}

// handleHealth reports readiness: the server is up and the database
// answers a trivial query.
func handleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := database.StatusCheck(ctx, db); err != nil {
			return weberr.InternalError(err)
		}

		status := struct {
			Status string `json:"status"`
		}{Status: "ok"}

		return web.Respond(ctx, w, status, http.StatusOK)
	}
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware([]web.Middleware{middleware.Metrics(path)}, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
