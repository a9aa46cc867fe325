package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"github.com/velora/goshop/api"
	"github.com/velora/goshop/api/background"
	"github.com/velora/goshop/cache"
	"github.com/velora/goshop/config"
	"github.com/velora/goshop/core/auth"
	"github.com/velora/goshop/core/order"
	"github.com/velora/goshop/database"
	"github.com/velora/goshop/email"
	"github.com/velora/goshop/rate"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	const prefix = "GOSHOP"
	var cfg config.Config
	if help, err := conf.Parse(prefix, &cfg); err != nil {
		if err == conf.ErrHelpWanted {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime

	mail := email.New(cfg.Email.Address, cfg.Email.Password, cfg.Email.Host, cfg.Email.Port, cfg.Email.RecoveryURL)

	bg := background.New(logger)

	strp := &stripecl.API{}
	strp.Init(cfg.Stripe.APISecret, nil)

	events := order.NewEvents(strings.Split(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic)
	defer events.Close()

	// The catalog cache is an optimization: if redis is unreachable
	// the server still starts, just uncached.
	cch, err := cache.New(cfg.Redis.Address, cfg.Redis.CacheTTL)
	if err != nil {
		logger.WithField("message", err).Warn("redis unreachable, catalog cache disabled")
		cch = nil
	} else {
		defer cch.Close()
	}

	limiter := rate.NewLimiter(
		cfg.RateLimit.Burst,
		time.Duration(cfg.RateLimit.ExpiryMinutes)*time.Minute,
		cfg.RateLimit.RPS,
	)

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Cors.Origin,
		Log:        logger,
		DB:         db,
		Session:    sessionManager,
		Mailer:     mail,
		Background: bg,
		Gateway:    order.StripeGateway{API: strp},
		Events:     events,
		Cache:      cch,
		Limiter:    limiter,
		Policy: auth.Policy{
			MinLen:       cfg.Auth.PasswordMinLen,
			MaxLen:       cfg.Auth.PasswordMaxLen,
			Alphanumeric: cfg.Auth.PasswordAlphanumeric,
		},
		BcryptCost:   cfg.Auth.BcryptCost,
		TokenTimeout: cfg.Email.TokenTimeout,
		PageSize:     cfg.Catalog.PageSize,
		CartMaxQty:   cfg.Cart.MaxQuantity,
		Currency:     cfg.Stripe.Currency,
		InvoiceDir:   cfg.Invoice.Dir,
		UploadDir:    cfg.Upload.Dir,
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete all background tasks: %w", err)
		}
	}
	return nil
}
