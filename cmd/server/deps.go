package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/config"
	"github.com/xsantcastx/xsantcastx/internal/auth"
	"github.com/xsantcastx/xsantcastx/internal/database"
	"github.com/xsantcastx/xsantcastx/internal/middleware"
	"github.com/xsantcastx/xsantcastx/internal/repository"
	"github.com/xsantcastx/xsantcastx/internal/router"
	"github.com/xsantcastx/xsantcastx/internal/ws"
	"github.com/xsantcastx/xsantcastx/pkg/mailer"
	"github.com/xsantcastx/xsantcastx/pkg/payment"
)

// buildDeps connects the configured backends. Unconfigured providers are left
// nil so their endpoints answer with an internal error instead of crashing.
func buildDeps(ctx context.Context, cfg *config.Config, log *zap.Logger) (router.Deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (router.Deps, func(), error) {
		cleanup()
		return router.Deps{}, nil, err
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	deps := router.Deps{
		Limiter: middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		Feed:    ws.NewFeedHub(log),
	}

	var app *firebase.App
	if cfg.NeedsFirebase() {
		var err error
		if app, err = database.NewFirebaseApp(ctx, &cfg.Firebase); err != nil {
			return fail(fmt.Errorf("firebase: %w", err))
		}
	}

	switch cfg.Store.Driver {
	case config.StoreFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return fail(fmt.Errorf("firestore: %w", err))
		}
		closers = append(closers, func() { _ = client.Close() })
		deps.Donations = repository.NewFirestoreDonationRepository(client)
	case config.StoreMySQL:
		db, err := database.NewDB(&cfg.Store)
		if err != nil {
			return fail(fmt.Errorf("database: %w", err))
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		if err := database.AutoMigrate(db); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
		deps.Donations = repository.NewDonationRepository(db)
	default:
		log.Warn("using in-memory donation store; records are lost on restart")
		deps.Donations = repository.NewMemoryDonationRepository()
	}

	switch cfg.Auth.Mode {
	case config.AuthFirebase:
		client, err := app.Auth(ctx)
		if err != nil {
			return fail(fmt.Errorf("firebase auth: %w", err))
		}
		deps.Verifier = auth.NewFirebaseVerifier(client)
	default:
		deps.Verifier = auth.NewJWTVerifier(&cfg.JWT)
	}

	if cfg.Auth.AppCheckEnforce {
		client, err := app.AppCheck(ctx)
		if err != nil {
			return fail(fmt.Errorf("app check: %w", err))
		}
		deps.AppCheck = auth.NewFirebaseAppCheck(client)
	}

	if cfg.PayPal.Configured() {
		deps.PayPal = payment.NewPayPalClient(cfg.PayPal.BaseURL(), cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, httpClient)
	} else {
		log.Warn("paypal credentials not configured")
	}

	if cfg.Stripe.SecretKey != "" {
		deps.Stripe = payment.NewStripeClient(cfg.Stripe.SecretKey)
	} else {
		log.Warn("stripe secret key not configured")
	}

	switch {
	case cfg.Email.Provider == config.EmailBrevo && cfg.Email.BrevoAPIKey != "":
		deps.Mailer = mailer.NewBrevoSender(cfg.Email.BrevoAPIURL, cfg.Email.BrevoAPIKey, httpClient)
	case cfg.Email.Provider == config.EmailSMTP && cfg.Email.SMTP.Host != "":
		deps.Mailer = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.Email.SMTP.Host,
			Port:     cfg.Email.SMTP.Port,
			User:     cfg.Email.SMTP.User,
			Password: cfg.Email.SMTP.Password,
			TLSMode:  cfg.Email.SMTP.TLSMode,
		})
	default:
		log.Warn("email provider not configured", zap.String("provider", cfg.Email.Provider))
	}

	return deps, cleanup, nil
}
