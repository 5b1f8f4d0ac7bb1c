package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/xsantcastx/xsantcastx/config"
	"github.com/xsantcastx/xsantcastx/internal/auth"
	"github.com/xsantcastx/xsantcastx/internal/router"
	"github.com/xsantcastx/xsantcastx/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "xsantcastx",
		Usage: "Donation and contact backend for the xsantcastx portfolio",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP listen port"},
			&cli.StringFlag{Name: "env", Aliases: []string{"e"}, Usage: "Environment (development or production)"},
			&cli.StringFlag{Name: "store", Aliases: []string{"s"}, Usage: "Donation store: firestore, mysql or memory"},
			&cli.StringFlag{Name: "paypal-mode", Usage: "PayPal API host: sandbox or live"},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "Mint an access token for AUTH_MODE=jwt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uid", Required: true, Usage: "Subject uid"},
					&cli.StringFlag{Name: "email", Usage: "Email claim"},
					&cli.StringFlag{Name: "role", Usage: "Role claim, e.g. admin"},
				},
				Action: mintToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
	}
	if c.IsSet("env") {
		cfg.Server.Env = c.String("env")
	}
	if c.IsSet("store") {
		cfg.Store.Driver = c.String("store")
	}
	if c.IsSet("paypal-mode") {
		cfg.PayPal.Mode = c.String("paypal-mode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	zlog, err := logger.New(cfg.Server.Env == "development")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDeps(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer cleanup()

	go deps.Limiter.Run(ctx, cfg.RateLimit.Window)

	engine := router.Setup(cfg, deps, zlog)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	zlog.Info("server stopped")
	return nil
}

func mintToken(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWT.AccessSecret == "" {
		return errors.New("JWT_SECRET is required to mint tokens")
	}
	tok, err := auth.GenerateAccessToken(&cfg.JWT, c.String("uid"), c.String("email"), c.String("role"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, tok)
	return nil
}
