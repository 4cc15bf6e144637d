package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/praxis/internal/backend"
	"github.com/MrJamesThe3rd/praxis/internal/config"
	praxisHttp "github.com/MrJamesThe3rd/praxis/internal/http"
	"github.com/MrJamesThe3rd/praxis/internal/http/auth"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(cfg.Logger(os.Stdout))

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := printToken(cfg, os.Args[2:]); err != nil {
			slog.Error("failed to issue token", "error", err)
			os.Exit(1)
		}

		return
	}

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// printToken writes a bearer token for the given subject to stdout.
func printToken(cfg *config.Config, args []string) error {
	if cfg.Auth.Secret == "" {
		return errors.New("AUTH_SECRET is not set")
	}

	subject := "admin"
	if len(args) > 0 {
		subject = args[0]
	}

	token, err := auth.New(cfg.Auth.Secret, cfg.Auth.TokenTTL).IssueToken(subject)
	if err != nil {
		return err
	}

	fmt.Println(token)

	return nil
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := backend.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	opts := praxisHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Health:      svc.Health,
	}

	if cfg.Auth.Secret != "" {
		opts.Auth = auth.New(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	} else {
		slog.Warn("AUTH_SECRET is empty, api is unauthenticated")
	}

	router := praxisHttp.New(praxisHttp.NewHandlers(svc, cfg.Server.MaxUploadBytes), opts)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "store", cfg.App.Store)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
