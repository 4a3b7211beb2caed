// Package web initializes and runs the browser-facing front end: the API
// client, the session store (memory or redis), and the HTTP endpoint with
// graceful shutdown.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recipecorner/recipecorner/internal/logging"
	"github.com/recipecorner/recipecorner/internal/web/client"
	"github.com/recipecorner/recipecorner/internal/web/config"
	"github.com/recipecorner/recipecorner/internal/web/handlers"
	"github.com/recipecorner/recipecorner/internal/web/services"
	"github.com/recipecorner/recipecorner/internal/web/sessions"
)

type App struct {
	config *config.Config
	logger logging.Logger
	router http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var store sessions.Store
	switch cfg.SessionBackend {
	case "memory":
		store = sessions.NewMemoryStore(cfg.SessionTTL)
	case "redis":
		store = sessions.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}), cfg.SessionTTL)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}

	api := client.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout)
	sessionService := services.NewSessionService(store)

	router := handlers.NewRouter(logger, api, sessionService, cfg.RefreshThreshold)

	return &App{config: cfg, logger: logger, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting web server", "addr", app.config.EndpointAddr, "api", app.config.APIBaseURL)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "server error", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}

	app.logger.Info(ctx, "web server stopped")
}
