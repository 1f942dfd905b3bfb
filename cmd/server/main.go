package main

import (
	"context"
	"errors"
	configloader "interviewroom/config"
	"interviewroom/internal/cache"
	"interviewroom/internal/config"
	"interviewroom/internal/repository"
	"interviewroom/internal/service"
	"interviewroom/internal/transport/rest"
	"interviewroom/internal/transport/ws"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	logger := initLogger(cfg)
	logger.Info("startup: configuration loaded", "env", cfg.Env, "store", cfg.StoreDriver, "cache", cfg.CacheEnabled())

	injector := setupDI(cfg, logger)

	srv, err := do.Invoke[*http.Server](injector)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("shutting down server")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	}

	shutdown(cfg, injector, srv, logger)
	logger.Info("server exited")
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

func setupDI(cfg *config.Config, logger *slog.Logger) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	repository.RegisterDI(injector)
	cache.RegisterDI(injector)
	ws.RegisterDI(injector)
	service.RegisterDI(injector)
	rest.RegisterDI(injector)

	return injector
}

// shutdown stops accepting requests, closes every socket and releases the
// store and cache connections
func shutdown(cfg *config.Config, injector do.Injector, srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if hub, err := do.Invoke[*ws.Hub](injector); err == nil {
		hub.Stop()
	}

	if store, err := do.Invoke[*repository.Store](injector); err == nil && store.Close != nil {
		if err := store.Close(ctx); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}

	if roomCache, err := do.Invoke[cache.RoomCache](injector); err == nil {
		if err := roomCache.Close(); err != nil {
			logger.Error("failed to close room cache", "error", err)
		}
	}
}
