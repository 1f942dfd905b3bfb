package repository

import (
	"context"
	"fmt"
	"interviewroom/internal/config"
	"log/slog"

	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		return Open(context.Background(), cfg, logger)
	})
}

// Open builds the Store for the configured driver
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	logger.Info("opening store", "driver", cfg.StoreDriver)
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	case config.StorePostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.StoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
