package cache

import (
	"context"
	"fmt"
	"interviewroom/internal/config"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

const redisPingTimeout = 5 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (RoomCache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*slog.Logger](i)
		if !cfg.CacheEnabled() {
			logger.Info("room cache disabled, REDIS_ADDR not set")
			return NewNopRoomCache(), nil
		}
		client, err := NewRedisClient(context.Background(), cfg.RedisAddr, logger)
		if err != nil {
			return nil, err
		}
		return NewRoomCache(client, cfg.RoomCacheTTL), nil
	})
}

// NewRedisClient connects and pings Redis at addr
func NewRedisClient(ctx context.Context, addr string, logger *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("connected to Redis", "addr", addr)
	return rdb, nil
}
