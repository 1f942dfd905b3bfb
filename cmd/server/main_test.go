package main

import (
	"context"
	"interviewroom/internal/cache"
	"interviewroom/internal/config"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(redisAddr string) *config.Config {
	return &config.Config{
		Env:             "test",
		HTTPAddr:        "127.0.0.1:0",
		StoreDriver:     config.StoreMemory,
		RedisAddr:       redisAddr,
		RoomCacheTTL:    time.Minute,
		JWTSecret:       []byte("secret"),
		WSSendBuffer:    16,
		ShutdownTimeout: time.Second,
	}
}

func TestShutdown_ClosesRoomCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := testConfig(mr.Addr())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	injector := setupDI(cfg, logger)

	srv, err := do.Invoke[*http.Server](injector)
	require.NoError(t, err)
	roomCache, err := do.Invoke[cache.RoomCache](injector)
	require.NoError(t, err)
	_, err = roomCache.Get(ctx, "r1")
	require.NoError(t, err)

	shutdown(cfg, injector, srv, logger)

	_, err = roomCache.Get(ctx, "r1")
	assert.ErrorIs(t, err, redis.ErrClosed)
}

func TestShutdown_WithoutCache(t *testing.T) {
	cfg := testConfig("")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	injector := setupDI(cfg, logger)

	srv, err := do.Invoke[*http.Server](injector)
	require.NoError(t, err)

	assert.NotPanics(t, func() { shutdown(cfg, injector, srv, logger) })
}
