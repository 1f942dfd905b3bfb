package config

import (
	"fmt"
	internalconfig "interviewroom/internal/config"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	Env                string        `env:"ENV" envDefault:"production"`
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	StoreDriver        string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI           string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase      string        `env:"MONGO_DATABASE" envDefault:"interviewroom"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RoomCacheTTL       time.Duration `env:"ROOM_CACHE_TTL" envDefault:"10m"`
	JWTSecret          string        `env:"JWT_SECRET,required"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	WSSendBuffer       int           `env:"WS_SEND_BUFFER" envDefault:"256"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Load reads the process environment into a validated Config
func Load() (*internalconfig.Config, error) {
	return LoadFrom(nil)
}

// LoadFrom behaves like Load but reads from the given map when it is non-nil
func LoadFrom(environ map[string]string) (*internalconfig.Config, error) {
	var raw envConfig
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&raw, opts); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                raw.Env,
		HTTPAddr:           raw.HTTPAddr,
		StoreDriver:        strings.ToLower(raw.StoreDriver),
		MongoURI:           raw.MongoURI,
		MongoDatabase:      raw.MongoDatabase,
		DatabaseURL:        raw.DatabaseURL,
		RedisAddr:          strings.TrimPrefix(raw.RedisAddr, "redis://"),
		RoomCacheTTL:       raw.RoomCacheTTL,
		JWTSecret:          []byte(raw.JWTSecret),
		CORSAllowedOrigins: trimAll(raw.CORSAllowedOrigins),
		WSSendBuffer:       raw.WSSendBuffer,
		ShutdownTimeout:    raw.ShutdownTimeout,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
