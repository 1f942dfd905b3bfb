package rest

import (
	"interviewroom/internal/config"
	"interviewroom/internal/repository"
	"interviewroom/internal/service"
	"interviewroom/internal/transport/ws"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/do/v2"
)

// RegisterDI provides the HTTP handler and server. Services and the
// websocket handler must already be provided.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (http.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		store := do.MustInvoke[*repository.Store](i)
		return NewRouter(&Container{
			AuthService:        do.MustInvoke[*service.AuthService](i),
			RoomService:        do.MustInvoke[*service.RoomService](i),
			AdmissionService:   do.MustInvoke[*service.AdmissionService](i),
			WSHandler:          do.MustInvoke[*ws.Handler](i),
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:             do.MustInvoke[*slog.Logger](i),
			Ping:               store.Ping,
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (*http.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           do.MustInvoke[http.Handler](i),
			ReadHeaderTimeout: 10 * time.Second,
		}, nil
	})
}
