package ws

import (
	"interviewroom/internal/config"
	"interviewroom/internal/service"
	"log/slog"

	"github.com/samber/do/v2"
)

// RegisterDI provides the hub, which is also the services' Broadcaster
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Hub, error) {
		return NewHub(do.MustInvoke[*slog.Logger](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (service.Broadcaster, error) {
		return do.MustInvoke[*Hub](i), nil
	})
	do.Provide(injector, func(i do.Injector) (*Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewHandler(
			do.MustInvoke[*Hub](i),
			do.MustInvoke[*service.AuthService](i),
			do.MustInvoke[*service.RoomService](i),
			cfg.CORSAllowedOrigins,
			cfg.WSSendBuffer,
			do.MustInvoke[*slog.Logger](i),
		), nil
	})
}
