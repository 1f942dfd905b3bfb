package service

import (
	"interviewroom/internal/cache"
	"interviewroom/internal/config"
	"interviewroom/internal/repository"
	"log/slog"

	"github.com/samber/do/v2"
)

// RegisterDI wires the services. A Broadcaster must already be provided.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*AuthService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewAuthService(cfg.JWTSecret), nil
	})
	do.Provide(injector, func(i do.Injector) (*AdmissionService, error) {
		store := do.MustInvoke[*repository.Store](i)
		roomCache := do.MustInvoke[cache.RoomCache](i)
		broadcaster := do.MustInvoke[Broadcaster](i)
		logger := do.MustInvoke[*slog.Logger](i)
		return NewAdmissionService(store.Rooms, roomCache, store.Participants, store.Users, broadcaster, logger), nil
	})
	do.Provide(injector, func(i do.Injector) (*RoomService, error) {
		store := do.MustInvoke[*repository.Store](i)
		roomCache := do.MustInvoke[cache.RoomCache](i)
		admission := do.MustInvoke[*AdmissionService](i)
		broadcaster := do.MustInvoke[Broadcaster](i)
		logger := do.MustInvoke[*slog.Logger](i)
		return NewRoomService(store.Rooms, roomCache, admission, broadcaster, logger), nil
	})
}
