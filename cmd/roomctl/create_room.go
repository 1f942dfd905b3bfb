package main

import (
	"context"
	"interviewroom/internal/cache"
	"interviewroom/internal/repository"
	"interviewroom/internal/service"
	"log/slog"

	"github.com/spf13/cobra"
)

// logBroadcaster stands in for the hub outside the server process
type logBroadcaster struct{}

func (logBroadcaster) BroadcastToRoom(roomID string, msgType string, payload interface{}) {
	slog.Debug("no live sockets, event not delivered", "room_id", roomID, "type", msgType)
}

func newCreateRoomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-room <hostId>",
		Short: "Create an interview room owned by hostId",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return withStore(cfg, func(ctx context.Context, store *repository.Store) error {
				logger := slog.Default()
				roomCache := cache.NewNopRoomCache()
				admission := service.NewAdmissionService(store.Rooms, roomCache, store.Participants, store.Users, logBroadcaster{}, logger)
				rooms := service.NewRoomService(store.Rooms, roomCache, admission, logBroadcaster{}, logger)

				room, err := rooms.CreateRoom(ctx, args[0])
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "%s\n", room.ID)
				return nil
			})
		},
	}
}
