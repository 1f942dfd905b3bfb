package service

import (
	"context"
	"fmt"
	"interviewroom/internal/cache"
	"interviewroom/internal/model"
	"interviewroom/internal/repository"
	"log/slog"
)

// roomLoader reads rooms through the cache. Cache errors never fail a
// request; the repository stays authoritative.
//
// A cached room may be stale: a reader can fill the key after a concurrent
// mutation has deleted it. load is only for checks on fields that never
// change after creation (CreatedBy). Anything gated on Status,
// AssignedProblemID or Interviewers goes through loadFresh.
type roomLoader struct {
	rooms  repository.RoomRepo
	cache  cache.RoomCache
	logger *slog.Logger
}

func (l *roomLoader) load(ctx context.Context, roomID string) (*model.Room, error) {
	if roomID == "" {
		return nil, ErrRoomNotFound
	}

	cached, err := l.cache.Get(ctx, roomID)
	if err != nil {
		l.logger.Warn("room cache read failed", "room_id", roomID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	room, err := l.loadFresh(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(ctx, room); err != nil {
		l.logger.Warn("room cache write failed", "room_id", roomID, "error", err)
	}
	return room, nil
}

// loadFresh reads the room from the repository, bypassing the cache
func (l *roomLoader) loadFresh(ctx context.Context, roomID string) (*model.Room, error) {
	if roomID == "" {
		return nil, ErrRoomNotFound
	}

	room, err := l.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (l *roomLoader) invalidate(ctx context.Context, roomID string) {
	if err := l.cache.Delete(ctx, roomID); err != nil {
		l.logger.Warn("room cache invalidation failed", "room_id", roomID, "error", err)
	}
}
