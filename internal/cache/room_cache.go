package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"interviewroom/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoomCache is a read-through cache of room records. Get returns nil, nil on
// a miss. Close releases the underlying connection.
type RoomCache interface {
	Get(ctx context.Context, roomID string) (*model.Room, error)
	Set(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, roomID string) error
	Close() error
}

type roomCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomCache creates a Redis room cache whose entries expire after ttl
func NewRoomCache(client *redis.Client, ttl time.Duration) RoomCache {
	return &roomCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *roomCache) key(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

func (c *roomCache) Get(ctx context.Context, roomID string) (*model.Room, error) {
	data, err := c.client.Get(ctx, c.key(roomID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *roomCache) Set(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(room.ID), data, c.ttl).Err()
}

func (c *roomCache) Delete(ctx context.Context, roomID string) error {
	return c.client.Del(ctx, c.key(roomID)).Err()
}

func (c *roomCache) Close() error {
	return c.client.Close()
}

// nopRoomCache is used when no Redis address is configured
type nopRoomCache struct{}

func NewNopRoomCache() RoomCache {
	return nopRoomCache{}
}

func (nopRoomCache) Get(context.Context, string) (*model.Room, error) { return nil, nil }
func (nopRoomCache) Set(context.Context, *model.Room) error           { return nil }
func (nopRoomCache) Delete(context.Context, string) error             { return nil }
func (nopRoomCache) Close() error                                     { return nil }
