package service

import (
	"context"
	"interviewroom/internal/cache"
	"interviewroom/internal/model"
	"interviewroom/internal/repository"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisFixture(t *testing.T) (*fixture, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return newFixtureWith(t, repository.NewMemoryStore(), cache.NewRoomCache(client, time.Minute)), mr
}

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	room, err := f.rooms.CreateRoom(ctx, "host")
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "host", room.CreatedBy)
	assert.Equal(t, model.RoomScheduled, room.Status)

	other, err := f.rooms.CreateRoom(ctx, "host")
	require.NoError(t, err)
	assert.NotEqual(t, room.ID, other.ID)

	got, err := f.rooms.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, got.ID)

	_, err = f.rooms.GetRoom(ctx, "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAssignProblem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	roomID := f.createRoom(t, "host")

	// the host is admitted on the way in
	require.NoError(t, f.rooms.AssignProblem(ctx, roomID, "two-sum", "host"))

	room, err := f.rooms.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, "two-sum", room.AssignedProblemID)
	assert.Equal(t, model.RoomLive, room.Status)

	events := f.broadcaster.ofType(model.EventProblemAssigned)
	require.Len(t, events, 1)
	assert.Equal(t, model.ProblemAssignedPayload{ProblemID: "two-sum"}, events[0].payload)

	err = f.rooms.AssignProblem(ctx, "missing", "two-sum", "host")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAddInterviewer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	roomID := f.createRoom(t, "host")

	require.NoError(t, f.rooms.AddInterviewer(ctx, roomID, "co", "host"))
	require.NoError(t, f.rooms.AddInterviewer(ctx, roomID, "co", "host"))

	room, err := f.rooms.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, []string{"co"}, room.Interviewers)

	// co-interviewers still go through admission
	out, err := f.admission.Join(ctx, roomID, "co", model.RoleInterviewer)
	require.NoError(t, err)
	assert.Equal(t, model.ParticipantPending, out.Status)
}

func TestEndRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	roomID := f.createRoom(t, "host")

	require.NoError(t, f.rooms.EndRoom(ctx, roomID, "host"))
	require.NoError(t, f.rooms.EndRoom(ctx, roomID, "host"))
	assert.Len(t, f.broadcaster.ofType(model.EventRoomEnded), 1)

	room, err := f.rooms.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomEnded, room.Status)

	assert.ErrorIs(t, f.rooms.AssignProblem(ctx, roomID, "p1", "host"), ErrRoomEnded)

	// status polls still work after the end
	view, err := f.admission.GetStatus(ctx, roomID, "host")
	require.NoError(t, err)
	assert.True(t, view.IsCreator)
}

func TestRoomCache_InvalidatedOnMutation(t *testing.T) {
	ctx := context.Background()
	f, mr := newRedisFixture(t)
	roomID := f.createRoom(t, "host")

	// creator checks read through the cache
	_, err := f.admission.Reject(ctx, roomID, "nobody", "host")
	require.NoError(t, err)
	assert.True(t, mr.Exists("room:"+roomID))

	require.NoError(t, f.rooms.AssignProblem(ctx, roomID, "two-sum", "host"))
	assert.False(t, mr.Exists("room:"+roomID))

	room, err := f.rooms.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, "two-sum", room.AssignedProblemID)
	assert.Equal(t, model.RoomLive, room.Status)

	_, err = f.admission.Reject(ctx, roomID, "nobody", "host")
	require.NoError(t, err)
	require.NoError(t, f.rooms.AddInterviewer(ctx, roomID, "co", "host"))
	assert.False(t, mr.Exists("room:"+roomID))
	room, err = f.rooms.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, []string{"co"}, room.Interviewers)

	require.NoError(t, f.rooms.EndRoom(ctx, roomID, "host"))
	assert.False(t, mr.Exists("room:"+roomID))
	room, err = f.rooms.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomEnded, room.Status)
}

func TestRoomCache_StaleEntryDoesNotReopenRoom(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	store := repository.NewMemoryStore()
	rooms := newPausingRooms(store.Rooms)
	store.Rooms = rooms
	f := newFixtureWith(t, store, cache.NewRoomCache(client, time.Minute))
	roomID := f.createRoom(t, "host")

	// a cached reader loads the scheduled room and stalls before filling the cache
	rooms.armed.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := f.admission.Reject(ctx, roomID, "nobody", "host")
		done <- err
	}()
	<-rooms.paused

	require.NoError(t, f.rooms.AssignProblem(ctx, roomID, "two-sum", "host"))
	require.NoError(t, f.rooms.EndRoom(ctx, roomID, "host"))

	close(rooms.release)
	require.NoError(t, <-done)

	// the key now holds the pre-end room
	require.True(t, mr.Exists("room:"+roomID))
	stale, err := f.admission.load(ctx, roomID)
	require.NoError(t, err)
	require.NotEqual(t, model.RoomEnded, stale.Status)

	_, err = f.admission.Join(ctx, roomID, "student", model.RoleStudent)
	assert.ErrorIs(t, err, ErrRoomEnded)
	assert.Nil(t, f.find(t, roomID, "student"))

	assert.ErrorIs(t, f.rooms.AssignProblem(ctx, roomID, "three-sum", "host"), ErrRoomEnded)

	view, err := f.admission.GetStatus(ctx, roomID, "host")
	require.NoError(t, err)
	assert.Equal(t, "two-sum", view.AssignedProblemID)

	room, err := f.rooms.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomEnded, room.Status)
}

func TestRoomCache_FailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	f, mr := newRedisFixture(t)
	roomID := f.createRoom(t, "host")
	mr.Close()

	room, err := f.rooms.GetRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, roomID, room.ID)

	out, err := f.admission.Join(ctx, roomID, "host", model.RoleInterviewer)
	require.NoError(t, err)
	assert.True(t, out.Direct)
}
