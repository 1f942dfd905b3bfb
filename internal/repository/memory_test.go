package repository

import (
	"context"
	"fmt"
	"interviewroom/internal/model"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(id, creator string) *model.Room {
	now := time.Now().UTC()
	return &model.Room{
		ID:        id,
		CreatedBy: creator,
		Status:    model.RoomScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryRoomRepo(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rooms := store.Rooms

	room, err := rooms.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, room)

	require.NoError(t, rooms.Create(ctx, newTestRoom("r1", "host")))

	got, err := rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "host", got.CreatedBy)
	assert.Equal(t, model.RoomScheduled, got.Status)
	assert.Empty(t, got.Interviewers)

	require.NoError(t, rooms.SetAssignedProblem(ctx, "r1", "two-sum"))
	require.NoError(t, rooms.AddInterviewer(ctx, "r1", "co"))
	require.NoError(t, rooms.AddInterviewer(ctx, "r1", "co"))

	got, err = rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "two-sum", got.AssignedProblemID)
	assert.Equal(t, []string{"co"}, got.Interviewers)

	// returned rooms are copies
	got.Interviewers[0] = "mutated"
	again, err := rooms.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"co"}, again.Interviewers)
}

func TestMemoryRoomRepo_SetStatus(t *testing.T) {
	ctx := context.Background()
	rooms := NewMemoryStore().Rooms
	require.NoError(t, rooms.Create(ctx, newTestRoom("r1", "host")))

	changed, err := rooms.SetStatus(ctx, "r1", []model.RoomStatus{model.RoomScheduled}, model.RoomLive)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = rooms.SetStatus(ctx, "r1", []model.RoomStatus{model.RoomScheduled}, model.RoomLive)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = rooms.SetStatus(ctx, "missing", []model.RoomStatus{model.RoomScheduled}, model.RoomLive)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMemoryParticipantRepo_CreatePendingIfAbsent(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore().Participants

	p, created, err := ledger.CreatePendingIfAbsent(ctx, "r1", "u1", model.RoleStudent)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.ParticipantPending, p.Status)
	assert.NotEmpty(t, p.ID)

	again, created, err := ledger.CreatePendingIfAbsent(ctx, "r1", "u1", model.RoleInterviewer)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, model.RoleStudent, again.Role)
}

func TestMemoryParticipantRepo_ConcurrentJoinCreatesOneRecord(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore().Participants

	const callers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	ids := map[string]struct{}{}

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, created, err := ledger.CreatePendingIfAbsent(ctx, "r1", "u1", model.RoleStudent)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			if created {
				createdCount++
			}
			ids[p.ID] = struct{}{}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	assert.Len(t, ids, 1)

	pending, err := ledger.ListPending(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestMemoryParticipantRepo_ApproveAndDelete(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore().Participants

	p, err := ledger.Approve(ctx, "r1", "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, _, err = ledger.CreatePendingIfAbsent(ctx, "r1", "u1", model.RoleInterviewer)
	require.NoError(t, err)

	has, err := ledger.HasApprovedInterviewer(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, has)

	p, err = ledger.Approve(ctx, "r1", "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.IsApprovedInterviewer())

	has, err = ledger.HasApprovedInterviewer(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, has)

	// approved records are not removed by DeletePending
	removed, err := ledger.DeletePending(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.False(t, removed)

	_, _, err = ledger.CreatePendingIfAbsent(ctx, "r1", "u2", model.RoleStudent)
	require.NoError(t, err)
	removed, err = ledger.DeletePending(ctx, "r1", "u2")
	require.NoError(t, err)
	assert.True(t, removed)

	found, err := ledger.Find(ctx, "r1", "u2")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMemoryParticipantRepo_Upsert(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore().Participants

	_, _, err := ledger.CreatePendingIfAbsent(ctx, "r1", "host", model.RoleStudent)
	require.NoError(t, err)

	p, err := ledger.Upsert(ctx, "r1", "host", model.RoleInterviewer, model.ParticipantApproved)
	require.NoError(t, err)
	assert.Equal(t, model.RoleInterviewer, p.Role)
	assert.Equal(t, model.ParticipantApproved, p.Status)

	p, err = ledger.Upsert(ctx, "r2", "host", model.RoleInterviewer, model.ParticipantApproved)
	require.NoError(t, err)
	assert.Equal(t, "r2", p.RoomID)
}

func TestMemoryParticipantRepo_ListPendingOrder(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore().Participants

	for i := 0; i < 5; i++ {
		_, _, err := ledger.CreatePendingIfAbsent(ctx, "r1", fmt.Sprintf("u%d", i), model.RoleStudent)
		require.NoError(t, err)
	}
	_, _, err := ledger.CreatePendingIfAbsent(ctx, "other", "x", model.RoleStudent)
	require.NoError(t, err)
	_, err = ledger.Approve(ctx, "r1", "u2")
	require.NoError(t, err)

	pending, err := ledger.ListPending(ctx, "r1")
	require.NoError(t, err)

	var users []string
	for _, p := range pending {
		users = append(users, p.UserID)
	}
	assert.Equal(t, []string{"u0", "u1", "u3", "u4"}, users)

	empty, err := ledger.ListPending(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryUserRepo(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users

	require.NoError(t, users.Upsert(ctx, model.UserSummary{ID: "u1", Name: "Ada", Email: "ada@example.com"}))

	got, err := users.GetSummaries(ctx, []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Ada", got["u1"].Name)
}
