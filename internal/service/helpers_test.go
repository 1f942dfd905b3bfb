package service

import (
	"context"
	"errors"
	"interviewroom/internal/cache"
	"interviewroom/internal/model"
	"interviewroom/internal/repository"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	roomID  string
	msgType string
	payload interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{roomID: roomID, msgType: msgType, payload: payload})
}

func (b *recordingBroadcaster) ofType(msgType string) []sentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []sentEvent
	for _, e := range b.events {
		if e.msgType == msgType {
			out = append(out, e)
		}
	}
	return out
}

var errStorage = errors.New("storage unavailable")

// failingLedger wraps a ledger and fails the named operations
type failingLedger struct {
	repository.ParticipantRepo
	fail map[string]bool
}

func (f *failingLedger) CreatePendingIfAbsent(ctx context.Context, roomID, userID string, role model.Role) (*model.Participant, bool, error) {
	if f.fail["create"] {
		return nil, false, errStorage
	}
	return f.ParticipantRepo.CreatePendingIfAbsent(ctx, roomID, userID, role)
}

func (f *failingLedger) Approve(ctx context.Context, roomID, userID string) (*model.Participant, error) {
	if f.fail["approve"] {
		return nil, errStorage
	}
	return f.ParticipantRepo.Approve(ctx, roomID, userID)
}

// pausingRooms stalls the first GetByID after arming, once the room has been
// read, until release is closed.
type pausingRooms struct {
	repository.RoomRepo
	armed   atomic.Bool
	paused  chan struct{}
	release chan struct{}
}

func newPausingRooms(rooms repository.RoomRepo) *pausingRooms {
	return &pausingRooms{
		RoomRepo: rooms,
		paused:   make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (r *pausingRooms) GetByID(ctx context.Context, id string) (*model.Room, error) {
	room, err := r.RoomRepo.GetByID(ctx, id)
	if r.armed.CompareAndSwap(true, false) {
		close(r.paused)
		<-r.release
	}
	return room, err
}

type fixture struct {
	store       *repository.Store
	broadcaster *recordingBroadcaster
	admission   *AdmissionService
	rooms       *RoomService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, repository.NewMemoryStore(), cache.NewNopRoomCache())
}

func newFixtureWith(t *testing.T, store *repository.Store, roomCache cache.RoomCache) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := &recordingBroadcaster{}
	admission := NewAdmissionService(store.Rooms, roomCache, store.Participants, store.Users, b, logger)
	return &fixture{
		store:       store,
		broadcaster: b,
		admission:   admission,
		rooms:       NewRoomService(store.Rooms, roomCache, admission, b, logger),
	}
}

func (f *fixture) createRoom(t *testing.T, host string) string {
	t.Helper()
	room, err := f.rooms.CreateRoom(context.Background(), host)
	require.NoError(t, err)
	return room.ID
}

func (f *fixture) find(t *testing.T, roomID, userID string) *model.Participant {
	t.Helper()
	p, err := f.store.Participants.Find(context.Background(), roomID, userID)
	require.NoError(t, err)
	return p
}

func nopCache() cache.RoomCache {
	return cache.NewNopRoomCache()
}
