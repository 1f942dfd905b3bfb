package repository

import (
	"context"
	"interviewroom/internal/model"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore keeps every table behind one mutex so each repository call is
// a single critical section, matching the atomicity of the database drivers
type memoryStore struct {
	mu           sync.Mutex
	rooms        map[string]model.Room
	participants map[participantKey]memoryParticipant
	users        map[string]model.UserSummary
	seq          uint64
}

type participantKey struct {
	roomID string
	userID string
}

type memoryParticipant struct {
	p   model.Participant
	seq uint64
}

// NewMemoryStore returns process-local repositories. State is lost on exit.
func NewMemoryStore() *Store {
	s := &memoryStore{
		rooms:        make(map[string]model.Room),
		participants: make(map[participantKey]memoryParticipant),
		users:        make(map[string]model.UserSummary),
	}
	return &Store{
		Rooms:        &memoryRoomRepo{s},
		Participants: &memoryParticipantRepo{s},
		Users:        &memoryUserRepo{s},
		Close:        func(context.Context) error { return nil },
	}
}

func copyRoom(r model.Room) *model.Room {
	r.Interviewers = slices.Clone(r.Interviewers)
	return &r
}

type memoryRoomRepo struct {
	s *memoryStore
}

func (r *memoryRoomRepo) Create(_ context.Context, room *model.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if room.Interviewers == nil {
		room.Interviewers = []string{}
	}
	r.s.rooms[room.ID] = *copyRoom(*room)
	return nil
}

func (r *memoryRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, nil
	}
	return copyRoom(room), nil
}

func (r *memoryRoomRepo) SetAssignedProblem(_ context.Context, id, problemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if room, ok := r.s.rooms[id]; ok {
		room.AssignedProblemID = problemID
		room.UpdatedAt = time.Now().UTC()
		r.s.rooms[id] = room
	}
	return nil
}

func (r *memoryRoomRepo) AddInterviewer(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.rooms[id]
	if !ok || slices.Contains(room.Interviewers, userID) {
		return nil
	}
	room.Interviewers = append(slices.Clone(room.Interviewers), userID)
	room.UpdatedAt = time.Now().UTC()
	r.s.rooms[id] = room
	return nil
}

func (r *memoryRoomRepo) SetStatus(_ context.Context, id string, from []model.RoomStatus, to model.RoomStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.rooms[id]
	if !ok || !slices.Contains(from, room.Status) {
		return false, nil
	}
	room.Status = to
	room.UpdatedAt = time.Now().UTC()
	r.s.rooms[id] = room
	return true, nil
}

type memoryParticipantRepo struct {
	s *memoryStore
}

func (r *memoryParticipantRepo) insertLocked(key participantKey, role model.Role, status model.ParticipantStatus) model.Participant {
	now := time.Now().UTC()
	r.s.seq++
	p := model.Participant{
		ID:        uuid.NewString(),
		RoomID:    key.roomID,
		UserID:    key.userID,
		Role:      role,
		Status:    status,
		JoinedAt:  now,
		UpdatedAt: now,
	}
	r.s.participants[key] = memoryParticipant{p: p, seq: r.s.seq}
	return p
}

func (r *memoryParticipantRepo) Find(_ context.Context, roomID, userID string) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	mp, ok := r.s.participants[participantKey{roomID, userID}]
	if !ok {
		return nil, nil
	}
	p := mp.p
	return &p, nil
}

func (r *memoryParticipantRepo) Upsert(_ context.Context, roomID, userID string, role model.Role, status model.ParticipantStatus) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := participantKey{roomID, userID}
	mp, ok := r.s.participants[key]
	if !ok {
		p := r.insertLocked(key, role, status)
		return &p, nil
	}
	mp.p.Role = role
	mp.p.Status = status
	mp.p.UpdatedAt = time.Now().UTC()
	r.s.participants[key] = mp
	p := mp.p
	return &p, nil
}

func (r *memoryParticipantRepo) CreatePendingIfAbsent(_ context.Context, roomID, userID string, role model.Role) (*model.Participant, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := participantKey{roomID, userID}
	if mp, ok := r.s.participants[key]; ok {
		p := mp.p
		return &p, false, nil
	}
	p := r.insertLocked(key, role, model.ParticipantPending)
	return &p, true, nil
}

func (r *memoryParticipantRepo) Approve(_ context.Context, roomID, userID string) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := participantKey{roomID, userID}
	mp, ok := r.s.participants[key]
	if !ok {
		return nil, nil
	}
	mp.p.Status = model.ParticipantApproved
	mp.p.UpdatedAt = time.Now().UTC()
	r.s.participants[key] = mp
	p := mp.p
	return &p, nil
}

func (r *memoryParticipantRepo) DeletePending(_ context.Context, roomID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := participantKey{roomID, userID}
	mp, ok := r.s.participants[key]
	if !ok || mp.p.Status != model.ParticipantPending {
		return false, nil
	}
	delete(r.s.participants, key)
	return true, nil
}

func (r *memoryParticipantRepo) ListPending(_ context.Context, roomID string) ([]*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var pending []memoryParticipant
	for key, mp := range r.s.participants {
		if key.roomID == roomID && mp.p.Status == model.ParticipantPending {
			pending = append(pending, mp)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].p.JoinedAt.Equal(pending[j].p.JoinedAt) {
			return pending[i].p.JoinedAt.Before(pending[j].p.JoinedAt)
		}
		return pending[i].seq < pending[j].seq
	})

	out := make([]*model.Participant, len(pending))
	for i := range pending {
		p := pending[i].p
		out[i] = &p
	}
	return out, nil
}

func (r *memoryParticipantRepo) HasApprovedInterviewer(_ context.Context, roomID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, mp := range r.s.participants {
		if key.roomID == roomID && mp.p.IsApprovedInterviewer() {
			return true, nil
		}
	}
	return false, nil
}

type memoryUserRepo struct {
	s *memoryStore
}

func (r *memoryUserRepo) GetSummaries(_ context.Context, ids []string) (map[string]model.UserSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[string]model.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *memoryUserRepo) Upsert(_ context.Context, user model.UserSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.users[user.ID] = user
	return nil
}
