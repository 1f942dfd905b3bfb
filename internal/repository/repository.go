package repository

import (
	"context"
	"interviewroom/internal/model"
)

// RoomRepo persists interview rooms. GetByID returns nil, nil when the room
// does not exist.
type RoomRepo interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	SetAssignedProblem(ctx context.Context, id, problemID string) error
	AddInterviewer(ctx context.Context, id, userID string) error
	// SetStatus moves the room to status `to` only if its current status is
	// one of `from`. It reports whether a change was made.
	SetStatus(ctx context.Context, id string, from []model.RoomStatus, to model.RoomStatus) (bool, error)
}

// ParticipantRepo is the participant ledger. Every mutation is a single
// atomic operation keyed by (roomID, userID).
type ParticipantRepo interface {
	Find(ctx context.Context, roomID, userID string) (*model.Participant, error)
	// Upsert creates or overwrites the role and status for the pair
	Upsert(ctx context.Context, roomID, userID string, role model.Role, status model.ParticipantStatus) (*model.Participant, error)
	// CreatePendingIfAbsent inserts a pending record unless one exists. The
	// existing record is returned untouched with created=false.
	CreatePendingIfAbsent(ctx context.Context, roomID, userID string, role model.Role) (p *model.Participant, created bool, err error)
	// Approve flips an existing record to approved. Returns nil, nil when
	// there is no record.
	Approve(ctx context.Context, roomID, userID string) (*model.Participant, error)
	// DeletePending removes the record only while it is still pending
	DeletePending(ctx context.Context, roomID, userID string) (bool, error)
	ListPending(ctx context.Context, roomID string) ([]*model.Participant, error)
	HasApprovedInterviewer(ctx context.Context, roomID string) (bool, error)
}

// UserRepo is a read-mostly view over the identity system's user directory
type UserRepo interface {
	GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
	Upsert(ctx context.Context, user model.UserSummary) error
}

// Store bundles the repositories of one storage driver
type Store struct {
	Rooms        RoomRepo
	Participants ParticipantRepo
	Users        UserRepo
	// Ping checks connectivity; nil for drivers without a remote backend
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}
