package service

import (
	"context"
	"fmt"
	"interviewroom/internal/cache"
	"interviewroom/internal/model"
	"interviewroom/internal/repository"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RoomService handles room lifecycle operations
type RoomService struct {
	roomLoader
	admission   *AdmissionService
	broadcaster Broadcaster
}

// NewRoomService creates a new room service
func NewRoomService(
	rooms repository.RoomRepo,
	roomCache cache.RoomCache,
	admission *AdmissionService,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *RoomService {
	return &RoomService{
		roomLoader:  roomLoader{rooms: rooms, cache: roomCache, logger: logger},
		admission:   admission,
		broadcaster: broadcaster,
	}
}

// CreateRoom creates a scheduled room owned by hostUserID. The host's ledger
// record is created lazily on first access.
func (s *RoomService) CreateRoom(ctx context.Context, hostUserID string) (*model.Room, error) {
	now := time.Now().UTC()
	room := &model.Room{
		ID:           uuid.NewString(),
		CreatedBy:    hostUserID,
		Status:       model.RoomScheduled,
		Interviewers: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.logger.Info("room created", "room_id", room.ID, "user_id", hostUserID)
	return room, nil
}

// GetRoom retrieves a room by id from the store
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	return s.loadFresh(ctx, roomID)
}

// AssignProblem sets the problem for the room. The caller must be an
// approved interviewer; the host is admitted first if needed.
func (s *RoomService) AssignProblem(ctx context.Context, roomID, problemID, requestingUserID string) error {
	room, err := s.loadFresh(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Status == model.RoomEnded {
		return ErrRoomEnded
	}

	if _, err := s.admission.EnsureHostAdmitted(ctx, room, requestingUserID); err != nil {
		return err
	}
	ok, err := s.admission.IsApprovedInterviewer(ctx, roomID, requestingUserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}

	if err := s.rooms.SetAssignedProblem(ctx, roomID, problemID); err != nil {
		return fmt.Errorf("failed to assign problem: %w", err)
	}
	s.invalidate(ctx, roomID)

	s.logger.Info("problem assigned", "room_id", roomID, "user_id", requestingUserID, "problem_id", problemID)
	s.broadcaster.BroadcastToRoom(roomID, model.EventProblemAssigned, model.ProblemAssignedPayload{
		ProblemID: problemID,
	})
	return nil
}

// AddInterviewer records a co-interviewer on the room. Creator only;
// adding the same user twice is a no-op.
func (s *RoomService) AddInterviewer(ctx context.Context, roomID, newUserID, requestingUserID string) error {
	room, err := s.loadFresh(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsCreator(requestingUserID) {
		return ErrForbidden
	}
	if room.HasInterviewer(newUserID) {
		return nil
	}

	if err := s.rooms.AddInterviewer(ctx, roomID, newUserID); err != nil {
		return fmt.Errorf("failed to add interviewer: %w", err)
	}
	s.invalidate(ctx, roomID)

	s.logger.Info("interviewer added", "room_id", roomID, "user_id", newUserID)
	return nil
}

// EndRoom closes the room for new joins. Creator only; ending an ended room
// is a no-op.
func (s *RoomService) EndRoom(ctx context.Context, roomID, requestingUserID string) error {
	room, err := s.load(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsCreator(requestingUserID) {
		return ErrForbidden
	}

	changed, err := s.rooms.SetStatus(ctx, roomID,
		[]model.RoomStatus{model.RoomScheduled, model.RoomLive}, model.RoomEnded)
	if err != nil {
		return fmt.Errorf("failed to end room: %w", err)
	}
	if !changed {
		return nil
	}
	s.invalidate(ctx, roomID)

	s.logger.Info("room ended", "room_id", roomID)
	s.broadcaster.BroadcastToRoom(roomID, model.EventRoomEnded, model.RoomEndedPayload{RoomID: roomID})
	return nil
}
