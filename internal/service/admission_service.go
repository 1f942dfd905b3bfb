package service

import (
	"context"
	"fmt"
	"interviewroom/internal/cache"
	"interviewroom/internal/model"
	"interviewroom/internal/repository"
	"log/slog"
)

// AdmissionService decides who gets into a room. The participant ledger is
// the only source of truth; every mutation is one atomic ledger call.
type AdmissionService struct {
	roomLoader
	participants repository.ParticipantRepo
	users        repository.UserRepo
	broadcaster  Broadcaster
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(
	rooms repository.RoomRepo,
	roomCache cache.RoomCache,
	participants repository.ParticipantRepo,
	users repository.UserRepo,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *AdmissionService {
	return &AdmissionService{
		roomLoader:   roomLoader{rooms: rooms, cache: roomCache, logger: logger},
		participants: participants,
		users:        users,
		broadcaster:  broadcaster,
	}
}

// EnsureHostAdmitted makes sure the room creator holds an approved
// interviewer record and that a scheduled room is marked live. It is a no-op
// for anyone else and reports whether userID is the host.
func (s *AdmissionService) EnsureHostAdmitted(ctx context.Context, room *model.Room, userID string) (bool, error) {
	if !room.IsCreator(userID) {
		return false, nil
	}

	existing, err := s.participants.Find(ctx, room.ID, userID)
	if err != nil {
		return true, fmt.Errorf("failed to get host record: %w", err)
	}
	if !existing.IsApprovedInterviewer() {
		if _, err := s.participants.Upsert(ctx, room.ID, userID, model.RoleInterviewer, model.ParticipantApproved); err != nil {
			return true, fmt.Errorf("failed to admit host: %w", err)
		}
		s.logger.Info("host admitted", "room_id", room.ID, "user_id", userID)
	}

	if room.Status == model.RoomScheduled {
		changed, err := s.rooms.SetStatus(ctx, room.ID, []model.RoomStatus{model.RoomScheduled}, model.RoomLive)
		if err != nil {
			return true, fmt.Errorf("failed to mark room live: %w", err)
		}
		if changed {
			s.invalidate(ctx, room.ID)
		}
		room.Status = model.RoomLive
	}
	return true, nil
}

// Join evaluates one join attempt. The host is admitted directly; everyone
// else gets their existing record back or a fresh pending one.
func (s *AdmissionService) Join(ctx context.Context, roomID, userID string, requestedRole model.Role) (*model.JoinOutcome, error) {
	room, err := s.loadFresh(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == model.RoomEnded {
		return nil, ErrRoomEnded
	}

	isHost, err := s.EnsureHostAdmitted(ctx, room, userID)
	if err != nil {
		return nil, err
	}
	if isHost {
		return &model.JoinOutcome{
			Role:   model.RoleInterviewer,
			Status: model.ParticipantApproved,
			Direct: true,
		}, nil
	}

	// A retry only needs the room id; the role matters when creating.
	if !requestedRole.Valid() {
		existing, err := s.participants.Find(ctx, roomID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get participant: %w", err)
		}
		if existing == nil {
			return nil, ErrInvalidRole
		}
		return &model.JoinOutcome{Role: existing.Role, Status: existing.Status}, nil
	}

	p, created, err := s.participants.CreatePendingIfAbsent(ctx, roomID, userID, requestedRole)
	if err != nil {
		return nil, fmt.Errorf("failed to record join request: %w", err)
	}
	if !created {
		return &model.JoinOutcome{Role: p.Role, Status: p.Status}, nil
	}

	s.logger.Info("join requested", "room_id", roomID, "user_id", userID, "role", requestedRole)
	s.broadcaster.BroadcastToRoom(roomID, model.EventJoinRequest, model.JoinRequestPayload{
		UserID:        userID,
		Name:          s.displayName(ctx, userID),
		RequestedRole: requestedRole,
	})

	return &model.JoinOutcome{Role: requestedRole, Status: model.ParticipantPending}, nil
}

// GetStatus is polled by lobby and waiting screens
func (s *AdmissionService) GetStatus(ctx context.Context, roomID, userID string) (*model.RoomStatusView, error) {
	room, err := s.loadFresh(ctx, roomID)
	if err != nil {
		return nil, err
	}

	isHost, err := s.EnsureHostAdmitted(ctx, room, userID)
	if err != nil {
		return nil, err
	}

	p, err := s.participants.Find(ctx, roomID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	interviewerJoined, err := s.participants.HasApprovedInterviewer(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to check interviewer presence: %w", err)
	}

	view := &model.RoomStatusView{
		RoomID:            room.ID,
		AssignedProblemID: room.AssignedProblemID,
		InterviewerJoined: interviewerJoined,
		Approved:          p.IsApproved(),
		IsCreator:         isHost,
	}
	if p != nil {
		view.MyRole = p.Role
	}
	return view, nil
}

// Approve admits a participant. Only the creator may approve.
func (s *AdmissionService) Approve(ctx context.Context, roomID, targetUserID, requestingUserID string) error {
	room, err := s.load(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsCreator(requestingUserID) {
		return ErrForbidden
	}

	p, err := s.participants.Approve(ctx, roomID, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to approve participant: %w", err)
	}
	if p == nil {
		return ErrParticipantNotFound
	}

	s.logger.Info("participant approved", "room_id", roomID, "user_id", targetUserID)
	s.broadcaster.BroadcastToRoom(roomID, model.EventParticipantApproved, model.ParticipantApprovedPayload{
		UserID: targetUserID,
		Role:   p.Role,
	})
	return nil
}

// Reject drops a pending request. Approved participants are never removed.
func (s *AdmissionService) Reject(ctx context.Context, roomID, targetUserID, requestingUserID string) (bool, error) {
	room, err := s.load(ctx, roomID)
	if err != nil {
		return false, err
	}
	if !room.IsCreator(requestingUserID) {
		return false, ErrForbidden
	}

	removed, err := s.participants.DeletePending(ctx, roomID, targetUserID)
	if err != nil {
		return false, fmt.Errorf("failed to reject participant: %w", err)
	}
	if !removed {
		return false, nil
	}

	s.logger.Info("participant rejected", "room_id", roomID, "user_id", targetUserID)
	s.broadcaster.BroadcastToRoom(roomID, model.EventParticipantRejected, model.ParticipantRejectedPayload{
		UserID: targetUserID,
	})
	return true, nil
}

// ListPending returns the waiting requests in arrival order with display
// info. Callers must be the creator or an approved interviewer.
func (s *AdmissionService) ListPending(ctx context.Context, roomID, requestingUserID string) ([]model.PendingRequest, error) {
	room, err := s.load(ctx, roomID)
	if err != nil {
		return nil, err
	}

	isHost, err := s.EnsureHostAdmitted(ctx, room, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !isHost {
		ok, err := s.IsApprovedInterviewer(ctx, roomID, requestingUserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}

	pending, err := s.participants.ListPending(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending participants: %w", err)
	}

	ids := make([]string, len(pending))
	for i, p := range pending {
		ids[i] = p.UserID
	}
	summaries, err := s.users.GetSummaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}

	out := make([]model.PendingRequest, 0, len(pending))
	for _, p := range pending {
		u := summaries[p.UserID]
		out = append(out, model.PendingRequest{
			ID:       p.ID,
			UserID:   p.UserID,
			Name:     u.Name,
			Email:    u.Email,
			Role:     p.Role,
			Status:   p.Status,
			JoinedAt: p.JoinedAt,
		})
	}
	return out, nil
}

// IsApprovedInterviewer reads the caller's record fresh from the ledger
func (s *AdmissionService) IsApprovedInterviewer(ctx context.Context, roomID, userID string) (bool, error) {
	p, err := s.participants.Find(ctx, roomID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get participant: %w", err)
	}
	return p.IsApprovedInterviewer(), nil
}

func (s *AdmissionService) displayName(ctx context.Context, userID string) string {
	summaries, err := s.users.GetSummaries(ctx, []string{userID})
	if err != nil {
		s.logger.Warn("user lookup failed", "user_id", userID, "error", err)
		return ""
	}
	return summaries[userID].Name
}
