package model

import "time"

// JoinOutcome is returned when a user attempts to join a room.
// Direct is true only for the host, who skips the approval gate.
type JoinOutcome struct {
	Role   Role              `json:"role"`
	Status ParticipantStatus `json:"status"`
	Direct bool              `json:"direct"`
}

// RoomStatusView is what a lobby or waiting screen polls for
type RoomStatusView struct {
	RoomID            string `json:"roomId"`
	AssignedProblemID string `json:"problemId"`
	InterviewerJoined bool   `json:"interviewerJoined"`
	MyRole            Role   `json:"myRole"`
	Approved          bool   `json:"approved"`
	IsCreator         bool   `json:"isCreator"`
}

// PendingRequest is a pending participant joined with display info
type PendingRequest struct {
	ID       string            `json:"id"`
	UserID   string            `json:"userId"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Role     Role              `json:"role"`
	Status   ParticipantStatus `json:"status"`
	JoinedAt time.Time         `json:"joinedAt"`
}
