package model

import "time"

type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleStudent     Role = "student"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleInterviewer || r == RoleStudent
}

type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantApproved ParticipantStatus = "approved"
)

// Participant is the membership record for one (room, user) pair
type Participant struct {
	ID        string            `json:"id" bson:"_id"`
	RoomID    string            `json:"roomId" bson:"roomId"`
	UserID    string            `json:"userId" bson:"userId"`
	Role      Role              `json:"role" bson:"role"`
	Status    ParticipantStatus `json:"status" bson:"status"`
	JoinedAt  time.Time         `json:"joinedAt" bson:"joinedAt"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

func (p *Participant) IsApproved() bool {
	return p != nil && p.Status == ParticipantApproved
}

func (p *Participant) IsApprovedInterviewer() bool {
	return p.IsApproved() && p.Role == RoleInterviewer
}

// UserSummary is the display subset of a user owned by the identity system
type UserSummary struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}
