package model

import (
	"slices"
	"time"
)

type RoomStatus string

const (
	RoomScheduled RoomStatus = "scheduled"
	RoomLive      RoomStatus = "live"
	RoomEnded     RoomStatus = "ended"
)

// Room is a single interview session. CreatedBy is the host and is always
// admitted as an interviewer.
type Room struct {
	ID                string     `json:"roomId" bson:"_id"`
	CreatedBy         string     `json:"createdBy" bson:"createdBy"`
	Status            RoomStatus `json:"status" bson:"status"`
	AssignedProblemID string     `json:"problemId,omitempty" bson:"assignedProblemId,omitempty"`
	Interviewers      []string   `json:"interviewers" bson:"interviewers"`
	CreatedAt         time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// IsCreator reports whether userID created the room
func (r *Room) IsCreator(userID string) bool {
	return userID != "" && r.CreatedBy == userID
}

// HasInterviewer reports whether userID was added as a co-interviewer
func (r *Room) HasInterviewer(userID string) bool {
	return slices.Contains(r.Interviewers, userID)
}
