package service

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidRole         = errors.New("role must be interviewer or student")
	ErrRoomEnded           = errors.New("room has ended")
	ErrInvalidToken        = errors.New("invalid or expired token")
)
