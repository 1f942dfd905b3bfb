package model

// Realtime event types. The first group is sent by clients, the second is
// emitted by the server.
const (
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventCodeChange   = "code-change"
	EventWebRTCOffer  = "webrtc-offer"
	EventWebRTCAnswer = "webrtc-answer"
	EventICECandidate = "ice-candidate"

	EventRoomJoined          = "room-joined"
	EventPeerJoined          = "peer-joined"
	EventPeerLeft            = "peer-left"
	EventCodeUpdate          = "code-update"
	EventJoinRequest         = "join-request"
	EventParticipantApproved = "participant-approved"
	EventParticipantRejected = "participant-rejected"
	EventProblemAssigned     = "problem-assigned"
	EventRoomEnded           = "room-ended"
	EventError               = "error"
)

type JoinRequestPayload struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	RequestedRole Role   `json:"requestedRole"`
}

type ParticipantApprovedPayload struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

type ParticipantRejectedPayload struct {
	UserID string `json:"userId"`
}

type ProblemAssignedPayload struct {
	ProblemID string `json:"problemId"`
}

type RoomEndedPayload struct {
	RoomID string `json:"roomId"`
}
