package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"interviewroom/internal/model"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// client -> hub

type joinRoomEvent struct {
	RoomID string `json:"roomId"`
}

type leaveRoomEvent struct {
	RoomID string `json:"roomId"`
}

type codeChangeEvent struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

// signalEvent covers offers, answers and ICE candidates. SDP and Candidate
// are opaque to the hub.
type signalEvent struct {
	Kind      string          `json:"-"`
	RoomID    string          `json:"roomId"`
	To        string          `json:"to,omitempty"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// hub -> client

type PeerInfo struct {
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
}

type RoomJoinedPayload struct {
	RoomID   string     `json:"roomId"`
	SocketID string     `json:"socketId"`
	Peers    []PeerInfo `json:"peers"`
}

type PeerPayload struct {
	RoomID   string `json:"roomId"`
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
}

type CodeUpdatePayload struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
	From   string `json:"from"`
}

type SignalPayload struct {
	RoomID    string          `json:"roomId"`
	From      string          `json:"from"`
	To        string          `json:"to,omitempty"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

var errMissingRoomID = errors.New("roomId is required")

// parseClientEvent decodes and validates one inbound frame. The result is one
// of the *Event types above.
func parseClientEvent(data []byte) (interface{}, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("malformed message")
	}
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return nil, fmt.Errorf("%s: payload is required", msg.Type)
	}

	switch msg.Type {
	case model.EventJoinRoom:
		var ev joinRoomEvent
		if err := decodePayload(msg, &ev); err != nil {
			return nil, err
		}
		if ev.RoomID == "" {
			return nil, fmt.Errorf("%s: %w", msg.Type, errMissingRoomID)
		}
		return &ev, nil

	case model.EventLeaveRoom:
		var ev leaveRoomEvent
		if err := decodePayload(msg, &ev); err != nil {
			return nil, err
		}
		if ev.RoomID == "" {
			return nil, fmt.Errorf("%s: %w", msg.Type, errMissingRoomID)
		}
		return &ev, nil

	case model.EventCodeChange:
		var ev codeChangeEvent
		if err := decodePayload(msg, &ev); err != nil {
			return nil, err
		}
		if ev.RoomID == "" {
			return nil, fmt.Errorf("%s: %w", msg.Type, errMissingRoomID)
		}
		return &ev, nil

	case model.EventWebRTCOffer, model.EventWebRTCAnswer, model.EventICECandidate:
		ev := signalEvent{Kind: msg.Type}
		if err := decodePayload(msg, &ev); err != nil {
			return nil, err
		}
		if ev.RoomID == "" {
			return nil, fmt.Errorf("%s: %w", msg.Type, errMissingRoomID)
		}
		if msg.Type == model.EventICECandidate {
			if isEmptyJSON(ev.Candidate) {
				return nil, fmt.Errorf("%s: candidate is required", msg.Type)
			}
		} else if isEmptyJSON(ev.SDP) {
			return nil, fmt.Errorf("%s: sdp is required", msg.Type)
		}
		return &ev, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
}

func decodePayload(msg Message, v interface{}) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: malformed payload", msg.Type)
	}
	return nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := string(raw)
	return s == "" || s == "null" || s == `""` || s == "{}"
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: raw})
}
