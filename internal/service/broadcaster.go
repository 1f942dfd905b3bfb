package service

// Broadcaster fans events out to every socket joined to a room. Delivery is
// best effort. Implemented by the websocket hub (avoids import cycle).
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgType string, payload interface{})
}
