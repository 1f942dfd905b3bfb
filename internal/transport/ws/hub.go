package ws

import (
	"interviewroom/internal/model"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Connection is one signaling socket. rooms is owned by the hub's run loop.
type Connection struct {
	ID     string
	UserID string
	Send   chan []byte

	rooms map[string]struct{}
}

// NewConnection creates a connection with a fresh socket id
func NewConnection(userID string, sendBuffer int) *Connection {
	return &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
		rooms:  make(map[string]struct{}),
	}
}

type opKind int

const (
	opRegister opKind = iota
	opUnregister
	opJoin
	opLeave
	opRelay
	opDirect
)

// hubOp is a socket-originated request. All of them travel through one
// channel so the hub applies each socket's requests in the order sent.
type hubOp struct {
	kind   opKind
	conn   *Connection
	roomID string
	to     string
	data   []byte
}

type roomMessage struct {
	roomID string
	data   []byte
}

// Hub routes signaling traffic between sockets. All membership state lives
// in the run goroutine and is never touched from outside it.
type Hub struct {
	logger *slog.Logger

	conns map[string]*Connection
	rooms map[string]map[*Connection]struct{}

	ops       chan hubOp
	broadcast chan roomMessage
	quit      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once

	// stopMu orders submits against Stop. Once stopped is set no op can
	// enter ops, so the run loop's final drain sees every queued register.
	stopMu  sync.RWMutex
	stopped bool
}

// NewHub creates a new WebSocket hub and starts its run loop
func NewHub(logger *slog.Logger) *Hub {
	h := &Hub{
		logger:    logger,
		conns:     make(map[string]*Connection),
		rooms:     make(map[string]map[*Connection]struct{}),
		ops:       make(chan hubOp, 256),
		broadcast: make(chan roomMessage, 256),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case op := <-h.ops:
			h.apply(op)

		case msg := <-h.broadcast:
			for conn := range h.rooms[msg.roomID] {
				h.deliver(conn, msg.data)
			}

		case <-h.quit:
			h.drainRegisters()
			for _, conn := range h.conns {
				close(conn.Send)
			}
			h.conns = nil
			h.rooms = nil
			return
		}
	}
}

// drainRegisters picks up registers still queued at stop so their send
// channels are closed with the rest. Other queued ops are dropped.
func (h *Hub) drainRegisters() {
	for {
		select {
		case op := <-h.ops:
			if op.kind == opRegister {
				h.conns[op.conn.ID] = op.conn
			}
		default:
			return
		}
	}
}

func (h *Hub) apply(op hubOp) {
	if op.kind == opRegister {
		h.conns[op.conn.ID] = op.conn
		h.logger.Debug("socket connected", "socket_id", op.conn.ID, "user_id", op.conn.UserID)
		return
	}
	// anything arriving after unregister is stale
	if h.conns[op.conn.ID] != op.conn {
		return
	}

	switch op.kind {
	case opUnregister:
		for roomID := range op.conn.rooms {
			h.leaveRoom(op.conn, roomID)
		}
		delete(h.conns, op.conn.ID)
		close(op.conn.Send)
		h.logger.Debug("socket disconnected", "socket_id", op.conn.ID, "user_id", op.conn.UserID)
	case opJoin:
		h.joinRoom(op.conn, op.roomID)
	case opLeave:
		h.leaveRoom(op.conn, op.roomID)
	case opRelay:
		h.relay(op)
	case opDirect:
		h.deliver(op.conn, op.data)
	}
}

func (h *Hub) joinRoom(conn *Connection, roomID string) {
	members := h.rooms[roomID]
	if members == nil {
		members = make(map[*Connection]struct{})
		h.rooms[roomID] = members
	}
	_, already := members[conn]

	peers := make([]PeerInfo, 0, len(members))
	for peer := range members {
		if peer != conn {
			peers = append(peers, PeerInfo{SocketID: peer.ID, UserID: peer.UserID})
		}
	}

	members[conn] = struct{}{}
	conn.rooms[roomID] = struct{}{}

	h.deliver(conn, h.mustEncode(model.EventRoomJoined, RoomJoinedPayload{
		RoomID:   roomID,
		SocketID: conn.ID,
		Peers:    peers,
	}))
	if already {
		return
	}

	h.logger.Debug("socket joined room", "socket_id", conn.ID, "room_id", roomID)
	h.sendToRoom(roomID, conn, h.mustEncode(model.EventPeerJoined, PeerPayload{
		RoomID:   roomID,
		SocketID: conn.ID,
		UserID:   conn.UserID,
	}))
}

// leaveRoom drops conn from the room and tells the remaining members
func (h *Hub) leaveRoom(conn *Connection, roomID string) {
	members := h.rooms[roomID]
	if _, ok := members[conn]; !ok {
		return
	}

	delete(members, conn)
	delete(conn.rooms, roomID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}

	h.logger.Debug("socket left room", "socket_id", conn.ID, "room_id", roomID)
	h.sendToRoom(roomID, conn, h.mustEncode(model.EventPeerLeft, PeerPayload{
		RoomID:   roomID,
		SocketID: conn.ID,
		UserID:   conn.UserID,
	}))
}

func (h *Hub) relay(op hubOp) {
	members := h.rooms[op.roomID]
	if _, ok := members[op.conn]; !ok {
		h.deliver(op.conn, h.errorFrame("not joined to room "+op.roomID))
		return
	}

	if op.to == "" {
		h.sendToRoom(op.roomID, op.conn, op.data)
		return
	}

	target, ok := h.conns[op.to]
	if !ok {
		h.deliver(op.conn, h.errorFrame("peer "+op.to+" is not connected"))
		return
	}
	if _, ok := members[target]; !ok {
		h.deliver(op.conn, h.errorFrame("peer "+op.to+" is not in room "+op.roomID))
		return
	}
	h.deliver(target, op.data)
}

func (h *Hub) sendToRoom(roomID string, except *Connection, data []byte) {
	for conn := range h.rooms[roomID] {
		if conn != except {
			h.deliver(conn, data)
		}
	}
}

// deliver never blocks the run loop. A full buffer drops the frame.
func (h *Hub) deliver(conn *Connection, data []byte) {
	if data == nil {
		return
	}
	select {
	case conn.Send <- data:
	default:
		h.logger.Debug("send buffer full, dropping message", "socket_id", conn.ID)
	}
}

func (h *Hub) mustEncode(msgType string, payload interface{}) []byte {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode message", "type", msgType, "error", err)
		return nil
	}
	return data
}

func (h *Hub) errorFrame(message string) []byte {
	return h.mustEncode(model.EventError, ErrorPayload{Message: message})
}

// submit queues op for the run loop and reports false once the hub has
// stopped. A blocked send always completes because the run loop keeps
// draining ops until Stop has taken stopMu.
func (h *Hub) submit(op hubOp) bool {
	h.stopMu.RLock()
	defer h.stopMu.RUnlock()
	if h.stopped {
		return false
	}
	h.ops <- op
	return true
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	if !h.submit(hubOp{kind: opRegister, conn: conn}) {
		close(conn.Send)
	}
}

// Unregister removes a connection from every room and closes its send
// channel
func (h *Hub) Unregister(conn *Connection) {
	h.submit(hubOp{kind: opUnregister, conn: conn})
}

// Join adds conn to the room's broadcast group
func (h *Hub) Join(conn *Connection, roomID string) {
	h.submit(hubOp{kind: opJoin, conn: conn, roomID: roomID})
}

// Leave removes conn from the room
func (h *Hub) Leave(conn *Connection, roomID string) {
	h.submit(hubOp{kind: opLeave, conn: conn, roomID: roomID})
}

// Relay forwards a client event to one peer, or to the whole room except the
// sender when to is empty
func (h *Hub) Relay(from *Connection, roomID, to, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode relay", "type", msgType, "error", err)
		return
	}
	h.submit(hubOp{kind: opRelay, conn: from, roomID: roomID, to: to, data: data})
}

// SendError reports a rejected event back to its sender
func (h *Hub) SendError(conn *Connection, message string) {
	h.submit(hubOp{kind: opDirect, conn: conn, data: h.errorFrame(message)})
}

// BroadcastToRoom sends a message to every socket in the room (implements
// service.Broadcaster)
func (h *Hub) BroadcastToRoom(roomID string, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.logger.Error("failed to encode broadcast", "type", msgType, "room_id", roomID, "error", err)
		return
	}
	select {
	case h.broadcast <- roomMessage{roomID: roomID, data: data}:
	case <-h.quit:
	}
}

// Stop ends the run loop and closes the send channel of every open
// connection
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.stopMu.Lock()
		h.stopped = true
		h.stopMu.Unlock()
		close(h.quit)
	})
	<-h.done
}
