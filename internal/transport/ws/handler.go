package ws

import (
	"context"
	"errors"
	"interviewroom/internal/model"
	"interviewroom/internal/service"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	lookupTimeout  = 5 * time.Second
)

// RoomLookup resolves a room id. It returns service.ErrRoomNotFound for
// unknown rooms.
type RoomLookup interface {
	GetRoom(ctx context.Context, roomID string) (*model.Room, error)
}

// TokenValidator resolves a bearer token to the user it identifies
type TokenValidator interface {
	ValidateToken(token string) (*model.UserClaims, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	auth       TokenValidator
	rooms      RoomLookup
	sendBuffer int
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a new WebSocket handler. allowedOrigins may contain "*".
func NewHandler(hub *Hub, auth TokenValidator, rooms RoomLookup, allowedOrigins []string, sendBuffer int, logger *slog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		auth:       auth,
		rooms:      rooms,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeWS handles GET /v1/ws?token=...
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(claims.UserID(), h.sendBuffer)
	h.hub.Register(conn)
	h.logger.Info("websocket connected", "socket_id", conn.ID, "user_id", conn.UserID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
		h.logger.Info("websocket disconnected", "socket_id", conn.ID, "user_id", conn.UserID)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", "socket_id", conn.ID, "error", err)
			}
			return
		}

		ev, err := parseClientEvent(data)
		if err != nil {
			h.hub.SendError(conn, err.Error())
			continue
		}
		h.dispatch(conn, ev)
	}
}

func (h *Handler) dispatch(conn *Connection, ev interface{}) {
	switch ev := ev.(type) {
	case *joinRoomEvent:
		if msg := h.checkRoom(ev.RoomID); msg != "" {
			h.hub.SendError(conn, msg)
			return
		}
		h.hub.Join(conn, ev.RoomID)

	case *leaveRoomEvent:
		h.hub.Leave(conn, ev.RoomID)

	case *codeChangeEvent:
		h.hub.Relay(conn, ev.RoomID, "", model.EventCodeUpdate, CodeUpdatePayload{
			RoomID: ev.RoomID,
			Code:   ev.Code,
			From:   conn.ID,
		})

	case *signalEvent:
		h.hub.Relay(conn, ev.RoomID, ev.To, ev.Kind, SignalPayload{
			RoomID:    ev.RoomID,
			From:      conn.ID,
			To:        ev.To,
			SDP:       ev.SDP,
			Candidate: ev.Candidate,
		})
	}
}

// checkRoom returns an error message for the client, or "" when the room can
// be joined
func (h *Handler) checkRoom(roomID string) string {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	room, err := h.rooms.GetRoom(ctx, roomID)
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		return "room not found"
	case err != nil:
		h.logger.Error("room lookup failed", "room_id", roomID, "error", err)
		return "room lookup failed"
	case room.Status == model.RoomEnded:
		return "room has ended"
	}
	return ""
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
