package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
	wsSendBuffer     = 64
)

// Hub rooms.
const (
	RoomLeague = "league"
)

// SeasonRoom is the room for events scoped to one season.
func SeasonRoom(season string) string {
	return "season:" + season
}

// WSHub manages WebSocket connections and room-based message delivery.
type WSHub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*WSConn // room -> connID -> conn
	closed bool
	logger *slog.Logger
}

// WSConn is one subscriber. Send is drained by the connection's write pump.
type WSConn struct {
	ID   string
	Send chan []byte

	once sync.Once
}

func (c *WSConn) close() {
	c.once.Do(func() { close(c.Send) })
}

// WSMessage is the payload sent over WebSocket.
type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub(logger *slog.Logger) *WSHub {
	return &WSHub{
		rooms:  make(map[string]map[string]*WSConn),
		logger: logger,
	}
}

// NewWSConn allocates a subscriber with a fresh id.
func NewWSConn() *WSConn {
	return &WSConn{ID: uuid.NewString(), Send: make(chan []byte, wsSendBuffer)}
}

// Join adds a connection to a room.
func (h *WSHub) Join(room string, conn *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		conn.close()
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*WSConn)
	}
	h.rooms[room][conn.ID] = conn
}

// Leave removes a connection from a room.
func (h *WSHub) Leave(room string, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[room]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish sends a message to all connections in a room. Slow subscribers drop messages.
func (h *WSHub) Publish(room string, event string, data interface{}) {
	msg := WSMessage{Event: event, Data: data}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("ws marshal error", "error", err, "room", room, "event", event)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.rooms[room]
	if !ok {
		return
	}

	for _, conn := range conns {
		select {
		case conn.Send <- payload:
		default:
			h.logger.Warn("ws send buffer full", "connID", conn.ID, "room", room)
		}
	}
}

// ConnectionCount returns the number of distinct active connections.
func (h *WSHub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, conns := range h.rooms {
		for id := range conns {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// RoomCount returns the number of active rooms.
func (h *WSHub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Shutdown closes all connections gracefully. Later joins are refused.
func (h *WSHub) Shutdown(_ context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for room, conns := range h.rooms {
		for _, conn := range conns {
			conn.close()
		}
		delete(h.rooms, room)
	}
}

// Serve joins ws to the given rooms and pumps messages until the peer goes away
// or the hub shuts down. It blocks until the write side has finished.
func (h *WSHub) Serve(ws *websocket.Conn, rooms []string) {
	conn := NewWSConn()
	for _, room := range rooms {
		h.Join(room, conn)
	}
	h.logger.Info("ws client connected", "connID", conn.ID, "rooms", rooms)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(ws, conn)
	}()

	h.readPump(ws, conn)
	for _, room := range rooms {
		h.Leave(room, conn.ID)
	}
	conn.close()
	<-done
	h.logger.Info("ws client disconnected", "connID", conn.ID)
}

// readPump discards client frames; it exists to process pongs and notice disconnects.
func (h *WSHub) readPump(ws *websocket.Conn, conn *WSConn) {
	ws.SetReadLimit(wsMaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("ws read error", "connID", conn.ID, "error", err)
			}
			return
		}
	}
}

func (h *WSHub) writePump(ws *websocket.Conn, conn *WSConn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
