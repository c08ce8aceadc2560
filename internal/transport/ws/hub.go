package ws

import (
	"log/slog"
	"sort"
	"sync"
)

// Conn is one live client connection (the connection handle).
type Conn interface {
	ID() string
	// Send enqueues msg without blocking on network I/O.
	Send(msg Message) error
	Close() error
}

type member struct {
	conn   Conn
	userID string
}

// Hub is the room membership registry and broadcast dispatcher.
// A connection belongs to at most one room.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]member // roomID -> connID -> member
	connIn map[string]string            // connID -> roomID
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[string]member),
		connIn: make(map[string]string),
	}
}

// Join adds c to roomID, moving it out of any previous room. Idempotent.
func (h *Hub) Join(roomID string, c Conn, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.connIn[c.ID()]; ok && prev != roomID {
		h.removeLocked(prev, c.ID())
	}
	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]member)
		h.rooms[roomID] = rs
	}
	rs[c.ID()] = member{conn: c, userID: userID}
	h.connIn[c.ID()] = roomID
}

// Leave removes c from whatever room holds it. Unknown connections are ignored.
func (h *Hub) Leave(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roomID, ok := h.connIn[c.ID()]; ok {
		h.removeLocked(roomID, c.ID())
	}
}

func (h *Hub) removeLocked(roomID, connID string) {
	delete(h.connIn, connID)
	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Members returns a snapshot of the connections in roomID.
func (h *Hub) Members(roomID string) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rs := h.rooms[roomID]
	out := make([]Conn, 0, len(rs))
	for _, m := range rs {
		out = append(out, m.conn)
	}
	return out
}

// Rooms maps every occupied room to its member identifiers: the joined user
// id, or the connection id when none was given.
func (h *Hub) Rooms() map[string][]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string][]string, len(h.rooms))
	for roomID, rs := range h.rooms {
		seen := make(map[string]struct{}, len(rs))
		ids := make([]string, 0, len(rs))
		for connID, m := range rs {
			id := m.userID
			if id == "" {
				id = connID
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[roomID] = ids
	}
	return out
}

// Emit delivers msg to everyone in roomID except exclude (may be nil).
// Recipients are taken from a snapshot and sent to outside the lock; a
// failing recipient is logged and skipped. Returns the number delivered.
func (h *Hub) Emit(roomID string, msg Message, exclude Conn) int {
	delivered := 0
	for _, c := range h.Members(roomID) {
		if exclude != nil && c.ID() == exclude.ID() {
			continue
		}
		if err := c.Send(msg); err != nil {
			slog.Warn("ws emit failed",
				"room", roomID, "event", msg.Event, "conn", c.ID(), "err", err)
			continue
		}
		delivered++
	}
	return delivered
}
