package memory

import (
	"sort"
	"sync"

	"github.com/cwrk-planet/presence-hub/internal/domain"
)

const (
	DefaultMaxMessagesPerRoom = 1000

	defaultPageLimit = 50
	maxPageLimit     = 100
)

// ChatRepository keeps a bounded, insertion-ordered message log per room.
// Logs are never dropped when a room empties.
type ChatRepository struct {
	mu         sync.RWMutex
	logs       map[string][]domain.ChatMessage
	maxPerRoom int
}

func NewChatRepository(maxPerRoom int) *ChatRepository {
	if maxPerRoom <= 0 {
		maxPerRoom = DefaultMaxMessagesPerRoom
	}
	return &ChatRepository{
		logs:       make(map[string][]domain.ChatMessage),
		maxPerRoom: maxPerRoom,
	}
}

// Append inserts at the tail and drops the oldest entries beyond the cap.
func (r *ChatRepository) Append(msg domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := append(r.logs[msg.RoomID], msg)
	if over := len(log) - r.maxPerRoom; over > 0 {
		log = log[over:]
	}
	r.logs[msg.RoomID] = log
}

// RecentHistory returns the last n messages in chronological order.
func (r *ChatRepository) RecentHistory(roomID string, n int) []domain.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.logs[roomID]
	if n < 0 {
		n = 0
	}
	if n > len(log) {
		n = len(log)
	}
	out := make([]domain.ChatMessage, n)
	copy(out, log[len(log)-n:])
	return out
}

// Page walks the log backwards from cursor, newest first.
func (r *ChatRepository) Page(roomID, cursor string, limit int) ([]domain.ChatMessage, string, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	cur, err := DecodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.logs[roomID]
	end := len(log)
	if cur != nil {
		end = positionBefore(log, cur)
	}
	start := end - limit
	if start < 0 {
		start = 0
	}

	out := make([]domain.ChatMessage, 0, end-start)
	for i := end - 1; i >= start; i-- {
		out = append(out, log[i])
	}

	var next string
	if start > 0 && len(out) > 0 {
		last := out[len(out)-1]
		next, _ = EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return out, next, nil
}

// positionBefore returns the exclusive end index of messages older than cur.
// If the cursor message was truncated away, fall back to its timestamp.
func positionBefore(log []domain.ChatMessage, cur *Cursor) int {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].ID == cur.ID {
			return i
		}
	}
	n := 0
	for _, m := range log {
		if m.CreatedAt.Before(cur.CreatedAt) {
			n++
		}
	}
	return n
}

// RoomCount counts rooms that have a log.
func (r *ChatRepository) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.logs)
}

func (r *ChatRepository) TotalMessages() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, log := range r.logs {
		total += len(log)
	}
	return total
}

// Summaries lists rooms with at least one message, ordered by room key.
func (r *ChatRepository) Summaries() []domain.RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RoomSummary, 0, len(r.logs))
	for roomID, log := range r.logs {
		if len(log) == 0 {
			continue
		}
		last := log[len(log)-1]
		out = append(out, domain.RoomSummary{
			RoomID:       roomID,
			LastMessage:  last.Text,
			LastAt:       last.CreatedAt,
			MessageCount: len(log),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}
