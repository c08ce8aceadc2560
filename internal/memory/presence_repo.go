package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/domain"
)

// PresenceRepository tracks the last known room and activity time per user.
type PresenceRepository struct {
	mu    sync.RWMutex
	users map[string]domain.Presence
}

func NewPresenceRepository() *PresenceRepository {
	return &PresenceRepository{users: make(map[string]domain.Presence)}
}

// Upsert creates or overwrites the record for p.UserID.
func (r *PresenceRepository) Upsert(p domain.Presence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[p.UserID] = p
}

// Touch refreshes LastSeen only. Reports false when the user is unknown.
func (r *PresenceRepository) Touch(userID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.users[userID]
	if !ok {
		return false
	}
	p.LastSeen = now
	r.users[userID] = p
	return true
}

// Evict removes and returns users idle for longer than ttl.
func (r *PresenceRepository) Evict(now time.Time, ttl time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, p := range r.users {
		if now.Sub(p.LastSeen) > ttl {
			delete(r.users, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}

func (r *PresenceRepository) Get(userID string) (domain.Presence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.users[userID]
	return p, ok
}

func (r *PresenceRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *PresenceRepository) List() []domain.Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Presence, 0, len(r.users))
	for _, p := range r.users {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
