package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/domain"
)

// DeviceRepository is the liveness tracker for camera streams.
type DeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]domain.Device
}

func NewDeviceRepository() *DeviceRepository {
	return &DeviceRepository{devices: make(map[string]domain.Device)}
}

// Heartbeat registers one frame. The first heartbeat opens the session;
// later ones bump the frame counter and keep StartedAt.
func (r *DeviceRepository) Heartbeat(deviceID, userID string, now time.Time) domain.Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		d = domain.Device{ID: deviceID, StartedAt: now}
	}
	d.UserID = userID
	d.LastActive = now
	d.Frames++
	r.devices[deviceID] = d
	return d
}

func (r *DeviceRepository) Get(deviceID string) (domain.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[deviceID]
	return d, ok
}

// Status reports false for unknown (or already evicted) devices.
func (r *DeviceRepository) Status(deviceID string, now time.Time, activeWindow time.Duration) (domain.DeviceStatus, bool) {
	d, ok := r.Get(deviceID)
	if !ok {
		return "", false
	}
	return d.StatusAt(now, activeWindow), true
}

func (r *DeviceRepository) Evict(now time.Time, ttl time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, d := range r.devices {
		if now.Sub(d.LastActive) > ttl {
			delete(r.devices, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}

func (r *DeviceRepository) CountActive(now time.Time, activeWindow time.Duration) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, d := range r.devices {
		if d.StatusAt(now, activeWindow) == domain.DeviceActive {
			n++
		}
	}
	return n
}

func (r *DeviceRepository) List() []domain.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
