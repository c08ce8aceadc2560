package service

import (
	"context"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/clock"
	"github.com/cwrk-planet/presence-hub/internal/domain"
	"github.com/cwrk-planet/presence-hub/internal/memory"

	"github.com/google/uuid"
)

const DefaultActiveWindow = 30 * time.Second

type HeartbeatInput struct {
	DeviceID string // generated when empty
	UserID   string
	HasFrame bool
}

type DeviceService struct {
	deviceRepo *memory.DeviceRepository
	clock      clock.Clock

	activeWindow time.Duration
}

func NewDeviceService(deviceRepo *memory.DeviceRepository, clk clock.Clock) *DeviceService {
	return &DeviceService{
		deviceRepo:   deviceRepo,
		clock:        clk,
		activeWindow: DefaultActiveWindow,
	}
}

func (s *DeviceService) SetActiveWindow(d time.Duration) {
	if d > 0 {
		s.activeWindow = d
	}
}

func (s *DeviceService) ActiveWindow() time.Duration { return s.activeWindow }

// Heartbeat records a frame. Without frame data nothing is recorded and ok is false.
func (s *DeviceService) Heartbeat(ctx context.Context, in HeartbeatInput) (d domain.Device, ok bool) {
	if !in.HasFrame {
		return domain.Device{}, false
	}
	id := in.DeviceID
	if id == "" {
		id = uuid.NewString()
	}
	return s.deviceRepo.Heartbeat(id, in.UserID, s.clock.Now()), true
}

func (s *DeviceService) Status(ctx context.Context, deviceID string) (domain.DeviceStatus, bool) {
	return s.deviceRepo.Status(deviceID, s.clock.Now(), s.activeWindow)
}

func (s *DeviceService) EvictStale(now time.Time, ttl time.Duration) []string {
	return s.deviceRepo.Evict(now, ttl)
}

func (s *DeviceService) ActiveDevices() int {
	return s.deviceRepo.CountActive(s.clock.Now(), s.activeWindow)
}

func (s *DeviceService) List() []domain.Device {
	return s.deviceRepo.List()
}
