package service

import (
	"context"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/clock"
	"github.com/cwrk-planet/presence-hub/internal/domain"
)

// RoomMembers exposes the membership registry without tying the service
// layer to a transport.
type RoomMembers interface {
	Rooms() map[string][]string
}

type Statistics struct {
	ActiveUsers   int
	ActiveCameras int
	ActiveChats   int
	TotalMessages int
}

type RoomOverview struct {
	RoomID       string
	Users        []string
	LastMessage  string
	LastAt       time.Time
	MessageCount int
}

type DeviceOverview struct {
	ID         string
	UserID     string
	StartedAt  time.Time
	LastActive time.Time
	Frames     int64
	Status     domain.DeviceStatus
}

// StatusService derives read-only reports from live state.
type StatusService struct {
	memberSvc *MemberService
	chatSvc   *ChatService
	deviceSvc *DeviceService
	rooms     RoomMembers
	clock     clock.Clock
}

func NewStatusService(member *MemberService, chat *ChatService, device *DeviceService, rooms RoomMembers, clk clock.Clock) *StatusService {
	return &StatusService{
		memberSvc: member,
		chatSvc:   chat,
		deviceSvc: device,
		rooms:     rooms,
		clock:     clk,
	}
}

func (s *StatusService) Now() time.Time { return s.clock.Now() }

func (s *StatusService) Statistics(ctx context.Context) Statistics {
	return Statistics{
		ActiveUsers:   s.memberSvc.ActiveUsers(),
		ActiveCameras: s.deviceSvc.ActiveDevices(),
		ActiveChats:   s.chatSvc.ActiveChats(),
		TotalMessages: s.chatSvc.TotalMessages(),
	}
}

// Rooms lists every room with at least one message and its current members.
func (s *StatusService) Rooms(ctx context.Context) []RoomOverview {
	members := s.rooms.Rooms()
	summaries := s.chatSvc.Summaries()

	out := make([]RoomOverview, 0, len(summaries))
	for _, sum := range summaries {
		users := members[sum.RoomID]
		if users == nil {
			users = []string{}
		}
		out = append(out, RoomOverview{
			RoomID:       sum.RoomID,
			Users:        users,
			LastMessage:  sum.LastMessage,
			LastAt:       sum.LastAt,
			MessageCount: sum.MessageCount,
		})
	}
	return out
}

// Devices reports every tracked device and how many are active.
func (s *StatusService) Devices(ctx context.Context) (active int, devices []DeviceOverview) {
	now := s.clock.Now()
	window := s.deviceSvc.ActiveWindow()

	list := s.deviceSvc.List()
	devices = make([]DeviceOverview, 0, len(list))
	for _, d := range list {
		st := d.StatusAt(now, window)
		if st == domain.DeviceActive {
			active++
		}
		devices = append(devices, DeviceOverview{
			ID:         d.ID,
			UserID:     d.UserID,
			StartedAt:  d.StartedAt,
			LastActive: d.LastActive,
			Frames:     d.Frames,
			Status:     st,
		})
	}
	return active, devices
}
