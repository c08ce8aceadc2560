package service

import (
	"context"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/clock"
	"github.com/cwrk-planet/presence-hub/internal/domain"
	"github.com/cwrk-planet/presence-hub/internal/memory"

	"github.com/google/uuid"
)

const (
	DefaultRoomID   = "general"
	DefaultUsername = "Anonymous"
)

type MemberService struct {
	presenceRepo *memory.PresenceRepository
	clock        clock.Clock

	refreshOnActivity bool
}

func NewMemberService(presenceRepo *memory.PresenceRepository, clk clock.Clock) *MemberService {
	return &MemberService{
		presenceRepo: presenceRepo,
		clock:        clk,
	}
}

// SetRefreshOnActivity makes Touch refresh last-seen. Off by default: only a
// join resets the idle timer.
func (s *MemberService) SetRefreshOnActivity(on bool) {
	s.refreshOnActivity = on
}

// JoinRoom records the user as present in roomID and resets its idle timer.
func (s *MemberService) JoinRoom(ctx context.Context, roomID, userID, username string) domain.Presence {
	p := domain.Presence{
		UserID:   userID,
		Username: username,
		RoomID:   roomID,
		LastSeen: s.clock.Now(),
	}
	s.presenceRepo.Upsert(p)
	return p
}

// Login issues an unverified identity. Tokens are opaque and never checked.
func (s *MemberService) Login(ctx context.Context, username string) (p domain.Presence, token string) {
	userID := uuid.NewString()
	if username == "" {
		username = "User_" + userID[:8]
	}
	now := s.clock.Now()
	p = domain.Presence{
		UserID:    userID,
		Username:  username,
		LoginTime: now,
		LastSeen:  now,
	}
	s.presenceRepo.Upsert(p)
	return p, uuid.NewString()
}

// Touch is a no-op unless activity refresh is enabled.
func (s *MemberService) Touch(ctx context.Context, userID string) {
	if !s.refreshOnActivity {
		return
	}
	s.presenceRepo.Touch(userID, s.clock.Now())
}

func (s *MemberService) EvictStale(now time.Time, ttl time.Duration) []string {
	return s.presenceRepo.Evict(now, ttl)
}

func (s *MemberService) Get(userID string) (domain.Presence, bool) {
	return s.presenceRepo.Get(userID)
}

func (s *MemberService) ActiveUsers() int {
	return s.presenceRepo.Count()
}
