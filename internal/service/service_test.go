package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/clock"
	"github.com/cwrk-planet/presence-hub/internal/domain"
	"github.com/cwrk-planet/presence-hub/internal/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	clk     *clock.Fake
	members *MemberService
	chat    *ChatService
	devices *DeviceService
	sweeper *Sweeper
}

func newFixture() *fixture {
	clk := clock.NewFake(t0)
	members := NewMemberService(memory.NewPresenceRepository(), clk)
	devices := NewDeviceService(memory.NewDeviceRepository(), clk)
	return &fixture{
		clk:     clk,
		members: members,
		chat:    NewChatService(memory.NewChatRepository(0), clk),
		devices: devices,
		sweeper: NewSweeper(SweeperConfig{}, members, devices, clk),
	}
}

func TestChatService_SaveAssignsUniqueIDs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.chat.Save(ctx, "general", "u1", "alice", "hi")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	log := f.chat.Replay(ctx, "general")
	assert.Len(t, log, DefaultReplayLimit)
	assert.Equal(t, n, f.chat.TotalMessages())

	page, _, err := f.chat.History(ctx, "general", "", 100)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, m := range page {
		seen[m.ID] = true
		assert.Equal(t, domain.MessageTypeText, m.Type)
	}
	assert.Len(t, seen, n)
}

func TestChatService_SaveRejectsBadText(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.chat.Save(ctx, "general", "u1", "alice", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	f.chat.SetMaxMessageLen(5)
	_, err = f.chat.Save(ctx, "general", "u1", "alice", strings.Repeat("ж", 6))
	assert.ErrorIs(t, err, domain.ErrMessageTooLong)

	assert.Zero(t, f.chat.TotalMessages())
}

func TestChatService_ReplayTwoMessages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.chat.Save(ctx, "general", "u1", "alice", "hi")
	require.NoError(t, err)
	f.clk.Advance(time.Second)
	_, err = f.chat.Save(ctx, "general", "u1", "alice", "hi")
	require.NoError(t, err)

	got := f.chat.Replay(ctx, "general")
	require.Len(t, got, 2)
	assert.True(t, got[0].CreatedAt.Before(got[1].CreatedAt))
	assert.Equal(t, "alice", got[1].Username)
	assert.Empty(t, f.chat.Replay(ctx, "other"))
}

func TestMemberService_RejoinResetsClock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.members.JoinRoom(ctx, "general", "u1", "alice")
	f.clk.Advance(200 * time.Second)
	f.members.JoinRoom(ctx, "general", "u1", "alice")
	f.clk.Advance(200 * time.Second)

	res := f.sweeper.Sweep(f.clk.Now())
	assert.Empty(t, res.Users)

	f.clk.Advance(101 * time.Second)
	res = f.sweeper.Sweep(f.clk.Now())
	assert.Equal(t, []string{"u1"}, res.Users)
	_, ok := f.members.Get("u1")
	assert.False(t, ok)
}

func TestMemberService_TouchHonoursSwitch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.members.JoinRoom(ctx, "general", "u1", "alice")

	f.clk.Advance(time.Minute)
	f.members.Touch(ctx, "u1")
	p, _ := f.members.Get("u1")
	assert.Equal(t, t0, p.LastSeen, "activity does not refresh presence by default")

	f.members.SetRefreshOnActivity(true)
	f.members.Touch(ctx, "u1")
	p, _ = f.members.Get("u1")
	assert.Equal(t, t0.Add(time.Minute), p.LastSeen)
}

func TestMemberService_Login(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, token := f.members.Login(ctx, "")
	assert.NotEmpty(t, token)
	assert.NotEqual(t, p.UserID, token)
	assert.Equal(t, "User_"+p.UserID[:8], p.Username)
	assert.Equal(t, t0, p.LoginTime)
	assert.Equal(t, 1, f.members.ActiveUsers())

	p, _ = f.members.Login(ctx, "bob")
	assert.Equal(t, "bob", p.Username)
}

func TestDeviceService_HeartbeatScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i, at := range []time.Duration{0, 10 * time.Second, 20 * time.Second} {
		f.clk.Set(t0.Add(at))
		d, ok := f.devices.Heartbeat(ctx, HeartbeatInput{DeviceID: "c1", UserID: "u1", HasFrame: true})
		require.True(t, ok)
		assert.Equal(t, int64(i+1), d.Frames)
		st, _ := f.devices.Status(ctx, "c1")
		assert.Equal(t, domain.DeviceActive, st)
	}

	f.clk.Set(t0.Add(55 * time.Second))
	st, ok := f.devices.Status(ctx, "c1")
	require.True(t, ok)
	assert.Equal(t, domain.DeviceInactive, st)
	assert.Zero(t, f.devices.ActiveDevices())

	f.clk.Set(t0.Add(625 * time.Second))
	res := f.sweeper.Sweep(f.clk.Now())
	assert.Equal(t, []string{"c1"}, res.Devices)
	_, ok = f.devices.Status(ctx, "c1")
	assert.False(t, ok)
	assert.Empty(t, f.devices.List())
}

func TestDeviceService_HeartbeatWithoutFrameIsDropped(t *testing.T) {
	f := newFixture()

	_, ok := f.devices.Heartbeat(context.Background(), HeartbeatInput{DeviceID: "c1", UserID: "u1"})
	assert.False(t, ok)
	assert.Empty(t, f.devices.List())
}

func TestDeviceService_GeneratesID(t *testing.T) {
	f := newFixture()

	d, ok := f.devices.Heartbeat(context.Background(), HeartbeatInput{UserID: "u1", HasFrame: true})
	require.True(t, ok)
	assert.Len(t, d.ID, 36)
}

type fakeRooms map[string][]string

func (f fakeRooms) Rooms() map[string][]string { return f }

func TestStatusService_Reports(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	status := NewStatusService(f.members, f.chat, f.devices, fakeRooms{"general": {"u1"}}, f.clk)

	f.members.JoinRoom(ctx, "general", "u1", "alice")
	_, _ = f.chat.Save(ctx, "general", "u1", "alice", "hi")
	_, _ = f.chat.Save(ctx, "quiet", "u2", "bob", "anyone?")
	f.devices.Heartbeat(ctx, HeartbeatInput{DeviceID: "c1", UserID: "u1", HasFrame: true})
	f.clk.Advance(40 * time.Second)
	f.devices.Heartbeat(ctx, HeartbeatInput{DeviceID: "c2", UserID: "u2", HasFrame: true})

	assert.Equal(t, Statistics{ActiveUsers: 1, ActiveCameras: 1, ActiveChats: 2, TotalMessages: 2}, status.Statistics(ctx))

	rooms := status.Rooms(ctx)
	require.Len(t, rooms, 2)
	assert.Equal(t, "general", rooms[0].RoomID)
	assert.Equal(t, []string{"u1"}, rooms[0].Users)
	assert.Equal(t, "quiet", rooms[1].RoomID)
	assert.Equal(t, []string{}, rooms[1].Users)
	assert.Equal(t, "anyone?", rooms[1].LastMessage)

	active, devices := status.Devices(ctx)
	assert.Equal(t, 1, active)
	require.Len(t, devices, 2)
	assert.Equal(t, domain.DeviceInactive, devices[0].Status)
	assert.Equal(t, domain.DeviceActive, devices[1].Status)
}
