package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/presence-hub/internal/clock"
	"github.com/cwrk-planet/presence-hub/internal/domain"
	"github.com/cwrk-planet/presence-hub/internal/service"
	"github.com/cwrk-planet/presence-hub/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type MemberSvc interface {
	JoinRoom(ctx context.Context, roomID, userID, username string) domain.Presence
	Touch(ctx context.Context, userID string)
}

type ChatSvc interface {
	Save(ctx context.Context, roomID, userID, username, text string) (domain.ChatMessage, error)
	Replay(ctx context.Context, roomID string) []domain.ChatMessage
}

type DeviceSvc interface {
	Heartbeat(ctx context.Context, in service.HeartbeatInput) (domain.Device, bool)
}

// IdentityResolver decides which user id an event acts as. The default
// trusts whatever the client asserts.
type IdentityResolver interface {
	Resolve(ctx context.Context, c Conn, claimedUserID string) (string, error)
}

type TrustClaims struct{}

func (TrustClaims) Resolve(_ context.Context, _ Conn, claimed string) (string, error) {
	return claimed, nil
}

// Gateway turns client events into store mutations and room broadcasts.
// It knows nothing about the socket itself, only the Conn handle.
type Gateway struct {
	hub       *Hub
	memberSvc MemberSvc
	chatSvc   ChatSvc
	deviceSvc DeviceSvc
	identity  IdentityResolver
	clock     clock.Clock
	tracer    trace.Tracer
}

func NewGateway(hub *Hub, member MemberSvc, chat ChatSvc, device DeviceSvc, clk clock.Clock) *Gateway {
	return &Gateway{
		hub:       hub,
		memberSvc: member,
		chatSvc:   chat,
		deviceSvc: device,
		identity:  TrustClaims{},
		clock:     clk,
		tracer:    otel.Tracer("github.com/cwrk-planet/presence-hub/ws"),
	}
}

func (g *Gateway) SetIdentityResolver(r IdentityResolver) {
	if r != nil {
		g.identity = r
	}
}

// Dispatch handles one raw frame from c. Bad input is logged and dropped;
// it never terminates the connection.
func (g *Gateway) Dispatch(ctx context.Context, c Conn, data []byte) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		slog.Debug("ws malformed frame", "conn", c.ID(), "err", err)
		return
	}

	ctx, span := g.tracer.Start(ctx, "ws."+in.Event,
		trace.WithAttributes(attribute.String("conn.id", c.ID())))
	defer span.End()

	var err error
	switch in.Event {
	case EventJoinChat:
		err = g.join(ctx, c, in.Data)
	case EventSendMessage:
		err = g.sendMessage(ctx, c, in.Data)
	case EventCameraStream:
		err = g.cameraStream(ctx, c, in.Data)
	default:
		return
	}
	if err == nil {
		return
	}

	attrs := append(logger.AttrsFromCtx(ctx),
		slog.String("event", in.Event),
		slog.String("conn", c.ID()),
		slog.Any("err", err))
	level := slog.LevelWarn
	if errors.Is(err, domain.ErrInvalidPayload) || errors.Is(err, domain.ErrEmptyMessage) {
		level = slog.LevelDebug
	}
	slog.LogAttrs(ctx, level, "ws event dropped", attrs...)
}

// Disconnect removes c from every room. No event is emitted.
func (g *Gateway) Disconnect(c Conn) {
	g.hub.Leave(c)
}

func (g *Gateway) join(ctx context.Context, c Conn, raw json.RawMessage) error {
	var p JoinChatPayload
	if err := decodePayload(raw, &p); err != nil {
		return err
	}
	if err := p.normalize(); err != nil {
		return err
	}
	userID, err := g.identity.Resolve(ctx, c, p.UserID)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}

	g.hub.Join(p.RoomID, c, userID)
	g.memberSvc.JoinRoom(ctx, p.RoomID, userID, p.Username)

	history := g.chatSvc.Replay(ctx, p.RoomID)
	items := make([]MessageItem, 0, len(history))
	for _, m := range history {
		items = append(items, toMessageItem(m))
	}
	if err := c.Send(Message{Event: EventChatHistory, Data: ChatHistoryPayload{Messages: items}}); err != nil {
		slog.Warn("ws send history failed", "room", p.RoomID, "conn", c.ID(), "err", err)
	}

	g.hub.Emit(p.RoomID, Message{
		Event: EventUserJoined,
		Data: UserJoinedPayload{
			UserID:    userID,
			Username:  p.Username,
			Timestamp: g.clock.Now(),
		},
	}, c)
	return nil
}

func (g *Gateway) sendMessage(ctx context.Context, c Conn, raw json.RawMessage) error {
	var p SendMessagePayload
	if err := decodePayload(raw, &p); err != nil {
		return err
	}
	if err := p.normalize(); err != nil {
		return err
	}
	userID, err := g.identity.Resolve(ctx, c, p.UserID)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}

	msg, err := g.chatSvc.Save(ctx, p.RoomID, userID, p.Username, p.Text)
	if err != nil {
		return fmt.Errorf("chat save: %w", err)
	}
	g.memberSvc.Touch(ctx, userID)

	g.hub.Emit(p.RoomID, Message{Event: EventNewMessage, Data: toMessageItem(msg)}, nil)
	return nil
}

func (g *Gateway) cameraStream(ctx context.Context, c Conn, raw json.RawMessage) error {
	var p CameraStreamPayload
	if err := decodePayload(raw, &p); err != nil {
		return err
	}
	if err := p.normalize(); err != nil {
		return err
	}
	userID, err := g.identity.Resolve(ctx, c, p.UserID)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}

	d, ok := g.deviceSvc.Heartbeat(ctx, service.HeartbeatInput{
		DeviceID: p.CameraID,
		UserID:   userID,
		HasFrame: p.HasFrame(),
	})
	if !ok {
		return nil
	}

	return c.Send(Message{
		Event: EventCameraAck,
		Data: CameraAckPayload{
			CameraID:  d.ID,
			Status:    "received",
			Timestamp: g.clock.Now(),
		},
	})
}
