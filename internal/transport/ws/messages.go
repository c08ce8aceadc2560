package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/domain"
)

// Inbound events.
const (
	EventJoinChat     = "join_chat"
	EventSendMessage  = "send_message"
	EventCameraStream = "camera_stream"
)

// Outbound events.
const (
	EventChatHistory = "chat_history"
	EventUserJoined  = "user_joined"
	EventNewMessage  = "new_message"
	EventCameraAck   = "camera_ack"
)

const (
	defaultRoomID   = "general"
	defaultUsername = "Anonymous"
)

// Message is the wire envelope in both directions.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinChatPayload: user_id required; room_id and username default.
type JoinChatPayload struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (p *JoinChatPayload) normalize() error {
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidPayload)
	}
	if p.RoomID == "" {
		p.RoomID = defaultRoomID
	}
	if p.Username == "" {
		p.Username = defaultUsername
	}
	return nil
}

// SendMessagePayload: user_id and text required; room_id and username default.
type SendMessagePayload struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

func (p *SendMessagePayload) normalize() error {
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidPayload)
	}
	if p.Text == "" {
		return fmt.Errorf("%w: text is required", domain.ErrInvalidPayload)
	}
	if p.RoomID == "" {
		p.RoomID = defaultRoomID
	}
	if p.Username == "" {
		p.Username = defaultUsername
	}
	return nil
}

// CameraStreamPayload: user_id required, camera_id optional. A missing or
// empty frame is not an error; the heartbeat is just dropped.
type CameraStreamPayload struct {
	CameraID string          `json:"camera_id"`
	UserID   string          `json:"user_id"`
	Frame    json.RawMessage `json:"frame"`
}

func (p *CameraStreamPayload) normalize() error {
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidPayload)
	}
	return nil
}

// HasFrame treats null, false, 0, "", [] and {} as no frame.
func (p *CameraStreamPayload) HasFrame() bool {
	f := bytes.TrimSpace(p.Frame)
	switch string(f) {
	case "", "null", "false", "0", `""`, "[]", "{}":
		return false
	}
	if f[0] == '[' || f[0] == '{' {
		var v any
		if err := json.Unmarshal(f, &v); err == nil {
			switch t := v.(type) {
			case []any:
				return len(t) > 0
			case map[string]any:
				return len(t) > 0
			}
		}
	}
	return true
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: missing data", domain.ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return nil
}

type MessageItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

func toMessageItem(m domain.ChatMessage) MessageItem {
	return MessageItem{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		Text:      m.Text,
		Timestamp: m.CreatedAt,
		Type:      m.Type,
	}
}

type ChatHistoryPayload struct {
	Messages []MessageItem `json:"messages"`
}

type UserJoinedPayload struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

type CameraAckPayload struct {
	CameraID  string    `json:"camera_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
