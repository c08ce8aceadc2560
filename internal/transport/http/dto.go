package http

import "time"

type IndexResponse struct {
	App       string            `json:"app"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type Statistics struct {
	ActiveUsers   int `json:"active_users"`
	ActiveCameras int `json:"active_cameras"`
	ActiveChats   int `json:"active_chats"`
	TotalMessages int `json:"total_messages"`
}

type StatusResponse struct {
	Status     string     `json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
	Statistics Statistics `json:"statistics"`
}

type LoginRequest struct {
	Username string `json:"username"`
}

type LoginResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type ChatItem struct {
	RoomID       string    `json:"room_id"`
	Users        []string  `json:"users"`
	LastMessage  string    `json:"last_message"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"message_count"`
}

type ChatsResponse struct {
	Chats []ChatItem `json:"chats"`
}

type ChatMessageItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

type ChatHistoryResponse struct {
	Items      []ChatMessageItem `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type CameraItem struct {
	StartTime  time.Time `json:"start_time"`
	LastActive time.Time `json:"last_active"`
	FPS        int64     `json:"fps"` // frame counter, named as clients expect
	Status     string    `json:"status"`
	UserID     string    `json:"user_id"`
}

type CameraStatusResponse struct {
	ActiveCameras int                   `json:"active_cameras"`
	Cameras       map[string]CameraItem `json:"cameras"`
}
