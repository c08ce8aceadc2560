package domain

import "time"

const MessageTypeText = "text"

// ChatMessage is immutable once appended to a room log.
type ChatMessage struct {
	ID        string
	RoomID    string
	UserID    string
	Username  string
	Text      string
	CreatedAt time.Time
	Type      string
}

// RoomSummary describes a room that has at least one message.
type RoomSummary struct {
	RoomID       string
	LastMessage  string
	LastAt       time.Time
	MessageCount int
}
