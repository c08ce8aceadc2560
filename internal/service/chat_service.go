package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cwrk-planet/presence-hub/internal/clock"
	"github.com/cwrk-planet/presence-hub/internal/domain"
	"github.com/cwrk-planet/presence-hub/internal/memory"

	"github.com/google/uuid"
)

const (
	DefaultReplayLimit   = 50
	DefaultMaxMessageLen = 4000
)

type ChatService struct {
	chatRepo *memory.ChatRepository
	clock    clock.Clock

	replayLimit int
	maxLen      int
}

func NewChatService(chatRepo *memory.ChatRepository, clk clock.Clock) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		clock:       clk,
		replayLimit: DefaultReplayLimit,
		maxLen:      DefaultMaxMessageLen,
	}
}

func (s *ChatService) SetReplayLimit(n int) {
	if n > 0 {
		s.replayLimit = n
	}
}

func (s *ChatService) SetMaxMessageLen(n int) {
	if n > 0 {
		s.maxLen = n
	}
}

// Save builds a text message and appends it to the room log.
func (s *ChatService) Save(ctx context.Context, roomID, userID, username, text string) (domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, domain.ErrEmptyMessage
	}
	if n := utf8.RuneCountInString(text); n > s.maxLen {
		return domain.ChatMessage{}, fmt.Errorf("%w: %d > %d", domain.ErrMessageTooLong, n, s.maxLen)
	}
	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		UserID:    userID,
		Username:  username,
		Text:      text,
		CreatedAt: s.clock.Now(),
		Type:      domain.MessageTypeText,
	}
	s.chatRepo.Append(msg)
	return msg, nil
}

// Replay returns the history a joining client receives.
func (s *ChatService) Replay(ctx context.Context, roomID string) []domain.ChatMessage {
	return s.chatRepo.RecentHistory(roomID, s.replayLimit)
}

func (s *ChatService) History(ctx context.Context, roomID, cursor string, limit int) ([]domain.ChatMessage, string, error) {
	return s.chatRepo.Page(roomID, cursor, limit)
}

func (s *ChatService) Summaries() []domain.RoomSummary {
	return s.chatRepo.Summaries()
}

// ActiveChats counts rooms that have a message log.
func (s *ChatService) ActiveChats() int {
	return s.chatRepo.RoomCount()
}

func (s *ChatService) TotalMessages() int {
	return s.chatRepo.TotalMessages()
}
