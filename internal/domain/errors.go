package domain

import "errors"

var (
	ErrInvalidPayload = errors.New("invalid event payload")
	ErrEmptyMessage   = errors.New("empty message")
	ErrMessageTooLong = errors.New("message too long")
	ErrSendQueueFull  = errors.New("send queue full")
	ErrConnClosed     = errors.New("connection closed")
)
