package domain

import "time"

type Presence struct {
	UserID    string
	Username  string
	RoomID    string
	LoginTime time.Time // zero unless created by an HTTP login
	LastSeen  time.Time
}
