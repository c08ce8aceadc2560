package domain

import "time"

type DeviceStatus string

const (
	DeviceActive   DeviceStatus = "active"
	DeviceInactive DeviceStatus = "inactive"
)

type Device struct {
	ID         string
	UserID     string
	LastActive time.Time
	Frames     int64
	StartedAt  time.Time
}

// StatusAt derives liveness without mutating the record.
func (d Device) StatusAt(now time.Time, activeWindow time.Duration) DeviceStatus {
	if now.Sub(d.LastActive) < activeWindow {
		return DeviceActive
	}
	return DeviceInactive
}
