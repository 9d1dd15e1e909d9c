package devices

import "time"

type DeviceView struct {
	ID         string     `json:"id" bun:"id"`
	Name       string     `json:"name" bun:"name"`
	Status     string     `json:"status" bun:"status"`
	LastSeenAt *time.Time `json:"lastSeenAt" bun:"last_seen_at"`
}

type CreateDeviceInput struct {
	Name string `json:"name"`
}

type UpdateDeviceInput struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
}
