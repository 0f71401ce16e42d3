package models

import "time"

// Lobby binds a human-facing room to an instance. Deleting the lobby
// cascades to tearing down its bound instance.
type Lobby struct {
	ID           string
	InstanceID   string
	Name         string
	OwnerSteamID string
	CreatedAt    time.Time
}
