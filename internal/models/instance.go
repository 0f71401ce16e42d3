package models

import "time"

// Instance status constants
const (
	StatusOnline       = "online"
	StatusOffline      = "offline"
	StatusInitializing = "initializing"
)

// Instance represents one provisioned, time-bounded game server. The row
// counts as active while expires_at is in the future; expired rows linger
// until the reaper physically reclaims them.
type Instance struct {
	ID             string
	HostID         string
	CredentialID   string
	Port           int
	Status         string
	ContainerID    string
	AdminSecret    string
	ServerPassword *string
	OwnerSteamID   string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the lease has ended as of now.
func (i *Instance) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

// LiveStatus is the result of an A2S probe against a running instance.
type LiveStatus struct {
	Status      string   `json:"status"`
	PlayerCount int      `json:"player_count"`
	MaxPlayers  int      `json:"max_players"`
	Map         string   `json:"map"`
	Name        string   `json:"name"`
	Players     []string `json:"players,omitempty"`
}

// InstanceLog represents an audit log entry for an instance
type InstanceLog struct {
	ID         string
	InstanceID string
	Action     string
	Status     string
	Message    string
	CreatedAt  time.Time
}
