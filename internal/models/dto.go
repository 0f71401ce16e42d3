package models

import (
	"fmt"
	"regexp"
)

// ==================== User API DTOs ====================

// CreateInstanceRequest is the body of POST /my/server
type CreateInstanceRequest struct {
	ServerPassword string   `json:"server_password,omitempty"`
	GameMode       string   `json:"game_mode,omitempty"` // competitive, wingman, deathmatch
	Map            string   `json:"map,omitempty"`
	AdminSteamIDs  []string `json:"admin_steam_ids,omitempty"`
}

// Game mode aliases the provisioner will render into a server config.
var gameModes = map[string]bool{
	"competitive": true,
	"wingman":     true,
	"deathmatch":  true,
}

// ValidGameMode reports whether mode is a known game mode alias.
func ValidGameMode(mode string) bool {
	return gameModes[mode]
}

var (
	mapNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	steamIDPattern = regexp.MustCompile(`^[0-9]{17}$`)
)

// Validate rejects request values before any remote or store
// interaction. Everything here ends up in files written to a remote
// host, so only known aliases and tight character sets pass.
func (r *CreateInstanceRequest) Validate() error {
	if r.GameMode != "" && !ValidGameMode(r.GameMode) {
		return fmt.Errorf("unknown game mode %q", r.GameMode)
	}
	if r.Map != "" && !mapNamePattern.MatchString(r.Map) {
		return fmt.Errorf("invalid map name %q", r.Map)
	}
	for _, id := range r.AdminSteamIDs {
		if id != "" && !steamIDPattern.MatchString(id) {
			return fmt.Errorf("invalid steam id %q", id)
		}
	}
	return nil
}

// CreateInstanceResponse is returned after a successful provisioning
type CreateInstanceResponse struct {
	InstanceID  string `json:"instance_id"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	AdminSecret string `json:"admin_secret"`
	ExpiresAt   string `json:"expires_at"`
}

// InstanceDetail is an instance combined with its live status
type InstanceDetail struct {
	InstanceID string      `json:"instance_id"`
	Host       string      `json:"host"`
	Port       int         `json:"port"`
	ExpiresAt  string      `json:"expires_at"`
	CreatedAt  string      `json:"created_at"`
	Live       *LiveStatus `json:"live"`
}

// InstanceSummary is one entry of GET /my/servers
type InstanceSummary struct {
	InstanceID string `json:"instance_id"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Status     string `json:"status"`
	ExpiresAt  string `json:"expires_at"`
}

// ==================== Admin API DTOs ====================

// HostRequest is the body for creating or updating a host
type HostRequest struct {
	Name           string `json:"name" binding:"required"`
	Address        string `json:"address" binding:"required"`
	SSHPort        int    `json:"ssh_port"`
	SSHUser        string `json:"ssh_user" binding:"required"`
	SSHPrivateKey  string `json:"ssh_private_key" binding:"required"`
	PortRangeStart int    `json:"port_range_start" binding:"required"`
	PortRangeEnd   int    `json:"port_range_end" binding:"required"`
	MaxInstances   int    `json:"max_instances" binding:"required"`
}

// HostInfo is a host as exposed to admins (no private key)
type HostInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	SSHPort        int    `json:"ssh_port"`
	SSHUser        string `json:"ssh_user"`
	PortRangeStart int    `json:"port_range_start"`
	PortRangeEnd   int    `json:"port_range_end"`
	MaxInstances   int    `json:"max_instances"`
	ActiveCount    int    `json:"active_count"`
}

// CredentialRequest is the body for registering a game license
type CredentialRequest struct {
	Name   string `json:"name" binding:"required"`
	Token  string `json:"token" binding:"required"`
	Active *bool  `json:"active,omitempty"`
}

// CredentialInfo is a credential as exposed to admins (token redacted)
type CredentialInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	InUse  bool   `json:"in_use"`
}

// ==================== Internal API DTOs ====================

// CreateLobbyRequest is sent by the portal when a room is opened
type CreateLobbyRequest struct {
	Name         string `json:"name" binding:"required"`
	OwnerSteamID string `json:"owner_steam_id" binding:"required"`
	InstanceID   string `json:"instance_id" binding:"required"`
}

// LobbyResponse describes a lobby and its bound instance
type LobbyResponse struct {
	LobbyID    string `json:"lobby_id"`
	Name       string `json:"name"`
	InstanceID string `json:"instance_id"`
}
