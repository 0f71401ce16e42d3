package models

import (
	"fmt"
	"time"
)

// Host represents a VPS capable of running containerized game servers.
// The SSH credential is validated with a live connection attempt before
// the record is persisted or updated.
type Host struct {
	ID             string
	Name           string
	Address        string
	SSHPort        int
	SSHUser        string
	SSHPrivateKey  string
	PortRangeStart int
	PortRangeEnd   int
	MaxInstances   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the host fields before any remote or store interaction.
func (h *Host) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("host name required")
	}
	if h.Address == "" {
		return fmt.Errorf("host address required")
	}
	if h.SSHUser == "" {
		return fmt.Errorf("ssh user required")
	}
	if h.SSHPrivateKey == "" {
		return fmt.Errorf("ssh private key required")
	}
	if h.SSHPort <= 0 || h.SSHPort > 65535 {
		return fmt.Errorf("ssh port out of range: %d", h.SSHPort)
	}
	if h.PortRangeStart >= h.PortRangeEnd {
		return fmt.Errorf("port range start (%d) must be below port range end (%d)",
			h.PortRangeStart, h.PortRangeEnd)
	}
	if h.PortRangeStart <= 0 || h.PortRangeEnd > 65535 {
		return fmt.Errorf("port range [%d,%d] out of bounds", h.PortRangeStart, h.PortRangeEnd)
	}
	if h.MaxInstances <= 0 {
		return fmt.Errorf("max instances must be positive")
	}
	return nil
}
