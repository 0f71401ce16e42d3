package models

import "time"

// Credential is one entry of the game-license (GSLT) pool. At most one
// non-expired instance may hold a credential at a time; exclusivity is
// enforced by the allocator's negative-set query plus the conditional
// insert in the instance repository.
type Credential struct {
	ID        string
	Name      string
	Token     string
	Active    bool
	CreatedAt time.Time
}
