package service

import (
	"context"
	"fmt"
	"log"

	"github.com/strafezone/portal/gameserver-service/internal/models"
)

// Allocator selects a host, port and game license for a new instance.
// It only computes the negative sets at call time; the conditional
// insert in the instance store is what makes the result stick.
type Allocator struct {
	hosts       HostStore
	credentials CredentialStore
	instances   InstanceStore
}

func NewAllocator(hosts HostStore, credentials CredentialStore, instances InstanceStore) *Allocator {
	return &Allocator{
		hosts:       hosts,
		credentials: credentials,
		instances:   instances,
	}
}

// FindHostAndPort walks registered hosts in order, skipping any at its
// instance limit, and returns the first host with the lowest free port
// in its reserved range. First-fit, ascending scan.
func (a *Allocator) FindHostAndPort(ctx context.Context) (*models.Host, int, error) {
	hosts, err := a.hosts.GetAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list hosts: %w", err)
	}

	for _, host := range hosts {
		ports, err := a.instances.ListActivePortsByHost(ctx, host.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("list active ports for %s: %w", host.Name, err)
		}

		if len(ports) >= host.MaxInstances {
			continue
		}

		taken := make(map[int]struct{}, len(ports))
		for _, p := range ports {
			taken[p] = struct{}{}
		}

		for port := host.PortRangeStart; port <= host.PortRangeEnd; port++ {
			if _, held := taken[port]; !held {
				return host, port, nil
			}
		}
	}

	log.Printf("[Allocator] No host has spare capacity (%d hosts checked)", len(hosts))
	return nil, 0, ErrNoCapacity
}

// FindCredential returns the first active credential not bound to a
// non-expired instance.
func (a *Allocator) FindCredential(ctx context.Context) (*models.Credential, error) {
	creds, err := a.credentials.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active credentials: %w", err)
	}

	boundIDs, err := a.instances.ListActiveCredentialIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bound credentials: %w", err)
	}

	bound := make(map[string]struct{}, len(boundIDs))
	for _, id := range boundIDs {
		bound[id] = struct{}{}
	}

	for _, cred := range creds {
		if _, held := bound[cred.ID]; !held {
			return cred, nil
		}
	}

	log.Printf("[Allocator] All %d active credentials are bound", len(creds))
	return nil, ErrNoCredential
}
