package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/strafezone/portal/gameserver-service/internal/config"
	"github.com/strafezone/portal/gameserver-service/internal/models"
	"github.com/strafezone/portal/gameserver-service/internal/remote"
	"github.com/strafezone/portal/gameserver-service/internal/repository"
)

// Every instance runs on a fixed lease; expiry is enforced lazily by
// query filters and physically by the reaper.
const leaseDuration = 2 * time.Hour

// InstanceService owns the instance lifecycle: allocate, provision,
// read back, terminate.
type InstanceService struct {
	cfg          *config.Config
	allocator    *Allocator
	hosts        HostStore
	instances    InstanceStore
	lobbies      LobbyStore
	logs         AuditLog
	orchestrator remote.Orchestrator
	prober       *StatusProber
}

func NewInstanceService(
	cfg *config.Config,
	allocator *Allocator,
	hosts HostStore,
	instances InstanceStore,
	lobbies LobbyStore,
	logs AuditLog,
	orchestrator remote.Orchestrator,
	prober *StatusProber,
) *InstanceService {
	return &InstanceService{
		cfg:          cfg,
		allocator:    allocator,
		hosts:        hosts,
		instances:    instances,
		lobbies:      lobbies,
		logs:         logs,
		orchestrator: orchestrator,
		prober:       prober,
	}
}

// Create provisions a new instance for the owner: allocate host/port,
// allocate credential, spawn remotely, persist. A conditional-insert
// conflict (a concurrent request won the same port or credential) tears
// the fresh container down and retries allocation once.
func (s *InstanceService) Create(ctx context.Context, ownerSteamID string, req *models.CreateInstanceRequest) (*models.Instance, *models.Host, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	existing, err := s.instances.GetActiveByOwner(ctx, ownerSteamID)
	if err == nil && existing != nil {
		return nil, nil, ErrActiveInstance
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("check active instance: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		host, port, err := s.allocator.FindHostAndPort(ctx)
		if err != nil {
			return nil, nil, err
		}

		cred, err := s.allocator.FindCredential(ctx)
		if err != nil {
			return nil, nil, err
		}

		instanceID := uuid.New().String()
		adminSecret := uuid.New().String()

		opts := remote.SpawnOptions{
			InstanceID:     instanceID,
			ServerName:     fmt.Sprintf("strafezone #%s", shortID(instanceID)),
			Port:           port,
			AdminSecret:    adminSecret,
			Token:          cred.Token,
			ServerPassword: req.ServerPassword,
			GameMode:       req.GameMode,
			Map:            req.Map,
			AdminSteamIDs:  adminAllowlist(ownerSteamID, req.AdminSteamIDs),
		}

		containerID, err := s.orchestrator.Spawn(ctx, host, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("provision on %s: %w", host.Name, err)
		}

		inst := &models.Instance{
			ID:           instanceID,
			HostID:       host.ID,
			CredentialID: cred.ID,
			Port:         port,
			Status:       models.StatusInitializing,
			ContainerID:  containerID,
			AdminSecret:  adminSecret,
			OwnerSteamID: ownerSteamID,
			ExpiresAt:    time.Now().Add(leaseDuration),
		}
		if req.ServerPassword != "" {
			inst.ServerPassword = &req.ServerPassword
		}

		err = s.instances.Create(ctx, inst)
		if err == nil {
			s.logs.LogAction(ctx, instanceID, "provisioned", models.StatusInitializing,
				fmt.Sprintf("Spawned on %s:%d with credential %s", host.Name, port, cred.Name))
			log.Printf("[Instance] Provisioned %s for %s on %s:%d", instanceID, ownerSteamID, host.Name, port)
			return inst, host, nil
		}

		// The record never persisted; the container must not outlive it
		if teardownErr := s.orchestrator.Teardown(ctx, host, instanceID); teardownErr != nil {
			log.Printf("[Instance] Failed to tear down %s after insert failure: %v", instanceID, teardownErr)
		}

		if errors.Is(err, repository.ErrConflict) {
			log.Printf("[Instance] Allocation conflict on %s:%d, retrying", host.Name, port)
			continue
		}

		return nil, nil, fmt.Errorf("persist instance: %w", err)
	}

	return nil, nil, ErrNoCapacity
}

// Get returns the instance if it exists, is owned by the caller and has
// not expired. Ownership violations surface as not-found so instance
// IDs cannot be probed for existence.
func (s *InstanceService) Get(ctx context.Context, instanceID, ownerSteamID string) (*models.Instance, error) {
	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.OwnerSteamID != ownerSteamID || inst.Expired(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return inst, nil
}

// Describe returns the instance with its live status attached.
func (s *InstanceService) Describe(ctx context.Context, instanceID, ownerSteamID string) (*models.InstanceDetail, error) {
	inst, err := s.Get(ctx, instanceID, ownerSteamID)
	if err != nil {
		return nil, err
	}

	host, err := s.hosts.GetByID(ctx, inst.HostID)
	if err != nil {
		return nil, fmt.Errorf("load host: %w", err)
	}

	return &models.InstanceDetail{
		InstanceID: inst.ID,
		Host:       host.Address,
		Port:       inst.Port,
		ExpiresAt:  inst.ExpiresAt.Format(time.RFC3339),
		CreatedAt:  inst.CreatedAt.Format(time.RFC3339),
		Live:       s.prober.Probe(ctx, inst, host),
	}, nil
}

// Status probes an instance without an ownership check. Owner and
// secret fields never leave this method.
func (s *InstanceService) Status(ctx context.Context, instanceID string) (*models.LiveStatus, error) {
	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst.Expired(time.Now()) {
		return nil, repository.ErrNotFound
	}

	host, err := s.hosts.GetByID(ctx, inst.HostID)
	if err != nil {
		return nil, fmt.Errorf("load host: %w", err)
	}

	return s.prober.Probe(ctx, inst, host), nil
}

// Terminate validates ownership, tears the remote container down
// best-effort and always deletes the local record. Registry consistency
// wins over perfect remote hygiene.
func (s *InstanceService) Terminate(ctx context.Context, instanceID, ownerSteamID string) error {
	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return err
	}
	if inst.OwnerSteamID != ownerSteamID {
		return repository.ErrNotFound
	}

	return s.reclaim(ctx, inst, "user requested close")
}

// ListMine returns the caller's non-expired instances.
func (s *InstanceService) ListMine(ctx context.Context, ownerSteamID string) ([]*models.InstanceSummary, error) {
	instances, err := s.instances.ListActiveByOwner(ctx, ownerSteamID)
	if err != nil {
		return nil, err
	}

	hostsByID := map[string]*models.Host{}
	summaries := make([]*models.InstanceSummary, 0, len(instances))
	for _, inst := range instances {
		host, ok := hostsByID[inst.HostID]
		if !ok {
			host, err = s.hosts.GetByID(ctx, inst.HostID)
			if err != nil {
				return nil, fmt.Errorf("load host: %w", err)
			}
			hostsByID[inst.HostID] = host
		}

		summaries = append(summaries, &models.InstanceSummary{
			InstanceID: inst.ID,
			Host:       host.Address,
			Port:       inst.Port,
			Status:     inst.Status,
			ExpiresAt:  inst.ExpiresAt.Format(time.RFC3339),
		})
	}

	return summaries, nil
}

// CreateLobby binds a portal room to one of the owner's instances.
func (s *InstanceService) CreateLobby(ctx context.Context, req *models.CreateLobbyRequest) (*models.Lobby, error) {
	inst, err := s.Get(ctx, req.InstanceID, req.OwnerSteamID)
	if err != nil {
		return nil, err
	}

	lobby := &models.Lobby{
		ID:           uuid.New().String(),
		InstanceID:   inst.ID,
		Name:         req.Name,
		OwnerSteamID: req.OwnerSteamID,
	}
	if err := s.lobbies.Create(ctx, lobby); err != nil {
		return nil, fmt.Errorf("create lobby: %w", err)
	}

	return lobby, nil
}

// DeleteLobby removes the lobby and cascades to its bound instance.
func (s *InstanceService) DeleteLobby(ctx context.Context, lobbyID string) error {
	lobby, err := s.lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		return err
	}

	inst, err := s.instances.GetByID(ctx, lobby.InstanceID)
	if err == nil {
		if err := s.reclaim(ctx, inst, fmt.Sprintf("lobby %s closed", lobbyID)); err != nil {
			return err
		}
		// the instance delete cascades lobby rows
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return s.lobbies.Delete(ctx, lobbyID)
}

// reclaim is the shared teardown path: best-effort remote cleanup, then
// unconditional registry delete.
func (s *InstanceService) reclaim(ctx context.Context, inst *models.Instance, reason string) error {
	host, err := s.hosts.GetByID(ctx, inst.HostID)
	if err != nil {
		log.Printf("[Instance] Host %s gone for instance %s, skipping remote teardown", inst.HostID, inst.ID)
	} else if err := s.orchestrator.Teardown(ctx, host, inst.ID); err != nil {
		log.Printf("[Instance] Teardown of %s on %s failed (continuing): %v", inst.ID, host.Name, err)
	}

	if err := s.instances.Delete(ctx, inst.ID); err != nil {
		return fmt.Errorf("delete instance record: %w", err)
	}

	s.logs.LogAction(ctx, inst.ID, "terminated", "deleted", reason)
	log.Printf("[Instance] Reclaimed %s (%s)", inst.ID, reason)
	return nil
}

// adminAllowlist puts the owner first and dedupes the extra SteamIDs.
func adminAllowlist(ownerSteamID string, extra []string) []string {
	seen := map[string]struct{}{ownerSteamID: {}}
	out := []string{ownerSteamID}
	for _, id := range extra {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
