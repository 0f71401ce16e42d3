package service

import (
	"context"
	"sync"
	"time"

	"github.com/strafezone/portal/gameserver-service/internal/models"
	"github.com/strafezone/portal/gameserver-service/internal/query"
	"github.com/strafezone/portal/gameserver-service/internal/remote"
	"github.com/strafezone/portal/gameserver-service/internal/repository"
)

// memHostStore implements HostAdminStore over a slice.
type memHostStore struct {
	hosts []*models.Host
}

func (m *memHostStore) GetAll(_ context.Context) ([]*models.Host, error) {
	return m.hosts, nil
}

func (m *memHostStore) GetByID(_ context.Context, id string) (*models.Host, error) {
	for _, h := range m.hosts {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memHostStore) Create(_ context.Context, host *models.Host) error {
	m.hosts = append(m.hosts, host)
	return nil
}

func (m *memHostStore) Update(_ context.Context, host *models.Host) error {
	for i, h := range m.hosts {
		if h.ID == host.ID {
			m.hosts[i] = host
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memHostStore) Delete(_ context.Context, id string) error {
	for i, h := range m.hosts {
		if h.ID == id {
			m.hosts = append(m.hosts[:i], m.hosts[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// memCredentialStore implements CredentialAdminStore over a slice.
type memCredentialStore struct {
	creds []*models.Credential
}

func (m *memCredentialStore) GetActive(_ context.Context) ([]*models.Credential, error) {
	var active []*models.Credential
	for _, c := range m.creds {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *memCredentialStore) GetByID(_ context.Context, id string) (*models.Credential, error) {
	for _, c := range m.creds {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCredentialStore) GetAll(_ context.Context) ([]*models.Credential, error) {
	return m.creds, nil
}

func (m *memCredentialStore) Create(_ context.Context, cred *models.Credential) error {
	m.creds = append(m.creds, cred)
	return nil
}

func (m *memCredentialStore) SetActive(_ context.Context, id string, active bool) error {
	for _, c := range m.creds {
		if c.ID == id {
			c.Active = active
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memCredentialStore) Delete(_ context.Context, id string) error {
	for i, c := range m.creds {
		if c.ID == id {
			m.creds = append(m.creds[:i], m.creds[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// memInstanceStore implements InstanceStore with the same non-expired
// semantics as the pgx repository, including the conditional-insert
// conflict check.
type memInstanceStore struct {
	mu        sync.Mutex
	instances map[string]*models.Instance
	updates   []string // "<id>:<status>" in call order

	createErr        error // next Create fails with this, once
	activeByOwnerErr error // GetActiveByOwner fails with this
}

func newMemInstanceStore() *memInstanceStore {
	return &memInstanceStore{instances: make(map[string]*models.Instance)}
}

func (m *memInstanceStore) Create(_ context.Context, inst *models.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}

	now := time.Now()
	for _, other := range m.instances {
		if other.Expired(now) {
			continue
		}
		if other.OwnerSteamID == inst.OwnerSteamID ||
			other.CredentialID == inst.CredentialID ||
			(other.HostID == inst.HostID && other.Port == inst.Port) {
			return repository.ErrConflict
		}
	}

	inst.CreatedAt = now
	m.instances[inst.ID] = inst
	return nil
}

func (m *memInstanceStore) GetByID(_ context.Context, id string) (*models.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inst, ok := m.instances[id]; ok {
		return inst, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memInstanceStore) GetActiveByOwner(_ context.Context, owner string) (*models.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeByOwnerErr != nil {
		return nil, m.activeByOwnerErr
	}
	now := time.Now()
	for _, inst := range m.instances {
		if inst.OwnerSteamID == owner && !inst.Expired(now) {
			return inst, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memInstanceStore) ListActiveByOwner(_ context.Context, owner string) ([]*models.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*models.Instance
	for _, inst := range m.instances {
		if inst.OwnerSteamID == owner && !inst.Expired(now) {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (m *memInstanceStore) ListActivePortsByHost(_ context.Context, hostID string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var ports []int
	for _, inst := range m.instances {
		if inst.HostID == hostID && !inst.Expired(now) {
			ports = append(ports, inst.Port)
		}
	}
	return ports, nil
}

func (m *memInstanceStore) ListActiveCredentialIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var ids []string
	for _, inst := range m.instances {
		if !inst.Expired(now) {
			ids = append(ids, inst.CredentialID)
		}
	}
	return ids, nil
}

func (m *memInstanceStore) ListExpired(_ context.Context) ([]*models.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []*models.Instance
	for _, inst := range m.instances {
		if inst.Expired(now) {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (m *memInstanceStore) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return repository.ErrNotFound
	}
	inst.Status = status
	m.updates = append(m.updates, id+":"+status)
	return nil
}

func (m *memInstanceStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, id)
	return nil
}

// memLobbyStore implements LobbyStore over a map.
type memLobbyStore struct {
	lobbies map[string]*models.Lobby
}

func newMemLobbyStore() *memLobbyStore {
	return &memLobbyStore{lobbies: make(map[string]*models.Lobby)}
}

func (m *memLobbyStore) Create(_ context.Context, lobby *models.Lobby) error {
	m.lobbies[lobby.ID] = lobby
	return nil
}

func (m *memLobbyStore) GetByID(_ context.Context, id string) (*models.Lobby, error) {
	if lobby, ok := m.lobbies[id]; ok {
		return lobby, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memLobbyStore) Delete(_ context.Context, id string) error {
	delete(m.lobbies, id)
	return nil
}

// nopAudit discards audit entries and reads back nothing.
type nopAudit struct{}

func (nopAudit) LogAction(_ context.Context, _, _, _, _ string) {}

func (nopAudit) GetByInstanceID(_ context.Context, _ string, _ int) ([]*models.InstanceLog, error) {
	return nil, nil
}

// fakeOrchestrator records lifecycle calls.
type fakeOrchestrator struct {
	mu          sync.Mutex
	spawns      []remote.SpawnOptions
	teardowns   []string
	spawnErr    error
	teardownErr error
	validateErr error
}

func (f *fakeOrchestrator) Spawn(_ context.Context, _ *models.Host, opts remote.SpawnOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.spawnErr != nil {
		return "", f.spawnErr
	}
	f.spawns = append(f.spawns, opts)
	return "cs2-" + opts.InstanceID, nil
}

func (f *fakeOrchestrator) Teardown(_ context.Context, _ *models.Host, instanceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teardowns = append(f.teardowns, instanceID)
	return f.teardownErr
}

func (f *fakeOrchestrator) Validate(_ context.Context, _ *models.Host) error {
	return f.validateErr
}

// fakeQuerier returns a canned probe result.
type fakeQuerier struct {
	result *query.Result
	err    error
}

func (f *fakeQuerier) Query(_ context.Context, _ string, _ int, _ time.Duration) (*query.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
