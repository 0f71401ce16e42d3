package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/strafezone/portal/gameserver-service/internal/models"
	"github.com/strafezone/portal/gameserver-service/internal/remote"
)

// AdminService manages the long-lived, administrator-owned records:
// hosts and game-license credentials.
type AdminService struct {
	hosts        HostAdminStore
	credentials  CredentialAdminStore
	instances    InstanceStore
	logs         AuditReader
	orchestrator remote.Orchestrator
}

func NewAdminService(hosts HostAdminStore, credentials CredentialAdminStore, instances InstanceStore, logs AuditReader, orchestrator remote.Orchestrator) *AdminService {
	return &AdminService{
		hosts:        hosts,
		credentials:  credentials,
		instances:    instances,
		logs:         logs,
		orchestrator: orchestrator,
	}
}

// CreateHost validates the request and the SSH credential against a
// live connection before anything is persisted.
func (s *AdminService) CreateHost(ctx context.Context, req *models.HostRequest) (*models.Host, error) {
	host := hostFromRequest(uuid.New().String(), req)
	if err := host.Validate(); err != nil {
		return nil, err
	}

	if err := s.orchestrator.Validate(ctx, host); err != nil {
		return nil, fmt.Errorf("ssh validation: %w", err)
	}

	if err := s.hosts.Create(ctx, host); err != nil {
		return nil, err
	}

	log.Printf("[Admin] Registered host %s (%s), ports [%d,%d], max %d instances",
		host.Name, host.Address, host.PortRangeStart, host.PortRangeEnd, host.MaxInstances)
	return host, nil
}

// UpdateHost re-validates fields and the SSH credential, then persists.
func (s *AdminService) UpdateHost(ctx context.Context, id string, req *models.HostRequest) (*models.Host, error) {
	if _, err := s.hosts.GetByID(ctx, id); err != nil {
		return nil, err
	}

	host := hostFromRequest(id, req)
	if err := host.Validate(); err != nil {
		return nil, err
	}

	if err := s.orchestrator.Validate(ctx, host); err != nil {
		return nil, fmt.Errorf("ssh validation: %w", err)
	}

	if err := s.hosts.Update(ctx, host); err != nil {
		return nil, err
	}

	return host, nil
}

// DeleteHost refuses while the host still backs active instances.
func (s *AdminService) DeleteHost(ctx context.Context, id string) error {
	ports, err := s.instances.ListActivePortsByHost(ctx, id)
	if err != nil {
		return err
	}
	if len(ports) > 0 {
		return ErrInUse
	}

	return s.hosts.Delete(ctx, id)
}

// ListHosts returns hosts with their live instance counts, private keys
// stripped.
func (s *AdminService) ListHosts(ctx context.Context) ([]*models.HostInfo, error) {
	hosts, err := s.hosts.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*models.HostInfo, 0, len(hosts))
	for _, host := range hosts {
		ports, err := s.instances.ListActivePortsByHost(ctx, host.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, &models.HostInfo{
			ID:             host.ID,
			Name:           host.Name,
			Address:        host.Address,
			SSHPort:        host.SSHPort,
			SSHUser:        host.SSHUser,
			PortRangeStart: host.PortRangeStart,
			PortRangeEnd:   host.PortRangeEnd,
			MaxInstances:   host.MaxInstances,
			ActiveCount:    len(ports),
		})
	}

	return infos, nil
}

// CreateCredential registers a new game license.
func (s *AdminService) CreateCredential(ctx context.Context, req *models.CredentialRequest) (*models.Credential, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	cred := &models.Credential{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Token:  req.Token,
		Active: active,
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return nil, err
	}

	log.Printf("[Admin] Registered credential %s (active=%v)", cred.Name, cred.Active)
	return cred, nil
}

// ListCredentials returns all credentials with tokens redacted and an
// in-use marker.
func (s *AdminService) ListCredentials(ctx context.Context) ([]*models.CredentialInfo, error) {
	creds, err := s.credentials.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	boundIDs, err := s.instances.ListActiveCredentialIDs(ctx)
	if err != nil {
		return nil, err
	}
	bound := make(map[string]struct{}, len(boundIDs))
	for _, id := range boundIDs {
		bound[id] = struct{}{}
	}

	infos := make([]*models.CredentialInfo, 0, len(creds))
	for _, cred := range creds {
		_, inUse := bound[cred.ID]
		infos = append(infos, &models.CredentialInfo{
			ID:     cred.ID,
			Name:   cred.Name,
			Active: cred.Active,
			InUse:  inUse,
		})
	}

	return infos, nil
}

// SetCredentialActive toggles a credential. Deactivation does not touch
// a running instance; the credential just stops being allocatable.
func (s *AdminService) SetCredentialActive(ctx context.Context, id string, active bool) error {
	return s.credentials.SetActive(ctx, id, active)
}

// InstanceLogs returns the audit trail for an instance, newest first.
// Works for reclaimed instances too; log rows outlive the instance row.
func (s *AdminService) InstanceLogs(ctx context.Context, instanceID string, limit int) ([]*models.InstanceLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.logs.GetByInstanceID(ctx, instanceID, limit)
}

// DeleteCredential refuses while the credential backs an active instance.
func (s *AdminService) DeleteCredential(ctx context.Context, id string) error {
	boundIDs, err := s.instances.ListActiveCredentialIDs(ctx)
	if err != nil {
		return err
	}
	for _, bound := range boundIDs {
		if bound == id {
			return ErrInUse
		}
	}

	return s.credentials.Delete(ctx, id)
}

func hostFromRequest(id string, req *models.HostRequest) *models.Host {
	sshPort := req.SSHPort
	if sshPort == 0 {
		sshPort = 22
	}

	return &models.Host{
		ID:             id,
		Name:           req.Name,
		Address:        req.Address,
		SSHPort:        sshPort,
		SSHUser:        req.SSHUser,
		SSHPrivateKey:  req.SSHPrivateKey,
		PortRangeStart: req.PortRangeStart,
		PortRangeEnd:   req.PortRangeEnd,
		MaxInstances:   req.MaxInstances,
	}
}
