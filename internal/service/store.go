package service

import (
	"context"

	"github.com/strafezone/portal/gameserver-service/internal/models"
	"github.com/strafezone/portal/gameserver-service/internal/repository"
)

// Store interfaces cover exactly what the services consume; the pgx
// repositories are the production implementations.

type HostStore interface {
	GetAll(ctx context.Context) ([]*models.Host, error)
	GetByID(ctx context.Context, id string) (*models.Host, error)
}

type CredentialStore interface {
	GetActive(ctx context.Context) ([]*models.Credential, error)
	GetByID(ctx context.Context, id string) (*models.Credential, error)
}

type InstanceStore interface {
	Create(ctx context.Context, inst *models.Instance) error
	GetByID(ctx context.Context, id string) (*models.Instance, error)
	GetActiveByOwner(ctx context.Context, ownerSteamID string) (*models.Instance, error)
	ListActiveByOwner(ctx context.Context, ownerSteamID string) ([]*models.Instance, error)
	ListActivePortsByHost(ctx context.Context, hostID string) ([]int, error)
	ListActiveCredentialIDs(ctx context.Context) ([]string, error)
	ListExpired(ctx context.Context) ([]*models.Instance, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type HostAdminStore interface {
	HostStore
	Create(ctx context.Context, host *models.Host) error
	Update(ctx context.Context, host *models.Host) error
	Delete(ctx context.Context, id string) error
}

type CredentialAdminStore interface {
	CredentialStore
	GetAll(ctx context.Context) ([]*models.Credential, error)
	Create(ctx context.Context, cred *models.Credential) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type LobbyStore interface {
	Create(ctx context.Context, lobby *models.Lobby) error
	GetByID(ctx context.Context, id string) (*models.Lobby, error)
	Delete(ctx context.Context, id string) error
}

type AuditLog interface {
	LogAction(ctx context.Context, instanceID, action, status, message string)
}

type AuditReader interface {
	GetByInstanceID(ctx context.Context, instanceID string, limit int) ([]*models.InstanceLog, error)
}

var (
	_ HostAdminStore       = (*repository.HostRepository)(nil)
	_ CredentialAdminStore = (*repository.CredentialRepository)(nil)
	_ InstanceStore        = (*repository.InstanceRepository)(nil)
	_ LobbyStore           = (*repository.LobbyRepository)(nil)
	_ AuditLog             = (*repository.LogRepository)(nil)
	_ AuditReader          = (*repository.LogRepository)(nil)
)
