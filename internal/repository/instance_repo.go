package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strafezone/portal/gameserver-service/internal/models"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional insert loses against a
	// non-expired row holding the same owner, credential or (host, port).
	ErrConflict = errors.New("allocation conflict")
)

type InstanceRepository struct {
	pool *pgxpool.Pool
}

func NewInstanceRepository(pool *pgxpool.Pool) *InstanceRepository {
	return &InstanceRepository{pool: pool}
}

// Create persists a new instance. The insert is conditional on no
// non-expired row holding the same owner, credential or (host, port);
// a conflicting row turns the allocation race into ErrConflict instead
// of silent double-booking. An advisory lock serializes concurrent
// allocations so two requests cannot both pass the NOT EXISTS check.
func (r *InstanceRepository) Create(ctx context.Context, inst *models.Instance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('gameservers.instances'))`); err != nil {
		return fmt.Errorf("acquire allocation lock: %w", err)
	}

	query := `
		INSERT INTO gameservers.instances (
			id, host_id, credential_id, port, status, container_id,
			admin_secret, server_password, owner_steam_id, expires_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		WHERE NOT EXISTS (
			SELECT 1 FROM gameservers.instances
			WHERE expires_at > now()
			  AND (owner_steam_id = $9
			       OR credential_id = $3
			       OR (host_id = $2 AND port = $4))
		)
		RETURNING created_at
	`

	err = tx.QueryRow(ctx, query,
		inst.ID, inst.HostID, inst.CredentialID, inst.Port, inst.Status, inst.ContainerID,
		inst.AdminSecret, inst.ServerPassword, inst.OwnerSteamID, inst.ExpiresAt,
	).Scan(&inst.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConflict
		}
		return fmt.Errorf("insert instance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// GetByID retrieves an instance by ID, expired or not
func (r *InstanceRepository) GetByID(ctx context.Context, id string) (*models.Instance, error) {
	query := `
		SELECT id, host_id, credential_id, port, status, container_id,
		       admin_secret, server_password, owner_steam_id, created_at, expires_at
		FROM gameservers.instances
		WHERE id = $1
	`

	return r.scanInstance(r.pool.QueryRow(ctx, query, id))
}

// GetActiveByOwner retrieves the owner's non-expired instance, if any
func (r *InstanceRepository) GetActiveByOwner(ctx context.Context, ownerSteamID string) (*models.Instance, error) {
	query := `
		SELECT id, host_id, credential_id, port, status, container_id,
		       admin_secret, server_password, owner_steam_id, created_at, expires_at
		FROM gameservers.instances
		WHERE owner_steam_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanInstance(r.pool.QueryRow(ctx, query, ownerSteamID))
}

// ListActiveByOwner retrieves all non-expired instances owned by the caller
func (r *InstanceRepository) ListActiveByOwner(ctx context.Context, ownerSteamID string) ([]*models.Instance, error) {
	query := `
		SELECT id, host_id, credential_id, port, status, container_id,
		       admin_secret, server_password, owner_steam_id, created_at, expires_at
		FROM gameservers.instances
		WHERE owner_steam_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerSteamID)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()

	return r.scanInstances(rows)
}

// ListActivePortsByHost returns the ports held by non-expired instances
// on the given host, ascending.
func (r *InstanceRepository) ListActivePortsByHost(ctx context.Context, hostID string) ([]int, error) {
	query := `
		SELECT port FROM gameservers.instances
		WHERE host_id = $1 AND expires_at > now()
		ORDER BY port
	`

	rows, err := r.pool.Query(ctx, query, hostID)
	if err != nil {
		return nil, fmt.Errorf("query active ports: %w", err)
	}
	defer rows.Close()

	var ports []int
	for rows.Next() {
		var port int
		if err := rows.Scan(&port); err != nil {
			return nil, fmt.Errorf("scan port: %w", err)
		}
		ports = append(ports, port)
	}

	return ports, rows.Err()
}

// ListActiveCredentialIDs returns the credential IDs bound to non-expired instances
func (r *InstanceRepository) ListActiveCredentialIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT credential_id FROM gameservers.instances
		WHERE expires_at > now()
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query bound credentials: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan credential id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListExpired returns instances whose lease has ended but whose rows
// were never reclaimed. Consumed by the reaper sweep.
func (r *InstanceRepository) ListExpired(ctx context.Context) ([]*models.Instance, error) {
	query := `
		SELECT id, host_id, credential_id, port, status, container_id,
		       admin_secret, server_password, owner_steam_id, created_at, expires_at
		FROM gameservers.instances
		WHERE expires_at <= now()
		ORDER BY expires_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query expired instances: %w", err)
	}
	defer rows.Close()

	return r.scanInstances(rows)
}

// UpdateStatus updates only the cached status
func (r *InstanceRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE gameservers.instances SET status = $1 WHERE id = $2`
	_, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// Delete removes an instance row and any lobby referencing it
func (r *InstanceRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM gameservers.lobbies WHERE instance_id = $1`, id); err != nil {
		return fmt.Errorf("delete lobbies: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM gameservers.instances WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete instance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (r *InstanceRepository) scanInstance(row pgx.Row) (*models.Instance, error) {
	inst := &models.Instance{}
	err := row.Scan(
		&inst.ID, &inst.HostID, &inst.CredentialID, &inst.Port, &inst.Status, &inst.ContainerID,
		&inst.AdminSecret, &inst.ServerPassword, &inst.OwnerSteamID, &inst.CreatedAt, &inst.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan instance: %w", err)
	}
	return inst, nil
}

func (r *InstanceRepository) scanInstances(rows pgx.Rows) ([]*models.Instance, error) {
	var instances []*models.Instance
	for rows.Next() {
		inst := &models.Instance{}
		err := rows.Scan(
			&inst.ID, &inst.HostID, &inst.CredentialID, &inst.Port, &inst.Status, &inst.ContainerID,
			&inst.AdminSecret, &inst.ServerPassword, &inst.OwnerSteamID, &inst.CreatedAt, &inst.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan instance row: %w", err)
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}
