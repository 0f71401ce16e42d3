package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strafezone/portal/gameserver-service/internal/models"
)

type HostRepository struct {
	pool *pgxpool.Pool
}

func NewHostRepository(pool *pgxpool.Pool) *HostRepository {
	return &HostRepository{pool: pool}
}

// Create persists a new host
func (r *HostRepository) Create(ctx context.Context, host *models.Host) error {
	query := `
		INSERT INTO gameservers.hosts (
			id, name, address, ssh_port, ssh_user, ssh_private_key,
			port_range_start, port_range_end, max_instances
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		host.ID, host.Name, host.Address, host.SSHPort, host.SSHUser, host.SSHPrivateKey,
		host.PortRangeStart, host.PortRangeEnd, host.MaxInstances,
	).Scan(&host.CreatedAt, &host.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert host: %w", err)
	}

	return nil
}

// GetByID retrieves a host by ID
func (r *HostRepository) GetByID(ctx context.Context, id string) (*models.Host, error) {
	query := `
		SELECT id, name, address, ssh_port, ssh_user, ssh_private_key,
		       port_range_start, port_range_end, max_instances, created_at, updated_at
		FROM gameservers.hosts
		WHERE id = $1
	`

	return r.scanHost(r.pool.QueryRow(ctx, query, id))
}

// GetAll retrieves all registered hosts ordered by registration time.
// The allocator walks this list in order, so insertion order doubles as
// allocation preference.
func (r *HostRepository) GetAll(ctx context.Context) ([]*models.Host, error) {
	query := `
		SELECT id, name, address, ssh_port, ssh_user, ssh_private_key,
		       port_range_start, port_range_end, max_instances, created_at, updated_at
		FROM gameservers.hosts
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query hosts: %w", err)
	}
	defer rows.Close()

	var hosts []*models.Host
	for rows.Next() {
		host := &models.Host{}
		err := rows.Scan(
			&host.ID, &host.Name, &host.Address, &host.SSHPort, &host.SSHUser, &host.SSHPrivateKey,
			&host.PortRangeStart, &host.PortRangeEnd, &host.MaxInstances, &host.CreatedAt, &host.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan host row: %w", err)
		}
		hosts = append(hosts, host)
	}

	return hosts, rows.Err()
}

// Update updates a host
func (r *HostRepository) Update(ctx context.Context, host *models.Host) error {
	query := `
		UPDATE gameservers.hosts SET
			name = $1,
			address = $2,
			ssh_port = $3,
			ssh_user = $4,
			ssh_private_key = $5,
			port_range_start = $6,
			port_range_end = $7,
			max_instances = $8,
			updated_at = now()
		WHERE id = $9
	`

	tag, err := r.pool.Exec(ctx, query,
		host.Name, host.Address, host.SSHPort, host.SSHUser, host.SSHPrivateKey,
		host.PortRangeStart, host.PortRangeEnd, host.MaxInstances, host.ID,
	)
	if err != nil {
		return fmt.Errorf("update host: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a host
func (r *HostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM gameservers.hosts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete host: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *HostRepository) scanHost(row pgx.Row) (*models.Host, error) {
	host := &models.Host{}
	err := row.Scan(
		&host.ID, &host.Name, &host.Address, &host.SSHPort, &host.SSHUser, &host.SSHPrivateKey,
		&host.PortRangeStart, &host.PortRangeEnd, &host.MaxInstances, &host.CreatedAt, &host.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan host: %w", err)
	}
	return host, nil
}
