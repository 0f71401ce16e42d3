package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strafezone/portal/gameserver-service/internal/models"
)

type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

// Create registers a new game-license credential
func (r *CredentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO gameservers.credentials (id, name, token, active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		cred.ID, cred.Name, cred.Token, cred.Active,
	).Scan(&cred.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}

	return nil
}

// GetByID retrieves a credential by ID
func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	query := `
		SELECT id, name, token, active, created_at
		FROM gameservers.credentials
		WHERE id = $1
	`

	return r.scanCredential(r.pool.QueryRow(ctx, query, id))
}

// GetAll retrieves every registered credential
func (r *CredentialRepository) GetAll(ctx context.Context) ([]*models.Credential, error) {
	return r.list(ctx, `
		SELECT id, name, token, active, created_at
		FROM gameservers.credentials
		ORDER BY created_at
	`)
}

// GetActive retrieves active credentials in registration order. The
// allocator picks the first one not bound to a non-expired instance.
func (r *CredentialRepository) GetActive(ctx context.Context) ([]*models.Credential, error) {
	return r.list(ctx, `
		SELECT id, name, token, active, created_at
		FROM gameservers.credentials
		WHERE active = true
		ORDER BY created_at
	`)
}

// SetActive toggles a credential's active flag
func (r *CredentialRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE gameservers.credentials SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a credential
func (r *CredentialRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM gameservers.credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CredentialRepository) list(ctx context.Context, query string) ([]*models.Credential, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred := &models.Credential{}
		err := rows.Scan(&cred.ID, &cred.Name, &cred.Token, &cred.Active, &cred.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan credential row: %w", err)
		}
		creds = append(creds, cred)
	}

	return creds, rows.Err()
}

func (r *CredentialRepository) scanCredential(row pgx.Row) (*models.Credential, error) {
	cred := &models.Credential{}
	err := row.Scan(&cred.ID, &cred.Name, &cred.Token, &cred.Active, &cred.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	return cred, nil
}
