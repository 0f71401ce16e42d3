package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strafezone/portal/gameserver-service/internal/models"
)

type LobbyRepository struct {
	pool *pgxpool.Pool
}

func NewLobbyRepository(pool *pgxpool.Pool) *LobbyRepository {
	return &LobbyRepository{pool: pool}
}

// Create persists a new lobby bound to an instance
func (r *LobbyRepository) Create(ctx context.Context, lobby *models.Lobby) error {
	query := `
		INSERT INTO gameservers.lobbies (id, instance_id, name, owner_steam_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		lobby.ID, lobby.InstanceID, lobby.Name, lobby.OwnerSteamID,
	).Scan(&lobby.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lobby: %w", err)
	}

	return nil
}

// GetByID retrieves a lobby by ID
func (r *LobbyRepository) GetByID(ctx context.Context, id string) (*models.Lobby, error) {
	query := `
		SELECT id, instance_id, name, owner_steam_id, created_at
		FROM gameservers.lobbies
		WHERE id = $1
	`

	lobby := &models.Lobby{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&lobby.ID, &lobby.InstanceID, &lobby.Name, &lobby.OwnerSteamID, &lobby.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan lobby: %w", err)
	}

	return lobby, nil
}

// Delete removes a lobby
func (r *LobbyRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM gameservers.lobbies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lobby: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
