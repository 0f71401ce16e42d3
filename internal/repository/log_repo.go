package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strafezone/portal/gameserver-service/internal/models"
)

type LogRepository struct {
	pool *pgxpool.Pool
}

func NewLogRepository(pool *pgxpool.Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

// Create creates a new instance log entry
func (r *LogRepository) Create(ctx context.Context, logEntry *models.InstanceLog) error {
	if logEntry.ID == "" {
		logEntry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO gameservers.instance_logs (id, instance_id, action, status, message)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		logEntry.ID, logEntry.InstanceID, logEntry.Action, logEntry.Status, logEntry.Message,
	)
	if err != nil {
		return fmt.Errorf("insert instance log: %w", err)
	}

	return nil
}

// LogAction is a convenience wrapper; audit failures are logged, never fatal
func (r *LogRepository) LogAction(ctx context.Context, instanceID, action, status, message string) {
	entry := &models.InstanceLog{
		InstanceID: instanceID,
		Action:     action,
		Status:     status,
		Message:    message,
	}

	if err := r.Create(ctx, entry); err != nil {
		log.Printf("[LogRepo] Failed to write audit entry (%s/%s): %v", instanceID, action, err)
	}
}

// GetByInstanceID retrieves logs for an instance
func (r *LogRepository) GetByInstanceID(ctx context.Context, instanceID string, limit int) ([]*models.InstanceLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, instance_id, action, status, message, created_at
		FROM gameservers.instance_logs
		WHERE instance_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, instanceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query instance logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.InstanceLog
	for rows.Next() {
		entry := &models.InstanceLog{}
		err := rows.Scan(&entry.ID, &entry.InstanceID, &entry.Action, &entry.Status, &entry.Message, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}
