package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

type StatusRepository struct {
	db DB
}

func NewStatusRepository(db DB) service.StatusRepository {
	return &StatusRepository{
		db: db,
	}
}

// IsProcessed проверяет, записан ли для инцидента статус processed
func (r *StatusRepository) IsProcessed(ctx context.Context, incidentID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM incident_processing_status
			WHERE incident_id = $1 AND processed
		);
	`
	var processed bool
	if err := r.db.QueryRow(ctx, query, incidentID).Scan(&processed); err != nil {
		return false, fmt.Errorf("failed to check incident status: %w", err)
	}
	return processed, nil
}

// SaveStatus записывает статус обработки; повторная запись перезаписывает прежнюю
func (r *StatusRepository) SaveStatus(ctx context.Context, status *models.IncidentProcessingStatus) error {
	query := `
		INSERT INTO incident_processing_status (
			id, incident_id, processed, success, error,
			users_in_area, users_eligible, users_notified,
			location, categories, processed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (incident_id) DO UPDATE SET
			processed = EXCLUDED.processed,
			success = EXCLUDED.success,
			error = EXCLUDED.error,
			users_in_area = EXCLUDED.users_in_area,
			users_eligible = EXCLUDED.users_eligible,
			users_notified = EXCLUDED.users_notified,
			location = EXCLUDED.location,
			categories = EXCLUDED.categories,
			processed_at = EXCLUDED.processed_at;
	`
	categories := status.Categories
	if categories == nil {
		categories = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		status.ID,
		status.IncidentID,
		status.Processed,
		status.Success,
		status.Error,
		status.UsersInArea,
		status.UsersEligible,
		status.UsersNotified,
		status.Location,
		categories,
		status.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save incident status: %w", err)
	}
	return nil
}

// ListStatusesSince возвращает последние статусы, новые первыми.
// limit <= 0 снимает ограничение.
func (r *StatusRepository) ListStatusesSince(ctx context.Context, since time.Time, limit int) ([]*models.IncidentProcessingStatus, error) {
	query := `
		SELECT
			id,
			incident_id,
			processed,
			success,
			error,
			users_in_area,
			users_eligible,
			users_notified,
			location,
			categories,
			processed_at
		FROM incident_processing_status
		WHERE processed_at >= $1
		ORDER BY processed_at DESC
		LIMIT $2;
	`
	var limitArg any // NULL в LIMIT означает без ограничения
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.db.Query(ctx, query, since, limitArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list incident statuses: %w", err)
	}
	defer rows.Close()

	statuses := make([]*models.IncidentProcessingStatus, 0)
	for rows.Next() {
		status := &models.IncidentProcessingStatus{}
		err := rows.Scan(
			&status.ID,
			&status.IncidentID,
			&status.Processed,
			&status.Success,
			&status.Error,
			&status.UsersInArea,
			&status.UsersEligible,
			&status.UsersNotified,
			&status.Location,
			&status.Categories,
			&status.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident status row: %w", err)
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error status iteration: %w", err)
	}
	return statuses, nil
}
