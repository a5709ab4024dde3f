package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

const claimExpiredCode = "ClaimExpired"

type NotificationRepository struct {
	db DB
}

func NewNotificationRepository(db DB) service.NotificationRepository {
	return &NotificationRepository{
		db: db,
	}
}

// HasSent проверяет наличие успешной записи для пары (user, incident)
func (r *NotificationRepository) HasSent(ctx context.Context, userID, incidentID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notification_records
			WHERE user_id = $1 AND incident_id = $2 AND outcome = 'sent'
		);
	`
	var sent bool
	if err := r.db.QueryRow(ctx, query, userID, incidentID).Scan(&sent); err != nil {
		return false, fmt.Errorf("failed to check notification record: %w", err)
	}
	return sent, nil
}

// Claim вставляет запись pending. Уникальный частичный индекс по (user_id, incident_id)
// для pending/sent гарантирует, что захват получит только один проход.
// Зависшая запись pending старше staleAfter переводится в failed и захват повторяется.
func (r *NotificationRepository) Claim(ctx context.Context, record *models.NotificationRecord, staleAfter time.Duration) (bool, error) {
	expire := `
		UPDATE notification_records SET
			outcome = 'failed',
			error = 'claim expired before completion',
			error_code = $3,
			updated_at = $4
		WHERE user_id = $1 AND incident_id = $2
			AND outcome = 'pending'
			AND updated_at < $5;
	`
	insert := `
		INSERT INTO notification_records
			(id, user_id, incident_id, outcome, distance_meters, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, incident_id) WHERE outcome IN ('pending', 'sent') DO NOTHING;
	`

	var claimed bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if staleAfter > 0 {
			_, err := tx.Exec(ctx, expire,
				record.UserID,
				record.IncidentID,
				claimExpiredCode,
				record.CreatedAt,
				record.CreatedAt.Add(-staleAfter),
			)
			if err != nil {
				return err
			}
		}

		cmdTag, err := tx.Exec(ctx, insert,
			record.ID,
			record.UserID,
			record.IncidentID,
			string(record.Outcome),
			record.DistanceMeters,
			record.CreatedAt,
			record.UpdatedAt,
		)
		if err != nil {
			return err
		}
		claimed = cmdTag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}
	return claimed, nil
}

// Complete переводит запись pending в итоговое состояние
func (r *NotificationRepository) Complete(ctx context.Context, record *models.NotificationRecord) error {
	query := `
		UPDATE notification_records SET
			outcome = $2,
			error = $3,
			error_code = $4,
			updated_at = $5
		WHERE id = $1 AND outcome = 'pending';
	`
	cmdTag, err := r.db.Exec(ctx, query,
		record.ID,
		string(record.Outcome),
		record.Error,
		record.ErrorCode,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to complete notification record: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("pending notification record %s not found", record.ID)
	}
	return nil
}

// CountSentSince возвращает количество успешных отправок начиная с since
func (r *NotificationRepository) CountSentSince(ctx context.Context, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM notification_records
		WHERE outcome = 'sent' AND created_at >= $1;
	`
	var count int64
	if err := r.db.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sent notifications: %w", err)
	}
	return count, nil
}
