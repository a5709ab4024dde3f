package repository

import (
	"context"
	"fmt"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

type SubscriptionRepository struct {
	db DB
}

func NewSubscriptionRepository(db DB) service.SubscriptionRepository {
	return &SubscriptionRepository{
		db: db,
	}
}

// FindByGeohashRange возвращает подписки, геохэш которых лежит в [start, end).
// Колонка geohash объявлена с COLLATE "C", поэтому сравнение побайтовое.
func (r *SubscriptionRepository) FindByGeohashRange(ctx context.Context, start, end string) ([]*models.UserSubscription, error) {
	query := `
		SELECT
			id,
			latitude,
			longitude,
			geohash,
			radius_km,
			categories,
			notifications_enabled,
			quiet_hours_start,
			quiet_hours_end,
			COALESCE(fcm_token, '')
		FROM user_subscriptions
		WHERE geohash >= $1 AND geohash < $2;
	`
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions by geohash: %w", err)
	}
	defer rows.Close()

	users := make([]*models.UserSubscription, 0)
	for rows.Next() {
		var (
			user                 models.UserSubscription
			lat, lng             *float64
			quietStart, quietEnd *string
		)
		err := rows.Scan(
			&user.ID,
			&lat,
			&lng,
			&user.Geohash,
			&user.RadiusKm,
			&user.Categories,
			&user.NotificationsEnabled,
			&quietStart,
			&quietEnd,
			&user.DeviceToken,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		user.Location = coordinates(lat, lng)
		if quietStart != nil && quietEnd != nil {
			user.QuietHours = &models.QuietHours{Start: *quietStart, End: *quietEnd}
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error subscription iteration: %w", err)
	}
	return users, nil
}

// ClearDeviceToken удаляет недействительный токен устройства пользователя
func (r *SubscriptionRepository) ClearDeviceToken(ctx context.Context, userID string) error {
	query := `
		UPDATE user_subscriptions SET
			fcm_token = NULL,
			updated_at = NOW()
		WHERE id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to clear device token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("subscription with id %s not found for token clear", userID)
	}
	return nil
}
