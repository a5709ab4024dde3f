package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

// CachedStatusRepository кеширует в Redis факт обработки инцидента.
// Статус processed не снимается, поэтому положительный ответ можно кешировать без инвалидации.
type CachedStatusRepository struct {
	next        service.StatusRepository
	redisClient *redis.Client
	ttl         time.Duration
}

func NewCachedStatusRepository(next service.StatusRepository, client *redis.Client, ttl time.Duration) service.StatusRepository {
	return &CachedStatusRepository{
		next:        next,
		redisClient: client,
		ttl:         ttl,
	}
}

func processedKey(incidentID string) string {
	return fmt.Sprintf("incident_notifier:processed:%s", incidentID)
}

// IsProcessed сначала проверяет кеш, при промахе идёт в хранилище
func (r *CachedStatusRepository) IsProcessed(ctx context.Context, incidentID string) (bool, error) {
	err := r.redisClient.Get(ctx, processedKey(incidentID)).Err()
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, redis.Nil) {
		// Недоступный кеш не должен останавливать проход
		return r.next.IsProcessed(ctx, incidentID)
	}

	processed, err := r.next.IsProcessed(ctx, incidentID)
	if err != nil {
		return false, err
	}
	if processed {
		r.remember(ctx, incidentID)
	}
	return processed, nil
}

// SaveStatus сохраняет статус в хранилище и помечает инцидент в кеше
func (r *CachedStatusRepository) SaveStatus(ctx context.Context, status *models.IncidentProcessingStatus) error {
	if err := r.next.SaveStatus(ctx, status); err != nil {
		return err
	}
	if status.Processed {
		r.remember(ctx, status.IncidentID)
	}
	return nil
}

func (r *CachedStatusRepository) ListStatusesSince(ctx context.Context, since time.Time, limit int) ([]*models.IncidentProcessingStatus, error) {
	return r.next.ListStatusesSince(ctx, since, limit)
}

func (r *CachedStatusRepository) remember(ctx context.Context, incidentID string) {
	// ошибка записи в кеш не влияет на результат: источник истины - хранилище
	_ = r.redisClient.Set(ctx, processedKey(incidentID), "1", r.ttl).Err()
}
