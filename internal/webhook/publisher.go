package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/incident_notifier/internal/models"
)

const (
	webhookQueueKey      = "incident_notifier:webhook_events"
	webhookDeadLetterKey = "incident_notifier:webhook_dead"
	deadLetterMaxLen     = 1000
)

// EventType - тип события о проходе рассылки
type EventType string

const (
	EventPassCompleted EventType = "pass_completed"
	EventPassFailed    EventType = "pass_failed"
)

// PassEvent - структура для данных вебхука
type PassEvent struct {
	ID        uuid.UUID          `json:"id"`
	Type      EventType          `json:"type"`
	Mode      models.ScanMode    `json:"mode"`
	Timestamp time.Time          `json:"timestamp"`
	Result    *models.PassResult `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// NewPassEvent собирает событие по итогам прохода
func NewPassEvent(mode models.ScanMode, result *models.PassResult, passErr error, now time.Time) PassEvent {
	event := PassEvent{
		ID:        uuid.New(),
		Type:      EventPassCompleted,
		Mode:      mode,
		Timestamp: now,
		Result:    result,
	}
	if passErr != nil {
		event.Type = EventPassFailed
		event.Error = passErr.Error()
	}
	return event
}

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event PassEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event PassEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH + BRPOP в воркере дают FIFO
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
