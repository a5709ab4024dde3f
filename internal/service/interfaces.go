package service

import (
	"context"
	"time"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/push"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// IncidentRepository определяет контракт чтения сводных инцидентов
type IncidentRepository interface {
	ListObservedSince(ctx context.Context, since time.Time) ([]*models.Incident, error)
}

// SubscriptionRepository определяет контракт для работы с подписками пользователей
type SubscriptionRepository interface {
	// FindByGeohashRange возвращает подписки с геохэшем в диапазоне [start, end)
	FindByGeohashRange(ctx context.Context, start, end string) ([]*models.UserSubscription, error)
	ClearDeviceToken(ctx context.Context, userID string) error
}

// NotificationRepository определяет контракт для записей об уведомлениях
type NotificationRepository interface {
	HasSent(ctx context.Context, userID, incidentID string) (bool, error)
	// Claim атомарно создаёт запись pending, если для пары нет записи pending/sent.
	// Запись pending старше staleAfter может быть перехвачена.
	Claim(ctx context.Context, record *models.NotificationRecord, staleAfter time.Duration) (bool, error)
	Complete(ctx context.Context, record *models.NotificationRecord) error
	CountSentSince(ctx context.Context, since time.Time) (int64, error)
}

// StatusRepository определяет контракт для статусов обработки инцидентов
type StatusRepository interface {
	IsProcessed(ctx context.Context, incidentID string) (bool, error)
	SaveStatus(ctx context.Context, status *models.IncidentProcessingStatus) error
	ListStatusesSince(ctx context.Context, since time.Time, limit int) ([]*models.IncidentProcessingStatus, error)
}

// PushSender - внешний сервис доставки push-уведомлений
type PushSender interface {
	Send(ctx context.Context, token string, msg *push.Message) error
}

// RunLocker защищает проход от параллельного запуска в нескольких процессах
type RunLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, key, token string) error
}

// HealthChecker проверяет доступность хранилища
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// NotificationService определяет контракт движка уведомлений об инцидентах
type NotificationService interface {
	RunNotificationPass(ctx context.Context, mode models.ScanMode) (*models.PassResult, error)
	GetStatus(ctx context.Context) (*models.ServiceStatus, error)
	Health(ctx context.Context) error
}
