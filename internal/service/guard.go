package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/push"
)

// DuplicateGuard - единая точка проверки и фиксации состояния дедупликации.
// Точка фиксации - вставка записи pending (Claim), а не предварительное чтение.
type DuplicateGuard struct {
	notifications NotificationRepository
	statuses      StatusRepository
	staleAfter    time.Duration
	now           func() time.Time
}

func NewDuplicateGuard(notifications NotificationRepository, statuses StatusRepository, staleAfter time.Duration, now func() time.Time) *DuplicateGuard {
	if now == nil {
		now = time.Now
	}
	return &DuplicateGuard{
		notifications: notifications,
		statuses:      statuses,
		staleAfter:    staleAfter,
		now:           now,
	}
}

// AlreadyProcessed - для инцидента уже записан статус processed=true
func (g *DuplicateGuard) AlreadyProcessed(ctx context.Context, incidentID string) (bool, error) {
	processed, err := g.statuses.IsProcessed(ctx, incidentID)
	if err != nil {
		return false, fmt.Errorf("guard: could not check incident status: %w", err)
	}
	return processed, nil
}

// AlreadyNotified - пользователь уже успешно уведомлён об инциденте
func (g *DuplicateGuard) AlreadyNotified(ctx context.Context, userID, incidentID string) (bool, error) {
	sent, err := g.notifications.HasSent(ctx, userID, incidentID)
	if err != nil {
		return false, fmt.Errorf("guard: could not check notification record: %w", err)
	}
	return sent, nil
}

// Claim резервирует пару (user, incident) перед отправкой.
// false означает, что пара уже отправлена или отправляется другим проходом.
func (g *DuplicateGuard) Claim(ctx context.Context, userID, incidentID string, distance float64) (*models.NotificationRecord, bool, error) {
	now := g.now()
	record := &models.NotificationRecord{
		ID:             uuid.New(),
		UserID:         userID,
		IncidentID:     incidentID,
		Outcome:        models.OutcomePending,
		DistanceMeters: distance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	claimed, err := g.notifications.Claim(ctx, record, g.staleAfter)
	if err != nil {
		return nil, false, fmt.Errorf("guard: could not claim notification: %w", err)
	}
	return record, claimed, nil
}

// MarkSent фиксирует успешную доставку
func (g *DuplicateGuard) MarkSent(ctx context.Context, record *models.NotificationRecord) error {
	record.Outcome = models.OutcomeSent
	record.UpdatedAt = g.now()
	if err := g.notifications.Complete(ctx, record); err != nil {
		return fmt.Errorf("guard: could not mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed фиксирует неудачную доставку и освобождает пару для будущих попыток
func (g *DuplicateGuard) MarkFailed(ctx context.Context, record *models.NotificationRecord, sendErr error) error {
	record.Outcome = models.OutcomeFailed
	record.Error = sendErr.Error()
	record.ErrorCode = push.ErrorCode(sendErr)
	record.UpdatedAt = g.now()
	if err := g.notifications.Complete(ctx, record); err != nil {
		return fmt.Errorf("guard: could not mark notification failed: %w", err)
	}
	return nil
}

// MarkProcessed записывает статус обработки инцидента
func (g *DuplicateGuard) MarkProcessed(ctx context.Context, status *models.IncidentProcessingStatus) error {
	status.ID = uuid.New()
	status.Processed = true
	status.ProcessedAt = g.now()
	if err := g.statuses.SaveStatus(ctx, status); err != nil {
		return fmt.Errorf("guard: could not save incident status: %w", err)
	}
	return nil
}
