package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_notifier/internal/metrics"
	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/push"
)

// DeliveryStatus - итог доставки одному получателю
type DeliveryStatus string

const (
	DeliverySent DeliveryStatus = "sent"
	// DeliveryFailed - внешний сервис отказал, запись failed сохранена
	DeliveryFailed DeliveryStatus = "failed"
	// DeliveryDuplicate - пара уже отправлена или захвачена другим проходом
	DeliveryDuplicate DeliveryStatus = "duplicate"
	// DeliveryError - отправка не состоялась из-за ошибки хранилища
	DeliveryError DeliveryStatus = "error"
)

// Recipient - подходящий пользователь с вычисленным расстоянием
type Recipient struct {
	User           *models.UserSubscription
	DistanceMeters float64
}

// Delivery - результат обработки одного получателя
type Delivery struct {
	UserID       string
	Status       DeliveryStatus
	TokenCleared bool
	Err          error
}

// Dispatcher рассылает уведомления пачками фиксированного размера.
// Внутри пачки отправки идут параллельно, между пачками выдерживается пауза.
type Dispatcher struct {
	sender        PushSender
	guard         *DuplicateGuard
	subscriptions SubscriptionRepository
	batchSize     int
	pause         time.Duration
	link          string
	now           func() time.Time
	logger        *logrus.Logger
}

func NewDispatcher(sender PushSender, guard *DuplicateGuard, subscriptions SubscriptionRepository, batchSize int, pause time.Duration, link string, logger *logrus.Logger) *Dispatcher {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Dispatcher{
		sender:        sender,
		guard:         guard,
		subscriptions: subscriptions,
		batchSize:     batchSize,
		pause:         pause,
		link:          link,
		now:           time.Now,
		logger:        logger,
	}
}

// Dispatch доставляет уведомление всем получателям.
// Возвращает результаты в порядке получателей; при отмене контекста между пачками
// оставшиеся получатели не обрабатываются и в результат не попадают.
func (d *Dispatcher) Dispatch(ctx context.Context, incident *models.Incident, recipients []Recipient) []Delivery {
	deliveries := make([]Delivery, len(recipients))
	done := 0

	for start := 0; start < len(recipients); start += d.batchSize {
		if start > 0 && !d.wait(ctx) {
			d.logger.WithFields(logrus.Fields{
				"incident_id": incident.ID,
				"dispatched":  done,
				"remaining":   len(recipients) - done,
			}).Warn("Dispatch interrupted between batches")
			break
		}

		end := min(start+d.batchSize, len(recipients))
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				deliveries[i] = d.deliver(ctx, incident, recipients[i])
			}()
		}
		wg.Wait()
		done = end
	}

	return deliveries[:done]
}

// deliver захватывает пару, отправляет сообщение и фиксирует результат.
// Запись о доставке сохраняется до возврата.
func (d *Dispatcher) deliver(ctx context.Context, incident *models.Incident, r Recipient) Delivery {
	user := r.User
	log := d.logger.WithFields(logrus.Fields{
		"incident_id": incident.ID,
		"user_id":     user.ID,
	})
	result := Delivery{UserID: user.ID}

	record, claimed, err := d.guard.Claim(ctx, user.ID, incident.ID, r.DistanceMeters)
	if err != nil {
		log.WithError(err).Error("Failed to claim notification")
		metrics.Notifications.WithLabelValues(string(DeliveryError)).Inc()
		result.Status = DeliveryError
		result.Err = err
		return result
	}
	if !claimed {
		log.Debug("Notification already sent or in flight, skipping")
		metrics.Notifications.WithLabelValues(string(DeliveryDuplicate)).Inc()
		result.Status = DeliveryDuplicate
		return result
	}

	msg := BuildMessage(incident, r.DistanceMeters, d.link, d.now())
	sendErr := d.sender.Send(ctx, user.DeviceToken, msg)
	if sendErr == nil {
		if err := d.guard.MarkSent(ctx, record); err != nil {
			// запись остаётся pending и блокирует повтор до истечения срока захвата
			log.WithError(err).Error("Notification sent but record was not completed")
		}
		metrics.Notifications.WithLabelValues(string(DeliverySent)).Inc()
		result.Status = DeliverySent
		return result
	}

	log = log.WithError(sendErr).WithField("error_code", push.ErrorCode(sendErr))
	result.Status = DeliveryFailed
	result.Err = sendErr

	if push.IsPermanent(sendErr) {
		if err := d.subscriptions.ClearDeviceToken(ctx, user.ID); err != nil {
			log.WithField("clear_error", err.Error()).Error("Failed to clear invalid device token")
		} else {
			result.TokenCleared = true
			metrics.TokensCleared.Inc()
			log.Info("Cleared invalid device token")
		}
	}
	if err := d.guard.MarkFailed(ctx, record, sendErr); err != nil {
		log.WithField("record_error", err.Error()).Error("Failed to record failed notification")
	}

	log.Warn("Push delivery failed")
	metrics.Notifications.WithLabelValues(string(DeliveryFailed)).Inc()
	return result
}

func (d *Dispatcher) wait(ctx context.Context) bool {
	if d.pause <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
