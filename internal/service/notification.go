package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_notifier/internal/config"
	"github.com/shenikar/incident_notifier/internal/eligibility"
	"github.com/shenikar/incident_notifier/internal/metrics"
	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/webhook"
)

const (
	runLockKey   = "incident_notifier:pass_lock"
	statusWindow = 24 * time.Hour
	statusLimit  = 50
)

var (
	// ErrPassInProgress - другой проход уже держит блокировку
	ErrPassInProgress = errors.New("notification pass already in progress")
	ErrInvalidMode    = errors.New("invalid scan mode")
)

// Dependencies - внешние порты движка уведомлений.
// Locker, Publisher и Health необязательны.
type Dependencies struct {
	Incidents     IncidentRepository
	Subscriptions SubscriptionRepository
	Notifications NotificationRepository
	Statuses      StatusRepository
	Sender        PushSender
	Locker        RunLocker
	Publisher     webhook.WebhookPublisher
	Health        HealthChecker
}

type scanSettings struct {
	lookback time.Duration
	policy   eligibility.Policy
}

type notificationService struct {
	incidents     IncidentRepository
	subscriptions SubscriptionRepository
	notifications NotificationRepository
	locker        RunLocker
	publisher     webhook.WebhookPublisher
	health        HealthChecker

	filter     *eligibility.Filter
	guard      *DuplicateGuard
	dispatcher *Dispatcher
	scans      map[models.ScanMode]scanSettings
	lockTTL    time.Duration

	now    func() time.Time
	logger *logrus.Logger
}

func NewNotificationService(deps Dependencies, filter *eligibility.Filter, logger *logrus.Logger, cfg *config.Config) NotificationService {
	guard := NewDuplicateGuard(deps.Notifications, deps.Statuses, cfg.ClaimStaleAfter, time.Now)
	return &notificationService{
		incidents:     deps.Incidents,
		subscriptions: deps.Subscriptions,
		notifications: deps.Notifications,
		locker:        deps.Locker,
		publisher:     deps.Publisher,
		health:        deps.Health,
		filter:        filter,
		guard:         guard,
		dispatcher: NewDispatcher(deps.Sender, guard, deps.Subscriptions,
			cfg.DispatchBatchSize, cfg.DispatchBatchPause, cfg.NotificationLink, logger),
		scans: map[models.ScanMode]scanSettings{
			models.ScanScheduled: {
				lookback: cfg.ScheduledLookback,
				policy: eligibility.Policy{
					SearchRadiusMeters: cfg.ScheduledSearchRadius,
					CapToSearchRadius:  true,
				},
			},
			models.ScanWide: {
				lookback: cfg.WideLookback,
				policy: eligibility.Policy{
					SearchRadiusMeters: cfg.WideSearchRadius,
				},
			},
		},
		lockTTL: cfg.RunLockTTL,
		now:     time.Now,
		logger:  logger,
	}
}

// RunNotificationPass выполняет один проход: находит свежие инциденты,
// подбирает пользователей рядом и рассылает уведомления.
// Сбой одного инцидента не прерывает проход; ошибка возвращается только если
// не удалось получить список инцидентов или захватить блокировку.
func (s *notificationService) RunNotificationPass(ctx context.Context, mode models.ScanMode) (*models.PassResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "notification",
		"method":  "RunNotificationPass",
		"mode":    mode,
	})

	if !mode.Valid() {
		return nil, fmt.Errorf("service: %w: %q", ErrInvalidMode, mode)
	}
	scan := s.scans[mode]

	if s.locker != nil {
		token, acquired, err := s.locker.TryLock(ctx, runLockKey, s.lockTTL)
		if err != nil {
			log.WithError(err).Error("Failed to acquire run lock")
			return nil, fmt.Errorf("service: could not acquire run lock: %w", err)
		}
		if !acquired {
			log.Warn("Another notification pass is running, skipping")
			return nil, ErrPassInProgress
		}
		defer func() {
			unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := s.locker.Unlock(unlockCtx, runLockKey, token); err != nil {
				log.WithError(err).Warn("Failed to release run lock")
			}
		}()
	}

	startedAt := s.now()
	result := &models.PassResult{
		Mode:      mode,
		StartedAt: startedAt,
		Details:   []models.IncidentDetail{},
	}
	log.Info("Starting notification pass")

	incidents, err := s.incidents.ListObservedSince(ctx, startedAt.Add(-scan.lookback))
	if err != nil {
		log.WithError(err).Error("Failed to list recent incidents")
		err = fmt.Errorf("service: could not list incidents: %w", err)
		s.finish(ctx, log, result, err)
		return nil, err
	}
	result.IncidentsFound = len(incidents)

	for _, incident := range incidents {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Notification pass cancelled")
			break
		}
		s.processIncident(ctx, incident, scan, result)
	}

	s.finish(ctx, log, result, nil)
	return result, nil
}

// processIncident обрабатывает один инцидент и дописывает итоги в result
func (s *notificationService) processIncident(ctx context.Context, incident *models.Incident, scan scanSettings, result *models.PassResult) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "notification",
		"method":      "processIncident",
		"incident_id": incident.ID,
		"observed_at": incident.ObservedTime().UTC(),
	})

	detail := models.IncidentDetail{
		IncidentID: incident.ID,
		Location:   incident.Location(),
		Categories: incident.Categories,
		Filtering:  models.FilterStats{Rejected: newRejectionCounts()},
	}
	fail := func(err error) {
		log.WithError(err).Error("Failed to process incident")
		metrics.Incidents.WithLabelValues("failed").Inc()
		detail.Error = err.Error()
		result.IncidentsFailed++
		result.Details = append(result.Details, detail)
	}

	if err := incident.Validate(); err != nil && !errors.Is(err, models.ErrMissingCoordinates) {
		fail(fmt.Errorf("service: invalid incident: %w", err))
		return
	}

	processed, err := s.guard.AlreadyProcessed(ctx, incident.ID)
	if err != nil {
		fail(err)
		return
	}
	if processed {
		log.Debug("Incident already processed, skipping")
		metrics.Incidents.WithLabelValues("already_processed").Inc()
		result.AlreadyProcessed++
		return
	}

	if !incident.Coordinates.Valid() {
		status := &models.IncidentProcessingStatus{
			IncidentID: incident.ID,
			Success:    false,
			Error:      models.ErrMissingCoordinates.Error(),
			Location:   incident.Location(),
			Categories: incident.Categories,
		}
		if err := s.guard.MarkProcessed(ctx, status); err != nil {
			fail(err)
			return
		}
		log.Warn("Incident has no coordinates, marked as processed")
		metrics.Incidents.WithLabelValues("missing_coordinates").Inc()
		detail.Skipped = true
		detail.Error = status.Error
		result.IncidentsNoCoordinates++
		result.Details = append(result.Details, detail)
		return
	}

	candidates, inBounds, err := s.findCandidates(ctx, incident.Coordinates, scan.policy.SearchRadiusMeters)
	if err != nil {
		fail(err)
		return
	}
	detail.UsersInArea = len(candidates)
	detail.Filtering.UsersInBounds = inBounds
	result.UsersScanned += len(candidates)

	recipients := make([]Recipient, 0, len(candidates))
	for _, user := range candidates {
		decision := s.filter.IsEligible(user, incident, scan.policy)
		if !decision.Eligible {
			detail.Filtering.Rejected[string(decision.Reason)]++
			metrics.EligibilityRejections.WithLabelValues(string(decision.Reason)).Inc()
			continue
		}
		notified, err := s.guard.AlreadyNotified(ctx, user.ID, incident.ID)
		if err != nil {
			fail(err)
			return
		}
		if notified {
			detail.Filtering.AlreadyNotified++
			continue
		}
		recipients = append(recipients, Recipient{User: user, DistanceMeters: decision.DistanceMeters})
	}
	detail.UsersEligible = len(recipients)

	log.WithFields(logrus.Fields{
		"users_in_area":  detail.UsersInArea,
		"users_eligible": detail.UsersEligible,
	}).Info("Dispatching incident notifications")

	deliveries := s.dispatcher.Dispatch(ctx, incident, recipients)
	for _, d := range deliveries {
		switch d.Status {
		case DeliverySent:
			detail.NotificationsSent++
		case DeliveryDuplicate:
			detail.Duplicates++
		default:
			detail.NotificationsFailed++
		}
		if d.TokenCleared {
			detail.TokensCleared++
		}
	}

	if len(deliveries) < len(recipients) {
		fail(fmt.Errorf("service: dispatch interrupted after %d of %d recipients: %w",
			len(deliveries), len(recipients), ctx.Err()))
		return
	}

	status := &models.IncidentProcessingStatus{
		IncidentID:    incident.ID,
		Success:       true,
		UsersInArea:   detail.UsersInArea,
		UsersEligible: detail.UsersEligible,
		UsersNotified: detail.NotificationsSent,
		Location:      incident.Location(),
		Categories:    incident.Categories,
	}
	if err := s.guard.MarkProcessed(ctx, status); err != nil {
		// записи о доставке уже сохранены, повторная обработка не задублирует отправки
		fail(err)
		return
	}

	log.WithFields(logrus.Fields{
		"sent":   detail.NotificationsSent,
		"failed": detail.NotificationsFailed,
	}).Info("Incident processed")
	metrics.Incidents.WithLabelValues("processed").Inc()
	result.IncidentsProcessed++
	result.UsersNotified += detail.NotificationsSent
	result.Details = append(result.Details, detail)
}

// newRejectionCounts - счетчики отказов с нулем для каждой причины,
// чтобы в итогах прохода всегда присутствовал полный набор причин
func newRejectionCounts() map[string]int {
	counts := make(map[string]int, len(eligibility.Reasons))
	for _, reason := range eligibility.Reasons {
		counts[string(reason)] = 0
	}
	return counts
}

// finish фиксирует длительность, метрики и публикует событие о проходе
func (s *notificationService) finish(ctx context.Context, log *logrus.Entry, result *models.PassResult, passErr error) {
	result.Duration = s.now().Sub(result.StartedAt)

	status := "success"
	if passErr != nil {
		status = "error"
	}
	metrics.PassDuration.WithLabelValues(string(result.Mode), status).Observe(result.Duration.Seconds())

	if passErr == nil {
		log.WithFields(logrus.Fields{
			"incidents_found":     result.IncidentsFound,
			"incidents_processed": result.IncidentsProcessed,
			"already_processed":   result.AlreadyProcessed,
			"incidents_failed":    result.IncidentsFailed,
			"users_notified":      result.UsersNotified,
			"duration":            result.Duration.String(),
		}).Info("Notification pass completed")
	}

	if s.publisher == nil {
		return
	}
	var payload *models.PassResult
	if passErr == nil {
		payload = result
	}
	event := webhook.NewPassEvent(result.Mode, payload, passErr, s.now())
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.WithError(err).Warn("Failed to publish pass webhook event")
	}
}

// GetStatus возвращает сводку по инцидентам и уведомлениям за последние сутки
func (s *notificationService) GetStatus(ctx context.Context) (*models.ServiceStatus, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "notification",
		"method":  "GetStatus",
	})
	since := s.now().Add(-statusWindow)

	incidents, err := s.incidents.ListObservedSince(ctx, since)
	if err != nil {
		log.WithError(err).Error("Failed to list recent incidents")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	// счетчики считаются по всем статусам окна, ограничивается только выдача
	statuses, err := s.guard.statuses.ListStatusesSince(ctx, since, 0)
	if err != nil {
		log.WithError(err).Error("Failed to list processing statuses")
		return nil, fmt.Errorf("service: could not list statuses: %w", err)
	}
	sent, err := s.notifications.CountSentSince(ctx, since)
	if err != nil {
		log.WithError(err).Error("Failed to count sent notifications")
		return nil, fmt.Errorf("service: could not count notifications: %w", err)
	}

	status := &models.ServiceStatus{
		RecentIncidents:   len(incidents),
		NotificationsSent: sent,
		Statuses:          statuses[:min(len(statuses), statusLimit)],
	}

	processed := make(map[string]struct{}, len(statuses))
	for _, st := range statuses {
		processed[st.IncidentID] = struct{}{}
		if st.Success {
			status.ProcessedIncidents++
		}
		if status.LastProcessedAt == nil || st.ProcessedAt.After(*status.LastProcessedAt) {
			at := st.ProcessedAt
			status.LastProcessedAt = &at
		}
	}
	for _, incident := range incidents {
		if _, ok := processed[incident.ID]; !ok {
			status.PendingIncidents++
		}
	}

	return status, nil
}

// Health проверяет доступность хранилища
func (s *notificationService) Health(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	if err := s.health.Ping(ctx); err != nil {
		return fmt.Errorf("service: storage unavailable: %w", err)
	}
	return nil
}
