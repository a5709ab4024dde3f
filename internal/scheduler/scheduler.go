// Package scheduler запускает плановый проход уведомлений по таймеру.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
)

type Scheduler struct {
	service  service.NotificationService
	interval time.Duration
	logger   *logrus.Logger
}

func NewScheduler(svc service.NotificationService, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		interval: interval,
		logger:   logger,
	}
}

// Start запускает цикл в отдельной горутине; возвращённый канал закрывается после остановки
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

// Run блокируется до отмены ctx. Проходы не перекрываются: следующий тик
// обрабатывается только после завершения текущего прохода.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.WithField("interval", s.interval.String()).Info("Starting notification scheduler...")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping notification scheduler.")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	log := s.logger.WithField("mode", models.ScanScheduled)

	result, err := s.service.RunNotificationPass(ctx, models.ScanScheduled)
	switch {
	case errors.Is(err, service.ErrPassInProgress):
		log.Info("Scheduled pass skipped, another pass is running")
	case err != nil:
		log.WithError(err).Error("Scheduled notification pass failed")
	default:
		log.WithFields(logrus.Fields{
			"incidents_processed": result.IncidentsProcessed,
			"users_notified":      result.UsersNotified,
		}).Debug("Scheduled notification pass finished")
	}
}
