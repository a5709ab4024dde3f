package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service"
	"github.com/shenikar/incident_notifier/internal/service/mocks"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestScheduler_RunsScheduledPassOnTick(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockNotificationService(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := make(chan struct{}, 10)

	// Ожидания
	svc.EXPECT().
		RunNotificationPass(gomock.Any(), models.ScanScheduled).
		DoAndReturn(func(context.Context, models.ScanMode) (*models.PassResult, error) {
			select {
			case calls <- struct{}{}:
			default:
			}
			return &models.PassResult{Mode: models.ScanScheduled}, nil
		}).
		MinTimes(2)

	// Действие
	done := NewScheduler(svc, 10*time.Millisecond, newTestLogger()).Start(ctx)
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("scheduled pass was not triggered")
		}
	}
	cancel()

	// Проверки
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduler_KeepsRunningAfterErrors(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockNotificationService(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var count atomic.Int32
	calls := make(chan struct{}, 10)
	results := []error{service.ErrPassInProgress, errors.New("database down"), nil}

	// Ожидания
	svc.EXPECT().
		RunNotificationPass(gomock.Any(), models.ScanScheduled).
		DoAndReturn(func(context.Context, models.ScanMode) (*models.PassResult, error) {
			n := int(count.Add(1)) - 1
			err := results[min(n, len(results)-1)]
			select {
			case calls <- struct{}{}:
			default:
			}
			if err != nil {
				return nil, err
			}
			return &models.PassResult{}, nil
		}).
		MinTimes(3)

	// Действие
	done := NewScheduler(svc, 5*time.Millisecond, newTestLogger()).Start(ctx)
	for i := 0; i < 3; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("scheduler stopped after a failed pass")
		}
	}
	cancel()
	<-done

	// Проверки
	assert.GreaterOrEqual(t, count.Load(), int32(3))
}
