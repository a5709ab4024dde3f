package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/push"
	"github.com/shenikar/incident_notifier/internal/service/mocks"
)

func newTestDispatcher(t *testing.T, batchSize int, pause time.Duration) (*Dispatcher, *mocks.MockPushSender, *mocks.MockNotificationRepository, *mocks.MockSubscriptionRepository) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockPushSender(ctrl)
	notifications := mocks.NewMockNotificationRepository(ctrl)
	subscriptions := mocks.NewMockSubscriptionRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	guard := NewDuplicateGuard(notifications, mocks.NewMockStatusRepository(ctrl), time.Minute, nil)
	d := NewDispatcher(sender, guard, subscriptions, batchSize, pause, "", logger)
	return d, sender, notifications, subscriptions
}

func testRecipients(n int) []Recipient {
	recipients := make([]Recipient, 0, n)
	for i := 1; i <= n; i++ {
		recipients = append(recipients, Recipient{
			User:           testUser(fmt.Sprintf("u%02d", i), 100, 1),
			DistanceMeters: 100,
		})
	}
	return recipients
}

func TestDispatch_RespectsBatchSizeAndPause(t *testing.T) {
	// Подготовка
	d, sender, notifications, _ := newTestDispatcher(t, 10, 50*time.Millisecond)
	ctx := context.Background()
	var inFlight, maxInFlight atomic.Int32

	// Ожидания
	notifications.EXPECT().Claim(ctx, gomock.Any(), time.Minute).Return(true, nil).Times(25)
	notifications.EXPECT().Complete(ctx, gomock.Any()).Return(nil).Times(25)
	sender.EXPECT().
		Send(ctx, gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, *push.Message) error {
			current := inFlight.Add(1)
			for {
				seen := maxInFlight.Load()
				if current <= seen || maxInFlight.CompareAndSwap(seen, current) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		}).
		Times(25)

	// Действие
	started := time.Now()
	deliveries := d.Dispatch(ctx, testIncident("inc-1"), testRecipients(25))
	elapsed := time.Since(started)

	// Проверки
	require.Len(t, deliveries, 25)
	for i, delivery := range deliveries {
		assert.Equal(t, fmt.Sprintf("u%02d", i+1), delivery.UserID)
		assert.Equal(t, DeliverySent, delivery.Status)
	}
	assert.LessOrEqual(t, maxInFlight.Load(), int32(10))
	// три пачки - две паузы
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestDispatch_StopsBetweenBatchesOnCancel(t *testing.T) {
	// Подготовка
	d, sender, notifications, _ := newTestDispatcher(t, 2, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	// Ожидания
	notifications.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	notifications.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	sender.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, *push.Message) error {
			cancel()
			return nil
		}).
		Times(2)

	// Действие
	deliveries := d.Dispatch(ctx, testIncident("inc-1"), testRecipients(5))

	// Проверки
	assert.Len(t, deliveries, 2)
}

func TestDispatch_ClaimErrorSkipsSend(t *testing.T) {
	// Подготовка
	d, sender, notifications, _ := newTestDispatcher(t, 10, 0)
	ctx := context.Background()

	// Ожидания
	notifications.EXPECT().Claim(ctx, gomock.Any(), gomock.Any()).Return(false, errors.New("write conflict"))
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие
	deliveries := d.Dispatch(ctx, testIncident("inc-1"), testRecipients(1))

	// Проверки
	require.Len(t, deliveries, 1)
	assert.Equal(t, DeliveryError, deliveries[0].Status)
	assert.ErrorContains(t, deliveries[0].Err, "write conflict")
}

func TestDispatch_PermanentFailureClearsToken(t *testing.T) {
	// Подготовка
	d, sender, notifications, subscriptions := newTestDispatcher(t, 10, 0)
	ctx := context.Background()

	// Ожидания
	notifications.EXPECT().Claim(ctx, gomock.Any(), gomock.Any()).Return(true, nil)
	sender.EXPECT().Send(ctx, "token-u01", gomock.Any()).
		Return(&push.SendError{Code: "InvalidRegistration", StatusCode: 200, Permanent: true})
	subscriptions.EXPECT().ClearDeviceToken(ctx, "u01").Return(nil)
	notifications.EXPECT().
		Complete(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *models.NotificationRecord) error {
			assert.Equal(t, models.OutcomeFailed, rec.Outcome)
			assert.Equal(t, "InvalidRegistration", rec.ErrorCode)
			assert.NotEmpty(t, rec.Error)
			return nil
		})

	// Действие
	deliveries := d.Dispatch(ctx, testIncident("inc-1"), testRecipients(1))

	// Проверки
	require.Len(t, deliveries, 1)
	assert.Equal(t, DeliveryFailed, deliveries[0].Status)
	assert.True(t, deliveries[0].TokenCleared)
	assert.ErrorIs(t, deliveries[0].Err, push.ErrInvalidToken)
}

func TestDispatch_FailedRecordWrittenWhenTokenClearFails(t *testing.T) {
	// Подготовка
	d, sender, notifications, subscriptions := newTestDispatcher(t, 10, 0)
	ctx := context.Background()

	// Ожидания
	notifications.EXPECT().Claim(ctx, gomock.Any(), gomock.Any()).Return(true, nil)
	sender.EXPECT().Send(ctx, gomock.Any(), gomock.Any()).
		Return(&push.SendError{Code: "NotRegistered", StatusCode: 200, Permanent: true})
	subscriptions.EXPECT().ClearDeviceToken(ctx, "u01").Return(errors.New("timeout"))
	notifications.EXPECT().Complete(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	deliveries := d.Dispatch(ctx, testIncident("inc-1"), testRecipients(1))

	// Проверки
	require.Len(t, deliveries, 1)
	assert.Equal(t, DeliveryFailed, deliveries[0].Status)
	assert.False(t, deliveries[0].TokenCleared)
}

func TestDispatch_EmptyRecipients(t *testing.T) {
	// Подготовка
	d, _, _, _ := newTestDispatcher(t, 10, time.Hour)

	// Действие
	deliveries := d.Dispatch(context.Background(), testIncident("inc-1"), nil)

	// Проверки
	assert.Empty(t, deliveries)
}
