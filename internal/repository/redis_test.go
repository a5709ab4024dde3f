package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/incident_notifier/internal/models"
	"github.com/shenikar/incident_notifier/internal/service/mocks"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRunLocker_ExclusiveUntilReleased(t *testing.T) {
	// Подготовка
	_, client := newTestRedis(t)
	locker := NewRunLocker(client)
	ctx := context.Background()

	// Действие
	token, ok, err := locker.TryLock(ctx, "pass", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, second, err := locker.TryLock(ctx, "pass", time.Minute)

	// Проверки
	require.NoError(t, err)
	assert.False(t, second)

	require.NoError(t, locker.Unlock(ctx, "pass", token))
	_, again, err := locker.TryLock(ctx, "pass", time.Minute)
	require.NoError(t, err)
	assert.True(t, again)
}

func TestRunLocker_UnlockWithForeignToken(t *testing.T) {
	// Подготовка
	mr, client := newTestRedis(t)
	locker := NewRunLocker(client)
	ctx := context.Background()

	_, ok, err := locker.TryLock(ctx, "pass", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Действие
	err = locker.Unlock(ctx, "pass", "someone-else")

	// Проверки
	require.ErrorIs(t, err, ErrLockNotHeld)
	assert.True(t, mr.Exists("pass"))
}

func TestRunLocker_ExpiresAfterTTL(t *testing.T) {
	// Подготовка
	mr, client := newTestRedis(t)
	locker := NewRunLocker(client)
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "pass", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Действие
	mr.FastForward(2 * time.Minute)
	_, reacquired, err := locker.TryLock(ctx, "pass", time.Minute)

	// Проверки
	require.NoError(t, err)
	assert.True(t, reacquired)
	assert.ErrorIs(t, locker.Unlock(ctx, "pass", token), ErrLockNotHeld)
}

func TestCachedStatusRepository_CachesProcessed(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStatusRepository(ctrl)
	mr, client := newTestRedis(t)
	repo := NewCachedStatusRepository(next, client, time.Hour)
	ctx := context.Background()

	// Ожидания
	// Хранилище опрашивается только при первом обращении
	next.EXPECT().IsProcessed(ctx, "inc-1").Return(true, nil).Times(1)

	// Действие
	first, err := repo.IsProcessed(ctx, "inc-1")
	require.NoError(t, err)
	second, err := repo.IsProcessed(ctx, "inc-1")
	require.NoError(t, err)

	// Проверки
	assert.True(t, first)
	assert.True(t, second)
	assert.True(t, mr.Exists(processedKey("inc-1")))
}

func TestCachedStatusRepository_DoesNotCacheUnprocessed(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStatusRepository(ctrl)
	mr, client := newTestRedis(t)
	repo := NewCachedStatusRepository(next, client, time.Hour)
	ctx := context.Background()

	// Ожидания
	next.EXPECT().IsProcessed(ctx, "inc-1").Return(false, nil).Times(2)

	// Действие
	for i := 0; i < 2; i++ {
		processed, err := repo.IsProcessed(ctx, "inc-1")
		require.NoError(t, err)
		assert.False(t, processed)
	}

	// Проверки
	assert.False(t, mr.Exists(processedKey("inc-1")))
}

func TestCachedStatusRepository_SaveStatus(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStatusRepository(ctrl)
	mr, client := newTestRedis(t)
	repo := NewCachedStatusRepository(next, client, time.Hour)
	ctx := context.Background()
	ok := &models.IncidentProcessingStatus{IncidentID: "inc-1", Processed: true}
	broken := &models.IncidentProcessingStatus{IncidentID: "inc-2", Processed: true}

	// Ожидания
	next.EXPECT().SaveStatus(ctx, ok).Return(nil)
	next.EXPECT().SaveStatus(ctx, broken).Return(errors.New("db error"))

	// Действие
	require.NoError(t, repo.SaveStatus(ctx, ok))
	require.Error(t, repo.SaveStatus(ctx, broken))

	// Проверки
	assert.True(t, mr.Exists(processedKey("inc-1")))
	assert.False(t, mr.Exists(processedKey("inc-2")))
}

func TestCachedStatusRepository_FallsBackWhenRedisDown(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	next := mocks.NewMockStatusRepository(ctrl)
	mr, client := newTestRedis(t)
	repo := NewCachedStatusRepository(next, client, time.Hour)
	ctx := context.Background()
	mr.Close()

	// Ожидания
	next.EXPECT().IsProcessed(ctx, "inc-1").Return(true, nil)

	// Действие
	processed, err := repo.IsProcessed(ctx, "inc-1")

	// Проверки
	require.NoError(t, err)
	assert.True(t, processed)
}
