package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shenikar/incident_notifier/internal/service"
)

// ErrLockNotHeld - блокировка истекла или принадлежит другому владельцу
var ErrLockNotHeld = errors.New("lock is not held by this owner")

// Удаляет ключ только если значение совпадает с токеном владельца
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLocker - блокировка прохода на SET NX PX
type RunLocker struct {
	redisClient *redis.Client
}

func NewRunLocker(client *redis.Client) service.RunLocker {
	return &RunLocker{
		redisClient: client,
	}
}

// TryLock пытается захватить ключ на ttl и возвращает токен владельца
func (l *RunLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.redisClient.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock освобождает ключ, если он всё ещё принадлежит владельцу токена
func (l *RunLocker) Unlock(ctx context.Context, key, token string) error {
	released, err := releaseLock.Run(ctx, l.redisClient, []string{key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	if released == 0 {
		return ErrLockNotHeld
	}
	return nil
}
