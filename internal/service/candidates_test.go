package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/incident_notifier/internal/models"
)

func TestFindCandidates_DeduplicatesAcrossPrefixes(t *testing.T) {
	// Подготовка
	svc, m := newTestNotificationService(t)
	ctx := context.Background()
	incident := testIncident("inc-1")
	shared := testUser("u2", 100, 1)

	// Ожидания
	// Каждый запрос возвращает одного и того же пользователя
	m.subscriptions.EXPECT().
		FindByGeohashRange(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*models.UserSubscription{shared, testUser("u1", 200, 1)}, nil).
		Times(9)

	// Действие
	candidates, inBounds, err := svc.findCandidates(ctx, incident.Coordinates, 2000)

	// Проверки
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "u1", candidates[0].ID)
	assert.Equal(t, "u2", candidates[1].ID)
	assert.Equal(t, 18, inBounds)
}

func TestFindCandidates_QueryError(t *testing.T) {
	// Подготовка
	svc, m := newTestNotificationService(t)
	ctx := context.Background()
	incident := testIncident("inc-1")

	// Ожидания
	m.subscriptions.EXPECT().
		FindByGeohashRange(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("index unavailable")).
		MinTimes(1)

	// Действие
	candidates, _, err := svc.findCandidates(ctx, incident.Coordinates, 2000)

	// Проверки
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unavailable")
	assert.Nil(t, candidates)
}

func TestFindCandidates_ZeroRadius(t *testing.T) {
	// Подготовка
	svc, _ := newTestNotificationService(t)

	// Действие
	candidates, inBounds, err := svc.findCandidates(context.Background(), &models.Coordinates{Lat: 1, Lng: 1}, 0)

	// Проверки
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, inBounds)
}
