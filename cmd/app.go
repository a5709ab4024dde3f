package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_notifier/internal/config"
	"github.com/shenikar/incident_notifier/internal/eligibility"
	"github.com/shenikar/incident_notifier/internal/push"
	"github.com/shenikar/incident_notifier/internal/repository"
	mongorepo "github.com/shenikar/incident_notifier/internal/repository/mongo"
	"github.com/shenikar/incident_notifier/internal/service"
	"github.com/shenikar/incident_notifier/internal/webhook"
	"github.com/shenikar/incident_notifier/pkg/mongodb"
	"github.com/shenikar/incident_notifier/pkg/postgres"
	redisclient "github.com/shenikar/incident_notifier/pkg/redis"
)

// application - собранный граф зависимостей процесса
type application struct {
	cfg     *config.Config
	log     *logrus.Logger
	redis   *redis.Client
	service service.NotificationService
	closers []func()
}

// Close освобождает ресурсы в обратном порядке
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApplication подключает хранилище, Redis и FCM и собирает движок уведомлений
func newApplication(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*application, error) {
	app := &application{cfg: cfg, log: log}

	deps, err := app.connectStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, redisclient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPool,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.redis = redisClient
	app.closers = append(app.closers, func() { _ = redisClient.Close() })
	log.Info("Successfully connected to Redis")

	deps.Statuses = repository.NewCachedStatusRepository(deps.Statuses, redisClient, cfg.StatusCacheTTL)
	deps.Locker = repository.NewRunLocker(redisClient)
	deps.Publisher = webhook.NewRedisWebhookPublisher(redisClient)
	deps.Sender = push.NewFCMClient(cfg.FCMEndpoint, cfg.FCMServerKey, cfg.FCMRequestsPerSecond, cfg.FCMTimeout, log)

	location, err := time.LoadLocation(cfg.QuietHoursTimezone)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("invalid quiet hours timezone: %w", err)
	}
	filter := eligibility.NewFilter(location, cfg.DefaultUserRadiusKm, nil)

	app.service = service.NewNotificationService(deps, filter, log, cfg)
	return app, nil
}

// connectStore выбирает реализацию репозиториев по STORE_DRIVER
func (a *application) connectStore(ctx context.Context) (service.Dependencies, error) {
	switch a.cfg.StoreDriver {
	case config.StoreDriverMongo:
		db, err := mongodb.NewMongoDB(ctx, a.cfg.MongoURI, a.cfg.MongoDatabase, a.cfg.MongoTimeout)
		if err != nil {
			return service.Dependencies{}, err
		}
		a.closers = append(a.closers, func() {
			if err := db.Close(); err != nil {
				a.log.WithError(err).Warn("Failed to close MongoDB connection")
			}
		})
		a.log.WithField("database", a.cfg.MongoDatabase).Info("Successfully connected to MongoDB")

		if err := mongorepo.EnsureIndexes(ctx, db.Database); err != nil {
			return service.Dependencies{}, err
		}

		return service.Dependencies{
			Incidents:     mongorepo.NewIncidentRepository(db.Database),
			Subscriptions: mongorepo.NewSubscriptionRepository(db.Database),
			Notifications: mongorepo.NewNotificationRepository(db.Database),
			Statuses:      mongorepo.NewStatusRepository(db.Database),
			Health:        db,
		}, nil

	default:
		dbpool, err := postgres.NewPostgresDB(ctx, a.cfg.DatabaseURL, a.cfg.DatabaseMaxConns)
		if err != nil {
			return service.Dependencies{}, err
		}
		a.closers = append(a.closers, dbpool.Close)
		a.log.Info("Successfully connected to PostgreSQL")

		return service.Dependencies{
			Incidents:     repository.NewIncidentRepository(dbpool),
			Subscriptions: repository.NewSubscriptionRepository(dbpool),
			Notifications: repository.NewNotificationRepository(dbpool),
			Statuses:      repository.NewStatusRepository(dbpool),
			Health:        dbpool,
		}, nil
	}
}
