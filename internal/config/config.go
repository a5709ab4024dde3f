package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseMaxConns int32 `env:"DATABASE_MAX_CONNS" envDefault:"10"`

	// Mongo Config
	MongoURI      string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string        `env:"MONGO_DATABASE" envDefault:"incident_notifier"`
	MongoTimeout  time.Duration `env:"MONGO_TIMEOUT" envDefault:"10s"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPool int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Push (FCM) Config
	FCMEndpoint          string        `env:"FCM_ENDPOINT" envDefault:"https://fcm.googleapis.com/fcm/send"`
	FCMServerKey         string        `env:"FCM_SERVER_KEY"`
	FCMRequestsPerSecond float64       `env:"FCM_REQUESTS_PER_SECOND" envDefault:"50"`
	FCMTimeout           time.Duration `env:"FCM_TIMEOUT" envDefault:"10s"`
	NotificationLink     string        `env:"NOTIFICATION_LINK"`

	// Notification pass Config
	ScheduleInterval      time.Duration `env:"SCHEDULE_INTERVAL" envDefault:"15m"`
	ScheduledLookback     time.Duration `env:"SCHEDULED_LOOKBACK" envDefault:"1h"`
	ScheduledSearchRadius float64       `env:"SCHEDULED_SEARCH_RADIUS_METERS" envDefault:"2000"`
	WideLookback          time.Duration `env:"WIDE_LOOKBACK" envDefault:"24h"`
	WideSearchRadius      float64       `env:"WIDE_SEARCH_RADIUS_METERS" envDefault:"10000"`
	DefaultUserRadiusKm   float64       `env:"DEFAULT_USER_RADIUS_KM" envDefault:"2"`
	DispatchBatchSize     int           `env:"DISPATCH_BATCH_SIZE" envDefault:"10"`
	DispatchBatchPause    time.Duration `env:"DISPATCH_BATCH_PAUSE" envDefault:"1s"`
	ClaimStaleAfter       time.Duration `env:"CLAIM_STALE_AFTER" envDefault:"10m"`
	RunLockTTL            time.Duration `env:"RUN_LOCK_TTL" envDefault:"10m"`
	StatusCacheTTL        time.Duration `env:"STATUS_CACHE_TTL" envDefault:"48h"`
	QuietHoursTimezone    string        `env:"QUIET_HOURS_TIMEZONE" envDefault:"Asia/Kolkata"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		StoreDriver:           strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		DatabaseMaxConns:      int32(getEnvAsInt("DATABASE_MAX_CONNS", 10)),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnv("MONGO_DATABASE", "incident_notifier"),
		MongoTimeout:          getEnvAsDuration("MONGO_TIMEOUT", 10*time.Second),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:             os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvAsInt("REDIS_DB", 0),
		RedisPool:             getEnvAsInt("REDIS_POOL_SIZE", 10),
		WebhookURL:            os.Getenv("WEBHOOK_URL"),
		WebhookSecret:         os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:        getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:     getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:      getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		FCMEndpoint:           getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		FCMServerKey:          os.Getenv("FCM_SERVER_KEY"),
		FCMRequestsPerSecond:  getEnvAsFloat("FCM_REQUESTS_PER_SECOND", 50),
		FCMTimeout:            getEnvAsDuration("FCM_TIMEOUT", 10*time.Second),
		NotificationLink:      os.Getenv("NOTIFICATION_LINK"),
		ScheduleInterval:      getEnvAsDuration("SCHEDULE_INTERVAL", 15*time.Minute),
		ScheduledLookback:     getEnvAsDuration("SCHEDULED_LOOKBACK", time.Hour),
		ScheduledSearchRadius: getEnvAsFloat("SCHEDULED_SEARCH_RADIUS_METERS", 2000),
		WideLookback:          getEnvAsDuration("WIDE_LOOKBACK", 24*time.Hour),
		WideSearchRadius:      getEnvAsFloat("WIDE_SEARCH_RADIUS_METERS", 10000),
		DefaultUserRadiusKm:   getEnvAsFloat("DEFAULT_USER_RADIUS_KM", 2),
		DispatchBatchSize:     getEnvAsInt("DISPATCH_BATCH_SIZE", 10),
		DispatchBatchPause:    getEnvAsDuration("DISPATCH_BATCH_PAUSE", time.Second),
		ClaimStaleAfter:       getEnvAsDuration("CLAIM_STALE_AFTER", 10*time.Minute),
		RunLockTTL:            getEnvAsDuration("RUN_LOCK_TTL", 10*time.Minute),
		StatusCacheTTL:        getEnvAsDuration("STATUS_CACHE_TTL", 48*time.Hour),
		QuietHoursTimezone:    getEnv("QUIET_HOURS_TIMEZONE", "Asia/Kolkata"),
		MetricsEnabled:        getEnvAsBool("METRICS_ENABLED", true),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required")
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI environment variable is required")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.DispatchBatchSize < 1 {
		return fmt.Errorf("DISPATCH_BATCH_SIZE must be positive, got %d", c.DispatchBatchSize)
	}
	if c.ScheduledSearchRadius <= 0 || c.WideSearchRadius <= 0 {
		return fmt.Errorf("search radius must be positive")
	}
	if _, err := time.LoadLocation(c.QuietHoursTimezone); err != nil {
		return fmt.Errorf("invalid QUIET_HOURS_TIMEZONE %q: %w", c.QuietHoursTimezone, err)
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
