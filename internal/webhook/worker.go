package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_notifier/internal/config"
	"github.com/shenikar/incident_notifier/internal/metrics"
)

const (
	signatureHeader = "X-Webhook-Signature"
	eventTypeHeader = "X-Webhook-Event"
)

// errNotRetryable - получатель отклонил событие, повтор не поможет
var errNotRetryable = errors.New("webhook rejected by receiver")

// WebhookWorker забирает события о проходах из очереди Redis и доставляет
// их на WEBHOOK_URL. Недоставленные события складываются в dead-letter список.
type WebhookWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

// NewWebhookWorker создает новый WebhookWorker
func NewWebhookWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *WebhookWorker {
	return &WebhookWorker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
	}
}

// Start запускает цикл обработки очереди в отдельной горутине
func (w *WebhookWorker) Start(ctx context.Context) {
	w.logger.Info("Starting webhook worker...")
	go w.run(ctx)
}

func (w *WebhookWorker) run(ctx context.Context) {
	for ctx.Err() == nil {
		payload, err := w.next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			w.logger.WithError(err).Error("Failed to pop webhook event from Redis")
			w.sleep(ctx, w.cfg.WebhookTimeout)
			continue
		}

		var event PassEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			w.logger.WithError(err).Error("Failed to unmarshal webhook event, dropping it")
			continue
		}

		if !w.deliver(ctx, event, payload) && ctx.Err() == nil {
			w.deadLetter(ctx, event, payload)
		}
	}
	w.logger.Info("Stopping webhook worker.")
}

// next блокируется до появления события в очереди
func (w *WebhookWorker) next(ctx context.Context) (string, error) {
	result, err := w.redisClient.BRPop(ctx, 0, webhookQueueKey).Result()
	if err != nil {
		return "", err
	}
	// result[0] - ключ, result[1] - значение
	return result[1], nil
}

// deliver отправляет событие с экспоненциальной задержкой между попытками.
// Ответ 4xx (кроме 408 и 429) считается окончательным отказом.
func (w *WebhookWorker) deliver(ctx context.Context, event PassEvent, rawPayload string) bool {
	log := w.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"mode":       event.Mode,
	})

	if w.cfg.WebhookURL == "" {
		log.Debug("Webhook URL is not configured, skipping delivery")
		metrics.WebhookDeliveries.WithLabelValues("skipped").Inc()
		return true
	}

	attempts := max(w.cfg.WebhookMaxRetries, 1)
	delay := w.cfg.WebhookBaseDelay

	for attempt := 1; ; attempt++ {
		err := w.post(ctx, event, rawPayload)
		if err == nil {
			log.WithField("attempt", attempt).Info("Webhook delivered")
			metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
			return true
		}

		if errors.Is(err, errNotRetryable) || attempt == attempts {
			log.WithError(err).WithField("attempts", attempt).Error("Giving up on webhook delivery")
			metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
			return false
		}

		log.WithError(err).Warnf("Webhook attempt %d/%d failed, retrying in %v", attempt, attempts, delay)
		if !w.sleep(ctx, delay) {
			return false
		}
		delay *= 2
	}
}

func (w *WebhookWorker) post(ctx context.Context, event PassEvent, rawPayload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewBufferString(rawPayload))
	if err != nil {
		return fmt.Errorf("%w: %v", errNotRetryable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(eventTypeHeader, string(event.Type))
	if w.cfg.WebhookSecret != "" {
		req.Header.Set(signatureHeader, generateHMACSHA256(rawPayload, w.cfg.WebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("webhook receiver returned %d", resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: status %d", errNotRetryable, resp.StatusCode)
	default:
		return fmt.Errorf("webhook receiver returned %d", resp.StatusCode)
	}
}

// deadLetter сохраняет недоставленное событие, список ограничен deadLetterMaxLen
func (w *WebhookWorker) deadLetter(ctx context.Context, event PassEvent, rawPayload string) {
	pipe := w.redisClient.TxPipeline()
	pipe.LPush(ctx, webhookDeadLetterKey, rawPayload)
	pipe.LTrim(ctx, webhookDeadLetterKey, 0, deadLetterMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		w.logger.WithError(err).WithField("event_id", event.ID).Error("Failed to store undelivered webhook event")
	}
}

func (w *WebhookWorker) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
