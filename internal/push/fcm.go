// Package push отправляет push-уведомления через Firebase Cloud Messaging.
package push

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Message - полезная нагрузка уведомления
type Message struct {
	Title string
	Body  string
	Link  string
	Data  map[string]string
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Priority     string            `json:"priority"`
	TimeToLive   int               `json:"time_to_live,omitempty"`
}

type fcmNotification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Icon        string `json:"icon,omitempty"`
	ClickAction string `json:"click_action,omitempty"`
}

type fcmResponse struct {
	MulticastID int64       `json:"multicast_id"`
	Success     int         `json:"success"`
	Failure     int         `json:"failure"`
	Results     []fcmResult `json:"results"`
}

type fcmResult struct {
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FCMClient - HTTP клиент FCM с ограничением частоты запросов
type FCMClient struct {
	client   *resty.Client
	endpoint string
	limiter  *rate.Limiter
	logger   *logrus.Logger
}

// NewFCMClient создает клиента FCM. requestsPerSecond <= 0 отключает ограничение
func NewFCMClient(endpoint, serverKey string, requestsPerSecond float64, timeout time.Duration, logger *logrus.Logger) *FCMClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "key="+serverKey)

	return &FCMClient{
		client:   client,
		endpoint: endpoint,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// Send отправляет уведомление на одно устройство.
// Недействительный токен возвращается как *SendError с Permanent = true.
func (c *FCMClient) Send(ctx context.Context, token string, msg *Message) error {
	if token == "" {
		return &SendError{Code: "MissingRegistration", Permanent: true}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("push: rate limit wait: %w", err)
	}

	req := fcmRequest{
		To: token,
		Notification: fcmNotification{
			Title:       msg.Title,
			Body:        msg.Body,
			Icon:        "./logo.png",
			ClickAction: msg.Link,
		},
		Data:       msg.Data,
		Priority:   "high",
		TimeToLive: 3600,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&fcmResponse{}).
		ForceContentType("application/json").
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("push: failed to send FCM request: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusOK:
	case resp.StatusCode() == http.StatusBadRequest:
		return &SendError{Code: "InvalidRequest", StatusCode: resp.StatusCode(), Message: truncate(resp.String(), 200)}
	case resp.StatusCode() == http.StatusUnauthorized:
		return &SendError{Code: "AuthenticationError", StatusCode: resp.StatusCode()}
	default:
		return &SendError{Code: "Unavailable", StatusCode: resp.StatusCode(), Message: truncate(resp.String(), 200)}
	}

	result, ok := resp.Result().(*fcmResponse)
	if !ok || result == nil {
		return &SendError{Code: "InvalidResponse", StatusCode: resp.StatusCode()}
	}
	if len(result.Results) > 0 && result.Results[0].Error != "" {
		sendErr := newResultError(result.Results[0].Error)
		c.logger.WithFields(logrus.Fields{
			"service":   "push",
			"code":      sendErr.Code,
			"permanent": sendErr.Permanent,
		}).Debug("FCM rejected message")
		return sendErr
	}
	if result.Failure > 0 {
		return &SendError{Code: "Unknown", StatusCode: resp.StatusCode()}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
