package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *FCMClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	return NewFCMClient(server.URL, "server-key", 0, 2*time.Second, logger)
}

func testMessage() *Message {
	return &Message{
		Title: "🚦 Incident Alert - Traffic",
		Body:  "Road blocked",
		Link:  "https://example.org",
		Data:  map[string]string{"incidentId": "incident-1"},
	}
}

func TestSend_Success(t *testing.T) {
	var received fcmRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=server-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"multicast_id":1,"success":1,"failure":0,"results":[{"message_id":"m1"}]}`))
	})

	err := client.Send(context.Background(), "token-1", testMessage())

	require.NoError(t, err)
	assert.Equal(t, "token-1", received.To)
	assert.Equal(t, "high", received.Priority)
	assert.Equal(t, "incident-1", received.Data["incidentId"])
	assert.Equal(t, "https://example.org", received.Notification.ClickAction)
}

func TestSend_NotRegisteredIsPermanent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":0,"failure":1,"results":[{"error":"NotRegistered"}]}`))
	})

	err := client.Send(context.Background(), "stale-token", testMessage())

	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.Equal(t, "NotRegistered", ErrorCode(err))
}

func TestSend_UnavailableIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":0,"failure":1,"results":[{"error":"Unavailable"}]}`))
	})

	err := client.Send(context.Background(), "token-1", testMessage())

	require.Error(t, err)
	assert.False(t, IsPermanent(err))
	assert.Equal(t, "Unavailable", ErrorCode(err))
}

func TestSend_ServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.Send(context.Background(), "token-1", testMessage())

	require.Error(t, err)
	assert.False(t, IsPermanent(err))
	var sendErr *SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, http.StatusServiceUnavailable, sendErr.StatusCode)
}

func TestSend_EmptyTokenIsPermanent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent without token")
	})

	err := client.Send(context.Background(), "", testMessage())

	assert.True(t, IsPermanent(err))
}

func TestErrorCode_Unknown(t *testing.T) {
	assert.Equal(t, "unknown", ErrorCode(errors.New("boom")))
	assert.False(t, IsPermanent(errors.New("boom")))
}
