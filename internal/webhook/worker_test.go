package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/traffic_violation_reporting/internal/config"
	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(cfg *config.Config) *WebhookWorker {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return NewWebhookWorker(nil, logger, cfg)
}

func TestGenerateHMACSHA256(t *testing.T) {
	// известный вектор: HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	sig := generateHMACSHA256("The quick brown fox jumps over the lazy dog", "key")
	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", sig)
}

func TestProcessWebhookEvent_DeliversSignedPayload(t *testing.T) {
	// Подготовка
	var received []byte
	var signature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		signature = r.Header.Get("X-Webhook-Signature")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	worker := newTestWorker(&config.Config{
		WebhookURL:        server.URL,
		WebhookSecret:     "s3cr3t",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	})
	event := NewReportSubmittedEvent(&models.Report{
		IncidentID: "TR-ABC123-XYZ99",
		City:       "Pune",
		State:      "Maharashtra",
		MediaURLs:  []string{"https://bucket.s3.us-east-1.amazonaws.com/TR-ABC123-XYZ99/1.jpg"},
		Status:     models.StatusPending,
	})
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	// Действие
	worker.processWebhookEvent(context.Background(), event, string(payload))

	// Проверки
	assert.JSONEq(t, string(payload), string(received))
	assert.Equal(t, generateHMACSHA256(string(payload), "s3cr3t"), signature)
}

func TestProcessWebhookEvent_RetriesOnServerError(t *testing.T) {
	// Подготовка
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	worker := newTestWorker(&config.Config{
		WebhookURL:        server.URL,
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 5,
		WebhookBaseDelay:  time.Millisecond,
	})

	// Действие
	worker.processWebhookEvent(context.Background(), ReportEvent{Type: EventReportSubmitted}, `{"type":"report.submitted"}`)

	// Проверки
	assert.Equal(t, int32(3), calls.Load())
}

func TestProcessWebhookEvent_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	worker := newTestWorker(&config.Config{
		WebhookURL:        server.URL,
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 2,
		WebhookBaseDelay:  time.Millisecond,
	})

	worker.processWebhookEvent(context.Background(), ReportEvent{}, `{}`)

	assert.Equal(t, int32(2), calls.Load())
}

func TestProcessWebhookEvent_NoURLConfigured(t *testing.T) {
	worker := newTestWorker(&config.Config{WebhookMaxRetries: 3})

	// не должно быть ни паники, ни сетевых вызовов
	worker.processWebhookEvent(context.Background(), ReportEvent{}, `{}`)
}
