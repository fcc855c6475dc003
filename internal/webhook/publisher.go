package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/traffic_violation_reporting/internal/models"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

const (
	webhookQueueKey = "webhook_events"

	// EventReportSubmitted - заявление сохранено в хранилище
	EventReportSubmitted = "report.submitted"
)

// ReportEvent - структура для данных вебхука
type ReportEvent struct {
	Type        string              `json:"type"`
	IncidentID  string              `json:"incident_id"`
	City        string              `json:"city"`
	State       string              `json:"state"`
	Latitude    float64             `json:"latitude"`
	Longitude   float64             `json:"longitude"`
	MediaURLs   []string            `json:"media_urls"`
	Status      models.ReportStatus `json:"status"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

// NewReportSubmittedEvent собирает событие из сохраненного заявления
func NewReportSubmittedEvent(report *models.Report) ReportEvent {
	return ReportEvent{
		Type:        EventReportSubmitted,
		IncidentID:  report.IncidentID,
		City:        report.City,
		State:       report.State,
		Latitude:    report.Latitude,
		Longitude:   report.Longitude,
		MediaURLs:   report.MediaURLs,
		Status:      report.Status,
		SubmittedAt: report.CreatedAt,
	}
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event ReportEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event ReportEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
