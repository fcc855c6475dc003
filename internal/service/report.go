package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/shenikar/traffic_violation_reporting/internal/webhook"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=report.go -destination=mocks/mock_report.go -package=mocks

// ReportRepository определяет контракт хранилища заявлений (Record Store)
type ReportRepository interface {
	Exists(ctx context.Context, incidentID string) (bool, error)
	Insert(ctx context.Context, report *models.Report) error
	GetByIncidentID(ctx context.Context, incidentID string) (*models.Report, error)
	GetReportFromCache(ctx context.Context, incidentID string) (*models.Report, error)
	SetReportCache(ctx context.Context, report *models.Report) error
}

// ReportService определяет контракт бизнес-логики приема заявлений
type ReportService interface {
	SubmitReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, incidentID string) (*models.Report, error)
}

type reportService struct {
	repo      ReportRepository
	storage   ObjectStorage
	ledger    UploadLedger
	publisher webhook.WebhookPublisher
	logger    *logrus.Logger
}

func NewReportService(repo ReportRepository, storage ObjectStorage, ledger UploadLedger, publisher webhook.WebhookPublisher, logger *logrus.Logger) ReportService {
	return &reportService{
		repo:      repo,
		storage:   storage,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitReport сохраняет заявление. Вставка - последний необратимый шаг:
// уникальность incident_id гарантирует хранилище, конфликт при вставке окончателен.
func (s *reportService) SubmitReport(ctx context.Context, report *models.Report) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "report",
		"method":      "SubmitReport",
		"incident_id": report.IncidentID,
	})
	log.Info("Attempting to submit a new report")

	report.Status = models.StatusPending
	if err := s.repo.Insert(ctx, report); err != nil {
		if errors.Is(err, ErrDuplicateIncident) {
			log.WithError(err).Warn("Incident ID already exists")
			return fmt.Errorf("service: could not submit report: %w", err)
		}
		log.WithError(err).Error("Failed to insert report in repository")
		return fmt.Errorf("service: could not submit report: %w", err)
	}
	log.WithField("report_id", report.ID).Info("Report submitted successfully")

	// Объекты, на которые ссылается заявление, больше не кандидаты на очистку
	if keys := s.mediaKeys(report.MediaURLs); len(keys) > 0 {
		if err := s.ledger.Release(ctx, keys); err != nil {
			log.WithError(err).Warn("Failed to release pending uploads")
		}
	}

	if err := s.repo.SetReportCache(ctx, report); err != nil {
		log.WithError(err).Warn("Failed to cache report")
	}

	if err := s.publisher.Publish(ctx, webhook.NewReportSubmittedEvent(report)); err != nil {
		log.WithError(err).Error("Failed to publish report submitted event")
	}
	return nil
}

// GetReport получает заявление по incident_id, сначала из кэша
func (s *reportService) GetReport(ctx context.Context, incidentID string) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "report",
		"method":      "GetReport",
		"incident_id": incidentID,
	})

	cached, err := s.repo.GetReportFromCache(ctx, incidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to read report cache")
	}
	if cached != nil {
		log.Debug("Report served from cache")
		return cached, nil
	}

	report, err := s.repo.GetByIncidentID(ctx, incidentID)
	if err != nil {
		log.WithError(err).Warn("Failed to get report from repository")
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}

	if err := s.repo.SetReportCache(ctx, report); err != nil {
		log.WithError(err).Warn("Failed to cache report")
	}
	return report, nil
}

func (s *reportService) mediaKeys(urls []string) []string {
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if key, ok := s.storage.KeyFromURL(u); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
