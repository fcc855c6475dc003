package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=upload.go -destination=mocks/mock_upload.go -package=mocks

// maxParallelUploads ограничивает число одновременных загрузок в UploadMany
const maxParallelUploads = 4

// ObjectStorage определяет контракт долговременного хранилища медиафайлов
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(url string) (string, bool)
}

// UploadLedger учитывает загруженные, но еще не привязанные к заявлению объекты
type UploadLedger interface {
	Track(ctx context.Context, key string, uploadedAt time.Time) error
	Release(ctx context.Context, keys []string) error
	Expired(ctx context.Context, before time.Time, limit int64) ([]string, error)
}

// UploadService определяет контракт загрузки доказательств
type UploadService interface {
	Upload(ctx context.Context, file *models.EvidenceFile, incidentID string) (*models.UploadResult, error)
	UploadMany(ctx context.Context, files []*models.EvidenceFile, incidentID string) *models.UploadBatch
}

type uploadService struct {
	storage ObjectStorage
	ledger  UploadLedger
	logger  *logrus.Logger
	maxSize int64
	now     func() time.Time
}

func NewUploadService(storage ObjectStorage, ledger UploadLedger, logger *logrus.Logger, maxSize int64) UploadService {
	if maxSize <= 0 {
		maxSize = models.MaxEvidenceSize
	}
	return &uploadService{
		storage: storage,
		ledger:  ledger,
		logger:  logger,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Upload кладет файл в хранилище под ключом <incidentId>/<время загрузки>.<расширение>
// и возвращает публичный URL, однозначно выводимый из ключа
func (s *uploadService) Upload(ctx context.Context, file *models.EvidenceFile, incidentID string) (*models.UploadResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "upload",
		"method":      "Upload",
		"incident_id": incidentID,
	})

	if file == nil || file.Size() == 0 || incidentID == "" {
		log.Warn("Upload rejected: missing file or incident ID")
		return nil, newValidationError("File and incident ID are required")
	}
	if !file.IsImage() && !file.IsVideo() {
		log.WithField("content_type", file.ContentType).Warn("Upload rejected: not an image or video")
		return nil, newValidationError("Only image and video files are allowed")
	}
	if file.Size() > s.maxSize {
		log.WithFields(logrus.Fields{"file_size": file.Size(), "max_size": s.maxSize}).Warn("Upload rejected: file too large")
		return nil, newValidationError(fmt.Sprintf("File size must not exceed %dMB", s.maxSize/(1024*1024)))
	}

	uploadedAt := s.now()
	key := fmt.Sprintf("%s/%d.%s", incidentID, uploadedAt.UnixNano(), file.Extension())
	log = log.WithField("key", key)
	log.WithFields(logrus.Fields{"file_size": file.Size(), "content_type": file.ContentType}).Info("Uploading media file")

	if err := s.storage.Put(ctx, key, file.ContentType, file.Data); err != nil {
		log.WithError(err).Error("Failed to write media file to storage")
		return nil, fmt.Errorf("service: %w: %v", ErrStorage, err)
	}

	// Без записи в журнал объект просто не попадет под очистку
	if err := s.ledger.Track(ctx, key, uploadedAt); err != nil {
		log.WithError(err).Warn("Failed to track pending upload")
	}

	log.Info("Media file uploaded successfully")
	return &models.UploadResult{URL: s.storage.PublicURL(key), Path: key}, nil
}

// UploadMany загружает файлы независимо друг от друга и дожидается всех.
// Ошибка одного файла не отменяет остальные.
func (s *uploadService) UploadMany(ctx context.Context, files []*models.EvidenceFile, incidentID string) *models.UploadBatch {
	results := make([]*models.UploadResult, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(maxParallelUploads)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i], errs[i] = s.Upload(ctx, file, incidentID)
			return nil
		})
	}
	_ = g.Wait()

	batch := &models.UploadBatch{}
	for i := range files {
		if errs[i] != nil {
			batch.Errors = append(batch.Errors, errs[i])
			continue
		}
		batch.URLs = append(batch.URLs, results[i].URL)
	}

	s.logger.WithFields(logrus.Fields{
		"service":     "upload",
		"method":      "UploadMany",
		"incident_id": incidentID,
		"uploaded":    len(batch.URLs),
		"failed":      len(batch.Errors),
	}).Info("Batch upload finished")
	return batch
}
