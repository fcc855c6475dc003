package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/shenikar/traffic_violation_reporting/internal/service/mocks"
	"github.com/shenikar/traffic_violation_reporting/internal/webhook"
	webhook_mocks "github.com/shenikar/traffic_violation_reporting/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reportServiceMocks struct {
	repo      *mocks.MockReportRepository
	storage   *mocks.MockObjectStorage
	ledger    *mocks.MockUploadLedger
	publisher *webhook_mocks.MockWebhookPublisher
}

// newTestReportService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestReportService(t *testing.T) (*reportService, reportServiceMocks) {
	ctrl := gomock.NewController(t)
	m := reportServiceMocks{
		repo:      mocks.NewMockReportRepository(ctrl),
		storage:   mocks.NewMockObjectStorage(ctrl),
		ledger:    mocks.NewMockUploadLedger(ctrl),
		publisher: webhook_mocks.NewMockWebhookPublisher(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := NewReportService(m.repo, m.storage, m.ledger, m.publisher, logger)
	return svc.(*reportService), m
}

func newTestReport() *models.Report {
	return &models.Report{
		IncidentID:  "TR-LOYW3V28-XYZ99",
		Description: "Red light violation at the junction",
		City:        "Pune",
		State:       "Maharashtra",
		Latitude:    18.520430,
		Longitude:   73.856743,
		MediaURLs:   []string{testPublicBase + "TR-LOYW3V28-XYZ99/1700000000000000000.jpg"},
	}
}

func TestSubmitReport_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestReportService(t)
	ctx := context.Background()
	report := newTestReport()
	report.Status = "resolved" // клиент не может задать статус

	// Ожидания
	// 1. Вставка в хранилище
	m.repo.EXPECT().
		Insert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.Report) error {
			assert.Equal(t, models.StatusPending, r.Status)
			r.ID = uuid.New()
			r.CreatedAt = time.Now()
			return nil
		}).Times(1)

	// 2. Объект снимается с очистки
	m.storage.EXPECT().
		KeyFromURL(report.MediaURLs[0]).
		Return("TR-LOYW3V28-XYZ99/1700000000000000000.jpg", true).
		Times(1)
	m.ledger.EXPECT().
		Release(ctx, []string{"TR-LOYW3V28-XYZ99/1700000000000000000.jpg"}).
		Return(nil).Times(1)

	// 3. Кэш и событие
	m.repo.EXPECT().SetReportCache(ctx, report).Return(nil).Times(1)
	m.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		Do(func(_ context.Context, event webhook.ReportEvent) {
			assert.Equal(t, webhook.EventReportSubmitted, event.Type)
			assert.Equal(t, report.IncidentID, event.IncidentID)
		}).Return(nil).Times(1)

	// Действие
	err := svc.SubmitReport(ctx, report)

	// Проверки
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, models.StatusPending, report.Status)
}

func TestSubmitReport_Duplicate(t *testing.T) {
	// Подготовка
	svc, m := newTestReportService(t)
	ctx := context.Background()
	report := newTestReport()

	// Ожидания: конфликт при вставке окончателен, побочных эффектов нет
	m.repo.EXPECT().
		Insert(ctx, report).
		Return(fmt.Errorf("repository: %w", ErrDuplicateIncident)).
		Times(1)
	m.ledger.EXPECT().Release(gomock.Any(), gomock.Any()).Times(0)
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	err := svc.SubmitReport(ctx, report)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateIncident)
}

func TestSubmitReport_StoreFailure(t *testing.T) {
	svc, m := newTestReportService(t)
	ctx := context.Background()
	report := newTestReport()
	dbErr := errors.New("connection reset")

	m.repo.EXPECT().Insert(ctx, report).Return(dbErr).Times(1)
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	err := svc.SubmitReport(ctx, report)

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.ErrorContains(t, err, "could not submit report")
}

func TestSubmitReport_SideEffectFailuresAreNotFatal(t *testing.T) {
	svc, m := newTestReportService(t)
	ctx := context.Background()
	report := newTestReport()

	m.repo.EXPECT().Insert(ctx, report).Return(nil).Times(1)
	m.storage.EXPECT().KeyFromURL(gomock.Any()).Return("key", true).Times(1)
	m.ledger.EXPECT().Release(ctx, []string{"key"}).Return(errors.New("redis down")).Times(1)
	m.repo.EXPECT().SetReportCache(ctx, report).Return(errors.New("redis down")).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("redis down")).Times(1)

	err := svc.SubmitReport(ctx, report)

	require.NoError(t, err)
}

func TestSubmitReport_ForeignMediaURL(t *testing.T) {
	svc, m := newTestReportService(t)
	ctx := context.Background()
	report := newTestReport()
	report.MediaURLs = []string{"https://elsewhere.example.com/photo.jpg"}

	m.repo.EXPECT().Insert(ctx, report).Return(nil).Times(1)
	m.storage.EXPECT().KeyFromURL(report.MediaURLs[0]).Return("", false).Times(1)
	// нечего снимать с очистки
	m.ledger.EXPECT().Release(gomock.Any(), gomock.Any()).Times(0)
	m.repo.EXPECT().SetReportCache(ctx, report).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	require.NoError(t, svc.SubmitReport(ctx, report))
}

func TestGetReport_FromCache(t *testing.T) {
	// Подготовка
	svc, m := newTestReportService(t)
	ctx := context.Background()
	expected := newTestReport()

	// Ожидания
	m.repo.EXPECT().GetReportFromCache(ctx, expected.IncidentID).Return(expected, nil).Times(1)
	m.repo.EXPECT().GetByIncidentID(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	report, err := svc.GetReport(ctx, expected.IncidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, report)
}

func TestGetReport_FromDB(t *testing.T) {
	// Подготовка
	svc, m := newTestReportService(t)
	ctx := context.Background()
	expected := newTestReport()

	// Ожидания
	// 1. Промах кеша
	m.repo.EXPECT().GetReportFromCache(ctx, expected.IncidentID).Return(nil, nil).Times(1)
	// 2. Попадание в БД
	m.repo.EXPECT().GetByIncidentID(ctx, expected.IncidentID).Return(expected, nil).Times(1)
	// 3. Запись в кеш
	m.repo.EXPECT().SetReportCache(ctx, expected).Return(nil).Times(1)

	// Действие
	report, err := svc.GetReport(ctx, expected.IncidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, report)
}

func TestGetReport_NotFound(t *testing.T) {
	svc, m := newTestReportService(t)
	ctx := context.Background()

	m.repo.EXPECT().GetReportFromCache(ctx, "TR-NOPE-00000").Return(nil, nil).Times(1)
	m.repo.EXPECT().GetByIncidentID(ctx, "TR-NOPE-00000").Return(nil, ErrNotFound).Times(1)

	report, err := svc.GetReport(ctx, "TR-NOPE-00000")

	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "could not get report")
}
