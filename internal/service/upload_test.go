package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/shenikar/traffic_violation_reporting/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testPublicBase = "https://traffic-media.s3.us-east-1.amazonaws.com/"

// newTestUploadService - вспомогательная функция для создания сервиса загрузки с моками.
func newTestUploadService(t *testing.T, maxSize int64) (*uploadService, *mocks.MockObjectStorage, *mocks.MockUploadLedger) {
	ctrl := gomock.NewController(t)
	storageMock := mocks.NewMockObjectStorage(ctrl)
	ledgerMock := mocks.NewMockUploadLedger(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := NewUploadService(storageMock, ledgerMock, logger, maxSize)
	return svc.(*uploadService), storageMock, ledgerMock
}

func jpegEvidence(size int) *models.EvidenceFile {
	return &models.EvidenceFile{
		Name:        "photo-1700000000000.jpg",
		ContentType: "image/jpeg",
		Data:        bytes.Repeat([]byte{0xFF}, size),
	}
}

func TestUpload_Success(t *testing.T) {
	// Подготовка
	svc, storageMock, ledgerMock := newTestUploadService(t, 0)
	ctx := context.Background()
	uploadedAt := time.Unix(1700000000, 0)
	svc.now = func() time.Time { return uploadedAt }
	file := jpegEvidence(1024)
	expectedKey := "TR-ABC123-XYZ99/1700000000000000000.jpg"

	// Ожидания
	storageMock.EXPECT().Put(ctx, expectedKey, "image/jpeg", file.Data).Return(nil).Times(1)
	ledgerMock.EXPECT().Track(ctx, expectedKey, uploadedAt).Return(nil).Times(1)
	storageMock.EXPECT().PublicURL(expectedKey).Return(testPublicBase + expectedKey).Times(1)

	// Действие
	result, err := svc.Upload(ctx, file, "TR-ABC123-XYZ99")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedKey, result.Path)
	assert.Equal(t, testPublicBase+expectedKey, result.URL)
}

func TestUpload_MissingFields(t *testing.T) {
	svc, storageMock, _ := newTestUploadService(t, 0)
	ctx := context.Background()

	storageMock.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Upload(ctx, nil, "TR-ABC123-XYZ99")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "File and incident ID are required")

	_, err = svc.Upload(ctx, jpegEvidence(10), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Upload(ctx, jpegEvidence(0), "TR-ABC123-XYZ99")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpload_TooLarge(t *testing.T) {
	// Подготовка
	svc, storageMock, _ := newTestUploadService(t, 0)
	ctx := context.Background()
	file := jpegEvidence(int(models.MaxEvidenceSize) + 1)

	// Ожидания: хранилище не вызывается
	storageMock.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := svc.Upload(ctx, file, "TR-ABC123-XYZ99")

	// Проверки
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "File size must not exceed 10MB", vErr.Message)
}

func TestUpload_RejectsNonMedia(t *testing.T) {
	svc, storageMock, _ := newTestUploadService(t, 0)
	ctx := context.Background()
	file := &models.EvidenceFile{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")}

	storageMock.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Upload(ctx, file, "TR-ABC123-XYZ99")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Only image and video files are allowed")
}

func TestUpload_ExactlyAtLimit(t *testing.T) {
	svc, storageMock, ledgerMock := newTestUploadService(t, 2048)
	ctx := context.Background()

	storageMock.EXPECT().Put(ctx, gomock.Any(), "image/jpeg", gomock.Any()).Return(nil).Times(1)
	ledgerMock.EXPECT().Track(ctx, gomock.Any(), gomock.Any()).Return(nil).Times(1)
	storageMock.EXPECT().PublicURL(gomock.Any()).Return(testPublicBase + "k").Times(1)

	_, err := svc.Upload(ctx, jpegEvidence(2048), "TR-ABC123-XYZ99")
	require.NoError(t, err)
}

func TestUpload_StorageFailure(t *testing.T) {
	// Подготовка
	svc, storageMock, ledgerMock := newTestUploadService(t, 0)
	ctx := context.Background()

	// Ожидания: при ошибке хранилища загрузка не учитывается в журнале
	storageMock.EXPECT().Put(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("AccessDenied")).Times(1)
	ledgerMock.EXPECT().Track(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие
	result, err := svc.Upload(ctx, jpegEvidence(16), "TR-ABC123-XYZ99")

	// Проверки
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestUpload_LedgerFailureDoesNotFailUpload(t *testing.T) {
	svc, storageMock, ledgerMock := newTestUploadService(t, 0)
	ctx := context.Background()

	storageMock.EXPECT().Put(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
	ledgerMock.EXPECT().Track(ctx, gomock.Any(), gomock.Any()).Return(errors.New("redis down")).Times(1)
	storageMock.EXPECT().PublicURL(gomock.Any()).Return(testPublicBase + "k").Times(1)

	result, err := svc.Upload(ctx, jpegEvidence(16), "TR-ABC123-XYZ99")

	require.NoError(t, err)
	assert.Equal(t, testPublicBase+"k", result.URL)
}

func TestUploadMany_AggregatesIndependently(t *testing.T) {
	// Подготовка
	svc, storageMock, ledgerMock := newTestUploadService(t, 0)
	ctx := context.Background()
	good := &models.EvidenceFile{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte("good")}
	bad := &models.EvidenceFile{Name: "b.webm", ContentType: "video/webm", Data: []byte("bad")}
	tooLarge := jpegEvidence(int(models.MaxEvidenceSize) + 1)

	// Ожидания: отказ одного файла не мешает другому
	storageMock.EXPECT().
		Put(ctx, gomock.Any(), "image/jpeg", good.Data).
		Return(nil).Times(1)
	storageMock.EXPECT().
		Put(ctx, gomock.Any(), "video/webm", bad.Data).
		Return(errors.New("timeout")).Times(1)
	ledgerMock.EXPECT().Track(ctx, gomock.Any(), gomock.Any()).Return(nil).Times(1)
	storageMock.EXPECT().PublicURL(gomock.Any()).Return(testPublicBase + "good.jpg").Times(1)

	// Действие
	batch := svc.UploadMany(ctx, []*models.EvidenceFile{good, bad, tooLarge}, "TR-ABC123-XYZ99")

	// Проверки
	assert.Equal(t, []string{testPublicBase + "good.jpg"}, batch.URLs)
	require.Len(t, batch.Errors, 2)
	assert.ErrorIs(t, batch.Errors[0], ErrStorage)
	assert.ErrorIs(t, batch.Errors[1], ErrValidation)
}

func TestUploadMany_Empty(t *testing.T) {
	svc, _, _ := newTestUploadService(t, 0)

	batch := svc.UploadMany(context.Background(), nil, "TR-ABC123-XYZ99")

	assert.Empty(t, batch.URLs)
	assert.Empty(t, batch.Errors)
}
