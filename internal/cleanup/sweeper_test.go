package cleanup

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shenikar/traffic_violation_reporting/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sweeperMocks struct {
	ledger  *mocks.MockUploadLedger
	storage *mocks.MockObjectStorage
	repo    *mocks.MockReportRepository
}

func newTestSweeper(t *testing.T) (*OrphanSweeper, sweeperMocks) {
	ctrl := gomock.NewController(t)
	m := sweeperMocks{
		ledger:  mocks.NewMockUploadLedger(ctrl),
		storage: mocks.NewMockObjectStorage(ctrl),
		repo:    mocks.NewMockReportRepository(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	sweeper := NewOrphanSweeper(m.ledger, m.storage, m.repo, logger, time.Hour, 24*time.Hour, 50)
	sweeper.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return sweeper, m
}

func TestSweepOnce_DeletesOnlyUnreferenced(t *testing.T) {
	// Подготовка
	sweeper, m := newTestSweeper(t)
	ctx := context.Background()
	cutoff := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	// Ожидания
	m.ledger.EXPECT().
		Expired(ctx, cutoff, int64(50)).
		Return([]string{"TR-ORPHAN-AAAAA/1.jpg", "TR-SAVED-BBBBB/2.webm"}, nil).
		Times(1)
	m.repo.EXPECT().Exists(ctx, "TR-ORPHAN-AAAAA").Return(false, nil).Times(1)
	m.repo.EXPECT().Exists(ctx, "TR-SAVED-BBBBB").Return(true, nil).Times(1)
	m.storage.EXPECT().Delete(ctx, "TR-ORPHAN-AAAAA/1.jpg").Return(nil).Times(1)
	m.ledger.EXPECT().
		Release(ctx, []string{"TR-ORPHAN-AAAAA/1.jpg", "TR-SAVED-BBBBB/2.webm"}).
		Return(nil).Times(1)

	// Действие
	deleted, err := sweeper.SweepOnce(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestSweepOnce_KeepsKeysOnFailure(t *testing.T) {
	// Подготовка
	sweeper, m := newTestSweeper(t)
	ctx := context.Background()

	// Ожидания: ключи, которые не удалось проверить или удалить, остаются в журнале
	m.ledger.EXPECT().
		Expired(ctx, gomock.Any(), gomock.Any()).
		Return([]string{"TR-A-AAAAA/1.jpg", "TR-B-BBBBB/1.jpg"}, nil).
		Times(1)
	m.repo.EXPECT().Exists(ctx, "TR-A-AAAAA").Return(false, errors.New("db down")).Times(1)
	m.repo.EXPECT().Exists(ctx, "TR-B-BBBBB").Return(false, nil).Times(1)
	m.storage.EXPECT().Delete(ctx, "TR-B-BBBBB/1.jpg").Return(errors.New("throttled")).Times(1)
	m.ledger.EXPECT().Release(ctx, nil).Return(nil).Times(1)

	// Действие
	deleted, err := sweeper.SweepOnce(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestSweepOnce_NothingExpired(t *testing.T) {
	sweeper, m := newTestSweeper(t)
	ctx := context.Background()

	m.ledger.EXPECT().Expired(ctx, gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	m.ledger.EXPECT().Release(gomock.Any(), gomock.Any()).Times(0)

	deleted, err := sweeper.SweepOnce(ctx)

	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSweepOnce_LedgerError(t *testing.T) {
	sweeper, m := newTestSweeper(t)
	ctx := context.Background()

	m.ledger.EXPECT().Expired(ctx, gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down")).Times(1)

	_, err := sweeper.SweepOnce(ctx)

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not list expired uploads")
}

func TestStartStop(t *testing.T) {
	sweeper, _ := newTestSweeper(t)

	require.NoError(t, sweeper.Start())
	assert.Equal(t, "@every 1h0m0s", sweeper.schedule)
	sweeper.Stop()
}
