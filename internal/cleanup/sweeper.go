package cleanup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shenikar/traffic_violation_reporting/internal/service"
	"github.com/sirupsen/logrus"
)

// OrphanSweeper удаляет из хранилища загрузки, которые так и не попали ни в одно заявление
// (загрузка прошла, а вставка записи - нет)
type OrphanSweeper struct {
	ledger   service.UploadLedger
	storage  service.ObjectStorage
	repo     service.ReportRepository
	logger   *logrus.Logger
	cron     *cron.Cron
	schedule string
	grace    time.Duration
	batch    int64
	now      func() time.Time
}

const sweepTimeout = 5 * time.Minute

func NewOrphanSweeper(
	ledger service.UploadLedger,
	storage service.ObjectStorage,
	repo service.ReportRepository,
	logger *logrus.Logger,
	interval, grace time.Duration,
	batch int64,
) *OrphanSweeper {
	return &OrphanSweeper{
		ledger:   ledger,
		storage:  storage,
		repo:     repo,
		logger:   logger,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: fmt.Sprintf("@every %s", interval),
		grace:    grace,
		batch:    batch,
		now:      time.Now,
	}
}

// Start регистрирует задачу очистки в планировщике. Каждый прогон ограничен таймаутом,
// а перекрывающиеся прогоны пропускаются.
func (s *OrphanSweeper) Start() error {
	_, err := s.cron.AddJob(s.schedule, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(s.run)))
	if err != nil {
		return fmt.Errorf("cleanup: failed to register sweep job: %w", err)
	}
	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"grace":    s.grace,
	}).Info("Orphan upload sweeper started")
	return nil
}

// Stop дожидается завершения текущего прогона
func (s *OrphanSweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Orphan upload sweeper stopped")
}

func (s *OrphanSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	deleted, err := s.SweepOnce(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Orphan sweep failed")
		return
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("Orphan sweep complete")
	}
}

// SweepOnce обрабатывает одну пачку просроченных загрузок и возвращает число удаленных объектов.
// Ключ начинается с incident_id, поэтому объект считается привязанным, если заявление с этим ID существует.
func (s *OrphanSweeper) SweepOnce(ctx context.Context) (int, error) {
	keys, err := s.ledger.Expired(ctx, s.now().Add(-s.grace), s.batch)
	if err != nil {
		return 0, fmt.Errorf("cleanup: could not list expired uploads: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	var (
		deleted  int
		released []string
	)
	for _, key := range keys {
		log := s.logger.WithField("key", key)

		incidentID, _, _ := strings.Cut(key, "/")
		referenced, err := s.repo.Exists(ctx, incidentID)
		if err != nil {
			// не удаляем то, что не смогли проверить
			log.WithError(err).Warn("Failed to check report for pending upload")
			continue
		}
		if !referenced {
			if err := s.storage.Delete(ctx, key); err != nil {
				log.WithError(err).Warn("Failed to delete orphaned upload")
				continue
			}
			deleted++
			log.Info("Orphaned upload deleted")
		}
		released = append(released, key)
	}

	if err := s.ledger.Release(ctx, released); err != nil {
		return deleted, fmt.Errorf("cleanup: could not release swept uploads: %w", err)
	}
	return deleted, nil
}
