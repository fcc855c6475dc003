package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=incident_id.go -destination=mocks/mock_incident_id.go -package=mocks

const (
	incidentIDPrefix      = "TR"
	incidentIDRandomLen   = 5
	maxIncidentIDAttempts = 10
	base36Alphabet        = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var errIncidentIDCollision = errors.New("incident ID collision")

// IncidentIDGenerator выдает уникальный человекочитаемый код заявления
type IncidentIDGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type incidentIDGenerator struct {
	repo   ReportRepository
	logger *logrus.Logger
	now    func() time.Time
	random func(n int) string
}

func NewIncidentIDGenerator(repo ReportRepository, logger *logrus.Logger) IncidentIDGenerator {
	return &incidentIDGenerator{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		random: randomBase36,
	}
}

// Generate составляет кандидата TR-<время base36>-<5 случайных символов> и проверяет
// его по хранилищу. Совпадение - повтор, ошибка поиска - немедленный отказ.
func (g *incidentIDGenerator) Generate(ctx context.Context) (string, error) {
	log := g.logger.WithFields(logrus.Fields{
		"service": "incident_id",
		"method":  "Generate",
	})

	var (
		incidentID string
		lookupErr  error
		attempts   int
	)

	err := retry.Do(
		func() error {
			if err := ctx.Err(); err != nil {
				lookupErr = err
				return err
			}
			attempts++
			candidate := g.candidate()

			exists, err := g.repo.Exists(ctx, candidate)
			if err != nil {
				lookupErr = err
				return err
			}
			if exists {
				return errIncidentIDCollision
			}
			incidentID = candidate
			return nil
		},
		retry.Attempts(maxIncidentIDAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errIncidentIDCollision)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.WithField("attempt", n+1).Debug("Incident ID collision, retrying")
		}),
	)

	if lookupErr != nil {
		log.WithError(lookupErr).Error("Failed to check incident ID uniqueness")
		return "", fmt.Errorf("service: could not check incident ID uniqueness: %w", lookupErr)
	}
	if err != nil || incidentID == "" {
		log.WithField("attempts", attempts).Error("No unique incident ID found")
		return "", fmt.Errorf("service: %w after %d attempts", ErrExhaustedRetries, attempts)
	}

	log.WithFields(logrus.Fields{"incident_id": incidentID, "attempts": attempts}).Info("Incident ID generated")
	return incidentID, nil
}

func (g *incidentIDGenerator) candidate() string {
	timestamp := strconv.FormatInt(g.now().UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", incidentIDPrefix, timestamp, g.random(incidentIDRandomLen)))
}

func randomBase36(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36Alphabet[rand.Intn(len(base36Alphabet))])
	}
	return b.String()
}
