package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/traffic_violation_reporting/internal/models"
	"github.com/shenikar/traffic_violation_reporting/internal/service"
)

type ReportRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewReportRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.ReportRepository {
	return &ReportRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Exists проверяет, занят ли incident_id
func (r *ReportRepository) Exists(ctx context.Context, incidentID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM traffic_violations WHERE incident_id = $1);`
	var exists bool
	if err := r.db.QueryRow(ctx, query, incidentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check incident id: %w", err)
	}
	return exists, nil
}

// Insert создает запись о заявлении. Уникальность incident_id обеспечивает
// ограничение UNIQUE, конфликт возвращается как service.ErrDuplicateIncident.
func (r *ReportRepository) Insert(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO traffic_violations (incident_id, description, city, state, latitude, longitude, media_urls, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at;
	`
	mediaURLs := report.MediaURLs
	if mediaURLs == nil {
		mediaURLs = []string{}
	}
	err := r.db.QueryRow(ctx, query,
		report.IncidentID,
		report.Description,
		report.City,
		report.State,
		report.Latitude,
		report.Longitude,
		mediaURLs,
		report.Status,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("incident %s: %w", report.IncidentID, service.ErrDuplicateIncident)
		}
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetByIncidentID возвращает заявление по его incident_id
func (r *ReportRepository) GetByIncidentID(ctx context.Context, incidentID string) (*models.Report, error) {
	report := &models.Report{}
	query := `
		SELECT
			id,
			incident_id,
			description,
			city,
			state,
			latitude,
			longitude,
			media_urls,
			status,
			created_at
		FROM traffic_violations
		WHERE incident_id = $1;
	`
	err := r.db.QueryRow(ctx, query, incidentID).Scan(
		&report.ID,
		&report.IncidentID,
		&report.Description,
		&report.City,
		&report.State,
		&report.Latitude,
		&report.Longitude,
		&report.MediaURLs,
		&report.Status,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident %s: %w", incidentID, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report by incident id: %w", err)
	}
	return report, nil
}

// GetReportFromCache пытается получить заявление из Redis
func (r *ReportRepository) GetReportFromCache(ctx context.Context, incidentID string) (*models.Report, error) {
	val, err := r.redisClient.Get(ctx, reportCacheKey(incidentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report from cache: %w", err)
	}

	report := &models.Report{}
	if err := json.Unmarshal(val, report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report from cache: %w", err)
	}
	return report, nil
}

// SetReportCache сохраняет заявление в Redis. Заявления неизменяемы,
// поэтому инвалидация не нужна, хватает TTL.
func (r *ReportRepository) SetReportCache(ctx context.Context, report *models.Report) error {
	val, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, reportCacheKey(report.IncidentID), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set report in cache: %w", err)
	}
	return nil
}

func reportCacheKey(incidentID string) string {
	return fmt.Sprintf("report:%s", incidentID)
}
