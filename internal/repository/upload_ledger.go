package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/traffic_violation_reporting/internal/service"
)

const pendingUploadsKey = "uploads:pending"

// UploadLedger хранит ключи загруженных объектов в sorted set Redis,
// score - время загрузки в unix-секундах
type UploadLedger struct {
	redisClient *redis.Client
}

func NewUploadLedger(redisClient *redis.Client) service.UploadLedger {
	return &UploadLedger{redisClient: redisClient}
}

// Track отмечает объект как ожидающий привязки к заявлению
func (l *UploadLedger) Track(ctx context.Context, key string, uploadedAt time.Time) error {
	member := redis.Z{Score: float64(uploadedAt.Unix()), Member: key}
	if err := l.redisClient.ZAdd(ctx, pendingUploadsKey, member).Err(); err != nil {
		return fmt.Errorf("failed to track pending upload: %w", err)
	}
	return nil
}

// Release снимает объекты с учета
func (l *UploadLedger) Release(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	members := make([]interface{}, len(keys))
	for i, key := range keys {
		members[i] = key
	}
	if err := l.redisClient.ZRem(ctx, pendingUploadsKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to release pending uploads: %w", err)
	}
	return nil
}

// Expired возвращает не больше limit ключей, загруженных раньше before
func (l *UploadLedger) Expired(ctx context.Context, before time.Time, limit int64) ([]string, error) {
	keys, err := l.redisClient.ZRangeByScore(ctx, pendingUploadsKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "(" + strconv.FormatInt(before.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list expired uploads: %w", err)
	}
	return keys, nil
}
