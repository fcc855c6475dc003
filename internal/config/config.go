package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass      string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	ReportCacheTTL time.Duration `env:"REPORT_CACHE_TTL" envDefault:"5m"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Object storage (S3)
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Bucket           string `env:"AWS_S3_BUCKET"`
	S3Endpoint         string `env:"AWS_S3_ENDPOINT"`
	MediaPublicBaseURL string `env:"MEDIA_PUBLIC_BASE_URL"`
	MaxUploadBytes     int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Geocoding proxy
	NominatimURL     string        `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org/reverse"`
	GeocodeUserAgent string        `env:"GEOCODE_USER_AGENT"`
	GeocodeTimeout   time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"10s"`

	// Очистка осиротевших загрузок
	OrphanGracePeriod   time.Duration `env:"ORPHAN_GRACE_PERIOD" envDefault:"24h"`
	OrphanSweepInterval time.Duration `env:"ORPHAN_SWEEP_INTERVAL" envDefault:"1h"`
	OrphanSweepBatch    int64         `env:"ORPHAN_SWEEP_BATCH" envDefault:"100"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		ReportCacheTTL:      getEnvAsDuration("REPORT_CACHE_TTL", 5*time.Minute),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		WebhookSecret:       os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:      getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:   getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:    getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:            os.Getenv("AWS_S3_BUCKET"),
		S3Endpoint:          os.Getenv("AWS_S3_ENDPOINT"),
		MediaPublicBaseURL:  os.Getenv("MEDIA_PUBLIC_BASE_URL"),
		MaxUploadBytes:      getEnvAsInt64("MAX_UPLOAD_BYTES", 10*1024*1024),
		NominatimURL:        getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org/reverse"),
		GeocodeUserAgent:    getEnv("GEOCODE_USER_AGENT", "TrafficViolationForm/1.0"),
		GeocodeTimeout:      getEnvAsDuration("GEOCODE_TIMEOUT", 10*time.Second),
		OrphanGracePeriod:   getEnvAsDuration("ORPHAN_GRACE_PERIOD", 24*time.Hour),
		OrphanSweepInterval: getEnvAsDuration("ORPHAN_SWEEP_INTERVAL", time.Hour),
		OrphanSweepBatch:    getEnvAsInt64("ORPHAN_SWEEP_BATCH", 100),
	}

	// S3-совместимое хранилище адресуется по пути: <endpoint>/<bucket>/<key>
	if cfg.MediaPublicBaseURL == "" && cfg.S3Endpoint != "" {
		cfg.MediaPublicBaseURL = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
