package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/traffic_violation_reporting/internal/cleanup"
	"github.com/shenikar/traffic_violation_reporting/internal/config"
	v1 "github.com/shenikar/traffic_violation_reporting/internal/handler/http/v1"
	"github.com/shenikar/traffic_violation_reporting/internal/repository"
	"github.com/shenikar/traffic_violation_reporting/internal/service"
	"github.com/shenikar/traffic_violation_reporting/internal/storage"
	"github.com/shenikar/traffic_violation_reporting/internal/webhook"
	"github.com/shenikar/traffic_violation_reporting/pkg/logger"
	"github.com/shenikar/traffic_violation_reporting/pkg/postgres"
	redisclient "github.com/shenikar/traffic_violation_reporting/pkg/redis"
	s3client "github.com/shenikar/traffic_violation_reporting/pkg/s3"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/traffic_violation_reporting/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Traffic Violation Reporting API
// @version 1.0
// @description API for submitting traffic violation reports with photo or video evidence.
// @host localhost:8080
// @BasePath /api
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Объектное хранилище
	s3Client, err := s3client.NewS3Client(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to configure S3 client: %v", err)
	}
	objectStorage := storage.NewS3Storage(s3Client, cfg.S3Bucket, cfg.AWSRegion, cfg.MediaPublicBaseURL)

	// Инициализация издателя вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)

	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Инициализация репозиториев
	reportRepo := repository.NewReportRepository(dbpool, redisClient, cfg.ReportCacheTTL)
	uploadLedger := repository.NewUploadLedger(redisClient)

	// Инициализация сервисов
	idGenerator := service.NewIncidentIDGenerator(reportRepo, log)
	uploadService := service.NewUploadService(objectStorage, uploadLedger, log, cfg.MaxUploadBytes)
	reportService := service.NewReportService(reportRepo, objectStorage, uploadLedger, webhookPublisher, log)
	geocoder := service.NewNominatimGeocoder(cfg.NominatimURL, cfg.GeocodeUserAgent, cfg.GeocodeTimeout, log)

	// Очистка загрузок, не попавших в заявления
	sweeper := cleanup.NewOrphanSweeper(uploadLedger, objectStorage, reportRepo, log,
		cfg.OrphanSweepInterval, cfg.OrphanGracePeriod, cfg.OrphanSweepBatch)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start orphan sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Инициализация хэндлеров
	handler := v1.NewHandler(idGenerator, uploadService, reportService, geocoder, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	api := router.Group("/api")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
