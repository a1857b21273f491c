package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/config"
	"github.com/skladhub/admin-backend/internal/db"
	httpHandlers "github.com/skladhub/admin-backend/internal/http/handlers"
	httpRouter "github.com/skladhub/admin-backend/internal/http/router"
	"github.com/skladhub/admin-backend/internal/logger"
	"github.com/skladhub/admin-backend/internal/repository"
	"github.com/skladhub/admin-backend/internal/service"
	"github.com/skladhub/admin-backend/internal/storage"
	"github.com/skladhub/admin-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	docStorage, err := storage.NewDocumentStorage(cfg.DocsStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	adminRepo := repository.NewAdminRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)
	listingRepo := repository.NewListingRepository(dbConn)
	bookingRepo := repository.NewBookingRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	refundRepo := repository.NewRefundRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	verificationRepo := repository.NewVerificationRepository(dbConn)
	payoutRepo := repository.NewPayoutRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	auditRepo := repository.NewAuditRepository(dbConn)

	// Сервисы.
	auditService := service.NewAuditService(auditRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	authService := service.NewAuthService(adminRepo, tokenManager, auditService)
	disputeService := service.NewDisputeService(disputeRepo, notificationService, auditService, logger.Log)
	reviewService := service.NewReviewService(reviewRepo, notificationService, auditService, logger.Log)
	verificationService := service.NewVerificationService(verificationRepo, notificationService, auditService, logger.Log)
	paymentService := service.NewPaymentService(paymentRepo, auditService, logger.Log)
	payoutService := service.NewPayoutService(payoutRepo, bookingRepo, auditService, logger.Log)
	moderationService := service.NewModerationService(userRepo, listingRepo, refundRepo, auditService, logger.Log)

	cache := service.NewCacheService()
	analyticsService := service.NewAnalyticsService(bookingRepo, disputeRepo, reviewRepo, verificationRepo, cache, cfg.AnalyticsCacheTTL)

	// Вебсокеты. Уведомления сохраняются сервисом до realtime доставки.
	hub := ws.NewHub()
	go hub.Run()
	notificationService.SetPusher(hub)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService, moderationService, authService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService, authService)
	verificationHandler := httpHandlers.NewVerificationHandler(verificationService, authService, docStorage)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService, authService)
	payoutHandler := httpHandlers.NewPayoutHandler(payoutService, authService)
	statsHandler := httpHandlers.NewStatsHandler(analyticsService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	auditHandler := httpHandlers.NewAuditHandler(auditService)
	moderationHandler := httpHandlers.NewModerationHandler(moderationService, authService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		disputeHandler,
		reviewHandler,
		verificationHandler,
		paymentHandler,
		payoutHandler,
		statsHandler,
		notificationHandler,
		auditHandler,
		moderationHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
