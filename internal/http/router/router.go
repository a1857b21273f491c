package router

import (
	"github.com/gin-gonic/gin"

	"github.com/skladhub/admin-backend/internal/config"
	"github.com/skladhub/admin-backend/internal/http/handlers"
	"github.com/skladhub/admin-backend/internal/http/middleware"
	"github.com/skladhub/admin-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	disputeHandler *handlers.DisputeHandler,
	reviewHandler *handlers.ReviewHandler,
	verificationHandler *handlers.VerificationHandler,
	paymentHandler *handlers.PaymentHandler,
	payoutHandler *handlers.PayoutHandler,
	statsHandler *handlers.StatsHandler,
	notificationHandler *handlers.NotificationHandler,
	auditHandler *handlers.AuditHandler,
	moderationHandler *handlers.ModerationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.GET("/me", authHandler.Me)
	}

	// Заведение операторов доступно только суперадмину.
	api.POST("/admins", middleware.AuthMiddleware(tokenManager), middleware.RequireSuperadmin(), authHandler.Register)

	// Токен передаётся query параметром, проверка внутри хэндлера.
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		// Споры
		protected.POST("/disputes", disputeHandler.CreateDispute)
		protected.GET("/disputes", disputeHandler.ListDisputes)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.GetDispute)
		protected.POST("/disputes/:id/assign", middleware.UUIDValidator("id"), disputeHandler.AssignDispute)
		protected.PATCH("/disputes/:id/status", middleware.UUIDValidator("id"), disputeHandler.UpdateDisputeStatus)
		protected.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.ResolveDispute)
		protected.GET("/disputes/:id/refunds", middleware.UUIDValidator("id"), disputeHandler.ListDisputeRefunds)

		// Отзывы
		protected.GET("/reviews", reviewHandler.ListReviews)
		protected.GET("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.GetReview)
		protected.POST("/reviews/:id/approve", middleware.UUIDValidator("id"), reviewHandler.ApproveReview)
		protected.POST("/reviews/:id/reject", middleware.UUIDValidator("id"), reviewHandler.RejectReview)
		protected.POST("/reviews/:id/flag", middleware.UUIDValidator("id"), reviewHandler.FlagReview)
		protected.DELETE("/reviews/:id", middleware.UUIDValidator("id"), middleware.RequireSuperadmin(), reviewHandler.DeleteReview)

		// Верификация
		protected.POST("/verifications", verificationHandler.SubmitVerification)
		protected.GET("/verifications", verificationHandler.ListVerifications)
		protected.GET("/verifications/:id", middleware.UUIDValidator("id"), verificationHandler.GetVerification)
		protected.POST("/verifications/:id/approve", middleware.UUIDValidator("id"), verificationHandler.ApproveVerification)
		protected.POST("/verifications/:id/reject", middleware.UUIDValidator("id"), verificationHandler.RejectVerification)
		protected.POST("/verifications/:id/request-documents", middleware.UUIDValidator("id"), verificationHandler.RequestDocuments)
		protected.POST("/verifications/:id/resubmit", middleware.UUIDValidator("id"), verificationHandler.ResubmitDocuments)

		// Платежи
		protected.GET("/payments", paymentHandler.ListPayments)
		protected.GET("/payments/:id", middleware.UUIDValidator("id"), paymentHandler.GetPayment)
		protected.POST("/payments/:id/verify", middleware.UUIDValidator("id"), paymentHandler.VerifyPayment)
		protected.POST("/payments/:id/reject", middleware.UUIDValidator("id"), paymentHandler.RejectPayment)

		// Выплаты
		protected.POST("/payouts/generate", middleware.RequireSuperadmin(), payoutHandler.GeneratePayouts)
		protected.GET("/payouts", payoutHandler.ListPayouts)
		protected.GET("/payouts/:id", middleware.UUIDValidator("id"), payoutHandler.GetPayout)
		protected.POST("/payouts/:id/process", middleware.UUIDValidator("id"), payoutHandler.MarkProcessing)
		protected.POST("/payouts/:id/complete", middleware.UUIDValidator("id"), payoutHandler.MarkCompleted)

		// Аналитика
		protected.GET("/stats/revenue", statsHandler.GetRevenueStats)
		protected.GET("/stats/dashboard", statsHandler.GetDashboardStats)

		// Уведомления
		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.CountUnread)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)

		// Журнал действий
		protected.GET("/audit", middleware.RequireSuperadmin(), auditHandler.ListAuditEntries)

		// Пользователи и объявления
		protected.GET("/users", moderationHandler.ListUsers)
		protected.GET("/users/:id", middleware.UUIDValidator("id"), moderationHandler.GetUser)
		protected.POST("/users/:id/reinstate", middleware.UUIDValidator("id"), moderationHandler.ReinstateUser)

		protected.GET("/listings", moderationHandler.ListListings)
		protected.GET("/listings/:id", middleware.UUIDValidator("id"), moderationHandler.GetListing)
		protected.POST("/listings/:id/unblock", middleware.UUIDValidator("id"), moderationHandler.UnblockListing)

		// Возвраты
		protected.GET("/refunds/pending", moderationHandler.ListPendingRefunds)
		protected.POST("/refunds/:id/process", middleware.UUIDValidator("id"), moderationHandler.ProcessRefund)
	}

	return r
}
