package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/arvindh25/college-event-backend/config"
	"github.com/arvindh25/college-event-backend/internal/attendance"
	"github.com/arvindh25/college-event-backend/internal/auditlog"
	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/internal/notification"
	"github.com/arvindh25/college-event-backend/internal/registration"
	"github.com/arvindh25/college-event-backend/internal/reports"
	"github.com/arvindh25/college-event-backend/middleware"
	"github.com/arvindh25/college-event-backend/utils"
)

// Deps carries the pieces main wires up before mounting routes.
type Deps struct {
	DB    *gorm.DB
	Push  notification.PushChannel
	Email notification.EmailChannel
}

// Setup builds every repository, service and handler, then mounts the
// API under /api/v1. Returns the notification service so main can hand
// it to the Kafka consumer.
func Setup(r *gin.Engine, cfg *config.Config, deps Deps) notification.Service {
	db := deps.DB

	// ===========================
	// 🛠 Wiring
	// ===========================
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	auditHandler := auditlog.NewHandler(auditSvc)

	notifSvc := notification.NewService(notification.NewRepository(db), deps.Push, deps.Email)
	notifHandler := notification.NewHandler(notifSvc)

	authSvc := auth.NewService(auth.NewRepository(db), cfg)
	authHandler := auth.NewHandler(authSvc)

	eventRepo := event.NewRepository(db)
	eventSvc := event.NewService(eventRepo, auditSvc, notifSvc)
	eventHandler := event.NewHandler(eventSvc)

	regSvc := registration.NewService(registration.NewRepository(db), eventRepo, auditSvc, notifSvc)
	regHandler := registration.NewHandler(regSvc)

	attSvc := attendance.NewService(attendance.NewRepository(db), auditSvc, notifSvc, utils.GetRedis())
	attHandler := attendance.NewHandler(attSvc)

	reportSvc := reports.NewService(reports.NewRepository(db), reports.NewExporter(), auditSvc)
	reportHandler := reports.NewHandler(reportSvc)

	// ===========================
	// 🌐 Routes
	// ===========================
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.GET("", eventHandler.List)
		eventRoutes.GET("/:ref", eventHandler.Get)

		manageRoutes := eventRoutes.Group("")
		manageRoutes.Use(middleware.RequireRoles(auth.RoleAdmin, auth.RoleOrganizer))
		{
			manageRoutes.POST("", eventHandler.Create)
			manageRoutes.PUT("/:ref", eventHandler.Update)
			manageRoutes.PATCH("/:ref/status", eventHandler.UpdateStatus)
			manageRoutes.GET("/:ref/qr", eventHandler.QRPayload)
			manageRoutes.GET("/:ref/qr.png", eventHandler.QRImage)
			manageRoutes.GET("/:ref/registrations", regHandler.ListForEvent)
			manageRoutes.GET("/:ref/attendance", attHandler.ListForEvent)
			manageRoutes.GET("/:ref/attendance/stats", attHandler.EventStats)
		}
		eventRoutes.DELETE("/:ref", middleware.RequireRoles(auth.RoleAdmin), eventHandler.Delete)
		eventRoutes.POST("/:ref/register", middleware.RequireRoles(auth.RoleStudent), regHandler.Register)
	}

	regRoutes := protected.Group("/registrations")
	{
		regRoutes.GET("/my", middleware.RequireRoles(auth.RoleStudent), regHandler.ListMine)
		regRoutes.DELETE("/:ref", middleware.RequireRoles(auth.RoleAdmin), regHandler.Cancel)
	}

	attRoutes := protected.Group("/attendance")
	{
		markRoutes := attRoutes.Group("")
		markRoutes.Use(middleware.MarkRateLimiter())
		{
			markRoutes.POST("/qr", attHandler.MarkQR)
			markRoutes.POST("/manual", attHandler.MarkManual)
		}

		attRoutes.GET("/my", middleware.RequireRoles(auth.RoleStudent), attHandler.ListMine)
		attRoutes.GET("/my/stats", middleware.RequireRoles(auth.RoleStudent), attHandler.StudentStats)
		attRoutes.PATCH("/:ref/verify",
			middleware.RequireRoles(auth.RoleAdmin, auth.RoleOrganizer), attHandler.Verify)
		attRoutes.DELETE("/:ref", middleware.RequireRoles(auth.RoleAdmin), attHandler.Delete)
	}

	notifRoutes := protected.Group("/notifications")
	{
		notifRoutes.GET("", notifHandler.List)
		notifRoutes.GET("/unread-count", notifHandler.UnreadCount)
		notifRoutes.POST("/:id/read", notifHandler.MarkRead)
		notifRoutes.POST("/read-all", notifHandler.MarkAllRead)
		notifRoutes.POST("/device-token", notifHandler.RegisterDeviceToken)
	}

	reportRoutes := protected.Group("/reports")
	reportRoutes.Use(middleware.RequireRoles(auth.RoleAdmin, auth.RoleOrganizer))
	{
		reportRoutes.GET("/attendance", reportHandler.Attendance)
		reportRoutes.GET("/event-summary", reportHandler.EventSummary)
	}

	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(middleware.RequireRoles(auth.RoleAdmin))
	{
		adminRoutes.GET("/audit-logs", auditHandler.List)
	}

	return notifSvc
}
