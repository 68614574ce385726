package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/arvindh25/college-event-backend/config"
	"github.com/arvindh25/college-event-backend/database"
	"github.com/arvindh25/college-event-backend/internal/attendance"
	"github.com/arvindh25/college-event-backend/internal/auditlog"
	"github.com/arvindh25/college-event-backend/internal/auth"
	"github.com/arvindh25/college-event-backend/internal/event"
	"github.com/arvindh25/college-event-backend/internal/notification"
	"github.com/arvindh25/college-event-backend/internal/registration"
	"github.com/arvindh25/college-event-backend/routes"
	"github.com/arvindh25/college-event-backend/utils"
)

// @title College Event Backend API
// @version 1.0
// @description Event management with QR and manual attendance marking.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Redis backs the stats cache and the mark-endpoint rate limiter.
	// Both fall back gracefully, so startup continues without it.
	if err := utils.InitRedis(cfg); err != nil {
		log.Printf("⚠️ Redis unavailable: %v (stats cache and shared rate limits disabled)", err)
	}

	utils.InitKafka(cfg)

	ctx := context.Background()
	var push notification.PushChannel
	if fcm, err := notification.NewFCMChannel(ctx, cfg); err != nil {
		log.Printf("⚠️ FCM disabled: %v", err)
	} else {
		push = fcm
	}

	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&event.Event{},
		&registration.Registration{},
		&attendance.AttendanceRecord{},
		&notification.Notification{},
		&notification.FCMDeviceToken{},
		&auditlog.AuditLog{},
	); err != nil {
		log.Fatalf("❌ DB AutoMigrate failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	if err := auth.SeedAdminUser(db); err != nil {
		log.Fatalf("❌ Failed to seed admin user: %v", err)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	notifSvc := routes.Setup(router, cfg, routes.Deps{
		DB:    db,
		Push:  push,
		Email: notification.NewSMTPChannel(cfg),
	})
	notification.StartKafkaConsumer(ctx, notifSvc, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Server listening on port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
