package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/themestore/demoaccess/internal/config"
	"github.com/themestore/demoaccess/internal/handler"
	"github.com/themestore/demoaccess/internal/middleware"
	"github.com/themestore/demoaccess/internal/model"
	"github.com/themestore/demoaccess/internal/repository"
	"github.com/themestore/demoaccess/internal/service"
	"github.com/themestore/demoaccess/internal/ws"
	"github.com/themestore/demoaccess/migrations"
	"github.com/themestore/demoaccess/pkg/auth"
	"github.com/themestore/demoaccess/pkg/mailer"
	"github.com/themestore/demoaccess/pkg/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           ThemeStore Demo Access API
// @version         1.0
// @description     Lead capture, OTP email verification and time/view-bounded demo links.

// @contact.name   API Support
// @contact.email  support@demoaccess.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting Demo Access API [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.Lead{},
			&model.Enquiry{},
			&model.OTPChallenge{},
			&model.DemoLink{},
			&model.VideoActivity{},
			&model.Query{},
			&model.Followup{},
			&model.AdminUser{},
			&model.UserLog{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Email (SMTP / Mailpit) ====================
	mailClient := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	log.Printf("📧 SMTP configured: %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)

	// ==================== MinIO Storage ====================
	minioStorage, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Fatalf("❌ MinIO not available: %v", err)
	}
	log.Println("✅ Connected to MinIO")

	statCtx, statCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if info, err := minioStorage.StatObject(statCtx, cfg.MinIO.VideoObject); err != nil {
		log.Printf("⚠️  Demo video %q not found in bucket, streaming will fail until it is uploaded: %v", cfg.MinIO.VideoObject, err)
	} else {
		log.Printf("🎬 Demo video ready: %s (%d bytes)", cfg.MinIO.VideoObject, info.Size)
	}
	statCancel()

	// ==================== Initialize Layers ====================
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	leadRepo := repository.NewLeadRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	linkRepo := repository.NewDemoLinkRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	leadService := service.NewLeadService(leadRepo)
	otpService := service.NewOTPService(otpRepo, leadRepo, mailClient,
		cfg.Demo.OTPExpiry, cfg.Demo.OTPMaxAttempts, cfg.Demo.OTPResendLimit, cfg.Demo.VideoPassword)
	linkService := service.NewDemoLinkService(linkRepo, leadRepo, engagementRepo, mailClient, minioStorage,
		service.DemoLinkConfig{
			TTL:           cfg.Demo.LinkTTL,
			MaxViews:      cfg.Demo.LinkMaxViews,
			LeadViewCap:   cfg.Demo.LeadViewCap,
			PublicBaseURL: cfg.App.PublicBaseURL,
			VideoObject:   cfg.MinIO.VideoObject,
			StreamExpiry:  cfg.Demo.StreamExpiry,
			VideoPassword: cfg.Demo.VideoPassword,
		})
	engagementService := service.NewEngagementService(engagementRepo, linkService, leadRepo, mailClient, cfg.Demo.AdminAlertTo)
	adminService := service.NewAdminService(adminRepo, leadRepo, linkRepo, otpRepo, engagementRepo, jwtManager, rdb)

	// Dashboard feed hub (Redis Pub/Sub for horizontal scaling)
	hub := ws.NewHub(rdb)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Handlers
	leadHandler := handler.NewLeadHandler(leadService, hub)
	otpHandler := handler.NewOTPHandler(otpService, hub, cfg.Demo.OTPExpiry)
	demoHandler := handler.NewDemoHandler(linkService, engagementService, hub, cfg.Demo.VideoEmbedURL, cfg.Demo.VideoPassword)
	adminHandler := handler.NewAdminHandler(adminService, engagementService, linkService)
	feedHandler := handler.NewFeedHandler(hub, jwtManager)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger configuration
	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "demoaccess-api",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api")
	{
		// Public intake and verification
		api.POST("/leads", leadHandler.Create)
		api.GET("/leads/enquiry", leadHandler.EnquiryLookup)
		api.POST("/otp/send", otpHandler.Send)
		api.POST("/otp/verify", otpHandler.Verify)

		// Token-gated demo access
		demo := api.Group("/demo")
		{
			demo.POST("/link", demoHandler.Issue)
			demo.GET("/watch", demoHandler.Watch)
			demo.GET("/stream", demoHandler.Stream)
			demo.POST("/activity", demoHandler.TrackActivity)
			demo.POST("/query", demoHandler.SaveQuery)
			demo.POST("/interest", demoHandler.SaveInterest)
		}

		// Dashboard
		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			protected := admin.Group("")
			protected.Use(middleware.AuthMiddleware(jwtManager, rdb))
			{
				protected.POST("/logout", adminHandler.Logout)
				protected.GET("/leads", adminHandler.Leads)
				protected.GET("/leads/:id", adminHandler.LeadDetail)
				protected.POST("/followups", adminHandler.SaveFollowup)
				protected.GET("/queries", adminHandler.PendingQueries)
				protected.POST("/queries/respond", adminHandler.RespondQuery)
				protected.POST("/queries/bulk-respond", adminHandler.BulkRespond)
				protected.GET("/user-logs", middleware.RequireRole(string(model.AdminRoleAdmin)), adminHandler.UserLogs)
				protected.POST("/sweep", middleware.RequireRole(string(model.AdminRoleAdmin)), adminHandler.Sweep)
			}

			// WebSocket feed (auth via query parameter)
			admin.GET("/feed", feedHandler.HandleFeed)
		}
	}

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 Demo Access API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 Dashboard feed: ws://0.0.0.0:%s/api/admin/feed?token=<jwt>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	hubCancel()
	log.Println("✅ Server exited gracefully")
}
