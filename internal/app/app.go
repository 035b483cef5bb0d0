package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/cache"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/config"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/handlers"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/middleware"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/pdf"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/repositories"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/routes"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTKey(cfg.Auth.JWTSecret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[app][shutdown][err] closing database: %v", err)
		}
	}()

	// === Cache ===
	store := cache.New(cfg.Cache.MaxEntries)

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	submissionRepo := repositories.NewSubmissionRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	telegramService := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)

	userService := services.NewUserService(userRepo, emailService, authService)
	verificationService := services.NewVerificationService(verificationRepo, userService, emailService)

	taskService := services.NewTaskService(taskRepo, store, cfg.Cache.TaskTTL(), cfg.StoreTimeout(), time.Now)
	submissionService := services.NewSubmissionService(
		submissionRepo,
		taskRepo,
		userRepo,
		store,
		emailService,
		telegramService,
		cfg.Cache.UserListTTL(),
		cfg.Cache.AdminListTTL(),
		cfg.StoreTimeout(),
		time.Duration(cfg.Archive.RetentionDays)*24*time.Hour,
		time.Now,
	)
	leaderboardService := services.NewLeaderboardService(userRepo, store, cfg.Cache.LeaderboardTTL(), cfg.StoreTimeout())

	pdfGen := pdf.NewReportGenerator(cfg.Files.RootDir)
	reportService := services.NewReportService(userRepo, submissionRepo, pdfGen, cfg.StoreTimeout())

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService, verificationService)
	verifyHandler := handlers.NewVerifyHandler(verificationService)
	taskHandler := handlers.NewTaskHandler(taskService, cfg.Cache)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, cfg.Cache)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, cfg.Cache)
	uploadHandler := handlers.NewUploadHandler(cfg.Files.RootDir)
	reportHandler := handlers.NewReportHandler(reportService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Routes (JWT/RBAC live inside SetupRoutes)
	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		verifyHandler,
		taskHandler,
		submissionHandler,
		leaderboardHandler,
		uploadHandler,
		reportHandler,
	)

	// Nightly archival sweep for terminal submissions past retention.
	go archiveLoop(submissionService)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func archiveLoop(submissions services.SubmissionService) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		n, err := submissions.ArchiveExpired(context.Background())
		if err != nil {
			log.Printf("[app][archive][err] sweep failed: %v", err)
			continue
		}
		log.Printf("[app][archive] archived %d submissions", n)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
