package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"task-reward-system/config"
	"task-reward-system/handlers"
	"task-reward-system/middleware"
	"task-reward-system/models"
	"task-reward-system/services"
	"task-reward-system/utils"
	"task-reward-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Invalid configuration: ", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // icons only, 10MB is plenty
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware(cfg.BotServiceToken))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// TranslateError lets unique-key races surface as gorm.ErrDuplicatedKey,
	// which the referral and submit paths branch on.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.ScoreEvent{},
		&models.ReferralEdge{},
		&models.Task{},
		&models.TaskState{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	if cfg.R2Enabled {
		if err := utils.InitR2(cfg.CloudflareAccount, cfg.R2AccessKeyID, cfg.R2AccessKeySecret, cfg.R2Bucket, cfg.CDNBaseURL); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	}

	userService := services.NewUserService(db)
	ledgerService := services.NewLedgerService(db)
	referralService := services.NewReferralService(db)
	taskService := services.NewTaskService(db)
	lifecycleService := services.NewLifecycleService(db)
	leaderboardService := services.NewLeaderboardService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledgerService.StartWeeklyResetScheduler()

	auditWorker := workers.NewLedgerAuditWorker(db, ledgerService, cfg.LedgerAuditInterval)
	auditWorker.Start(ctx)

	// ✅ Setup routes — enforced Gateway auth + /s/admin prefix for admin surface
	handlers.SetupUserRoutes(app, userService, referralService, ledgerService)
	handlers.SetupTaskRoutes(app, taskService, lifecycleService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupAdminUserRoutes(app, userService)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Println("✅ Weekly reset scheduler running (Sundays 12:00 UTC)")
	log.Printf("✅ Ledger audit worker running (every %s)", cfg.LedgerAuditInterval)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
