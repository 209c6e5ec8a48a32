// @title           ShootFlow Backend API
// @version         1.0.0
// @description     Backend API for real-estate photo shoot workflows: booking, scheduling, media intake, editing, review, and delivery, with real-time status updates via Supabase Realtime.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"shootflow-backend/internal/availability"
	"shootflow-backend/internal/config"
	"shootflow-backend/internal/database"
	"shootflow-backend/internal/handlers"
	"shootflow-backend/internal/logging"
	"shootflow-backend/internal/middleware"
	"shootflow-backend/internal/models"
	"shootflow-backend/internal/notify"
	"shootflow-backend/internal/storage"
	"shootflow-backend/internal/store"
	"shootflow-backend/internal/tasks"
	"shootflow-backend/internal/workflow"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "console").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	migrator, err := database.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to initialize migrator", "error", err)
		os.Exit(1)
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	migrator.Close()
	log.Info("migrations completed")

	dbClient, err := store.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to initialize database client", "error", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	storageClient, err := storage.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Error("failed to initialize storage client", "error", err)
		os.Exit(1)
	}

	notifier, err := notify.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, log)
	if err != nil {
		log.Error("failed to initialize notifier", "error", err)
		os.Exit(1)
	}

	webhook := notify.NewWebhook(cfg.WebhookURL, cfg.WebhookSecret)
	checker := availability.NewChecker(dbClient.DB())
	queue := tasks.NewQueue(dbClient.DB())

	svc := workflow.NewService(dbClient, storageClient, notifier, checker, queue, log)

	runner := tasks.NewRunner(queue, cfg.TaskPollInterval, log)
	runner.Register(workflow.TaskGenerateWatermark, func(ctx context.Context, task *models.Task) error {
		if !webhook.Enabled() {
			log.Debug("no webhook configured, skipping watermark dispatch", "task_id", task.ID)
			return nil
		}
		return webhook.Send(ctx, "watermark_requested", map[string]any{
			"shoot_id": task.ShootID.String(),
			"payload":  task.Payload,
		})
	})
	runner.Register(workflow.TaskArchiveShoot, func(ctx context.Context, task *models.Task) error {
		shoot, err := dbClient.GetShoot(ctx, task.ShootID)
		if err != nil {
			return err
		}
		if !webhook.Enabled() {
			log.Debug("no webhook configured, skipping archive dispatch", "task_id", task.ID)
			return nil
		}
		return webhook.Send(ctx, "shoot_archived", map[string]any{
			"shoot_id": shoot.ID.String(),
			"status":   shoot.Status.String(),
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go runner.Run(ctx)

	shootHandler := handlers.NewShootHandler(svc, dbClient)
	mediaHandler := handlers.NewMediaHandler(svc, dbClient, storageClient)
	rescheduleHandler := handlers.NewRescheduleHandler(svc, dbClient)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/shoots", shootHandler.Create)
	api.GET("/shoots/:shoot_id", shootHandler.Get)
	api.POST("/shoots/:shoot_id/schedule", shootHandler.Schedule)
	api.POST("/shoots/:shoot_id/approve-request", shootHandler.ApproveRequest)
	api.POST("/shoots/:shoot_id/decline-request", shootHandler.DeclineRequest)
	api.POST("/shoots/:shoot_id/start-editing", shootHandler.StartEditing)
	api.POST("/shoots/:shoot_id/submit-for-review", shootHandler.SubmitForReview)
	api.POST("/shoots/:shoot_id/approve", shootHandler.Approve)
	api.POST("/shoots/:shoot_id/reject", shootHandler.Reject)
	api.POST("/shoots/:shoot_id/resolve-issues", shootHandler.ResolveIssues)
	api.POST("/shoots/:shoot_id/put-on-hold", shootHandler.PutOnHold)
	api.POST("/shoots/:shoot_id/complete", shootHandler.Complete)
	api.POST("/shoots/:shoot_id/cancel", shootHandler.Cancel)
	api.POST("/shoots/:shoot_id/request-cancellation", shootHandler.RequestCancellation)
	api.POST("/shoots/:shoot_id/approve-cancellation", shootHandler.ApproveCancellation)
	api.POST("/shoots/:shoot_id/reject-cancellation", shootHandler.RejectCancellation)
	api.GET("/shoots/:shoot_id/workflow-status", shootHandler.WorkflowStatus)
	api.GET("/shoots/:shoot_id/activity", shootHandler.Activity)

	api.POST("/shoots/:shoot_id/files", mediaHandler.Upload)
	api.GET("/shoots/:shoot_id/files", mediaHandler.List)
	api.POST("/shoots/:shoot_id/files/:file_id/complete", mediaHandler.Complete)
	api.POST("/shoots/:shoot_id/files/:file_id/verify", mediaHandler.Verify)
	api.POST("/shoots/:shoot_id/files/:file_id/flag", mediaHandler.Flag)
	api.POST("/shoots/:shoot_id/files/:file_id/favorite", mediaHandler.Favorite)
	api.POST("/shoots/:shoot_id/files/:file_id/cover", mediaHandler.Cover)
	api.POST("/shoots/:shoot_id/files/:file_id/comment", mediaHandler.Comment)
	api.DELETE("/shoots/:shoot_id/files/:file_id", mediaHandler.Delete)

	api.POST("/shoots/:shoot_id/reschedule-requests", rescheduleHandler.Create)
	api.GET("/shoots/:shoot_id/reschedule-requests", rescheduleHandler.List)
	api.PATCH("/reschedule-requests/:request_id", rescheduleHandler.Review)

	log.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
