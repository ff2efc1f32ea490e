package main

import (
	"context"

	"github.com/codexx/academy/backend/internal/config"
	"github.com/codexx/academy/backend/internal/handlers"
	"github.com/codexx/academy/backend/internal/middleware"
	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/internal/services"
	"github.com/codexx/academy/backend/internal/store"
	"github.com/codexx/academy/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	portfolioService *services.PortfolioService
	taskQueue        services.TaskQueue
	worker           *services.Worker
	portfolioHandler *handlers.PortfolioHandler
	cvHandler        *handlers.CVHandler
	contactHandler   *handlers.ContactHandler
	contactLimiter   *middleware.RateLimiter
}

// bootstrap initializes all application dependencies: database, stores,
// services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start visitor/system log retention scheduler
	services.StartRetentionScheduler(models.GetDB(), cfg.Log.RetentionDays)

	// Portfolio façade: relational store first, flat file as fallback
	fileStore := store.NewFileStore(cfg.Data.File)
	portfolioService := services.NewPortfolioService(models.GetDB(), fileStore)

	// Outbound notification pipeline
	notificationService := services.NewNotificationService(models.GetDB())
	processTask := func(ctx context.Context, task *services.ContactNotifyTask) error {
		return notificationService.SendContactNotification(task.Username, &services.ContactNotification{
			Name:    task.Name,
			Email:   task.Email,
			Message: task.Message,
		})
	}

	// Task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(processTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processTask)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start async worker")
			}
		}
	}

	contactLimiter := middleware.NewRateLimiter(cfg.RateLimit.ContactRPS, cfg.RateLimit.ContactBurst)
	contactService := services.NewContactService(models.GetDB(), contactLimiter, taskQueue)

	pdfService := services.NewPDFService(&cfg.PDF)

	return &appServices{
		portfolioService: portfolioService,
		taskQueue:        taskQueue,
		worker:           worker,
		portfolioHandler: handlers.NewPortfolioHandler(models.GetDB(), portfolioService),
		cvHandler:        handlers.NewCVHandler(portfolioService, pdfService),
		contactHandler:   handlers.NewContactHandler(contactService),
		contactLimiter:   contactLimiter,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	services.StopRetentionScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
