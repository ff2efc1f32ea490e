package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/codexx/academy/backend/internal/config"
	"github.com/codexx/academy/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)

	// Initialize all application services
	svc := bootstrap(cfg)

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Create router and register routes
	r := gin.New()
	registerRoutes(r, svc)

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info().Msg("Shutdown signal received")
		svc.shutdown()
		os.Exit(0)
	}()

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
