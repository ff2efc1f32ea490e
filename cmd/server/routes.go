package main

import (
	"github.com/gin-gonic/gin"

	"github.com/codexx/academy/backend/internal/middleware"
	"github.com/codexx/academy/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "academy"})
	})

	// Public portfolio pages
	r.GET("/portfolio/:username", svc.portfolioHandler.GetPortfolio)
	r.GET("/portfolio/:username/projects/:id", svc.portfolioHandler.GetProject)

	// CV preview and export
	r.GET("/cv/preview", svc.cvHandler.Preview)
	r.GET("/cv/capabilities", svc.cvHandler.Capabilities)
	r.GET("/cv/download", svc.cvHandler.Download)

	// Contact form. The pipeline consults the rate limiter itself so the
	// honeypot can deflect bots before they consume a visitor's budget.
	r.POST("/contact", svc.contactHandler.Submit)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/portfolio", svc.portfolioHandler.GetGlobal)
		api.PUT("/portfolio/:username", svc.portfolioHandler.SaveProfile)
	}
}
