package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharevest-expense-ledger/internal/api/handler"
	"github.com/sharevest-expense-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	allocationHandler *handler.AllocationHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Per-owner ledger operations
		owners := v1.Group("/owners/:ownerId")
		{
			owners.POST("/onboarding", allocationHandler.Onboard)
			owners.GET("/allocations", allocationHandler.List)
			owners.POST("/allocations", allocationHandler.Add)
			owners.PUT("/allocations/:id", allocationHandler.Edit)
			owners.GET("/allocations/total", allocationHandler.Total)
			owners.GET("/allocations/chart", allocationHandler.Chart)
		}

		v1.GET("/categories", allocationHandler.Categories)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
