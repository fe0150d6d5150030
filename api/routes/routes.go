package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/config"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/handlers"
	"github.com/rahulbrandimpetus/wheelspin-backend/internal/middleware"
)

// HandlerDependencies holds the handlers mounted by SetupRouter
type HandlerDependencies struct {
	SpinHandler  *handlers.SpinHandler
	AdminHandler *handlers.AdminHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	// Create router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	public.Use(middleware.TimeoutMiddleware(cfg.Server.RequestTimeout))
	{
		// Health check
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"backend": cfg.Storage.Backend,
			})
		})

		public.POST("/spin", deps.SpinHandler.Spin)
		public.GET("/participants/:phone", deps.SpinHandler.GetParticipant)
	}

	// Admin routes
	admin := public.Group("/admin")
	{
		admin.POST("/token", deps.AdminHandler.IssueToken)

		protected := admin.Group("")
		protected.Use(middleware.AdminCredentialMiddleware())
		{
			protected.POST("/reset", deps.AdminHandler.ResetInventory)
			protected.GET("/stats", deps.AdminHandler.GetStats)
		}
	}

	return router
}
