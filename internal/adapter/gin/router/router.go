package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"placeholder-mirror/internal/adapter/gin/handler"
	"placeholder-mirror/internal/adapter/gin/middleware"
	"placeholder-mirror/pkg/logger"
	"placeholder-mirror/pkg/metrics"
)

// Options carries the router's non-handler dependencies.
type Options struct {
	ServiceName string
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer // nil disables /metrics
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	dataHandler *handler.DataHandler,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// /users/ is not /users; unknown paths answer "Route not found" as they are
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics(opts.Metrics))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	router.GET("/", dataHandler.Root)
	router.GET("/load", dataHandler.Load)

	users := router.Group("/users")
	{
		users.PUT("", userHandler.CreateUser)
		users.DELETE("", userHandler.DeleteAllUsers)
		users.GET("/:id", userHandler.GetUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	router.NoRoute(handler.RouteNotFound)
	router.NoMethod(handler.RouteNotFound)

	return router
}
