package httpserver

import (
	"context"
	"time"

	"habitgrid/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger 用于 /readyz，repository.Store 实现了它
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnChecker 用于 /readyz，mq.Publisher 实现了它
type ConnChecker interface {
	IsConnected() bool
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	gridHandler *handler.GridHandler,
	completionHandler *handler.CompletionHandler,
	profileHandler *handler.ProfileHandler,
	activityHandler *handler.ActivityHandler,
	jwtSecret string,
	store Pinger,
	publisher ConnChecker,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware())

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/grid", gridHandler.GetGrid)
		auth.GET("/totals", gridHandler.GetTotals)
		auth.POST("/habits/:id/complete", completionHandler.Complete)
		auth.POST("/onboarding", profileHandler.Onboard)
		auth.GET("/profile", profileHandler.GetProfile)
		auth.PUT("/profile", profileHandler.SaveProfile)
		auth.GET("/activity", activityHandler.ListActivity)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
