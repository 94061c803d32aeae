package api

import (
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/emailvalidation9-a11y/backend/internal/api/middleware"
	"github.com/emailvalidation9-a11y/backend/internal/orm"
	"github.com/emailvalidation9-a11y/backend/pkg/config"
)

var Provider = wire.NewSet(
	NewServerHandler,
	NewValidationHandler,
	NewJobHandler,
	NewServer,
)

type Server struct {
	router *gin.Engine
}

func NewServer(
	cfg *config.Config,
	storage *orm.Storage,
	servers *ServerHandler,
	validation *ValidationHandler,
	jobs *JobHandler,
	rdb *redis.Client,
	logger *zap.Logger,
) *Server {
	s := &Server{}

	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.ErrorHandlingMiddleware(logger))
	s.router.Use(middleware.Cors())
	s.router.Use(middleware.RateLimit(rdb, cfg.Redis.RateLimit, cfg.Redis.RateWindow))

	v1 := s.router.Group("/api/v1")
	{
		sv := v1.Group("/servers")
		{
			sv.GET("", servers.List)
			sv.POST("", servers.Create)
			sv.GET("/:id", servers.Get)
			sv.PUT("/:id", servers.Update)
			sv.DELETE("/:id", servers.Delete)
			sv.POST("/:id/health", servers.SetHealth)
			sv.POST("/test", servers.Test)
		}

		v1.POST("/validate", validation.ValidateSingle)
		v1.POST("/validate/bulk", validation.SubmitBulk)

		jb := v1.Group("/jobs")
		{
			jb.GET("", jobs.List)
			jb.GET("/:id", jobs.Poll)
			jb.GET("/:id/results", jobs.Results)
			jb.GET("/:id/results/export", jobs.ExportCSV)
			jb.POST("/:id/cancel", jobs.Cancel)
		}
	}

	s.router.GET("/health", func(c *gin.Context) {
		if err := storage.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "healthy", "time": time.Now()})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.Static("/results", cfg.Artifacts.Dir)

	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
