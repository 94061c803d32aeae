package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emailvalidation9-a11y/backend/internal/biz/account"
	"github.com/emailvalidation9-a11y/backend/internal/biz/job"
	"github.com/emailvalidation9-a11y/backend/internal/biz/server"
	"github.com/emailvalidation9-a11y/backend/internal/engine"
)

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandlingMiddleware 统一错误处理中间件
func ErrorHandlingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Code:    "INTERNAL_ERROR",
					Message: "An internal error occurred",
				})
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			logger.Error("request error",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))

			status, code, message := classify(err)
			c.JSON(status, ErrorResponse{
				Code:    code,
				Message: message,
				Details: err.Error(),
			})
		}
	}
}

// classify 按错误类型挑HTTP状态码
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, server.ErrDuplicateURL):
		return http.StatusConflict, "DUPLICATE_URL", "A server with this URL is already registered"
	case errors.Is(err, server.ErrUnsafeURL):
		return http.StatusBadRequest, "UNSAFE_URL", "Server URL resolves to a forbidden address"
	case errors.Is(err, server.ErrUnreachable):
		return http.StatusBadRequest, "UNREACHABLE", "Server did not answer the health probe"
	case errors.Is(err, job.ErrJobTerminal):
		return http.StatusConflict, "JOB_TERMINAL", "Job already reached a terminal state"
	case errors.Is(err, job.ErrNotOwner):
		return http.StatusForbidden, "FORBIDDEN", "Job belongs to another account"
	case errors.Is(err, account.ErrInsufficientCredits):
		return http.StatusPaymentRequired, "INSUFFICIENT_CREDITS", "Not enough credits"
	case errors.Is(err, server.ErrNotFound),
		errors.Is(err, job.ErrNotFound),
		errors.Is(err, account.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Resource not found"
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout, "ENGINE_TIMEOUT", "Validation engine timed out"
	case errors.Is(err, engine.ErrUnavailable):
		return http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE", "Validation engine is unavailable"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "DUPLICATE", "Resource already exists"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "An error occurred while processing your request"
	}
}

// Cors CORS配置
func Cors() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Account-ID"}
	return cors.New(config)
}

// RateLimit 固定窗口限流，按客户端IP计数。redis未启用时直接放行。
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), time.Now().Unix()/int64(window.Seconds()))
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// redis故障不拦截业务流量
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}
		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "Too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
