package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ednc-edu/course-roster-api/internal/service"
	"github.com/ednc-edu/course-roster-api/pkg/config"
	appErrors "github.com/ednc-edu/course-roster-api/pkg/errors"
	"github.com/ednc-edu/course-roster-api/pkg/response"
)

// RateLimit throttles clients with a fixed window counter in redis,
// keyed by client IP. The limiter fails open: a redis error never blocks
// a request, it only logs.
func RateLimit(client *redis.Client, cfg config.RateLimitConfig, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if !cfg.Enabled || client == nil {
			c.Next()
			return
		}

		window := time.Now().Unix() / int64(cfg.Window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", cfg.KeyScope, c.ClientIP(), window)

		ctx := c.Request.Context()
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := client.Expire(ctx, key, cfg.Window).Err(); err != nil {
				logger.Warn("rate limiter expire failed", zap.Error(err))
			}
		}

		if count > int64(cfg.MaxHits) {
			metrics.ObserveRateLimited()
			response.Error(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many requests, try again later"))
			c.Abort()
			return
		}

		c.Next()
	}
}
