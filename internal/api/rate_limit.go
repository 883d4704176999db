package api

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"weeklygrind/plan-tracker/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

// RequestRateLimiter is satisfied by *redis_rate.Limiter.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per client IP for the named route.
func RateLimit(rateLimiter RequestRateLimiter, routeName string, allowedPerMin int, metricsManager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := rateLimiter.Allow(
			c.Request.Context(),
			routeName+":"+c.ClientIP(),
			redis_rate.PerMinute(allowedPerMin),
		)
		if err != nil {
			log.Errorf("rate limit %s: %s", routeName, err)
			abortWithError(c, http.StatusInternalServerError, "rate limit internal error")
			return
		}

		if res.Allowed > 0 {
			c.Next()
			return
		}

		metricsManager.CounterRateLimited.Inc()
		retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		abortWithError(c, http.StatusTooManyRequests, fmt.Sprintf("retry after %d seconds", retryAfter))
	}
}
