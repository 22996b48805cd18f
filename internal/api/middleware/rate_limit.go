package middleware

import (
	"fmt"
	"net/http"
	"time"

	"wconnect-service/internal/models"
	"wconnect-service/internal/services"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	redisService *services.RedisService
}

func NewRateLimitMiddleware(redisService *services.RedisService) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redisService: redisService,
	}
}

// RateLimit limits authenticated requests per user and endpoint.
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "unauthorized",
			})
			c.Abort()
			return
		}

		key := fmt.Sprintf("rate_limit:%d:%s", userID, c.Request.URL.Path)
		allowed, err := rm.redisService.CheckRateLimit(c.Request.Context(), key, requests, window)
		if err != nil {
			// Redis being down must not take messaging down with it.
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Code:    http.StatusTooManyRequests,
				Message: fmt.Sprintf("too many requests, limit is %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitIP limits unauthenticated requests by client address.
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit_ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		allowed, err := rm.redisService.CheckRateLimit(c.Request.Context(), key, requests, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Code:    http.StatusTooManyRequests,
				Message: fmt.Sprintf("too many requests, limit is %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
