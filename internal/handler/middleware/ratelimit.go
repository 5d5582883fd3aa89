package middleware

import (
	"math"

	"storefront/internal/handler/httperr"
	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

var errRateLimited = errs.New("rate limit exceeded")

// RateLimit buckets requests per operation class and identity; denials
// surface 429 with a Retry-After the client can honor.
func RateLimit(limiter *ratelimit.Limiter, class ratelimit.Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := limiter.Allow(class, RateIdentity(c))
		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			httperr.AbortTooManyRequests(c, errRateLimited, seconds)
			return
		}
		c.Next()
	}
}
