package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per client, bursting up to a
// sixth of that. perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{limiters: make(map[string]*rate.Limiter), limit: rate.Inf, burst: 1}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = max(perMinute/6, 1)
	}
	return rl
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

// RateLimit limits write requests (anything but GET/HEAD/OPTIONS) per
// authenticated user, or per client IP before authentication.
func RateLimit(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			key := "ip:" + c.RealIP()
			if claims, ok := c.Get(ClaimsContextKey).(*models.JwtCustomClaims); ok {
				key = "user:" + strconv.FormatUint(uint64(claims.UserID), 10)
			}
			if !rl.Allow(key) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, slow down")
			}
			return next(c)
		}
	}
}
