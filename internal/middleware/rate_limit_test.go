package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campushub/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(6) // burst of one
	h := RateLimit(rl)(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	call := func(method string, userID uint) error {
		req := httptest.NewRequest(method, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		c := e.NewContext(req, httptest.NewRecorder())
		if userID != 0 {
			c.Set(ClaimsContextKey, &models.JwtCustomClaims{UserID: userID})
		}
		return h(c)
	}

	assert.NoError(t, call(http.MethodPost, 1))
	err := call(http.MethodPost, 1)
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, http.StatusTooManyRequests, he.Code)
	}

	// reads are never limited, and other users have their own bucket
	assert.NoError(t, call(http.MethodGet, 1))
	assert.NoError(t, call(http.MethodPost, 2))
	assert.NoError(t, call(http.MethodPost, 0))
}

func TestNewRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("k"))
	}
}
