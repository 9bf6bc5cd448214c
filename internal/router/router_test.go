package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campushub/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSetupRoutes_RouteTable(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, zap.NewNop())
	SetupRoutes(e, Dependencies{
		Config: &config.Config{JWTSecret: "secret", RateLimitPerMin: 60},
		Repos:  &Repositories{},
	})

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /health/ready",
		"POST /api/v1/auth/signup",
		"POST /api/v1/auth/signin",
		"POST /api/v1/auth/firebase-login",
		"GET /api/v1/users/:username",
		"PUT /api/v1/users/me",
		"GET /api/v1/posts",
		"GET /api/v1/posts/by-date/:date",
		"POST /api/v1/posts/:id/likes",
		"POST /api/v1/posts/:id/comments",
		"POST /api/v1/comments/:id/vote",
		"POST /api/v1/events/:id/register",
		"PUT /api/v1/events/:id/attendance",
		"GET /api/v1/users/:username/events",
		"GET /api/v1/notifications/unread-count",
		"POST /api/v1/notifications/:id/read",
		"POST /api/v1/notifications/read-all",
		"DELETE /api/v1/notifications/:id",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestSetupRoutes_ProtectedGroupRequiresToken(t *testing.T) {
	e := echo.New()
	SetupRoutes(e, Dependencies{
		Config: &config.Config{JWTSecret: "secret"},
		Repos:  &Repositories{},
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
