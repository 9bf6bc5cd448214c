package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Page sizes per listing.
const (
	postsPerPage         = 5
	eventsPerPage        = 20
	userEventsPerPage    = 6
	eventsByDatePerPage  = 5
	notificationsPerPage = 20
	recentNotifications  = 5
)

// getClaims returns the identity the JWT middleware stored, or nil.
func getClaims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(middleware.ClaimsContextKey).(*models.JwtCustomClaims)
	return claims
}

// getUserIDFromContext returns 0 when the request carries no identity.
func getUserIDFromContext(c echo.Context) uint {
	if claims := getClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

func requireUserID(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

// pageParam reads a 1-based page number; anything unparsable is page 1.
func pageParam(c echo.Context, name string) int {
	page, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func dateParam(c echo.Context, name string) (time.Time, error) {
	day, err := time.Parse(models.DateLayout, c.Param(name))
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "Date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}

func paginationMeta(page, limit int, total int64) echo.Map {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return echo.Map{
		"currentPage":     page,
		"totalPages":      totalPages,
		"totalItems":      total,
		"itemsPerPage":    limit,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	}
}

// calendarMarks collapses timestamps into one background mark per day.
func calendarMarks(dates []time.Time) []models.CalendarMark {
	marks := make([]models.CalendarMark, 0, len(dates))
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		mark := models.NewCalendarMark(d)
		if seen[mark.Start] {
			continue
		}
		seen[mark.Start] = true
		marks = append(marks, mark)
	}
	return marks
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// storeError maps a repository error to an HTTP error.
func storeError(err error, notFoundMsg string) error {
	if isNotFound(err) {
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

type userLoader interface {
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

// authorMap loads the compact form of every user in ids.
func authorMap(c echo.Context, users userLoader, ids []uint) map[uint]models.UserCompact {
	out := make(map[uint]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return out
	}
	found, err := users.GetUsersByIDs(c.Request().Context(), uniqueIDs(ids))
	if err != nil {
		zap.L().Warn("loading authors failed", zap.Error(err))
		return out
	}
	for i := range found {
		out[found[i].ID] = found[i].ToCompact()
	}
	return out
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
