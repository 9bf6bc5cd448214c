package handlers

import (
	"net/http"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	now                    func() time.Time
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
		now:                    time.Now,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/recent", h.GetRecentNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.POST("/notifications/read-all", h.MarkAllAsRead)
	g.POST("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// EnrichedNotification includes sender info and the resolved link
type EnrichedNotification struct {
	models.Notification
	Sender *models.UserCompact `json:"sender"`
	Target string              `json:"target"`
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, notifications []models.Notification) []EnrichedNotification {
	var senderIDs []uint
	for _, n := range notifications {
		if n.SenderID != nil {
			senderIDs = append(senderIDs, *n.SenderID)
		}
	}
	senders := authorMap(c, h.userRepository, senderIDs)

	enriched := make([]EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n, Target: n.LinkOrDefault()}
		if n.SenderID != nil {
			if sender, ok := senders[*n.SenderID]; ok {
				enriched[i].Sender = &sender
			}
		}
	}
	return enriched
}

// GetNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}

	page := pageParam(c, "page")
	notifications, total, err := h.notificationRepository.GetByRecipientID(c.Request().Context(), currentUserID, page, notificationsPerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": h.enrichNotifications(c, notifications),
		},
		"meta": paginationMeta(page, notificationsPerPage, total),
	})
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	today, yesterday, thisWeek, older, err := h.notificationRepository.GetGrouped(ctx, currentUserID, h.now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	unreadCount, err := h.notificationRepository.GetUnreadCount(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": echo.Map{
				"today":     h.enrichNotifications(c, today),
				"yesterday": h.enrichNotifications(c, yesterday),
				"thisWeek":  h.enrichNotifications(c, thisWeek),
				"older":     h.enrichNotifications(c, older),
			},
			"unread_count": unreadCount,
		},
	})
}

// GetRecentNotifications returns the newest few notifications for a dropdown
func (h *NotificationHandler) GetRecentNotifications(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	recent, err := h.notificationRepository.GetRecent(ctx, currentUserID, recentNotifications)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	unreadCount, err := h.notificationRepository.GetUnreadCount(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"data":         h.enrichNotifications(c, recent),
		"unread_count": unreadCount,
	})
}

func (h *NotificationHandler) unreadCountResponse(c echo.Context, userID uint) error {
	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "unread_count": count})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}
	return h.unreadCountResponse(c, currentUserID)
}

// ownedNotification loads :id and checks the caller is its recipient
func (h *NotificationHandler) ownedNotification(c echo.Context, userID uint) (*models.Notification, error) {
	notifID, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}
	notification, err := h.notificationRepository.GetByID(c.Request().Context(), notifID)
	if err != nil {
		return nil, storeError(err, "Notification not found")
	}
	if notification.RecipientID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Not your notification")
	}
	return notification, nil
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}
	notification, err := h.ownedNotification(c, currentUserID)
	if err != nil {
		return err
	}

	if !notification.IsRead {
		if err := h.notificationRepository.MarkAsRead(c.Request().Context(), notification.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return h.unreadCountResponse(c, currentUserID)
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}

	if _, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "unread_count": 0})
}

// DeleteNotification removes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID, err := requireUserID(c)
	if err != nil {
		return err
	}
	notification, err := h.ownedNotification(c, currentUserID)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.DeleteNotification(c.Request().Context(), notification.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.unreadCountResponse(c, currentUserID)
}
