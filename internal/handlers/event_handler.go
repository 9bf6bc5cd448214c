package handlers

import (
	"net/http"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// EventHandler handles HTTP requests related to events and registrations
type EventHandler struct {
	eventRepository repositories.EventRepository
	userRepository  repositories.UserRepository
	notifier        notify.Dispatcher
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventRepo repositories.EventRepository, userRepo repositories.UserRepository, notifier notify.Dispatcher) *EventHandler {
	return &EventHandler{
		eventRepository: eventRepo,
		userRepository:  userRepo,
		notifier:        notifier,
	}
}

// RegisterEventRoutes registers event-related routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.GET("/events", h.GetEvents)
	g.POST("/events", h.CreateEvent)
	g.GET("/events/organized", h.GetOrganizedEvents)
	g.GET("/events/registered", h.GetRegisteredEvents)
	g.GET("/events/search", h.SearchEvents)
	g.GET("/events/dates", h.GetEventDates)
	g.GET("/events/by-date/:date", h.GetEventsByDate)
	g.GET("/events/:id", h.GetEvent)
	g.PUT("/events/:id", h.UpdateEvent)
	g.DELETE("/events/:id", h.DeleteEvent)
	g.POST("/events/:id/register", h.Register)
	g.GET("/events/:id/participants", h.GetParticipants)
	g.PUT("/events/:id/attendance", h.SetAttendance)
	g.GET("/users/:username/events", h.GetUserEvents)
}

func eventListResponse(c echo.Context, events []models.Event, page, limit int, total int64) error {
	if events == nil {
		events = []models.Event{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"events": events},
		"meta":    paginationMeta(page, limit, total),
	})
}

func parseEventRequest(c echo.Context) (*models.EventRequest, time.Time, error) {
	var req models.EventRequest
	if err := c.Bind(&req); err != nil {
		return nil, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return nil, time.Time{}, err
	}
	day, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		return nil, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "Date must be formatted as YYYY-MM-DD")
	}
	return &req, day, nil
}

// loadOwnedEvent fetches the event in :id and checks the caller organizes it
func (h *EventHandler) loadOwnedEvent(c echo.Context, userID uint) (*models.Event, error) {
	eventID, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}
	event, err := h.eventRepository.GetEventByID(c.Request().Context(), eventID)
	if err != nil {
		return nil, storeError(err, "Event not found")
	}
	if event.OrganizerID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "Only the organizer can do this")
	}
	return event, nil
}

// GetEvents lists all events
func (h *EventHandler) GetEvents(c echo.Context) error {
	page := pageParam(c, "page")
	events, total, err := h.eventRepository.ListEvents(c.Request().Context(), page, eventsPerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return eventListResponse(c, events, page, eventsPerPage, total)
}

// CreateEvent creates an event organized by the caller
func (h *EventHandler) CreateEvent(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	req, day, err := parseEventRequest(c)
	if err != nil {
		return err
	}

	event := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		Date:        day,
		OrganizerID: userID,
	}
	if err := h.eventRepository.CreateEvent(c.Request().Context(), event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": event})
}

// GetEvent returns an event and whether the caller is registered for it
func (h *EventHandler) GetEvent(c echo.Context) error {
	ctx := c.Request().Context()
	eventID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	event, err := h.eventRepository.GetEventByID(ctx, eventID)
	if err != nil {
		return storeError(err, "Event not found")
	}

	registered := false
	if userID := getUserIDFromContext(c); userID != 0 {
		if registered, err = h.eventRepository.IsRegistered(ctx, eventID, userID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"event": event, "registered": registered}})
}

// UpdateEvent updates an event; organizer only
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	event, err := h.loadOwnedEvent(c, userID)
	if err != nil {
		return err
	}
	req, day, err := parseEventRequest(c)
	if err != nil {
		return err
	}

	event.Name = req.Name
	event.Description = req.Description
	event.Date = day
	if err := h.eventRepository.UpdateEvent(c.Request().Context(), event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": event})
}

// DeleteEvent deletes an event and its registrations; organizer only
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	event, err := h.loadOwnedEvent(c, userID)
	if err != nil {
		return err
	}
	if err := h.eventRepository.DeleteEvent(c.Request().Context(), event.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// GetOrganizedEvents lists the caller's own events, latest date first
func (h *EventHandler) GetOrganizedEvents(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	page := pageParam(c, "page")
	events, total, err := h.eventRepository.ListByOrganizer(c.Request().Context(), userID, page, eventsPerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return eventListResponse(c, events, page, eventsPerPage, total)
}

// GetRegisteredEvents lists events the caller registered for
func (h *EventHandler) GetRegisteredEvents(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	page := pageParam(c, "page")
	events, total, err := h.eventRepository.ListRegistered(c.Request().Context(), userID, page, eventsPerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return eventListResponse(c, events, page, eventsPerPage, total)
}

// Register signs the caller up for an event. Registering twice returns the
// existing registration; organizers cannot register for their own event.
func (h *EventHandler) Register(c echo.Context) error {
	claims := getClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	ctx := c.Request().Context()

	eventID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	event, err := h.eventRepository.GetEventByID(ctx, eventID)
	if err != nil {
		return storeError(err, "Event not found")
	}
	if event.OrganizerID == claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "You cannot register for your own event.")
	}

	participant, created, err := h.eventRepository.RegisterParticipant(ctx, eventID, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		_ = h.notifier.EventRegistered(afterCommit(c), notify.EventRegistered{
			Participant:    *participant,
			Event:          *event,
			RegistrantName: claims.Username,
		})
	}

	return c.JSON(status, echo.Map{"success": true, "data": echo.Map{"participant": participant, "created": created}})
}

// GetParticipants lists an event's registrations
func (h *EventHandler) GetParticipants(c echo.Context) error {
	ctx := c.Request().Context()
	eventID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	event, err := h.eventRepository.GetEventByID(ctx, eventID)
	if err != nil {
		return storeError(err, "Event not found")
	}

	participants, err := h.eventRepository.GetParticipants(ctx, eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if participants == nil {
		participants = []models.EventParticipant{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"event":        event,
			"participants": participants,
			"is_organizer": event.OrganizerID == getUserIDFromContext(c),
		},
	})
}

// SetAttendance records who attended; organizer only
func (h *EventHandler) SetAttendance(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	event, err := h.loadOwnedEvent(c, userID)
	if err != nil {
		return err
	}

	var req models.AttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if err := h.eventRepository.SetAttendance(c.Request().Context(), event.ID, req.Attended); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"event_id": event.ID, "attended": req.Attended}})
}

// SearchEvents searches users, event names or both depending on type
func (h *EventHandler) SearchEvents(c echo.Context) error {
	ctx := c.Request().Context()
	query := c.QueryParam("q")
	searchType := c.QueryParam("type")
	if searchType == "" {
		searchType = "all"
	}
	if searchType != "all" && searchType != "user" && searchType != "event" {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be one of all, user, event")
	}

	result := echo.Map{"query": query, "type": searchType, "users": []models.User{}, "events": []models.Event{}}
	if query == "" {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": result})
	}

	if searchType == "all" || searchType == "user" {
		users, err := h.userRepository.SearchUsers(ctx, query)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		result["users"] = users
	}
	if searchType == "all" || searchType == "event" {
		events, err := h.eventRepository.SearchEvents(ctx, query)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		result["events"] = events
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": result})
}

// GetEventDates returns one calendar mark per day that has events
func (h *EventHandler) GetEventDates(c echo.Context) error {
	dates, err := h.eventRepository.ListDates(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, calendarMarks(dates))
}

// GetEventsByDate lists events on one calendar day
func (h *EventHandler) GetEventsByDate(c echo.Context) error {
	day, err := dateParam(c, "date")
	if err != nil {
		return err
	}
	page := pageParam(c, "page")
	events, total, err := h.eventRepository.ListByDate(c.Request().Context(), day, page, eventsByDatePerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return eventListResponse(c, events, page, eventsByDatePerPage, total)
}

// GetUserEvents shows the events a user organizes and the ones they
// registered for, each paged independently (orgpg and regpg)
func (h *EventHandler) GetUserEvents(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return storeError(err, "User not found")
	}

	orgPage := pageParam(c, "orgpg")
	organized, orgTotal, err := h.eventRepository.ListByOrganizer(ctx, user.ID, orgPage, userEventsPerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	regPage := pageParam(c, "regpg")
	registered, regTotal, err := h.eventRepository.ListRegistered(ctx, user.ID, regPage, userEventsPerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if organized == nil {
		organized = []models.Event{}
	}
	if registered == nil {
		registered = []models.Event{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"user":       user.ToCompact(),
			"is_owner":   user.ID == getUserIDFromContext(c),
			"organized":  echo.Map{"events": organized, "meta": paginationMeta(orgPage, userEventsPerPage, orgTotal)},
			"registered": echo.Map{"events": registered, "meta": paginationMeta(regPage, userEventsPerPage, regTotal)},
		},
	})
}
