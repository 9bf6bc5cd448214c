package handlers

import (
	"net/http"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests related to users and profiles
type UserHandler struct {
	userRepository    repositories.UserRepository
	postRepository    repositories.PostRepository
	eventRepository   repositories.EventRepository
	commentRepository repositories.CommentRepository
	likeRepository    repositories.LikeRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	eventRepo repositories.EventRepository,
	commentRepo repositories.CommentRepository,
	likeRepo repositories.LikeRepository,
) *UserHandler {
	return &UserHandler{
		userRepository:    userRepo,
		postRepository:    postRepo,
		eventRepository:   eventRepo,
		commentRepository: commentRepo,
		likeRepository:    likeRepo,
	}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/me", h.GetMe)
	g.PUT("/users/me", h.UpdateProfile)
	g.DELETE("/users/me", h.DeleteUser)
	g.GET("/users/:username", h.GetUser)
}

// ProfileResponse is a user's public page
type ProfileResponse struct {
	User           *models.User `json:"user"`
	PostCount      int64        `json:"post_count"`
	OrganizedCount int64        `json:"organized_count"`
	IsOwner        bool         `json:"is_owner"`
}

// GetUser returns the profile behind a username with activity counters
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return storeError(err, "User not found")
	}

	postCount, err := h.postRepository.CountByAuthor(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	_, organized, err := h.eventRepository.ListByOrganizer(ctx, user.ID, 1, 1)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": ProfileResponse{
		User:           user,
		PostCount:      postCount,
		OrganizedCount: organized,
		IsOwner:        user.ID == getUserIDFromContext(c),
	}})
}

// GetMe retrieves the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return storeError(err, "User profile not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// UpdateProfile updates the authenticated user's name, email and about text
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return storeError(err, "User profile not found")
	}

	if req.Email != "" && req.Email != user.Email {
		if other, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil && other.ID != user.ID {
			return echo.NewHTTPError(http.StatusConflict, "Email already in use")
		} else if err != nil && !isNotFound(err) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.About != "" {
		if user.Profile == nil {
			user.Profile = &models.Profile{UserID: user.ID, ImageURL: models.DefaultImageURL}
		}
		user.Profile.About = req.About
		if err := h.userRepository.UpdateProfile(ctx, user.Profile); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

// DeleteUser deletes the authenticated user. Relational rows cascade; the
// user's posts live in MongoDB and are removed here along with the comments
// and likes other users left on them.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if err := h.userRepository.DeleteUser(ctx, userID); err != nil {
		return storeError(err, "User profile not found")
	}

	postIDs, err := h.postRepository.DeleteByAuthor(ctx, userID)
	if err != nil {
		zap.L().Error("posts of deleted user not removed", zap.Uint("user_id", userID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove posts")
	}
	for _, postID := range postIDs {
		if err := h.commentRepository.DeleteCommentsByPostID(ctx, postID); err != nil {
			zap.L().Warn("comments not removed", zap.String("post_id", postID), zap.Error(err))
		}
		if err := h.likeRepository.DeleteLikesByPostID(ctx, postID); err != nil {
			zap.L().Warn("likes not removed", zap.String("post_id", postID), zap.Error(err))
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// SearchUsers searches for users by username or first name
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": users})
}
