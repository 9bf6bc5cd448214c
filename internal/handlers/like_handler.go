package handlers

import (
	"net/http"

	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository // keeps the post's like counter in step
	notifier       notify.Dispatcher
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, notifier notify.Dispatcher) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		notifier:       notifier,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/likes", h.LikePost)
	g.DELETE("/posts/:id/likes", h.UnlikePost)
	g.GET("/posts/:id/likes/count", h.GetLikesCountForPost)
}

// LikePost likes a post; liking it again changes nothing
func (h *LikeHandler) LikePost(c echo.Context) error {
	claims := getClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return postError(err)
	}

	created, err := h.likeRepository.CreateLike(ctx, postID, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if created {
		if err := h.postRepository.AdjustLikesCount(ctx, postID, 1); err != nil {
			zap.L().Warn("like counter not updated", zap.String("post_id", postID), zap.Error(err))
		}
		_ = h.notifier.PostLiked(afterCommit(c), notify.PostLiked{Post: *post, LikerID: claims.UserID, LikerName: claims.Username})
	}

	return h.likeState(c, postID, true)
}

// UnlikePost removes the caller's like, if any
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("id")

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return postError(err)
	}

	removed, err := h.likeRepository.DeleteLike(ctx, postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if removed {
		if err := h.postRepository.AdjustLikesCount(ctx, postID, -1); err != nil {
			zap.L().Warn("like counter not updated", zap.String("post_id", postID), zap.Error(err))
		}
	}

	return h.likeState(c, postID, false)
}

func (h *LikeHandler) likeState(c echo.Context, postID string, liked bool) error {
	count, err := h.likeRepository.GetLikesCountByPostID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"post_id": postID, "liked": liked, "likes_count": count}})
}

// GetLikesCountForPost retrieves the total number of likes for a specific post
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	postID := c.Param("id")
	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return postError(err)
	}

	count, err := h.likeRepository.GetLikesCountByPostID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"post_id": postID, "likes_count": count}})
}
