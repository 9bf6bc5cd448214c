package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const searchLimit = 50

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	commentRepository repositories.CommentRepository
	likeRepository    repositories.LikeRepository
	notifier          notify.Dispatcher
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, commentRepo repositories.CommentRepository, likeRepo repositories.LikeRepository, notifier notify.Dispatcher) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		commentRepository: commentRepo,
		likeRepository:    likeRepo,
		notifier:          notifier,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/search", h.SearchPosts)
	g.GET("/posts/dates", h.GetPostDates)
	g.GET("/posts/by-date/:date", h.GetPostsByDate)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/users/:username/posts", h.GetUserPosts)
}

// PostView is a post with its author attached
type PostView struct {
	models.Post
	Author models.UserCompact `json:"author"`
}

func (h *PostHandler) views(c echo.Context, posts []models.Post) []PostView {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.AuthorID
	}
	authors := authorMap(c, h.userRepository, ids)

	out := make([]PostView, len(posts))
	for i, p := range posts {
		out[i] = PostView{Post: p, Author: authors[p.AuthorID]}
	}
	return out
}

func postError(err error) error {
	if errors.Is(err, repositories.ErrPostNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// afterCommit detaches dispatch from request cancellation; the triggering
// write is already stored by the time it runs.
func afterCommit(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

// CreatePost stores a post and announces it to other users
func (h *PostHandler) CreatePost(c echo.Context) error {
	claims := getClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		AuthorID: claims.UserID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// failures are logged and counted by the dispatcher
	_ = h.notifier.PostPublished(afterCommit(c), notify.PostPublished{Post: *post, AuthorName: claims.Username})

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return postError(err)
	}

	liked := false
	if userID := getUserIDFromContext(c); userID != 0 {
		if liked, err = h.likeRepository.HasUserLikedPost(ctx, post.ID.Hex(), userID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"post": h.views(c, []models.Post{*post})[0], "liked": liked},
	})
}

func (h *PostHandler) listPosts(c echo.Context, filter repositories.PostFilter, pageName string) error {
	page := pageParam(c, pageName)
	skip := int64((page - 1) * postsPerPage)

	posts, total, err := h.postRepository.ListPosts(c.Request().Context(), filter, skip, postsPerPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": h.views(c, posts)},
		"meta":    paginationMeta(page, postsPerPage, total),
	})
}

// GetPosts lists all posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	return h.listPosts(c, repositories.PostFilter{}, "page")
}

// GetPostsByDate lists posts published on one calendar day
func (h *PostHandler) GetPostsByDate(c echo.Context) error {
	day, err := dateParam(c, "date")
	if err != nil {
		return err
	}
	return h.listPosts(c, repositories.PostFilter{Day: day}, "page")
}

// GetUserPosts lists one user's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return storeError(err, "User not found")
	}
	return h.listPosts(c, repositories.PostFilter{AuthorID: user.ID}, "page")
}

// GetPostDates returns one calendar mark per day that has posts
func (h *PostHandler) GetPostDates(c echo.Context) error {
	dates, err := h.postRepository.ListDates(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, calendarMarks(dates))
}

// SearchPosts searches users, post titles or both depending on type
func (h *PostHandler) SearchPosts(c echo.Context) error {
	ctx := c.Request().Context()
	query := c.QueryParam("q")
	searchType := c.QueryParam("type")
	if searchType == "" {
		searchType = "all"
	}
	if searchType != "all" && searchType != "user" && searchType != "post" {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be one of all, user, post")
	}

	result := echo.Map{"query": query, "type": searchType, "users": []models.User{}, "posts": []PostView{}}
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
	if searchType == "all" || searchType == "post" {
		posts, err := h.postRepository.SearchByTitle(ctx, query, searchLimit)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		result["posts"] = h.views(c, posts)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": result})
}

// UpdatePost updates an existing post; only its author may do so
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	existingPost, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return postError(err)
	}
	if existingPost.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	if req.Title != "" {
		existingPost.Title = req.Title
	}
	if req.Content != "" {
		existingPost.Content = req.Content
	}
	if err := h.postRepository.UpdatePost(ctx, postID, existingPost); err != nil {
		return postError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": existingPost})
}

// DeletePost deletes a post together with its comments and likes
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("id")

	existingPost, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return postError(err)
	}
	if existingPost.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return postError(err)
	}
	if err := h.commentRepository.DeleteCommentsByPostID(ctx, postID); err != nil {
		zap.L().Error("deleting comments of removed post", zap.String("post_id", postID), zap.Error(err))
	}
	if err := h.likeRepository.DeleteLikesByPostID(ctx, postID); err != nil {
		zap.L().Error("deleting likes of removed post", zap.String("post_id", postID), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}
