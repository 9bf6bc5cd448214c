package handlers

import (
	"net/http"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests related to comments and votes
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository // keeps the post's comment counter in step
	userRepository    repositories.UserRepository
	notifier          notify.Dispatcher
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifier notify.Dispatcher) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		notifier:          notifier,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/vote", h.VoteComment)
}

// CreateComment creates a comment on a post, or a reply when parent_id is set
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims := getClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	ctx := c.Request().Context()
	postID := c.Param("id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return postError(err)
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = h.commentRepository.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			return storeError(err, "Parent comment not found")
		}
		if parent.PostID != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to another post")
		}
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: claims.UserID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.postRepository.AdjustCommentsCount(ctx, postID, 1); err != nil {
		zap.L().Warn("comment counter not updated", zap.String("post_id", postID), zap.Error(err))
	}

	_ = h.notifier.CommentCreated(afterCommit(c), notify.CommentCreated{
		Comment:      *comment,
		AuthorName:   claims.Username,
		PostAuthorID: post.AuthorID,
		Parent:       parent,
	})

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// GetCommentsByPostID returns a post's comments as threads with vote tallies
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("id")

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return postError(err)
	}

	comments, err := h.commentRepository.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]uint, len(comments))
	authorIDs := make([]uint, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
		authorIDs[i] = cm.AuthorID
	}
	tallies, err := h.commentRepository.GetVoteTallies(ctx, ids)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	tree := models.BuildCommentTree(comments, tallies, authorMap(c, h.userRepository, authorIDs))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"comments": tree, "total": len(comments)}})
}

// DeleteComment deletes a comment and its replies; allowed for the author or a superuser
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	claims := getClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	ctx := c.Request().Context()

	commentID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return storeError(err, "Comment not found")
	}
	if comment.AuthorID != claims.UserID && !claims.IsSuperuser {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	removed := 1
	if siblings, err := h.commentRepository.GetCommentsByPostID(ctx, comment.PostID); err == nil {
		removed = subtreeSize(siblings, comment.ID)
	}

	if err := h.commentRepository.DeleteComment(ctx, commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.postRepository.AdjustCommentsCount(ctx, comment.PostID, -removed); err != nil {
		zap.L().Warn("comment counter not updated", zap.String("post_id", comment.PostID), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}

// subtreeSize counts root and every reply below it.
func subtreeSize(comments []models.Comment, root uint) int {
	children := make(map[uint][]uint, len(comments))
	for _, cm := range comments {
		if cm.ParentID != nil {
			children[*cm.ParentID] = append(children[*cm.ParentID], cm.ID)
		}
	}
	size := 0
	stack := []uint{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		stack = append(stack, children[id]...)
	}
	return size
}

// VoteComment applies an upvote or downvote with toggle semantics
func (h *CommentHandler) VoteComment(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	commentID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req models.VoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if !req.VoteType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid vote type")
	}

	if _, err := h.commentRepository.GetCommentByID(ctx, commentID); err != nil {
		return storeError(err, "Comment not found")
	}

	tally, err := h.commentRepository.Vote(ctx, commentID, userID, req.VoteType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": tally})
}
