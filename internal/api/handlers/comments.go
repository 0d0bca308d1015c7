package handlers

import (
	"errors"
	"net/http"

	"connectsphere/internal/api/response"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/models"

	"github.com/gin-gonic/gin"
)

// CommentHandler содержит обработчики комментариев
type CommentHandler struct {
	comments queries.CommentQueriesInterface
	posts    queries.PostQueriesInterface
	users    queries.UserQueriesInterface
}

// NewCommentHandler создает новый экземпляр CommentHandler
func NewCommentHandler(store *queries.Store) *CommentHandler {
	return &CommentHandler{
		comments: store.Comments,
		posts:    store.Posts,
		users:    store.Users,
	}
}

func (h *CommentHandler) requirePost(c *gin.Context, id string) error {
	if _, err := h.posts.GetPostByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.PostNotFound()
		}
		return err
	}
	return nil
}

// AddComment добавляет комментарий к посту
func (h *CommentHandler) AddComment(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	postID := c.Param("id")
	if err := h.requirePost(c, postID); err != nil {
		return err
	}

	text, _ := bodyField(c, "text")
	comment, err := h.comments.CreateComment(c.Request.Context(), &models.Comment{
		PostID: postID,
		UserID: caller.ID,
		Text:   text,
	})
	if err != nil {
		return err
	}

	author, err := h.users.GetUserByID(c.Request.Context(), caller.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}

	response.Success(c, http.StatusCreated, "Comment added successfully",
		models.CommentEnvelope{Comment: models.NewCommentResponse(comment, author)}, nil)
	return nil
}

// ListComments возвращает комментарии поста, новые первыми
func (h *CommentHandler) ListComments(c *gin.Context) error {
	ctx := c.Request.Context()
	postID := c.Param("id")
	if err := h.requirePost(c, postID); err != nil {
		return err
	}

	page := pageOf(c)
	comments, err := h.comments.ListComments(ctx, postID, page)
	if err != nil {
		return err
	}
	total, err := h.comments.CountComments(ctx, postID)
	if err != nil {
		return err
	}

	authorIDs := make([]string, 0, len(comments))
	for _, cm := range comments {
		authorIDs = append(authorIDs, cm.UserID)
	}
	authors, err := authorsOf(ctx, h.users, authorIDs)
	if err != nil {
		return err
	}

	views := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		views = append(views, models.NewCommentResponse(&comments[i], authors[comments[i].UserID]))
	}

	response.Success(c, http.StatusOK, "Comments fetched successfully",
		models.CommentListResponse{Comments: views}, models.NewPaginationMeta(page, total))
	return nil
}

// remove удаляет комментарий по идентификатору
func (h *CommentHandler) remove(c *gin.Context, id string) error {
	if err := h.comments.DeleteComment(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.CommentNotFound()
		}
		return err
	}
	return nil
}

// DeleteComment удаляет комментарий; разрешено автору и администратору
func (h *CommentHandler) DeleteComment(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}

	comment, err := h.comments.GetCommentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.CommentNotFound()
		}
		return err
	}
	if comment.UserID != caller.ID && !caller.IsAdmin() {
		return models.UnauthorizedDelete("comment")
	}

	if err := h.remove(c, comment.ID); err != nil {
		return err
	}

	response.Success(c, http.StatusOK, "Comment deleted successfully", nil, nil)
	return nil
}
