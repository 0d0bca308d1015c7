package handlers

import (
	"errors"
	"net/http"

	"connectsphere/internal/api/response"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/models"

	"github.com/gin-gonic/gin"
)

// AdminHandler содержит обработчики модерации
type AdminHandler struct {
	store    *queries.Store
	posts    *PostHandler
	comments *CommentHandler
}

// NewAdminHandler создает новый экземпляр AdminHandler
func NewAdminHandler(store *queries.Store, posts *PostHandler, comments *CommentHandler) *AdminHandler {
	return &AdminHandler{store: store, posts: posts, comments: comments}
}

func (h *AdminHandler) setBlocked(c *gin.Context, blocked bool, message string) error {
	user, err := h.store.Users.SetBlocked(c.Request.Context(), c.Param("id"), blocked)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.UserNotFound()
		}
		return err
	}

	response.Success(c, http.StatusOK, message, models.BlockStatusResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		IsBlocked: user.IsBlocked,
	}, nil)
	return nil
}

// BlockUser блокирует пользователя
func (h *AdminHandler) BlockUser(c *gin.Context) error {
	return h.setBlocked(c, true, "User blocked successfully")
}

// UnblockUser снимает блокировку
func (h *AdminHandler) UnblockUser(c *gin.Context) error {
	return h.setBlocked(c, false, "User unblocked successfully")
}

// DeletePost удаляет любой пост вместе с комментариями
func (h *AdminHandler) DeletePost(c *gin.Context) error {
	ctx := c.Request.Context()
	post, err := h.posts.getPost(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.posts.remove(ctx, post); err != nil {
		return err
	}

	response.Success(c, http.StatusOK, "Post deleted successfully", nil, nil)
	return nil
}

// DeleteComment удаляет любой комментарий
func (h *AdminHandler) DeleteComment(c *gin.Context) error {
	if err := h.comments.remove(c, c.Param("id")); err != nil {
		return err
	}

	response.Success(c, http.StatusOK, "Comment deleted successfully", nil, nil)
	return nil
}

// ListPosts возвращает посты с email авторов
func (h *AdminHandler) ListPosts(c *gin.Context) error {
	return h.posts.list(c, models.PostFilter{}, true)
}

// Analytics возвращает сводные показатели
func (h *AdminHandler) Analytics(c *gin.Context) error {
	ctx := c.Request.Context()
	blocked := true

	totalUsers, err := h.store.Users.CountUsers(ctx, models.UserFilter{})
	if err != nil {
		return err
	}
	blockedUsers, err := h.store.Users.CountUsers(ctx, models.UserFilter{Blocked: &blocked})
	if err != nil {
		return err
	}
	totalPosts, err := h.store.Posts.CountPosts(ctx, models.PostFilter{})
	if err != nil {
		return err
	}
	totalComments, err := h.store.Comments.CountComments(ctx, "")
	if err != nil {
		return err
	}

	response.Success(c, http.StatusOK, "Analytics fetched successfully", models.AnalyticsResponse{
		Analytics: models.Analytics{
			TotalUsers:    totalUsers,
			TotalPosts:    totalPosts,
			TotalComments: totalComments,
			BlockedUsers:  blockedUsers,
			ActiveUsers:   totalUsers - blockedUsers,
		},
	}, nil)
	return nil
}
