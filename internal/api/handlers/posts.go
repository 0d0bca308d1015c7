package handlers

import (
	"context"
	"errors"
	"net/http"

	"connectsphere/internal/api/response"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/metrics"
	"connectsphere/internal/models"
	"connectsphere/internal/validation"

	"github.com/gin-gonic/gin"
)

// PostHandler содержит обработчики постов и лайков
type PostHandler struct {
	posts    queries.PostQueriesInterface
	comments queries.CommentQueriesInterface
	users    queries.UserQueriesInterface
	uploader *Uploader
}

// NewPostHandler создает новый экземпляр PostHandler
func NewPostHandler(store *queries.Store, uploader *Uploader) *PostHandler {
	return &PostHandler{
		posts:    store.Posts,
		comments: store.Comments,
		users:    store.Users,
		uploader: uploader,
	}
}

func (h *PostHandler) getPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := h.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.PostNotFound()
		}
		return nil, err
	}
	return post, nil
}

// views собирает представления постов с авторами и числом комментариев
func (h *PostHandler) views(ctx context.Context, posts []models.Post, withEmail bool) ([]models.PostResponse, error) {
	ids := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		authorIDs = append(authorIDs, p.UserID)
	}

	counts, err := h.comments.CountCommentsByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	authors, err := authorsOf(ctx, h.users, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		author := authors[posts[i].UserID]
		view := models.NewPostResponse(&posts[i], counts[posts[i].ID], author)
		if withEmail && author != nil {
			view = view.WithAuthorEmail(author.Email)
		}
		views = append(views, view)
	}
	return views, nil
}

func (h *PostHandler) list(c *gin.Context, filter models.PostFilter, withEmail bool) error {
	ctx := c.Request.Context()
	page := pageOf(c)

	posts, err := h.posts.ListPosts(ctx, filter, page)
	if err != nil {
		return err
	}
	total, err := h.posts.CountPosts(ctx, filter)
	if err != nil {
		return err
	}
	views, err := h.views(ctx, posts, withEmail)
	if err != nil {
		return err
	}

	response.Success(c, http.StatusOK, "Posts fetched successfully",
		models.PostListResponse{Posts: views}, models.NewPaginationMeta(page, total))
	return nil
}

// CreatePost создает пост с медиафайлом
func (h *PostHandler) CreatePost(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	ctx := c.Request.Context()
	content, _ := bodyField(c, "content")

	file, err := h.uploader.Upload(ctx, formFile(c, validation.MediaField))
	if err != nil {
		return err
	}

	post, err := h.posts.CreatePost(ctx, &models.Post{
		UserID:  caller.ID,
		Content: content,
		File:    file,
	})
	if err != nil {
		h.uploader.Remove(context.WithoutCancel(ctx), file.Name)
		return err
	}

	response.Success(c, http.StatusCreated, "Post created successfully",
		models.PostEnvelope{Post: models.NewPostResponse(post, 0, nil)}, nil)
	return nil
}

// ListPosts возвращает ленту постов
func (h *PostHandler) ListPosts(c *gin.Context) error {
	return h.list(c, models.PostFilter{}, false)
}

// MyPosts возвращает посты текущего пользователя
func (h *PostHandler) MyPosts(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	return h.list(c, models.PostFilter{UserID: caller.ID}, false)
}

// GetPost возвращает один пост
func (h *PostHandler) GetPost(c *gin.Context) error {
	ctx := c.Request.Context()
	post, err := h.getPost(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	views, err := h.views(ctx, []models.Post{*post}, false)
	if err != nil {
		return err
	}

	response.Success(c, http.StatusOK, "Post fetched successfully", models.PostEnvelope{Post: views[0]}, nil)
	return nil
}

// UpdatePost меняет текст и/или медиафайл поста. Чужой пост выглядит как несуществующий
func (h *PostHandler) UpdatePost(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	ctx := c.Request.Context()

	post, err := h.getPost(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if post.UserID != caller.ID {
		return models.PostNotFound()
	}

	var upd models.PostUpdate
	if content, ok := bodyField(c, "content"); ok {
		upd.Content = &content
	}
	if fh := formFile(c, validation.MediaField); fh != nil {
		file, err := h.uploader.Upload(ctx, fh)
		if err != nil {
			return err
		}
		upd.File = &file
	}

	updated, err := h.posts.UpdatePost(ctx, post.ID, upd)
	if err != nil {
		if upd.File != nil {
			h.uploader.Remove(context.WithoutCancel(ctx), upd.File.Name)
		}
		if errors.Is(err, models.ErrNotFound) {
			return models.PostNotFound()
		}
		return err
	}
	if upd.File != nil {
		h.uploader.Remove(ctx, post.File.Name)
	}

	count, err := h.comments.CountComments(ctx, updated.ID)
	if err != nil {
		return err
	}

	response.Success(c, http.StatusOK, "Post updated successfully",
		models.PostEnvelope{Post: models.NewPostResponse(updated, count, nil)}, nil)
	return nil
}

// remove удаляет пост, его комментарии и медиафайл
func (h *PostHandler) remove(ctx context.Context, post *models.Post) error {
	if _, err := h.comments.DeleteCommentsByPost(ctx, post.ID); err != nil {
		return err
	}
	if err := h.posts.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.PostNotFound()
		}
		return err
	}
	h.uploader.Remove(ctx, post.File.Name)
	return nil
}

// DeletePost удаляет пост; разрешено владельцу и администратору
func (h *PostHandler) DeletePost(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	ctx := c.Request.Context()

	post, err := h.getPost(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if post.UserID != caller.ID && !caller.IsAdmin() {
		return models.UnauthorizedDelete("post")
	}

	if err := h.remove(ctx, post); err != nil {
		return err
	}

	response.Success(c, http.StatusOK, "Post deleted successfully", nil, nil)
	return nil
}

// ToggleLike ставит или снимает лайк текущего пользователя
func (h *PostHandler) ToggleLike(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}

	postID := c.Param("id")
	liked, count, err := h.posts.ToggleLike(c.Request.Context(), postID, caller.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.PostNotFound()
		}
		return err
	}

	message := "Post unliked successfully"
	state := "unliked"
	if liked {
		message = "Post liked successfully"
		state = "liked"
	}
	metrics.LikeTogglesTotal.WithLabelValues(state).Inc()

	response.Success(c, http.StatusOK, message, models.LikeResponse{Post: models.LikeState{
		ID:         postID,
		LikesCount: count,
		IsLiked:    liked,
	}}, nil)
	return nil
}
