package handlers

import (
	"context"
	"errors"
	"net/http"

	"connectsphere/internal/api/response"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/models"
	"connectsphere/internal/validation"

	"github.com/gin-gonic/gin"
)

// UserHandler содержит обработчики профилей пользователей
type UserHandler struct {
	users    queries.UserQueriesInterface
	uploader *Uploader
}

// NewUserHandler создает новый экземпляр UserHandler
func NewUserHandler(users queries.UserQueriesInterface, uploader *Uploader) *UserHandler {
	return &UserHandler{users: users, uploader: uploader}
}

// ListUsers возвращает страницу пользователей (для администратора)
func (h *UserHandler) ListUsers(c *gin.Context) error {
	ctx := c.Request.Context()
	page := pageOf(c)

	users, err := h.users.ListUsers(ctx, page)
	if err != nil {
		return err
	}
	total, err := h.users.CountUsers(ctx, models.UserFilter{})
	if err != nil {
		return err
	}

	views := make([]models.UserResponse, 0, len(users))
	for i := range users {
		views = append(views, models.NewUserResponse(&users[i]).WithBlocked(users[i].IsBlocked))
	}

	response.Success(c, http.StatusOK, "Users fetched successfully",
		models.UserListResponse{Users: views}, models.NewPaginationMeta(page, total))
	return nil
}

// UpdateProfile меняет имя, описание и аватар текущего пользователя
func (h *UserHandler) UpdateProfile(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	ctx := c.Request.Context()

	current, err := h.users.GetUserByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.UserNotFound()
		}
		return err
	}

	var upd models.ProfileUpdate
	if name, ok := bodyField(c, "name"); ok {
		upd.Name = &name
	}
	if bio, ok := bodyField(c, "bio"); ok {
		upd.Bio = &bio
	}
	if fh := formFile(c, validation.ProfilePicField); fh != nil {
		file, err := h.uploader.Upload(ctx, fh)
		if err != nil {
			return err
		}
		upd.ProfilePic = &models.ProfilePic{FileName: file.Name, URL: file.URL}
	}

	updated, err := h.users.UpdateProfile(ctx, caller.ID, upd)
	if err != nil {
		if upd.ProfilePic != nil {
			h.uploader.Remove(context.WithoutCancel(ctx), upd.ProfilePic.FileName)
		}
		if errors.Is(err, models.ErrNotFound) {
			return models.UserNotFound()
		}
		return err
	}
	if upd.ProfilePic != nil && !current.ProfilePic.IsDefault() {
		h.uploader.Remove(ctx, current.ProfilePic.FileName)
	}

	response.Success(c, http.StatusOK, "Profile updated successfully",
		models.ProfileResponse{User: models.NewUserResponse(updated)}, nil)
	return nil
}

// GetUser возвращает публичный профиль; заблокированные профили скрыты
func (h *UserHandler) GetUser(c *gin.Context) error {
	user, err := h.users.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.UserNotFound()
		}
		return err
	}
	if user.IsBlocked {
		return models.UserBlocked()
	}

	response.Success(c, http.StatusOK, "User profile fetched successfully",
		models.ProfileResponse{User: models.NewUserResponse(user)}, nil)
	return nil
}
