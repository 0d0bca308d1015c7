package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectsphere/internal/api/response"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/metrics"
	"connectsphere/internal/models"
	"connectsphere/internal/token"
	"connectsphere/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// AuthHandler содержит обработчики для регистрации и входа
type AuthHandler struct {
	users    queries.UserQueriesInterface
	maker    token.Maker
	hasher   utils.PasswordHasherInterface
	tokenTTL time.Duration
}

// NewAuthHandler создает новый экземпляр AuthHandler
func NewAuthHandler(users queries.UserQueriesInterface, maker token.Maker, hasher utils.PasswordHasherInterface, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:    users,
		maker:    maker,
		hasher:   hasher,
		tokenTTL: tokenTTL,
	}
}

func (h *AuthHandler) issue(user *models.User) (models.AuthResponse, error) {
	accessToken, err := h.maker.CreateToken(token.Claim{Email: user.Email, Name: user.Name}, h.tokenTTL)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("failed to create token: %w", err)
	}
	return models.AuthResponse{User: models.NewUserResponse(user), AccessToken: accessToken}, nil
}

// Register обрабатывает запрос на регистрацию пользователя
func (h *AuthHandler) Register(c *gin.Context) error {
	var req models.RegisterRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return fmt.Errorf("failed to bind validated body: %w", err)
	}
	ctx := c.Request.Context()
	email := utils.NormalizeEmail(req.Email)

	// Проверяем до хеширования, чтобы не тратить bcrypt на занятый email
	if _, err := h.users.GetUserByEmail(ctx, email); err == nil {
		return models.UserExists()
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hash, err := h.hasher.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user, err := h.users.CreateUser(ctx, &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.UserExists()
		}
		return err
	}

	resp, err := h.issue(user)
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.Inc()
	response.Success(c, http.StatusCreated, "Account created successfully", resp, nil)
	return nil
}

// Login обрабатывает запрос на вход. Блокировка проверяется до пароля
func (h *AuthHandler) Login(c *gin.Context) error {
	var req models.LoginRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return fmt.Errorf("failed to bind validated body: %w", err)
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), utils.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
			return models.UserNotExists()
		}
		return err
	}

	if user.IsBlocked {
		metrics.LoginsTotal.WithLabelValues("blocked").Inc()
		return models.AccountBlocked()
	}

	if !h.hasher.CheckPassword(req.Password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return models.InvalidCredentials()
	}

	resp, err := h.issue(user)
	if err != nil {
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, "Login successfully", resp, nil)
	return nil
}

// Profile возвращает профиль текущего пользователя
func (h *AuthHandler) Profile(c *gin.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUserByID(c.Request.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.UserNotFound()
		}
		return err
	}

	response.Success(c, http.StatusOK, "Fetched profile info",
		models.ProfileResponse{User: models.NewUserResponse(user)}, nil)
	return nil
}
