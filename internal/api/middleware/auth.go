package middleware

import (
	"errors"
	"strings"

	"connectsphere/internal/api/pipeline"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/metrics"
	"connectsphere/internal/models"
	"connectsphere/internal/token"

	"github.com/gin-gonic/gin"
)

// CallerKey - ключ вызывающего в контексте gin
const CallerKey = "caller"

const bearerPrefix = "Bearer "

// ErrNoCaller - авторизация вызвана без предшествующей аутентификации
var ErrNoCaller = errors.New("caller is not set, authentication must run before authorization")

// SetCaller сохраняет вызывающего в контексте запроса
func SetCaller(c *gin.Context, caller *models.Caller) {
	c.Set(CallerKey, caller)
}

// CallerFrom достает вызывающего из контекста запроса
func CallerFrom(c *gin.Context) (*models.Caller, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return nil, false
	}
	caller, ok := v.(*models.Caller)
	return caller, ok && caller != nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(bearerPrefix):]), true
}

// RequireBearer проверяет наличие заголовка Authorization со схемой Bearer
func RequireBearer() pipeline.Stage {
	return func(c *gin.Context) error {
		if _, ok := bearerToken(c); !ok {
			return authFailure(models.MissingAuthHeader())
		}
		return nil
	}
}

// Authenticate проверяет токен и находит пользователя по email из токена.
// Блокировка проверяется на каждом запросе, а не только при входе
func Authenticate(maker token.Maker, users queries.UserQueriesInterface) pipeline.Stage {
	return func(c *gin.Context) error {
		raw, ok := bearerToken(c)
		if !ok {
			return authFailure(models.MissingAuthHeader())
		}

		payload, err := maker.VerifyToken(raw)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrExpiredToken):
				return authFailure(models.TokenExpired())
			case errors.Is(err, token.ErrInvalidSignature):
				return authFailure(models.InvalidSignature())
			default:
				return authFailure(models.TokenMalformed())
			}
		}

		user, err := users.GetUserByEmail(c.Request.Context(), payload.Email)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return authFailure(models.UserNotFound())
			}
			return err
		}
		if user.IsBlocked {
			return authFailure(models.AccountBlocked())
		}

		SetCaller(c, user.Caller())
		return nil
	}
}

// Authorize пропускает только вызывающих с одной из перечисленных ролей
func Authorize(roles ...models.Role) pipeline.Stage {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) error {
		caller, ok := CallerFrom(c)
		if !ok {
			return ErrNoCaller
		}
		if _, ok := allowed[caller.Role]; !ok {
			return authFailure(models.UnauthorizedUser())
		}
		return nil
	}
}

func authFailure(appErr *models.AppError) *models.AppError {
	metrics.AuthFailuresTotal.WithLabelValues(string(appErr.Code)).Inc()
	return appErr
}
