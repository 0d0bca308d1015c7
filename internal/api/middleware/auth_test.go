package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectsphere/internal/api/pipeline"
	"connectsphere/internal/db/memstore"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/models"
	"connectsphere/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockMaker мокирует token.Maker для тестирования
type MockMaker struct {
	mock.Mock
}

// CreateToken мокирует выпуск токена
func (m *MockMaker) CreateToken(claim token.Claim, duration time.Duration) (string, error) {
	args := m.Called(claim, duration)
	return args.String(0), args.Error(1)
}

// VerifyToken мокирует проверку токена
func (m *MockMaker) VerifyToken(raw string) (*token.Payload, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.Payload), args.Error(1)
}

// brokenUsers отдает ошибку на любой поиск пользователя
type brokenUsers struct {
	queries.UserQueriesInterface
}

func (brokenUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection refused")
}

type envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      struct {
		Code string `json:"code"`
	} `json:"error"`
}

// setupAuthTest настраивает роутер с защищенным маршрутом и двумя пользователями
func setupAuthTest(t *testing.T, users queries.UserQueriesInterface, roles ...models.Role) (*gin.Engine, *MockMaker) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	maker := new(MockMaker)
	runner := pipeline.NewRunner(zap.NewNop())

	r.GET("/protected", runner.Chain(
		RequireBearer(),
		Authenticate(maker, users),
		Authorize(roles...),
	).Then(func(c *gin.Context) error {
		caller, ok := CallerFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": caller.ID, "role": caller.Role})
		return nil
	}))

	return r, maker
}

func seedUsers(t *testing.T) (queries.UserQueriesInterface, *models.User) {
	store := memstore.New()
	ctx := context.Background()

	user, err := store.Users.CreateUser(ctx, &models.User{Name: "Alice", Email: "alice@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	blocked, err := store.Users.CreateUser(ctx, &models.User{Name: "Bob", Email: "bob@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = store.Users.SetBlocked(ctx, blocked.ID, true)
	require.NoError(t, err)

	return store.Users, user
}

func payloadFor(email string) *token.Payload {
	return &token.Payload{Claim: token.Claim{Email: email}}
}

func TestAuthenticate(t *testing.T) {
	users, alice := seedUsers(t)

	testCases := []struct {
		name           string
		header         string
		setupMock      func(m *MockMaker)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Успешная аутентификация",
			header:         "Bearer good",
			setupMock:      func(m *MockMaker) { m.On("VerifyToken", "good").Return(payloadFor("alice@x.com"), nil) },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Нет заголовка",
			header:         "",
			setupMock:      func(m *MockMaker) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_OR_MALFORMED_HEADER",
		},
		{
			name:           "Схема не Bearer",
			header:         "Basic abc",
			setupMock:      func(m *MockMaker) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_OR_MALFORMED_HEADER",
		},
		{
			name:           "Истекший токен",
			header:         "Bearer old",
			setupMock:      func(m *MockMaker) { m.On("VerifyToken", "old").Return(nil, token.ErrExpiredToken) },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "EXPIRED",
		},
		{
			name:           "Неверная подпись",
			header:         "Bearer forged",
			setupMock:      func(m *MockMaker) { m.On("VerifyToken", "forged").Return(nil, token.ErrInvalidSignature) },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_SIGNATURE",
		},
		{
			name:           "Битый токен",
			header:         "Bearer junk",
			setupMock:      func(m *MockMaker) { m.On("VerifyToken", "junk").Return(nil, token.ErrMalformedToken) },
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MALFORMED",
		},
		{
			name:           "Пользователь удален",
			header:         "Bearer ghost",
			setupMock:      func(m *MockMaker) { m.On("VerifyToken", "ghost").Return(payloadFor("ghost@x.com"), nil) },
			expectedStatus: http.StatusNotFound,
			expectedCode:   "USER_NOT_FOUND",
		},
		{
			name:           "Пользователь заблокирован после входа",
			header:         "Bearer bob",
			setupMock:      func(m *MockMaker) { m.On("VerifyToken", "bob").Return(payloadFor("bob@x.com"), nil) },
			expectedStatus: http.StatusForbidden,
			expectedCode:   "ACCOUNT_BLOCKED",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, maker := setupAuthTest(t, users, models.RoleUser, models.RoleAdmin)
			tc.setupMock(maker)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedCode != "" {
				var resp envelope
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.False(t, resp.Success)
				assert.Equal(t, tc.expectedStatus, resp.StatusCode)
				assert.Equal(t, tc.expectedCode, resp.Error.Code)
			} else {
				assert.Contains(t, w.Body.String(), alice.ID)
			}
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthorize(t *testing.T) {
	users, _ := seedUsers(t)

	t.Run("Роль не из списка", func(t *testing.T) {
		r, maker := setupAuthTest(t, users, models.RoleAdmin)
		maker.On("VerifyToken", "good").Return(payloadFor("alice@x.com"), nil)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED_USER")
	})

	t.Run("Без аутентификации", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		runner := pipeline.NewRunner(zap.NewNop())
		r.GET("/admin", runner.Chain(Authorize(models.RoleAdmin)).Then(func(c *gin.Context) error {
			t.Fatal("обработчик не должен вызываться")
			return nil
		}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "SERVER_ERROR")
	})
}

func TestAuthenticateStoreFailure(t *testing.T) {
	r, maker := setupAuthTest(t, brokenUsers{}, models.RoleUser)
	maker.On("VerifyToken", "good").Return(payloadFor("alice@x.com"), nil)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
