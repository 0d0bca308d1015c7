package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectsphere/internal/api/pipeline"
	"connectsphere/internal/db/memstore"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/models"
	"connectsphere/internal/token"
	"connectsphere/internal/utils"
	"connectsphere/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "Str0ng!Pass"
)

// authEnv - обработчики регистрации и входа поверх хранилища в памяти
type authEnv struct {
	users  queries.UserQueriesInterface
	maker  *token.JWTMaker
	hasher *utils.PasswordHasher
	router *gin.Engine
}

func setupAuthHandlerTest(t *testing.T) *authEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memstore.New().Users
	maker, err := token.NewJWTMaker(testSecret)
	require.NoError(t, err)
	hasher := utils.NewPasswordHasher(4)

	h := NewAuthHandler(users, maker, hasher, time.Hour)
	run := pipeline.NewRunner(zap.NewNop())

	router := gin.New()
	router.POST("/auth/register", run.Chain(pipeline.Validate(validation.Register())).Then(h.Register))
	router.POST("/auth/login", run.Chain(pipeline.Validate(validation.Login())).Then(h.Login))
	router.GET("/auth/profile", run.Chain(impersonate(users)).Then(h.Profile))

	return &authEnv{users: users, maker: maker, hasher: hasher, router: router}
}

func (e *authEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *authEnv) seed(t *testing.T, email string, blocked bool) *models.User {
	t.Helper()
	hash, err := e.hasher.HashPassword(testPassword)
	require.NoError(t, err)
	u, err := e.users.CreateUser(context.Background(), &models.User{
		Name:         "Alice Smith",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	require.NoError(t, err)
	if blocked {
		u, err = e.users.SetBlocked(context.Background(), u.ID, true)
		require.NoError(t, err)
	}
	return u
}

func TestRegister(t *testing.T) {
	testCases := []struct {
		name           string
		body           gin.H
		existing       string
		expectedStatus int
		expectedCode   models.ErrorCode
		expectedFields []string
	}{
		{
			name:           "Успешная регистрация",
			body:           gin.H{"name": "Alice Smith", "email": "Alice@X.com", "password": testPassword},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Email уже занят",
			body:           gin.H{"name": "Alice Smith", "email": "alice@x.com", "password": testPassword},
			existing:       "ALICE@x.com",
			expectedStatus: http.StatusConflict,
			expectedCode:   models.ErrCodeUserExists,
		},
		{
			name:           "Пустое тело",
			body:           gin.H{},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.ErrCodeValidation,
			expectedFields: []string{"name", "email", "password"},
		},
		{
			name:           "Все поля с ошибками",
			body:           gin.H{"name": "A!", "email": "not-mail", "password": "weak"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.ErrCodeValidation,
			expectedFields: []string{"name", "name", "email", "password"},
		},
		{
			name:           "Имя числом",
			body:           gin.H{"name": 12345, "email": "alice@x.com", "password": testPassword},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.ErrCodeValidation,
			expectedFields: []string{"name"},
		},
		{
			name:           "Пароль числом",
			body:           gin.H{"name": "Alice Smith", "email": "alice@x.com", "password": 12345678},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.ErrCodeValidation,
			expectedFields: []string{"password"},
		},
		{
			name:           "Пароль длиннее 72 байт",
			body:           gin.H{"name": "Alice Smith", "email": "alice@x.com", "password": "Aa1!" + strings.Repeat("x", 70)},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   models.ErrCodeValidation,
			expectedFields: []string{"password"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := setupAuthHandlerTest(t)
			if tc.existing != "" {
				e.seed(t, tc.existing, false)
			}

			w := e.serve(jsonRequest(http.MethodPost, "/auth/register", tc.body))

			assert.Equal(t, tc.expectedStatus, w.Code)
			env := decode(t, w)
			assert.Equal(t, tc.expectedStatus, env.StatusCode)
			if tc.expectedCode != "" {
				assert.False(t, env.Success)
				assert.Equal(t, tc.expectedCode, env.Error.Code)
				assert.Empty(t, env.Data)
				fields := make([]string, 0, len(env.Error.Details))
				for _, d := range env.Error.Details {
					fields = append(fields, d.Field)
				}
				if tc.expectedFields != nil {
					assert.Equal(t, tc.expectedFields, fields)
				}
				return
			}

			assert.True(t, env.Success)
			assert.Equal(t, "Account created successfully", env.Message)
			var data models.AuthResponse
			decodeData(t, env, &data)
			assert.Equal(t, "alice@x.com", data.User.Email)
			assert.Equal(t, models.RoleUser, data.User.Role)
			assert.True(t, data.User.ProfilePic.IsDefault())

			payload, err := e.maker.VerifyToken(data.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, "alice@x.com", payload.Email)

			stored, err := e.users.GetUserByEmail(context.Background(), "alice@x.com")
			require.NoError(t, err)
			assert.NotEqual(t, testPassword, stored.PasswordHash)
			assert.True(t, e.hasher.CheckPassword(testPassword, stored.PasswordHash))
		})
	}
}

func TestRegisterTwice(t *testing.T) {
	e := setupAuthHandlerTest(t)
	body := gin.H{"name": "Alice Smith", "email": "alice@x.com", "password": testPassword}

	first := e.serve(jsonRequest(http.MethodPost, "/auth/register", body))
	require.Equal(t, http.StatusCreated, first.Code)

	second := e.serve(jsonRequest(http.MethodPost, "/auth/register", body))
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, models.ErrCodeUserExists, decode(t, second).Error.Code)
}

func TestLogin(t *testing.T) {
	testCases := []struct {
		name           string
		email          string
		password       string
		blocked        bool
		expectedStatus int
		expectedCode   models.ErrorCode
	}{
		{name: "Успешный вход", email: "alice@x.com", password: testPassword, expectedStatus: http.StatusOK},
		{name: "Email в другом регистре", email: "ALICE@X.COM", password: testPassword, expectedStatus: http.StatusOK},
		{name: "Неизвестный email", email: "ghost@x.com", password: testPassword, expectedStatus: http.StatusNotFound, expectedCode: models.ErrCodeUserNotExists},
		{name: "Неверный пароль", email: "alice@x.com", password: "Wr0ng!Pass", expectedStatus: http.StatusUnauthorized, expectedCode: models.ErrCodeInvalidCredentials},
		{name: "Аккаунт заблокирован", email: "alice@x.com", password: testPassword, blocked: true, expectedStatus: http.StatusForbidden, expectedCode: models.ErrCodeAccountBlocked},
		{name: "Заблокирован и неверный пароль", email: "alice@x.com", password: "Wr0ng!Pass", blocked: true, expectedStatus: http.StatusForbidden, expectedCode: models.ErrCodeAccountBlocked},
		{name: "Слабый пароль не проверяется на входе", email: "alice@x.com", password: "weak", expectedStatus: http.StatusUnauthorized, expectedCode: models.ErrCodeInvalidCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := setupAuthHandlerTest(t)
			e.seed(t, "alice@x.com", tc.blocked)

			w := e.serve(jsonRequest(http.MethodPost, "/auth/login", gin.H{"email": tc.email, "password": tc.password}))

			assert.Equal(t, tc.expectedStatus, w.Code)
			env := decode(t, w)
			if tc.expectedCode != "" {
				assert.Equal(t, tc.expectedCode, env.Error.Code)
				assert.NotContains(t, w.Body.String(), "accessToken")
				return
			}

			assert.Equal(t, "Login successfully", env.Message)
			var data models.AuthResponse
			decodeData(t, env, &data)
			assert.NotEmpty(t, data.AccessToken)
			assert.Equal(t, "alice@x.com", data.User.Email)
		})
	}
}

func TestLoginRejectsNonStringPassword(t *testing.T) {
	e := setupAuthHandlerTest(t)
	e.seed(t, "alice@x.com", false)

	w := e.serve(jsonRequest(http.MethodPost, "/auth/login", gin.H{"email": "alice@x.com", "password": 12345678}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w)
	assert.Equal(t, models.ErrCodeValidation, env.Error.Code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "password", env.Error.Details[0].Field)
	assert.Equal(t, "password must be a string", env.Error.Details[0].Message)
}

func TestProfile(t *testing.T) {
	e := setupAuthHandlerTest(t)
	alice := e.seed(t, "alice@x.com", false)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set(testUserHdr, alice.ID)
	w := e.serve(req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Fetched profile info", env.Message)
	var data models.ProfileResponse
	decodeData(t, env, &data)
	assert.Equal(t, alice.ID, data.User.ID)
	assert.NotContains(t, string(env.Data), "PasswordHash")
}
