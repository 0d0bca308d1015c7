package pipeline

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectsphere/internal/models"
	"connectsphere/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupPipelineTest() (*gin.Engine, *Runner, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	return gin.New(), NewRunner(zap.New(core)), logs
}

func record(trace *[]string, name string, err error) Stage {
	return func(c *gin.Context) error {
		*trace = append(*trace, name)
		return err
	}
}

func TestChainRunsStagesInOrder(t *testing.T) {
	r, runner, _ := setupPipelineTest()
	var trace []string

	r.GET("/ok", runner.Chain(
		record(&trace, "validate", nil),
		record(&trace, "authenticate", nil),
		record(&trace, "authorize", nil),
	).Then(func(c *gin.Context) error {
		trace = append(trace, "handler")
		c.Status(http.StatusNoContent)
		return nil
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"validate", "authenticate", "authorize", "handler"}, trace)
}

func TestChainShortCircuits(t *testing.T) {
	r, runner, logs := setupPipelineTest()
	var trace []string

	r.GET("/denied", runner.Chain(
		record(&trace, "authenticate", nil),
		record(&trace, "authorize", models.UnauthorizedUser()),
		record(&trace, "never", nil),
	).Then(func(c *gin.Context) error {
		t.Fail()
		return nil
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/denied", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, []string{"authenticate", "authorize"}, trace)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrCodeUnauthorizedUser, resp.Error.Code)
	assert.Equal(t, 0, logs.Len())
}

func TestUnexpectedErrorsBecomeServerError(t *testing.T) {
	testCases := []struct {
		name    string
		handler Handler
	}{
		{
			name: "Обычная ошибка",
			handler: func(c *gin.Context) error {
				return errors.New("mongo: connection refused at 10.0.0.5")
			},
		},
		{
			name: "Паника",
			handler: func(c *gin.Context) error {
				panic("nil map write")
			},
		},
		{
			name: "AppError со статусом 500",
			handler: func(c *gin.Context) error {
				return models.NewAppError(http.StatusInternalServerError, models.ErrCodeServer, "db password is hunter2")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, runner, logs := setupPipelineTest()
			r.GET("/boom", runner.Chain().Then(tc.handler))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, models.ErrCodeServer, resp.Error.Code)
			assert.Equal(t, models.ServerErrorMessage, resp.Message)
			assert.NotContains(t, w.Body.String(), "10.0.0.5")
			assert.NotContains(t, w.Body.String(), "hunter2")
			assert.Equal(t, 1, logs.FilterMessage("Request failed").Len())
		})
	}
}

func TestValidateStage(t *testing.T) {
	r, runner, _ := setupPipelineTest()
	r.POST("/register", runner.Chain(Validate(validation.Register())).Then(func(c *gin.Context) error {
		t.Fail()
		return nil
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error struct {
			Code    models.ErrorCode    `json:"code"`
			Details []models.FieldError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 3)
	assert.Equal(t, "name", resp.Error.Details[0].Field)
	assert.Equal(t, "email", resp.Error.Details[1].Field)
	assert.Equal(t, "password", resp.Error.Details[2].Field)
}
