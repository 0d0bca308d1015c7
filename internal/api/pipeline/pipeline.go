// Package pipeline выполняет стадии маршрута по порядку и превращает
// любую ошибку в конверт ответа в одном месте.
package pipeline

import (
	"fmt"

	"connectsphere/internal/api/response"
	"connectsphere/internal/models"
	"connectsphere/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDKey - ключ идентификатора запроса в контексте gin
const RequestIDKey = "requestID"

// Stage - перехватчик запроса; ошибка прерывает оставшиеся стадии
type Stage func(c *gin.Context) error

// Handler - конечный обработчик маршрута
type Handler func(c *gin.Context) error

// Runner создает цепочки стадий с общим логгером
type Runner struct {
	log *zap.Logger
}

// NewRunner создает новый экземпляр Runner
func NewRunner(log *zap.Logger) *Runner {
	return &Runner{log: log}
}

// Chain - упорядоченный набор стадий
type Chain struct {
	runner *Runner
	stages []Stage
}

// Chain фиксирует порядок стадий
func (r *Runner) Chain(stages ...Stage) Chain {
	return Chain{runner: r, stages: stages}
}

// Then завершает цепочку обработчиком
func (ch Chain) Then(h Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				ch.runner.Fail(c, fmt.Errorf("panic: %v", rec))
			}
		}()

		for _, stage := range ch.stages {
			if err := stage(c); err != nil {
				ch.runner.Fail(c, err)
				return
			}
		}
		if err := h(c); err != nil {
			ch.runner.Fail(c, err)
		}
	}
}

// Fail - единственная точка преобразования ошибки в ответ.
// Неизвестные ошибки уходят в лог, клиент получает SERVER_ERROR
func (r *Runner) Fail(c *gin.Context, err error) {
	appErr, ok := models.AsAppError(err)
	if !ok {
		appErr = models.ServerError(err)
	}

	if appErr.HTTPStatus >= 500 {
		r.log.Error("Request failed",
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		appErr = models.ServerError(err)
	}

	_ = c.Error(err)
	response.Error(c, appErr)
}

// Validate - стадия проверки входных данных
func Validate(rules validation.Rules) Stage {
	return func(c *gin.Context) error {
		if appErr := rules.Err(validation.FromGin(c)); appErr != nil {
			return appErr
		}
		return nil
	}
}
