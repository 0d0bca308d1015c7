package response

import (
	"connectsphere/internal/models"

	"github.com/gin-gonic/gin"
)

// Success отправляет успешный ответ. Пустые data и meta не попадают в JSON
func Success(c *gin.Context, status int, message string, data any, meta *models.PaginationMeta) {
	c.JSON(status, models.SuccessResponse{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
		Meta:       meta,
	})
}

// Error отправляет ответ с ошибкой и прерывает цепочку обработчиков
func Error(c *gin.Context, appErr *models.AppError) {
	body := models.ErrorBody{Code: appErr.Code}
	if hasDetails(appErr.Details) {
		body.Details = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, models.ErrorResponse{
		Success:    false,
		StatusCode: appErr.HTTPStatus,
		Message:    appErr.Message,
		Error:      body,
	})
}

func hasDetails(details any) bool {
	switch d := details.(type) {
	case nil:
		return false
	case []models.FieldError:
		return len(d) > 0
	case string:
		return d != ""
	}
	return true
}
