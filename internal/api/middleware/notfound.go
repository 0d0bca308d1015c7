package middleware

import (
	"connectsphere/internal/api/response"
	"connectsphere/internal/models"

	"github.com/gin-gonic/gin"
)

// NoRoute отвечает API_NOT_FOUND на запросы к неизвестным маршрутам
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, models.APINotFound())
	}
}
