package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServiceName имя сервиса в ответе проверки здоровья
const ServiceName = "personalized-gospels"

// HealthCheck обработчик для проверки работоспособности сервиса
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": ServiceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
