package res

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// ErrorResponse представляет формат JSON-ответа для ошибок.
type ErrorResponse struct {
	Error   string `json:"error"`             // Сообщение об ошибке (для пользователя)
	Code    string `json:"code,omitempty"`    // Код ошибки (для программной обработки)
	Details any    `json:"details,omitempty"` // Детали ошибки (например, ошибки валидации)
}

// JSON отправляет JSON-ответ с заданным статусом.
func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// Error отправляет JSON ответ ошибки и прерывает цепочку обработчиков.
func Error(c *gin.Context, status int, errResponse ErrorResponse, log *logger.Logger) {
	c.AbortWithStatusJSON(status, errResponse)
	if status >= http.StatusInternalServerError {
		log.Errorw("Error response", "status", status, "path", c.Request.URL.Path, "error", errResponse.Error)
	} else {
		log.Debugw("Error response", "status", status, "path", c.Request.URL.Path, "error", errResponse.Error)
	}
}
