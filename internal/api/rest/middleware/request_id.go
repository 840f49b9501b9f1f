package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader заголовок с ID запроса
	RequestIDHeader = "X-Request-ID"
	// ContextRequestIDKey ключ ID запроса в контексте gin
	ContextRequestIDKey = "requestID"
)

// RequestID берет ID запроса из заголовка или генерирует новый
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
