package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-intake/internal/logger"
)

// RequestIDHeader заголовок, в котором идентификатор запроса приходит и возвращается.
const RequestIDHeader = "X-Request-ID"

// RequestID присваивает запросу идентификатор.
// Входящий X-Request-ID принимается только если это валидный UUID, иначе генерируется новый.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(logger.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
