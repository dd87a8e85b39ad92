package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-intake/internal/logger"
)

// RequestLogger пишет одну запись на запрос вместо стандартного логгера gin.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		entry := logger.FromContext(c).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})

		switch {
		case status >= 500:
			entry.Error("Запрос завершился ошибкой")
		case status >= 400:
			entry.Warn("Запрос отклонён")
		default:
			entry.Info("Запрос обработан")
		}
	}
}
