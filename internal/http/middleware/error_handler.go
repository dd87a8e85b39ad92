package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-intake/internal/interface/http/response"
	"github.com/ignatzorin/proposal-intake/internal/logger"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Клиентские ошибки (4xx из apperror) отдаются как есть, всё остальное маскируется.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		entry := logger.FromContext(c).WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})

		switch {
		case apperror.IsNotFound(err):
			entry.Debug("Ресурс не найден")
		case apperror.IsClientError(err):
			entry.Warn("Ошибка клиента")
		default:
			entry.Error("Ошибка обработки запроса")
		}

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}
		response.Error(c, err)
	}
}
