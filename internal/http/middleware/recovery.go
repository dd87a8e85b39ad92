package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-intake/internal/interface/http/response"
	"github.com/ignatzorin/proposal-intake/internal/logger"
)

// Recovery перехватывает панику в обработчике и отвечает общим 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.FromContext(c).WithFields(logrus.Fields{
					"panic": fmt.Sprint(r),
					"stack": string(debug.Stack()),
				}).Error("Паника при обработке запроса")

				if c.Writer.Written() {
					c.Abort()
					return
				}
				response.Error(c, fmt.Errorf("panic: %v", r))
			}
		}()

		c.Next()
	}
}
