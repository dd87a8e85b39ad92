package logger

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// RequestIDKey ключ, под которым middleware кладёт идентификатор запроса в gin.Context.
const RequestIDKey = "request_id"

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// FromContext возвращает запись лога с идентификатором текущего запроса.
// Если логгер не инициализирован (тесты), пишет в стандартный логгер logrus.
func FromContext(c *gin.Context) *logrus.Entry {
	base := Log
	if base == nil {
		base = logrus.StandardLogger()
	}
	entry := logrus.NewEntry(base)
	if c == nil {
		return entry
	}
	if id := c.GetString(RequestIDKey); id != "" {
		entry = entry.WithField(RequestIDKey, id)
	}
	return entry
}
