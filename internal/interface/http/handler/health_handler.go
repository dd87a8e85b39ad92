package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/logger"
)

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	backend string
	pinger  repository.Pinger
}

// NewHealthHandler создаёт health handler. pinger может быть nil, если бэкенд не умеет проверку.
func NewHealthHandler(backend string, pinger repository.Pinger) *HealthHandler {
	return &HealthHandler{backend: backend, pinger: pinger}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Проверка хранилища
	if h.pinger == nil {
		checks["store"] = "skipped: " + h.backend
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			logger.FromContext(c).WithError(err).WithField("backend", h.backend).Error("Хранилище не отвечает")
			checks["store"] = "unhealthy"
			status = "unhealthy"
		} else {
			checks["store"] = "healthy: " + h.backend
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}
