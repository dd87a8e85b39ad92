package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-intake/internal/config"
	"github.com/ignatzorin/proposal-intake/internal/http/middleware"
	"github.com/ignatzorin/proposal-intake/internal/interface/http/handler"
)

// Handlers собирает обработчики, которые подключает роутер.
// Blob равен nil для бэкендов, которые сами раздают объекты.
type Handlers struct {
	Proposal *handler.ProposalHandler
	Blob     *handler.BlobHandler
	Health   *handler.HealthHandler
	Metrics  http.Handler
}

func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.SetHTMLTemplate(handler.Templates())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	intake := r.Group("/")
	intake.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		intake.Any("/proposal", h.Proposal.Submit)
		intake.GET("/p/:code", h.Proposal.Lookup)
	}

	if h.Blob != nil {
		r.GET("/blobs/*key", h.Blob.Get)
	}

	return r
}
