package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-intake/internal/domain/entity"
	"github.com/ignatzorin/proposal-intake/internal/interface/http/forminput"
	"github.com/ignatzorin/proposal-intake/internal/interface/http/response"
	"github.com/ignatzorin/proposal-intake/internal/logger"
	"github.com/ignatzorin/proposal-intake/internal/metrics"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-intake/internal/usecase/proposal"
)

type ResponseMode string

const (
	ModeDownload ResponseMode = "download"
	ModeStore    ResponseMode = "store"
	ModeRedirect ResponseMode = "redirect"
)

const downloadFilename = "proposal.json"

type ProposalHandlerConfig struct {
	Mode          ResponseMode
	PublicBaseURL string
	RedirectURL   string
	RedirectDelay time.Duration
}

type ProposalHandler struct {
	decoder  *forminput.Decoder
	storeUC  *proposal.StoreProposalUseCase
	lookupUC *proposal.LookupProposalUseCase
	metrics  *metrics.Metrics
	cfg      ProposalHandlerConfig
	now      func() time.Time
}

func NewProposalHandler(
	decoder *forminput.Decoder,
	storeUC *proposal.StoreProposalUseCase,
	lookupUC *proposal.LookupProposalUseCase,
	m *metrics.Metrics,
	cfg ProposalHandlerConfig,
) *ProposalHandler {
	if cfg.Mode == "" {
		cfg.Mode = ModeStore
	}
	return &ProposalHandler{
		decoder:  decoder,
		storeUC:  storeUC,
		lookupUC: lookupUC,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Submit обрабатывает ANY /proposal: GET и POST превращаются в документ, остальные методы дают 405.
func (h *ProposalHandler) Submit(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodPost {
		response.MethodNotAllowed(c, allowedProposalMethods)
		return
	}

	input, err := h.decoder.Decode(c.Writer, c.Request)
	if err != nil {
		fail(c, err)
		return
	}
	h.metrics.ObserveSubmission(c.Request.Method, input.Encoding, input.ParseFailed)

	log := logger.FromContext(c).WithFields(logrus.Fields{
		"encoding": input.Encoding,
		"fields":   len(input.Fields),
	})
	if input.ParseFailed {
		log.WithField("reason", input.Fields[forminput.ParseErrorKey]).Warn("Тело заявки не разобрано, сохраняем как есть")
	}

	doc := entity.NewProposal(input.Fields, h.now()).WithClientIP(c.ClientIP())
	content, err := proposal.Encode(doc)
	if err != nil {
		fail(c, fmt.Errorf("handler: не удалось сериализовать заявку: %w", err))
		return
	}

	noStore(c)
	switch h.cfg.Mode {
	case ModeDownload:
		log.Debug("Заявка отдана на скачивание")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadFilename))
		c.Data(http.StatusOK, "application/json; charset=utf-8", content)
	case ModeRedirect:
		log.Debug("Заявка отдана страницей с редиректом")
		c.HTML(http.StatusOK, redirectTemplate, gin.H{
			"Document":     string(content),
			"Filename":     downloadFilename,
			"RedirectURL":  h.cfg.RedirectURL,
			"DelayMillis":  h.cfg.RedirectDelay.Milliseconds(),
			"DelaySeconds": int64(h.cfg.RedirectDelay.Seconds()),
		})
	default:
		h.store(c, log, doc)
	}
}

func (h *ProposalHandler) store(c *gin.Context, log *logrus.Entry, doc *entity.Proposal) {
	out, err := h.storeUC.Execute(c.Request.Context(), doc)
	if err != nil {
		fail(c, err)
		return
	}
	h.metrics.ObserveStored()

	lookupURL := absoluteURL(h.cfg.PublicBaseURL, "/p/"+out.Code.String())
	log.WithFields(logrus.Fields{
		"code":          out.Code.String(),
		"submission_id": doc.Meta.SubmissionID,
	}).Info("Заявка сохранена")

	c.HTML(http.StatusOK, confirmationTemplate, gin.H{
		"Code":        out.Code.String(),
		"DocumentURL": out.URL,
		"LookupURL":   lookupURL,
	})
}

// Lookup обрабатывает GET /p/:code: редирект на сохранённый документ или 404.
func (h *ProposalHandler) Lookup(c *gin.Context) {
	url, err := h.lookupUC.Execute(c.Request.Context(), c.Param("code"))
	if err != nil {
		if apperror.IsNotFound(err) {
			h.metrics.ObserveLookup("not_found")
		} else {
			h.metrics.ObserveLookup("error")
		}
		fail(c, err)
		return
	}

	h.metrics.ObserveLookup("found")
	c.Redirect(http.StatusFound, url)
}
