package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-intake/internal/domain/repository"
	"github.com/ignatzorin/proposal-intake/internal/infrastructure/objectstore"
	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

// BlobHandler раздаёт публичные объекты локальных бэкендов хранилища.
type BlobHandler struct {
	reader repository.ObjectReader
}

func NewBlobHandler(reader repository.ObjectReader) *BlobHandler {
	return &BlobHandler{reader: reader}
}

// Get обрабатывает GET /blobs/*key.
func (h *BlobHandler) Get(c *gin.Context) {
	key, err := objectstore.CleanKey(strings.TrimPrefix(c.Param("key"), "/"))
	if err != nil {
		fail(c, apperror.ErrObjectNotFound)
		return
	}

	content, contentType, err := h.reader.Get(c.Request.Context(), key)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, contentType, content)
}
