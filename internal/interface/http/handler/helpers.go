package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// fail передаёт ошибку в ErrorHandler и прерывает цепочку.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// absoluteURL склеивает публичный базовый адрес и путь.
func absoluteURL(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + path
}

// noStore запрещает кэширование ответов с персональными данными.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

var allowedProposalMethods = http.MethodGet + ", " + http.MethodPost
