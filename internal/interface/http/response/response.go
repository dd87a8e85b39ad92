package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/proposal-intake/internal/pkg/apperror"
)

// InternalMessage единственный текст, который клиент видит при внутренней ошибке.
const InternalMessage = "internal server error"

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error пишет ошибку в конверте. Ошибки вне apperror, а также 5xx, маскируются.
func Error(c *gin.Context, err error) {
	status, body := Envelope(err)
	c.AbortWithStatusJSON(status, body)
}

// Envelope переводит ошибку в статус и тело ответа.
func Envelope(err error) (int, ErrorResponse) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
		return appErr.HTTPStatus, ErrorResponse{
			Error: appErr.Message,
			Code:  string(appErr.Code),
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: InternalMessage}
}

func MethodNotAllowed(c *gin.Context, allow string) {
	c.Header("Allow", allow)
	Error(c, apperror.ErrMethodNotAllowed)
}
