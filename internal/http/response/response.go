package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// StatusFor maps an error code onto the HTTP status the admin UI keys its hints on.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnavailable:
		return http.StatusServiceUnavailable
	case domain.CodeUploadRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError renders err with the status and code its domain error carries. Errors
// without a code are internal.
func RespondDomainError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	if code == "" {
		code = domain.CodeInternal
	}
	RespondError(c, StatusFor(code), string(code), err)
}
