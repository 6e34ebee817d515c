package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/ragchat/pkg/errors"
)

// statusForKind maps a domain error Kind onto its HTTP status code.
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindExternalService:
		return http.StatusBadGateway
	case apperrors.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// abortWithDomainError maps err's Kind onto an HTTP status and aborts
// the request with a structured error body.
func abortWithDomainError(c *gin.Context, code string, err error) {
	kind := apperrors.KindOf(err)
	abortWithError(c, NewHTTPError(statusForKind(kind), code, errMessage(err), err))
}
