package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/voucher_engine/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error category to its HTTP status.
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusUnprocessableEntity
	case apperrors.KindAuthorization:
		if apperrors.CodeOf(err) == apperrors.CodeOf(apperrors.ErrUnauthenticated) {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case apperrors.KindStateConflict:
		return http.StatusConflict
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindContract:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Business rejections are logged at Warn and
// returned verbatim; anything else is logged at Error and hidden behind msg.
func respondError(c *gin.Context, logger *slog.Logger, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: msg, Code: apperrors.CodeOf(err)})
		return
	}
	logger.Warn(msg, slog.String("error", err.Error()), slog.String("code", apperrors.CodeOf(err)))
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: apperrors.CodeOf(err)})
}

// respondBindError answers a request whose body or query could not be bound.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error(), Code: "BAD_REQUEST"})
}

// pathID reads a UUID path parameter in canonical form. An ID that does not parse
// names no resource and is answered with 404.
func pathID(c *gin.Context, logger *slog.Logger, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, logger, fmt.Errorf("%w: %s %q", apperrors.ErrNotFound, name, raw), "Resource not found")
		return "", false
	}
	return id.String(), true
}
