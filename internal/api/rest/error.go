package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/veritrace/supplyview/internal/domain"
	"github.com/veritrace/supplyview/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest       ErrorCode = "bad_request"
	errCodeNotFound         ErrorCode = "not_found"
	errCodeValidationFailed ErrorCode = "validation_failed"
	errCodeForbidden        ErrorCode = "forbidden"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
	errCodeDecodeError   ErrorCode = "decode_error"
	errCodeLedgerError   ErrorCode = "ledger_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, errCodeNotFound, message, details...)
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, errCodeValidationFailed, "Validation failed", details)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}

// respondDomainError maps the data layer's error taxonomy onto HTTP statuses.
// Connection failures surface as 502 so callers can tell an unreachable
// ledger apart from a bug in this service.
func respondDomainError(c *gin.Context, err error) {
	var (
		notFound     *domain.NotFoundError
		validation   *domain.ValidationError
		unauthorized *domain.UnauthorizedError
		decode       *domain.DecodeError
		connection   *domain.ConnectionError
	)

	switch {
	case errors.As(err, &notFound):
		respondNotFound(c, "Record not found", notFound.Error())
	case errors.As(err, &validation):
		respondValidationError(c, validation.Error())
	case errors.As(err, &unauthorized):
		respondWithError(c, http.StatusForbidden, errCodeForbidden, "Operation not permitted", unauthorized.Error())
	case errors.As(err, &decode):
		logger.Error(err, zap.String("path", c.Request.URL.Path))
		respondWithError(c, http.StatusInternalServerError, errCodeDecodeError, "Account data could not be decoded")
	case errors.As(err, &connection):
		logger.Error(err, zap.String("path", c.Request.URL.Path))
		respondWithError(c, http.StatusBadGateway, errCodeLedgerError, "Ledger endpoint unavailable")
	default:
		respondInternalError(c, err, "Request failed")
	}
}
