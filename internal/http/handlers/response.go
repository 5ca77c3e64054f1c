// Package handlers implements the gateway's public HTTP endpoints.
//
// This file defines the response envelopes shared by all endpoints. Error
// responses carry a stable machine-readable code plus the request correlation
// id; validation failures additionally carry per-field diagnostics.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BlackLightinger/rsoi-lab-03/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// ErrorDescription is one field-level diagnostic inside a validation failure.
type ErrorDescription struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationErrorResponse is the envelope for semantically invalid requests.
// Errors always names the offending fields.
type ValidationErrorResponse struct {
	RequestID string             `json:"request_id,omitempty"`
	Message   string             `json:"message"`
	Errors    []ErrorDescription `json:"errors"`
}

// fail aborts the request with a structured error, logging server-side (5xx)
// failures through the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail, used by router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failValidation aborts with a 400 validation envelope carrying field
// diagnostics.
func failValidation(c *gin.Context, msg string, errs ...ErrorDescription) {
	if errs == nil {
		errs = []ErrorDescription{}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Message:   msg,
		Errors:    errs,
	})
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
