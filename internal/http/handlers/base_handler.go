// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"payguard/internal/modules/audit"
	"payguard/internal/modules/minpay"
	"payguard/internal/modules/session"
	"payguard/internal/modules/settlement"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeEngineError maps engine error classes onto HTTP statuses: invalid
// input and integrity violations are the caller's fault; everything else is
// an internal failure.
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, minpay.ErrInvalidInput),
		errors.Is(err, session.ErrIntegrity),
		errors.Is(err, session.ErrBadRequest),
		errors.Is(err, settlement.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, audit.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
