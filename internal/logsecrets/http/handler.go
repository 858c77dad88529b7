// Package http provides the HTTP handlers for the secrets column of logs.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clio-platform/clio/internal/httputil"
	"github.com/clio-platform/clio/internal/logsecrets/http/dto"
	logSecretsUseCase "github.com/clio-platform/clio/internal/logsecrets/usecase"
	customValidation "github.com/clio-platform/clio/internal/validation"
)

// LogSecretsHandler handles reads and writes of log secrets. Routes run behind the
// session middleware.
type LogSecretsHandler struct {
	useCase logSecretsUseCase.LogSecretsUseCase
	logger  *slog.Logger
}

// NewLogSecretsHandler creates a new log secrets handler.
func NewLogSecretsHandler(useCase logSecretsUseCase.LogSecretsUseCase, logger *slog.Logger) *LogSecretsHandler {
	return &LogSecretsHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// GetHandler returns the decrypted secrets of a log.
// GET /api/logs/:id/secrets
func (h *LogSecretsHandler) GetHandler(c *gin.Context) {
	logID, err := parseLogID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	secrets, err := h.useCase.Get(c.Request.Context(), logID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapLogSecretsToResponse(secrets))
}

// UpdateHandler encrypts and stores new secrets for a log.
// PUT /api/logs/:id/secrets
func (h *LogSecretsHandler) UpdateHandler(c *gin.Context) {
	logID, err := parseLogID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.UpdateLogSecretsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := req.Value()
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	secrets, err := h.useCase.Update(c.Request.Context(), logID, value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapLogSecretsToResponse(secrets))
}

func parseLogID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid log id %q", c.Param("id"))
	}
	return id, nil
}
