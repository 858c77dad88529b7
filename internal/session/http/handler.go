package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/clio-platform/clio/internal/errors"
	"github.com/clio-platform/clio/internal/httputil"
	"github.com/clio-platform/clio/internal/session/http/dto"
	sessionUseCase "github.com/clio-platform/clio/internal/session/usecase"
)

// SessionHandler handles the session endpoints. All routes run behind SessionMiddleware.
type SessionHandler struct {
	useCase sessionUseCase.SessionUseCase
	cookies CookieConfig
	logger  *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(
	useCase sessionUseCase.SessionUseCase,
	cookies CookieConfig,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		useCase: useCase,
		cookies: cookies,
		logger:  logger,
	}
}

// MeHandler returns the current session.
// GET /api/auth/me
func (h *SessionHandler) MeHandler(c *gin.Context) {
	data, ok := GetSession(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToResponse(data))
}

// RegenerateHandler replaces the current session with a new one for the same identity
// and sends the new token as the session cookie.
// POST /api/auth/regenerate
func (h *SessionHandler) RegenerateHandler(c *gin.Context) {
	data, ok := GetSession(c.Request.Context())
	token, hasToken := getToken(c.Request.Context())
	if !ok || !hasToken {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	newToken, err := h.useCase.RegenerateSession(c.Request.Context(), token, data.Identity())
	if err != nil {
		rejectSession(c, h.cookies, err, h.logger)
		return
	}

	setSessionCookie(c, h.cookies, newToken)
	c.JSON(http.StatusOK, gin.H{"status": "regenerated"})
}

// LogoutHandler revokes the current session and clears the cookie.
// POST /api/auth/logout
func (h *SessionHandler) LogoutHandler(c *gin.Context) {
	token, ok := getToken(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.useCase.RevokeSession(c.Request.Context(), token); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	clearSessionCookie(c, h.cookies)
	c.Status(http.StatusNoContent)
}

// ListSessionsHandler lists the caller's own live sessions.
// GET /api/auth/sessions?offset=0&limit=50
func (h *SessionHandler) ListSessionsHandler(c *gin.Context) {
	data, ok := GetSession(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	sessions, err := h.useCase.ListUserSessions(c.Request.Context(), data.Username)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	total := len(sessions)
	start, end := page.Bounds(total)

	c.JSON(http.StatusOK, dto.MapSessionsToListResponse(sessions[start:end], total))
}
