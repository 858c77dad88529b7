package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/clio-platform/clio/internal/errors"
	"github.com/clio-platform/clio/internal/httputil"
	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
	sessionUseCase "github.com/clio-platform/clio/internal/session/usecase"
)

// SessionMiddleware verifies the session cookie on every request.
//
// Outcomes:
//   - Valid session: session data is stored in the request context (see GetSession)
//   - Missing, unknown, expired or instance-mismatched session: cookie cleared, 401 invalid_session
//   - Regenerated session: cookie cleared, 401 session_superseded
//   - Session store unavailable: 503 service_unavailable, cookie kept
//
// A store failure never lets the request through.
func SessionMiddleware(
	useCase sessionUseCase.SessionUseCase,
	cookies CookieConfig,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := readSessionCookie(c, cookies)

		data, err := useCase.VerifySession(c.Request.Context(), token)
		if err != nil {
			rejectSession(c, cookies, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), token, data))
		c.Next()
	}
}

func rejectSession(c *gin.Context, cookies CookieConfig, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, sessionDomain.ErrSessionSuperseded):
		logger.Debug("session rejected: superseded")
		clearSessionCookie(c, cookies)
		httputil.WriteErrorGin(c, http.StatusUnauthorized, "session_superseded",
			"Your session was replaced, please sign in again")

	case errors.Is(err, apperrors.ErrUnauthorized):
		logger.Debug("session rejected: invalid")
		clearSessionCookie(c, cookies)
		httputil.WriteErrorGin(c, http.StatusUnauthorized, "invalid_session",
			"A valid session is required")

	default:
		httputil.HandleErrorGin(c, err, logger)
	}
}
