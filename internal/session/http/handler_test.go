package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
	"github.com/clio-platform/clio/internal/session/http/dto"
	"github.com/clio-platform/clio/internal/session/usecase/mocks"
)

var aliceSession = &sessionDomain.SessionData{
	Username:         "alice",
	Role:             "operator",
	CreatedAt:        time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	ServerInstanceID: "backend-a",
}

// setupHandlerRouter wires the handler behind the real middleware, as the server does.
func setupHandlerRouter(t *testing.T) (*gin.Engine, *mocks.MockSessionUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc := &mocks.MockSessionUseCase{}
	handler := NewSessionHandler(uc, testCookies, testLogger())

	router := gin.New()
	auth := router.Group("/api/auth", SessionMiddleware(uc, testCookies, testLogger()))
	auth.GET("/me", handler.MeHandler)
	auth.POST("/regenerate", handler.RegenerateHandler)
	auth.POST("/logout", handler.LogoutHandler)
	auth.GET("/sessions", handler.ListSessionsHandler)

	return router, uc
}

func authedRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: testCookies.Name, Value: "tok"})
	return req
}

func TestSessionHandler_Me(t *testing.T) {
	router, uc := setupHandlerRouter(t)
	uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/auth/me"))

	assert.Equal(t, http.StatusOK, w.Code)
	var body dto.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "operator", body.Role)
	assert.NotContains(t, w.Body.String(), "backend-a")

	t.Run("WithoutMiddleware", func(t *testing.T) {
		handler := NewSessionHandler(uc, testCookies, testLogger())
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)

		handler.MeHandler(c)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSessionHandler_Regenerate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, uc := setupHandlerRouter(t)
		uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()
		uc.On("RegenerateSession", mock.Anything, "tok", aliceSession.Identity()).Return("newtok", nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/auth/regenerate"))

		assert.Equal(t, http.StatusOK, w.Code)
		cookie := findCookie(w, testCookies.Name)
		require.NotNil(t, cookie)
		assert.Equal(t, "newtok", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.Equal(t, int((8 * time.Hour).Seconds()), cookie.MaxAge)
		uc.AssertExpectations(t)
	})

	t.Run("SupersededDuringRegeneration", func(t *testing.T) {
		router, uc := setupHandlerRouter(t)
		uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()
		uc.On("RegenerateSession", mock.Anything, "tok", mock.Anything).
			Return("", sessionDomain.ErrSessionSuperseded).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/auth/regenerate"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "session_superseded", decodeError(t, w).Error)
	})

	t.Run("StoreUnavailable", func(t *testing.T) {
		router, uc := setupHandlerRouter(t)
		uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()
		uc.On("RegenerateSession", mock.Anything, "tok", mock.Anything).
			Return("", sessionDomain.ErrStoreUnavailable).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/auth/regenerate"))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Nil(t, findCookie(w, testCookies.Name))
	})
}

func TestSessionHandler_Logout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, uc := setupHandlerRouter(t)
		uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()
		uc.On("RevokeSession", mock.Anything, "tok").Return(nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/auth/logout"))

		assert.Equal(t, http.StatusNoContent, w.Code)
		cookie := findCookie(w, testCookies.Name)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		uc.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		router, uc := setupHandlerRouter(t)
		uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()
		uc.On("RevokeSession", mock.Anything, "tok").Return(errors.New("boom")).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/auth/logout"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSessionHandler_ListSessions(t *testing.T) {
	sessions := make([]sessionDomain.SessionInfo, 0, 3)
	for i := 0; i < 3; i++ {
		sessions = append(sessions, sessionDomain.SessionInfo{
			ID:   fmt.Sprintf("%02d3456789abcdef0123456789abcdef", i),
			Data: *aliceSession,
		})
	}

	t.Run("Success", func(t *testing.T) {
		router, uc := setupHandlerRouter(t)
		uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()
		uc.On("ListUserSessions", mock.Anything, "alice").Return(sessions, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/auth/sessions?offset=1&limit=1"))

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.ListSessionsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 3, body.Total)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "01345678", body.Data[0].ID)
	})

	t.Run("OffsetPastEnd", func(t *testing.T) {
		router, uc := setupHandlerRouter(t)
		uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()
		uc.On("ListUserSessions", mock.Anything, "alice").Return(sessions, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/auth/sessions?offset=10"))

		assert.Equal(t, http.StatusOK, w.Code)
		var body dto.ListSessionsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Empty(t, body.Data)
	})

	t.Run("BadPagination", func(t *testing.T) {
		router, uc := setupHandlerRouter(t)
		uc.On("VerifySession", mock.Anything, "tok").Return(aliceSession, nil).Once()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/auth/sessions?limit=0"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
