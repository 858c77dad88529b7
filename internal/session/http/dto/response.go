// Package dto provides data transfer objects for the session endpoints.
package dto

import (
	"time"

	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
)

// SessionResponse represents the current session in API responses.
type SessionResponse struct {
	Username      string     `json:"username"`
	Role          string     `json:"role"`
	CreatedAt     time.Time  `json:"created_at"`
	RegeneratedAt *time.Time `json:"regenerated_at,omitempty"`
}

// MapSessionToResponse converts session data to an API response. The instance id is
// internal and is not exposed.
func MapSessionToResponse(data *sessionDomain.SessionData) SessionResponse {
	return SessionResponse{
		Username:      data.Username,
		Role:          data.Role,
		CreatedAt:     data.CreatedAt,
		RegeneratedAt: data.RegeneratedAt,
	}
}

// SessionListItem represents one of the caller's sessions. Only a prefix of the
// session id is shown.
type SessionListItem struct {
	ID string `json:"id"`
	SessionResponse
}

// ListSessionsResponse represents a page of the caller's sessions.
type ListSessionsResponse struct {
	Data  []SessionListItem `json:"data"`
	Total int               `json:"total"`
}

// MapSessionsToListResponse converts a page of sessions to a list response.
func MapSessionsToListResponse(page []sessionDomain.SessionInfo, total int) ListSessionsResponse {
	items := make([]SessionListItem, 0, len(page))
	for i := range page {
		items = append(items, SessionListItem{
			ID:              sessionDomain.ShortID(page[i].ID),
			SessionResponse: MapSessionToResponse(&page[i].Data),
		})
	}
	return ListSessionsResponse{Data: items, Total: total}
}
