package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/clio-platform/clio/internal/validation"
)

// Identity is the authenticated principal a session is issued for.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Validate checks the identity before any key is written for it.
func (i Identity) Validate() error {
	return customValidation.WrapValidationError(validation.ValidateStruct(&i,
		validation.Field(&i.Username, validation.Required, customValidation.Username),
		validation.Field(&i.Role, validation.Length(0, 64), customValidation.NoWhitespace),
	))
}

// SessionData is the JSON document stored under sessionData:{sessionId}.
type SessionData struct {
	Username         string     `json:"username"`
	Role             string     `json:"role"`
	CreatedAt        time.Time  `json:"createdAt"`
	ServerInstanceID string     `json:"serverInstanceId"`
	RegeneratedAt    *time.Time `json:"regeneratedAt,omitempty"`
}

// Identity returns the principal the session belongs to.
func (d *SessionData) Identity() Identity {
	return Identity{Username: d.Username, Role: d.Role}
}

// SessionInfo describes one live session of a user.
type SessionInfo struct {
	ID   string      `json:"id"`
	Data SessionData `json:"data"`
}

// ShortID truncates a session id for logging.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
