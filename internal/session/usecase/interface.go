// Package usecase implements the session lifecycle: create, verify with sliding expiry,
// regenerate with a tombstone for in-flight requests, and single, per-user and global revoke.
package usecase

import (
	"context"

	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
)

// SessionUseCase defines the session manager operations.
type SessionUseCase interface {
	// CreateSession issues a new session for identity and returns its token.
	CreateSession(ctx context.Context, identity sessionDomain.Identity) (string, error)

	// VerifySession resolves token to its session data and slides the expiry.
	// Rejections return ErrInvalidSession or ErrSessionSuperseded; store failures
	// return ErrStoreUnavailable.
	VerifySession(ctx context.Context, token string) (*sessionDomain.SessionData, error)

	// RegenerateSession supersedes oldToken with a new session for identity and returns the new token.
	RegenerateSession(ctx context.Context, oldToken string, identity sessionDomain.Identity) (string, error)

	// RevokeSession destroys the session behind token. Unknown tokens are a no-op.
	RevokeSession(ctx context.Context, token string) error

	// RevokeUserSessions destroys every session of username and returns how many were revoked.
	RevokeUserSessions(ctx context.Context, username string) (int, error)

	// ListUserSessions returns the live sessions of username.
	ListUserSessions(ctx context.Context, username string) ([]sessionDomain.SessionInfo, error)

	// RevokeAllSessions deletes every session key and returns the number of keys removed.
	RevokeAllSessions(ctx context.Context) (int64, error)
}
