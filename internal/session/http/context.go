// Package http provides the session interception middleware and the session endpoints.
package http

import (
	"context"

	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
)

// sessionKey is a context key type for storing verified session data.
type sessionKey struct{}

// tokenKey is a context key type for storing the verified session token.
type tokenKey struct{}

// WithSession stores verified session data and its token in the context.
// This is called by SessionMiddleware after a successful verification.
func WithSession(ctx context.Context, token string, data *sessionDomain.SessionData) context.Context {
	ctx = context.WithValue(ctx, sessionKey{}, data)
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetSession retrieves the verified session data from the context.
// Returns (data, true) if present, or (nil, false) if SessionMiddleware did not run.
func GetSession(ctx context.Context) (*sessionDomain.SessionData, bool) {
	data, ok := ctx.Value(sessionKey{}).(*sessionDomain.SessionData)
	return data, ok && data != nil
}

// getToken retrieves the verified session token from the context.
func getToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
