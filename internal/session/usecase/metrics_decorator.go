package usecase

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/clio-platform/clio/internal/errors"
	"github.com/clio-platform/clio/internal/metrics"
	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
)

// sessionUseCaseWithMetrics decorates SessionUseCase with metrics instrumentation.
type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.BusinessMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// status separates expected rejections from failures so that invalid cookies do not
// look like an outage.
func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "rejected"
	default:
		return "error"
	}
}

func (s *sessionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	st := status(err)
	s.metrics.RecordOperation(ctx, "session", operation, st)
	s.metrics.RecordDuration(ctx, "session", operation, time.Since(start), st)
}

// CreateSession records metrics for session creation.
func (s *sessionUseCaseWithMetrics) CreateSession(
	ctx context.Context,
	identity sessionDomain.Identity,
) (string, error) {
	start := time.Now()
	token, err := s.next.CreateSession(ctx, identity)
	s.record(ctx, "session_create", start, err)
	return token, err
}

// VerifySession records metrics for session verification.
func (s *sessionUseCaseWithMetrics) VerifySession(
	ctx context.Context,
	token string,
) (*sessionDomain.SessionData, error) {
	start := time.Now()
	data, err := s.next.VerifySession(ctx, token)
	s.record(ctx, "session_verify", start, err)
	return data, err
}

// RegenerateSession records metrics for session regeneration.
func (s *sessionUseCaseWithMetrics) RegenerateSession(
	ctx context.Context,
	oldToken string,
	identity sessionDomain.Identity,
) (string, error) {
	start := time.Now()
	token, err := s.next.RegenerateSession(ctx, oldToken, identity)
	s.record(ctx, "session_regenerate", start, err)
	return token, err
}

// RevokeSession records metrics for single session revocation.
func (s *sessionUseCaseWithMetrics) RevokeSession(ctx context.Context, token string) error {
	start := time.Now()
	err := s.next.RevokeSession(ctx, token)
	s.record(ctx, "session_revoke", start, err)
	return err
}

// RevokeUserSessions records metrics for per-user revocation.
func (s *sessionUseCaseWithMetrics) RevokeUserSessions(ctx context.Context, username string) (int, error) {
	start := time.Now()
	n, err := s.next.RevokeUserSessions(ctx, username)
	s.record(ctx, "session_revoke_user", start, err)
	return n, err
}

// ListUserSessions records metrics for session listing.
func (s *sessionUseCaseWithMetrics) ListUserSessions(
	ctx context.Context,
	username string,
) ([]sessionDomain.SessionInfo, error) {
	start := time.Now()
	sessions, err := s.next.ListUserSessions(ctx, username)
	s.record(ctx, "session_list", start, err)
	return sessions, err
}

// RevokeAllSessions records metrics for global revocation.
func (s *sessionUseCaseWithMetrics) RevokeAllSessions(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := s.next.RevokeAllSessions(ctx)
	s.record(ctx, "session_revoke_all", start, err)
	return n, err
}
