package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
	sessionUseCase "github.com/clio-platform/clio/internal/session/usecase"
)

// RunIssueSession creates a session bound to this instance and prints its token.
// Intended for exercising the API without the login flow.
//
// Requirements: the session store must be reachable and SERVER_INSTANCE_ID must match
// the API instances that will verify the token.
func RunIssueSession(
	ctx context.Context,
	useCase sessionUseCase.SessionUseCase,
	logger *slog.Logger,
	out io.Writer,
	username, role, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	token, err := useCase.CreateSession(ctx, sessionDomain.Identity{Username: username, Role: role})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	logger.Info("session issued", slog.String("username", username), slog.String("role", role))

	if format == "json" {
		return writeJSON(out, map[string]string{
			"username": username,
			"role":     role,
			"token":    token,
		})
	}

	_, _ = fmt.Fprintf(out, "Session created for %s (%s)\n", username, role)
	_, err = fmt.Fprintf(out, "Token: %s\n", token)
	return err
}

// RunRevokeSessions deletes sessions in bulk. With a username only that user's
// sessions go; without one every session in the store is revoked.
func RunRevokeSessions(
	ctx context.Context,
	useCase sessionUseCase.SessionUseCase,
	logger *slog.Logger,
	out io.Writer,
	username, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var (
		count int64
		scope = "all"
	)

	if username != "" {
		scope = username
		n, err := useCase.RevokeUserSessions(ctx, username)
		if err != nil {
			return fmt.Errorf("failed to revoke sessions of %s: %w", username, err)
		}
		count = int64(n)
	} else {
		n, err := useCase.RevokeAllSessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		count = n
	}

	logger.Info("sessions revoked", slog.String("scope", scope), slog.Int64("count", count))

	if format == "json" {
		return writeJSON(out, map[string]any{
			"scope": scope,
			"count": count,
		})
	}

	if username != "" {
		_, err := fmt.Fprintf(out, "Revoked %d session(s) of %s\n", count, username)
		return err
	}
	_, err := fmt.Fprintf(out, "Revoked %d session key(s)\n", count)
	return err
}
