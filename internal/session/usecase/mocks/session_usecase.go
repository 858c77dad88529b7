// Package mocks provides testify mocks for the session use case.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	sessionDomain "github.com/clio-platform/clio/internal/session/domain"
)

// MockSessionUseCase is a mock implementation of usecase.SessionUseCase.
type MockSessionUseCase struct {
	mock.Mock
}

// CreateSession mocks the CreateSession method of SessionUseCase.
func (m *MockSessionUseCase) CreateSession(ctx context.Context, identity sessionDomain.Identity) (string, error) {
	args := m.Called(ctx, identity)
	return args.String(0), args.Error(1)
}

// VerifySession mocks the VerifySession method of SessionUseCase.
func (m *MockSessionUseCase) VerifySession(ctx context.Context, token string) (*sessionDomain.SessionData, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.SessionData), args.Error(1)
}

// RegenerateSession mocks the RegenerateSession method of SessionUseCase.
func (m *MockSessionUseCase) RegenerateSession(
	ctx context.Context,
	oldToken string,
	identity sessionDomain.Identity,
) (string, error) {
	args := m.Called(ctx, oldToken, identity)
	return args.String(0), args.Error(1)
}

// RevokeSession mocks the RevokeSession method of SessionUseCase.
func (m *MockSessionUseCase) RevokeSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// RevokeUserSessions mocks the RevokeUserSessions method of SessionUseCase.
func (m *MockSessionUseCase) RevokeUserSessions(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}

// ListUserSessions mocks the ListUserSessions method of SessionUseCase.
func (m *MockSessionUseCase) ListUserSessions(
	ctx context.Context,
	username string,
) ([]sessionDomain.SessionInfo, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sessionDomain.SessionInfo), args.Error(1)
}

// RevokeAllSessions mocks the RevokeAllSessions method of SessionUseCase.
func (m *MockSessionUseCase) RevokeAllSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
