// Package mocks provides testify mocks for the log secrets use case.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
)

// MockLogSecretsUseCase is a mock implementation of usecase.LogSecretsUseCase.
type MockLogSecretsUseCase struct {
	mock.Mock
}

// Get mocks the Get method of LogSecretsUseCase.
func (m *MockLogSecretsUseCase) Get(ctx context.Context, logID int64) (*logSecretsDomain.LogSecrets, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*logSecretsDomain.LogSecrets), args.Error(1)
}

// Update mocks the Update method of LogSecretsUseCase.
func (m *MockLogSecretsUseCase) Update(
	ctx context.Context,
	logID int64,
	value any,
) (*logSecretsDomain.LogSecrets, error) {
	args := m.Called(ctx, logID, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*logSecretsDomain.LogSecrets), args.Error(1)
}

// EncryptLegacy mocks the EncryptLegacy method of LogSecretsUseCase.
func (m *MockLogSecretsUseCase) EncryptLegacy(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}
