package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	logSecretsDomain "github.com/clio-platform/clio/internal/logsecrets/domain"
	"github.com/clio-platform/clio/internal/logsecrets/usecase"
	usecaseMocks "github.com/clio-platform/clio/internal/logsecrets/usecase/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectRecord(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "log_secrets", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "log_secrets", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestLogSecretsUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		setup  func(next *usecaseMocks.MockLogSecretsUseCase)
		call   func(uc usecase.LogSecretsUseCase) error
		op     string
		status string
	}{
		{
			name: "Get success",
			setup: func(next *usecaseMocks.MockLogSecretsUseCase) {
				next.On("Get", ctx, int64(1)).Return(&logSecretsDomain.LogSecrets{LogID: 1, Secrets: "x"}, nil).Once()
			},
			call: func(uc usecase.LogSecretsUseCase) error {
				_, err := uc.Get(ctx, 1)
				return err
			},
			op:     "log_secrets_get",
			status: "success",
		},
		{
			name: "Get decryption failed",
			setup: func(next *usecaseMocks.MockLogSecretsUseCase) {
				next.On("Get", ctx, int64(1)).
					Return(&logSecretsDomain.LogSecrets{LogID: 1, DecryptionFailed: true}, nil).
					Once()
			},
			call: func(uc usecase.LogSecretsUseCase) error {
				_, err := uc.Get(ctx, 1)
				return err
			},
			op:     "log_secrets_get",
			status: "decryption_failed",
		},
		{
			name: "Get error",
			setup: func(next *usecaseMocks.MockLogSecretsUseCase) {
				next.On("Get", ctx, int64(2)).Return(nil, logSecretsDomain.ErrLogNotFound).Once()
			},
			call: func(uc usecase.LogSecretsUseCase) error {
				_, err := uc.Get(ctx, 2)
				return err
			},
			op:     "log_secrets_get",
			status: "error",
		},
		{
			name: "Update success",
			setup: func(next *usecaseMocks.MockLogSecretsUseCase) {
				next.On("Update", ctx, int64(1), "v").Return(&logSecretsDomain.LogSecrets{LogID: 1, Secrets: "v"}, nil).Once()
			},
			call: func(uc usecase.LogSecretsUseCase) error {
				_, err := uc.Update(ctx, 1, "v")
				return err
			},
			op:     "log_secrets_update",
			status: "success",
		},
		{
			name: "EncryptLegacy error",
			setup: func(next *usecaseMocks.MockLogSecretsUseCase) {
				next.On("EncryptLegacy", ctx, 100).Return(3, assert.AnError).Once()
			},
			call: func(uc usecase.LogSecretsUseCase) error {
				_, err := uc.EncryptLegacy(ctx, 100)
				return err
			},
			op:     "log_secrets_encrypt_legacy",
			status: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &usecaseMocks.MockLogSecretsUseCase{}
			metrics := &mockBusinessMetrics{}
			tt.setup(next)
			expectRecord(metrics, ctx, tt.op, tt.status)

			_ = tt.call(usecase.NewLogSecretsUseCaseWithMetrics(next, metrics))

			next.AssertExpectations(t)
			metrics.AssertExpectations(t)
		})
	}
}
