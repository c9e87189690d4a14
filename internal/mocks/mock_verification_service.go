package mocks

import (
	"context"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// MockVerificationService implements domain.VerificationService for testing
type MockVerificationService struct {
	SendCodeFunc   func(ctx context.Context, sessionID, phone string) error
	VerifyCodeFunc func(ctx context.Context, sessionID, phone, code string) (bool, error)
	CanResendFunc  func(ctx context.Context, phone string) (bool, int64, error)
}

// NewMockVerificationService creates a new MockVerificationService
func NewMockVerificationService() *MockVerificationService {
	return &MockVerificationService{}
}

// SendCode generates and sends a verification code
func (m *MockVerificationService) SendCode(ctx context.Context, sessionID, phone string) error {
	if m.SendCodeFunc != nil {
		return m.SendCodeFunc(ctx, sessionID, phone)
	}
	return nil
}

// VerifyCode checks a verification code
func (m *MockVerificationService) VerifyCode(ctx context.Context, sessionID, phone, code string) (bool, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, sessionID, phone, code)
	}
	return false, domain.ErrCodeNotFound
}

// CanResend reports whether a new code may be requested
func (m *MockVerificationService) CanResend(ctx context.Context, phone string) (bool, int64, error) {
	if m.CanResendFunc != nil {
		return m.CanResendFunc(ctx, phone)
	}
	return true, 0, nil
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*MockVerificationService)(nil)
