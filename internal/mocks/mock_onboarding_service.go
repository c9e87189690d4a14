package mocks

import (
	"context"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// MockOnboardingService implements domain.OnboardingService for testing
type MockOnboardingService struct {
	StartOnboardingFunc    func(ctx context.Context, email domain.Email, device *domain.DeviceInfo, conversionSource string) (*domain.OnboardingSession, error)
	AdvanceStepFunc        func(ctx context.Context, id string, next domain.OnboardingStep, patch *domain.StepData) (*domain.OnboardingSession, error)
	CompleteOnboardingFunc func(ctx context.Context, id string) (*domain.OnboardingSession, error)
	AbandonOnboardingFunc  func(ctx context.Context, id, reason string) (*domain.OnboardingSession, error)
	GetSessionFunc         func(ctx context.Context, id string) (*domain.OnboardingSession, error)
	GetSessionByEmailFunc  func(ctx context.Context, email domain.Email) (*domain.OnboardingSession, error)
}

// NewMockOnboardingService creates a new MockOnboardingService
func NewMockOnboardingService() *MockOnboardingService {
	return &MockOnboardingService{}
}

// StartOnboarding begins or reuses a wizard session
func (m *MockOnboardingService) StartOnboarding(ctx context.Context, email domain.Email, device *domain.DeviceInfo, conversionSource string) (*domain.OnboardingSession, error) {
	if m.StartOnboardingFunc != nil {
		return m.StartOnboardingFunc(ctx, email, device, conversionSource)
	}
	session := domain.NewOnboardingSession(email, device, conversionSource)
	return &session, nil
}

// AdvanceStep moves a session forward
func (m *MockOnboardingService) AdvanceStep(ctx context.Context, id string, next domain.OnboardingStep, patch *domain.StepData) (*domain.OnboardingSession, error) {
	if m.AdvanceStepFunc != nil {
		return m.AdvanceStepFunc(ctx, id, next, patch)
	}
	return nil, domain.ErrSessionNotFound
}

// CompleteOnboarding finishes the wizard
func (m *MockOnboardingService) CompleteOnboarding(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	if m.CompleteOnboardingFunc != nil {
		return m.CompleteOnboardingFunc(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

// AbandonOnboarding terminally abandons a session
func (m *MockOnboardingService) AbandonOnboarding(ctx context.Context, id, reason string) (*domain.OnboardingSession, error) {
	if m.AbandonOnboardingFunc != nil {
		return m.AbandonOnboardingFunc(ctx, id, reason)
	}
	return nil, domain.ErrSessionNotFound
}

// GetSession loads one session
func (m *MockOnboardingService) GetSession(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

// GetSessionByEmail loads the most recent session for an email
func (m *MockOnboardingService) GetSessionByEmail(ctx context.Context, email domain.Email) (*domain.OnboardingSession, error) {
	if m.GetSessionByEmailFunc != nil {
		return m.GetSessionByEmailFunc(ctx, email)
	}
	return nil, domain.ErrSessionNotFound
}

// Compile-time interface compliance verification
var _ domain.OnboardingService = (*MockOnboardingService)(nil)
