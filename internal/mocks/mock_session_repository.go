package mocks

import (
	"context"
	"time"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// MockSessionRepository implements domain.SessionRepository for testing
type MockSessionRepository struct {
	SaveFunc                    func(ctx context.Context, session *domain.OnboardingSession) (*domain.OnboardingSession, error)
	FindByIDFunc                func(ctx context.Context, id string) (*domain.OnboardingSession, error)
	FindByUserEmailFunc         func(ctx context.Context, email domain.Email) (*domain.OnboardingSession, error)
	FindByRecoveryTokenFunc     func(ctx context.Context, token string) (*domain.OnboardingSession, error)
	UpdateFunc                  func(ctx context.Context, session *domain.OnboardingSession) (*domain.OnboardingSession, error)
	DeleteFunc                  func(ctx context.Context, id string) error
	FindByStatusFunc            func(ctx context.Context, status domain.SessionStatus) ([]*domain.OnboardingSession, error)
	FindAbandonedSessionsFunc   func(ctx context.Context, inactiveFor time.Duration) ([]*domain.OnboardingSession, error)
	FindExpiredSessionsFunc     func(ctx context.Context) ([]*domain.OnboardingSession, error)
	FindSessionsInDateRangeFunc func(ctx context.Context, from, to time.Time) ([]*domain.OnboardingSession, error)
	GetAnalyticsSummaryFunc     func(ctx context.Context, filter domain.AnalyticsFilter) (*domain.AnalyticsReport, error)
	CleanupExpiredSessionsFunc  func(ctx context.Context) (int64, error)
	GetActiveSessionCountFunc   func(ctx context.Context) (int64, error)
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Save persists a new session
func (m *MockSessionRepository) Save(ctx context.Context, session *domain.OnboardingSession) (*domain.OnboardingSession, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, session)
	}
	// Default behavior: echo the value back
	return session, nil
}

// FindByID finds a session by ID
func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: absent
	return nil, nil
}

// FindByUserEmail finds the most recent session for an email
func (m *MockSessionRepository) FindByUserEmail(ctx context.Context, email domain.Email) (*domain.OnboardingSession, error) {
	if m.FindByUserEmailFunc != nil {
		return m.FindByUserEmailFunc(ctx, email)
	}
	return nil, nil
}

// FindByRecoveryToken finds a session by its recovery token
func (m *MockSessionRepository) FindByRecoveryToken(ctx context.Context, token string) (*domain.OnboardingSession, error) {
	if m.FindByRecoveryTokenFunc != nil {
		return m.FindByRecoveryTokenFunc(ctx, token)
	}
	return nil, nil
}

// Update persists an existing session
func (m *MockSessionRepository) Update(ctx context.Context, session *domain.OnboardingSession) (*domain.OnboardingSession, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, session)
	}
	return session, nil
}

// Delete removes a session
func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// FindByStatus lists sessions in a status
func (m *MockSessionRepository) FindByStatus(ctx context.Context, status domain.SessionStatus) ([]*domain.OnboardingSession, error) {
	if m.FindByStatusFunc != nil {
		return m.FindByStatusFunc(ctx, status)
	}
	return nil, nil
}

// FindAbandonedSessions lists in-progress sessions inactive past the threshold
func (m *MockSessionRepository) FindAbandonedSessions(ctx context.Context, inactiveFor time.Duration) ([]*domain.OnboardingSession, error) {
	if m.FindAbandonedSessionsFunc != nil {
		return m.FindAbandonedSessionsFunc(ctx, inactiveFor)
	}
	return nil, nil
}

// FindExpiredSessions lists sessions past expiry
func (m *MockSessionRepository) FindExpiredSessions(ctx context.Context) ([]*domain.OnboardingSession, error) {
	if m.FindExpiredSessionsFunc != nil {
		return m.FindExpiredSessionsFunc(ctx)
	}
	return nil, nil
}

// FindSessionsInDateRange lists sessions started within the range
func (m *MockSessionRepository) FindSessionsInDateRange(ctx context.Context, from, to time.Time) ([]*domain.OnboardingSession, error) {
	if m.FindSessionsInDateRangeFunc != nil {
		return m.FindSessionsInDateRangeFunc(ctx, from, to)
	}
	return nil, nil
}

// GetAnalyticsSummary returns the aggregate report
func (m *MockSessionRepository) GetAnalyticsSummary(ctx context.Context, filter domain.AnalyticsFilter) (*domain.AnalyticsReport, error) {
	if m.GetAnalyticsSummaryFunc != nil {
		return m.GetAnalyticsSummaryFunc(ctx, filter)
	}
	return &domain.AnalyticsReport{
		StepDropoffRates:   map[domain.OnboardingStep]float64{},
		AbandonmentReasons: map[string]int64{},
		ConversionSources:  map[string]int64{},
	}, nil
}

// CleanupExpiredSessions hard-deletes expired sessions
func (m *MockSessionRepository) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	if m.CleanupExpiredSessionsFunc != nil {
		return m.CleanupExpiredSessionsFunc(ctx)
	}
	return 0, nil
}

// GetActiveSessionCount counts in-progress sessions
func (m *MockSessionRepository) GetActiveSessionCount(ctx context.Context) (int64, error) {
	if m.GetActiveSessionCountFunc != nil {
		return m.GetActiveSessionCountFunc(ctx)
	}
	return 0, nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
