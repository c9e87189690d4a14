package mocks

import (
	"context"
	"time"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// MockSessionService implements domain.SessionService for testing
type MockSessionService struct {
	RecoverSessionFunc         func(ctx context.Context, token string) (*domain.RecoveryResult, error)
	TrackAbandonedSessionsFunc func(ctx context.Context, threshold time.Duration) (*domain.SweepResult, error)
	PerformSessionCleanupFunc  func(ctx context.Context) (*domain.CleanupResult, error)
	SynchronizeSessionFunc     func(ctx context.Context, id string, clientVersion int, device *domain.DeviceInfo) (*domain.SyncResult, error)
	PauseSessionFunc           func(ctx context.Context, id, reason string) (*domain.OnboardingSession, error)
	ResumeSessionFunc          func(ctx context.Context, id string) (*domain.OnboardingSession, error)
	UpdateABTestVariantFunc    func(ctx context.Context, id, testName, variant string) (*domain.OnboardingSession, error)
	GetSessionAnalyticsFunc    func(ctx context.Context, filter domain.AnalyticsFilter) (*domain.AnalyticsOverview, error)
	GetSessionSummaryFunc      func(ctx context.Context, id string) (*domain.SessionSummary, error)
}

// NewMockSessionService creates a new MockSessionService
func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

// RecoverSession revives a session by token
func (m *MockSessionService) RecoverSession(ctx context.Context, token string) (*domain.RecoveryResult, error) {
	if m.RecoverSessionFunc != nil {
		return m.RecoverSessionFunc(ctx, token)
	}
	return nil, domain.ErrSessionNotFound
}

// TrackAbandonedSessions sweeps inactive sessions
func (m *MockSessionService) TrackAbandonedSessions(ctx context.Context, threshold time.Duration) (*domain.SweepResult, error) {
	if m.TrackAbandonedSessionsFunc != nil {
		return m.TrackAbandonedSessionsFunc(ctx, threshold)
	}
	return &domain.SweepResult{Marked: []string{}, Errors: []string{}}, nil
}

// PerformSessionCleanup runs the periodic cleanup pass
func (m *MockSessionService) PerformSessionCleanup(ctx context.Context) (*domain.CleanupResult, error) {
	if m.PerformSessionCleanupFunc != nil {
		return m.PerformSessionCleanupFunc(ctx)
	}
	return &domain.CleanupResult{Errors: []string{}}, nil
}

// SynchronizeSession reconciles a session across devices
func (m *MockSessionService) SynchronizeSession(ctx context.Context, id string, clientVersion int, device *domain.DeviceInfo) (*domain.SyncResult, error) {
	if m.SynchronizeSessionFunc != nil {
		return m.SynchronizeSessionFunc(ctx, id, clientVersion, device)
	}
	return nil, domain.ErrSessionNotFound
}

// PauseSession pauses a session
func (m *MockSessionService) PauseSession(ctx context.Context, id, reason string) (*domain.OnboardingSession, error) {
	if m.PauseSessionFunc != nil {
		return m.PauseSessionFunc(ctx, id, reason)
	}
	return nil, domain.ErrSessionNotFound
}

// ResumeSession resumes a paused session
func (m *MockSessionService) ResumeSession(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	if m.ResumeSessionFunc != nil {
		return m.ResumeSessionFunc(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

// UpdateABTestVariant records an A/B assignment
func (m *MockSessionService) UpdateABTestVariant(ctx context.Context, id, testName, variant string) (*domain.OnboardingSession, error) {
	if m.UpdateABTestVariantFunc != nil {
		return m.UpdateABTestVariantFunc(ctx, id, testName, variant)
	}
	return nil, domain.ErrSessionNotFound
}

// GetSessionAnalytics returns the aggregate funnel overview
func (m *MockSessionService) GetSessionAnalytics(ctx context.Context, filter domain.AnalyticsFilter) (*domain.AnalyticsOverview, error) {
	if m.GetSessionAnalyticsFunc != nil {
		return m.GetSessionAnalyticsFunc(ctx, filter)
	}
	return &domain.AnalyticsOverview{Report: &domain.AnalyticsReport{
		StepDropoffRates:   map[domain.OnboardingStep]float64{},
		AbandonmentReasons: map[string]int64{},
		ConversionSources:  map[string]int64{},
	}}, nil
}

// GetSessionSummary returns the per-session projection
func (m *MockSessionService) GetSessionSummary(ctx context.Context, id string) (*domain.SessionSummary, error) {
	if m.GetSessionSummaryFunc != nil {
		return m.GetSessionSummaryFunc(ctx, id)
	}
	return nil, domain.ErrSessionNotFound
}

// Compile-time interface compliance verification
var _ domain.SessionService = (*MockSessionService)(nil)
