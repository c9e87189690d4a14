package domain

import (
	"context"
	"time"
)

// SessionRepository defines session persistence operations. Finder methods
// return (nil, nil) when no record matches; errors are reserved for
// infrastructure failures.
type SessionRepository interface {
	Save(ctx context.Context, session *OnboardingSession) (*OnboardingSession, error)
	FindByID(ctx context.Context, id string) (*OnboardingSession, error)
	FindByUserEmail(ctx context.Context, email Email) (*OnboardingSession, error)
	FindByRecoveryToken(ctx context.Context, token string) (*OnboardingSession, error)
	Update(ctx context.Context, session *OnboardingSession) (*OnboardingSession, error)
	Delete(ctx context.Context, id string) error
	FindByStatus(ctx context.Context, status SessionStatus) ([]*OnboardingSession, error)
	FindAbandonedSessions(ctx context.Context, inactiveFor time.Duration) ([]*OnboardingSession, error)
	FindExpiredSessions(ctx context.Context) ([]*OnboardingSession, error)
	FindSessionsInDateRange(ctx context.Context, from, to time.Time) ([]*OnboardingSession, error)
	GetAnalyticsSummary(ctx context.Context, filter AnalyticsFilter) (*AnalyticsReport, error)
	CleanupExpiredSessions(ctx context.Context) (int64, error)
	GetActiveSessionCount(ctx context.Context) (int64, error)
}

// SessionService defines the cross-cutting session management operations.
type SessionService interface {
	RecoverSession(ctx context.Context, token string) (*RecoveryResult, error)
	TrackAbandonedSessions(ctx context.Context, threshold time.Duration) (*SweepResult, error)
	PerformSessionCleanup(ctx context.Context) (*CleanupResult, error)
	SynchronizeSession(ctx context.Context, id string, clientVersion int, device *DeviceInfo) (*SyncResult, error)
	PauseSession(ctx context.Context, id, reason string) (*OnboardingSession, error)
	ResumeSession(ctx context.Context, id string) (*OnboardingSession, error)
	UpdateABTestVariant(ctx context.Context, id, testName, variant string) (*OnboardingSession, error)
	GetSessionAnalytics(ctx context.Context, filter AnalyticsFilter) (*AnalyticsOverview, error)
	GetSessionSummary(ctx context.Context, id string) (*SessionSummary, error)
}

// OnboardingService defines the wizard use cases.
type OnboardingService interface {
	StartOnboarding(ctx context.Context, email Email, device *DeviceInfo, conversionSource string) (*OnboardingSession, error)
	AdvanceStep(ctx context.Context, id string, next OnboardingStep, patch *StepData) (*OnboardingSession, error)
	CompleteOnboarding(ctx context.Context, id string) (*OnboardingSession, error)
	AbandonOnboarding(ctx context.Context, id, reason string) (*OnboardingSession, error)
	GetSession(ctx context.Context, id string) (*OnboardingSession, error)
	GetSessionByEmail(ctx context.Context, email Email) (*OnboardingSession, error)
}

// VerificationService defines phone verification for the verification step.
type VerificationService interface {
	SendCode(ctx context.Context, sessionID, phone string) error
	VerifyCode(ctx context.Context, sessionID, phone, code string) (bool, error)
	CanResend(ctx context.Context, phone string) (bool, int64, error)
}

// NotificationService defines outbound notification operations.
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}
