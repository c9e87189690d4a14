package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

const (
	// recoveryExtensionWindow is how close to expiry a recovered session may
	// be before it gets a fresh 24h window.
	recoveryExtensionWindow = time.Hour

	// defaultAbandonThreshold applies when a sweep is requested without one.
	defaultAbandonThreshold = 30 * time.Minute

	// cleanupAbandonThreshold is the fixed threshold used by the cleanup pass.
	cleanupAbandonThreshold = 60 * time.Minute
)

// SessionServiceImpl implements domain.SessionService
type SessionServiceImpl struct {
	repo   domain.SessionRepository
	logger *zap.Logger
}

// NewSessionService creates a new session management service
func NewSessionService(repo domain.SessionRepository, logger *zap.Logger) domain.SessionService {
	return &SessionServiceImpl{repo: repo, logger: logger}
}

// RecoverSession implements domain.SessionService. A session presented by
// token is revived even if it silently expired, as long as cleanup has not
// deleted the record yet.
func (s *SessionServiceImpl) RecoverSession(ctx context.Context, token string) (*domain.RecoveryResult, error) {
	session, err := s.repo.FindByRecoveryToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recovery token: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	wasExpired := session.IsExpired()
	wasExtended := false

	if wasExpired || session.ExpiresWithin(recoveryExtensionWindow) {
		revived := session.ExtendExpiry(domain.DefaultSessionTTLHours)
		if revived.Status == domain.StatusPaused {
			revived = revived.Resume()
		}
		updated, err := s.repo.Update(ctx, &revived)
		if err != nil {
			return nil, fmt.Errorf("failed to persist recovered session: %w", err)
		}
		session = updated
		wasExtended = true
		s.logger.Info("session recovered",
			zap.String("session_id", session.ID),
			zap.Bool("was_expired", wasExpired))
	}

	return &domain.RecoveryResult{
		Session:     session,
		WasExpired:  wasExpired,
		WasExtended: wasExtended,
	}, nil
}

// TrackAbandonedSessions implements domain.SessionService. The sweep is
// best-effort: one session's persistence failure is collected and does not
// abort the rest.
func (s *SessionServiceImpl) TrackAbandonedSessions(ctx context.Context, threshold time.Duration) (*domain.SweepResult, error) {
	if threshold <= 0 {
		threshold = defaultAbandonThreshold
	}

	inactive, err := s.repo.FindAbandonedSessions(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to find inactive sessions: %w", err)
	}

	result := &domain.SweepResult{Marked: []string{}, Errors: []string{}}
	for _, session := range inactive {
		marked := session.Abandon("inactive_timeout")
		if _, err := s.repo.Update(ctx, &marked); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("session %s: %v", session.ID, err))
			s.logger.Warn("failed to mark session abandoned",
				zap.String("session_id", session.ID), zap.Error(err))
			continue
		}
		result.Marked = append(result.Marked, session.ID)
		result.TotalAbandoned++
	}

	if result.TotalAbandoned > 0 {
		s.logger.Info("abandonment sweep finished",
			zap.Int("marked", result.TotalAbandoned),
			zap.Int("errors", len(result.Errors)))
	}
	return result, nil
}

// PerformSessionCleanup implements domain.SessionService. The two phases are
// independent; either failing still yields a result with accumulated errors.
func (s *SessionServiceImpl) PerformSessionCleanup(ctx context.Context) (*domain.CleanupResult, error) {
	result := &domain.CleanupResult{Errors: []string{}}

	deleted, err := s.repo.CleanupExpiredSessions(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cleanup expired: %v", err))
		s.logger.Warn("expired-session cleanup failed", zap.Error(err))
	} else {
		result.ExpiredSessionsDeleted = deleted
	}

	sweep, err := s.TrackAbandonedSessions(ctx, cleanupAbandonThreshold)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("abandonment tracking: %v", err))
	} else {
		result.AbandonedSessionsMarked = sweep.TotalAbandoned
		result.Errors = append(result.Errors, sweep.Errors...)
	}

	return result, nil
}

// SynchronizeSession implements domain.SessionService. Conflict detection is
// advisory: a stale client version is flagged but the write still happens.
func (s *SessionServiceImpl) SynchronizeSession(ctx context.Context, id string, clientVersion int, device *domain.DeviceInfo) (*domain.SyncResult, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	serverVersion := len(session.Analytics.StepTimestamps[session.CurrentStep])
	conflicts := []string{}
	if clientVersion < serverVersion {
		conflicts = append(conflicts, fmt.Sprintf(
			"client version %d behind server version %d for step %s",
			clientVersion, serverVersion, session.CurrentStep))
	}

	updated := *session
	if device != nil {
		updated = updated.WithDeviceInfo(device)
	}
	if updated.ExpiresWithin(recoveryExtensionWindow) {
		updated = updated.ExtendExpiry(domain.DefaultSessionTTLHours)
	}

	persisted, err := s.repo.Update(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to persist synchronized session: %w", err)
	}

	return &domain.SyncResult{
		Session:      persisted,
		Synchronized: len(conflicts) == 0,
		Conflicts:    conflicts,
		Resolved:     true,
	}, nil
}

// PauseSession implements domain.SessionService
func (s *SessionServiceImpl) PauseSession(ctx context.Context, id, reason string) (*domain.OnboardingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	switch session.Status {
	case domain.StatusCompleted:
		return nil, domain.ErrSessionCompleted
	case domain.StatusAbandoned:
		return nil, domain.ErrSessionAbandoned
	}

	paused := session.Pause().WithMetadata(map[string]any{
		"pause_reason": reason,
		"paused_at":    time.Now().UTC().Format(time.RFC3339),
	})
	return s.repo.Update(ctx, &paused)
}

// ResumeSession implements domain.SessionService. Resuming also buys the
// session a fresh expiry window.
func (s *SessionServiceImpl) ResumeSession(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.Status != domain.StatusPaused {
		return nil, domain.ErrSessionNotPaused
	}

	resumed := session.Resume().
		ExtendExpiry(domain.DefaultSessionTTLHours).
		WithMetadata(map[string]any{
			"resumed_at": time.Now().UTC().Format(time.RFC3339),
		})
	return s.repo.Update(ctx, &resumed)
}

// UpdateABTestVariant implements domain.SessionService
func (s *SessionServiceImpl) UpdateABTestVariant(ctx context.Context, id, testName, variant string) (*domain.OnboardingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	updated := session.RecordABTestVariant(testName, variant)
	return s.repo.Update(ctx, &updated)
}

// GetSessionAnalytics implements domain.SessionService
func (s *SessionServiceImpl) GetSessionAnalytics(ctx context.Context, filter domain.AnalyticsFilter) (*domain.AnalyticsOverview, error) {
	report, err := s.repo.GetAnalyticsSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics summary: %w", err)
	}
	active, err := s.repo.GetActiveSessionCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return &domain.AnalyticsOverview{Report: report, ActiveSessions: active}, nil
}

// GetSessionSummary implements domain.SessionService
func (s *SessionServiceImpl) GetSessionSummary(ctx context.Context, id string) (*domain.SessionSummary, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	summary := session.Summary()
	return &summary, nil
}
