package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// OnboardingServiceImpl implements domain.OnboardingService
type OnboardingServiceImpl struct {
	repo   domain.SessionRepository
	logger *zap.Logger
}

// NewOnboardingService creates the wizard use-case service
func NewOnboardingService(repo domain.SessionRepository, logger *zap.Logger) domain.OnboardingService {
	return &OnboardingServiceImpl{repo: repo, logger: logger}
}

// StartOnboarding implements domain.OnboardingService. An in-progress,
// unexpired session for the same email is reused instead of creating a
// duplicate.
func (s *OnboardingServiceImpl) StartOnboarding(ctx context.Context, email domain.Email, device *domain.DeviceInfo, conversionSource string) (*domain.OnboardingSession, error) {
	existing, err := s.repo.FindByUserEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing session: %w", err)
	}
	if existing != nil && existing.Status == domain.StatusInProgress && !existing.IsExpired() {
		s.logger.Info("reusing in-progress session",
			zap.String("session_id", existing.ID),
			zap.String("email", email.String()))
		return existing, nil
	}

	session := domain.NewOnboardingSession(email, device, conversionSource)
	saved, err := s.repo.Save(ctx, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("onboarding started",
		zap.String("session_id", saved.ID),
		zap.String("email", email.String()),
		zap.String("conversion_source", conversionSource))
	return saved, nil
}

// AdvanceStep implements domain.OnboardingService. The pure Advance
// transition is ungated; sequencing discipline is enforced here.
func (s *OnboardingServiceImpl) AdvanceStep(ctx context.Context, id string, next domain.OnboardingStep, patch *domain.StepData) (*domain.OnboardingSession, error) {
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
	if !domain.ValidTransition(session.CurrentStep, next) {
		return nil, domain.ErrInvalidTransition
	}
	if patch != nil {
		if err := patch.Validate(); err != nil {
			return nil, err
		}
	}

	advanced := session.Advance(next, patch)
	updated, err := s.repo.Update(ctx, &advanced)
	if err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("step advanced",
		zap.String("session_id", updated.ID),
		zap.String("step", string(next)),
		zap.Int("progress", updated.Progress()))
	return updated, nil
}

// CompleteOnboarding implements domain.OnboardingService. Completing an
// already completed session is a no-op returning the stored value.
func (s *OnboardingServiceImpl) CompleteOnboarding(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.Status == domain.StatusCompleted {
		return session, nil
	}
	if session.Status == domain.StatusAbandoned {
		return nil, domain.ErrSessionAbandoned
	}
	if !domain.ValidTransition(session.CurrentStep, domain.StepComplete) {
		return nil, domain.ErrInvalidTransition
	}

	completed := session.Advance(domain.StepComplete, nil)
	updated, err := s.repo.Update(ctx, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("onboarding completed", zap.String("session_id", updated.ID))
	return updated, nil
}

// AbandonOnboarding implements domain.OnboardingService
func (s *OnboardingServiceImpl) AbandonOnboarding(ctx context.Context, id, reason string) (*domain.OnboardingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.Status == domain.StatusCompleted {
		return nil, domain.ErrSessionCompleted
	}

	if reason == "" {
		reason = "user_requested"
	}
	abandoned := session.Abandon(reason)
	updated, err := s.repo.Update(ctx, &abandoned)
	if err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("onboarding abandoned",
		zap.String("session_id", updated.ID),
		zap.String("reason", reason))
	return updated, nil
}

// GetSession implements domain.OnboardingService
func (s *OnboardingServiceImpl) GetSession(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// GetSessionByEmail implements domain.OnboardingService
func (s *OnboardingServiceImpl) GetSessionByEmail(ctx context.Context, email domain.Email) (*domain.OnboardingSession, error) {
	session, err := s.repo.FindByUserEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
