package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fjpedrosa/caetaria-sub000/domain"
	"github.com/fjpedrosa/caetaria-sub000/internal/mocks"
)

func newOnboardingService(repo *mocks.MockSessionRepository) domain.OnboardingService {
	return NewOnboardingService(repo, zap.NewNop())
}

func TestOnboardingServiceImpl_StartOnboarding(t *testing.T) {
	email, err := domain.NewEmail("owner@acme.com")
	if err != nil {
		t.Fatalf("email: %v", err)
	}

	t.Run("creates a fresh session", func(t *testing.T) {
		var saved *domain.OnboardingSession
		repo := mocks.NewMockSessionRepository()
		repo.SaveFunc = func(ctx context.Context, s *domain.OnboardingSession) (*domain.OnboardingSession, error) {
			saved = s
			return s, nil
		}

		session, err := newOnboardingService(repo).StartOnboarding(context.Background(), email, nil, "landing_page")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved == nil {
			t.Fatal("expected save to be called")
		}
		if session.CurrentStep != domain.StepWelcome {
			t.Errorf("expected welcome step, got %q", session.CurrentStep)
		}
		if session.RecoveryToken == "" {
			t.Error("expected a recovery token")
		}
		if session.Analytics.ConversionSource != "landing_page" {
			t.Errorf("expected conversion source recorded, got %q", session.Analytics.ConversionSource)
		}
	})

	t.Run("reuses an in-progress unexpired session", func(t *testing.T) {
		existing := newTestSession(t)
		repo := mocks.NewMockSessionRepository()
		repo.FindByUserEmailFunc = func(ctx context.Context, e domain.Email) (*domain.OnboardingSession, error) {
			return &existing, nil
		}
		repo.SaveFunc = func(ctx context.Context, s *domain.OnboardingSession) (*domain.OnboardingSession, error) {
			t.Error("unexpected save, expected reuse")
			return s, nil
		}

		session, err := newOnboardingService(repo).StartOnboarding(context.Background(), email, nil, "ad")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.ID != existing.ID {
			t.Errorf("expected the existing session, got %s", session.ID)
		}
	})

	t.Run("expired session is not reused", func(t *testing.T) {
		existing := newTestSession(t)
		existing.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		var saved bool
		repo := mocks.NewMockSessionRepository()
		repo.FindByUserEmailFunc = func(ctx context.Context, e domain.Email) (*domain.OnboardingSession, error) {
			return &existing, nil
		}
		repo.SaveFunc = func(ctx context.Context, s *domain.OnboardingSession) (*domain.OnboardingSession, error) {
			saved = true
			return s, nil
		}

		session, err := newOnboardingService(repo).StartOnboarding(context.Background(), email, nil, "ad")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !saved {
			t.Error("expected a new session to be saved")
		}
		if session.ID == existing.ID {
			t.Error("expected a new session, got the expired one")
		}
	})
}

func TestOnboardingServiceImpl_AdvanceStep(t *testing.T) {
	tests := []struct {
		name          string
		session       func(t *testing.T) domain.OnboardingSession
		next          domain.OnboardingStep
		patch         *domain.StepData
		expectedError error
	}{
		{
			name:    "valid forward move",
			session: newTestSession,
			next:    domain.StepBusiness,
		},
		{
			name:          "skipping a step is rejected",
			session:       newTestSession,
			next:          domain.StepIntegration,
			expectedError: domain.ErrInvalidTransition,
		},
		{
			name:          "backward move is rejected",
			session:       newTestSession,
			next:          domain.StepWelcome,
			expectedError: domain.ErrInvalidTransition,
		},
		{
			name: "completed session is rejected",
			session: func(t *testing.T) domain.OnboardingSession {
				s := newTestSession(t)
				s.Status = domain.StatusCompleted
				return s
			},
			next:          domain.StepBusiness,
			expectedError: domain.ErrSessionCompleted,
		},
		{
			name: "abandoned session is rejected",
			session: func(t *testing.T) domain.OnboardingSession {
				return newTestSession(t).Abandon("changed_mind")
			},
			next:          domain.StepBusiness,
			expectedError: domain.ErrSessionAbandoned,
		},
		{
			name:    "invalid patch is rejected",
			session: newTestSession,
			next:    domain.StepBusiness,
			patch: &domain.StepData{
				Business: &domain.BusinessInfo{CompanyName: "", Industry: "retail"},
			},
			expectedError: domain.ErrInvalidBusiness,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := tt.session(t)
			repo := mocks.NewMockSessionRepository()
			repo.FindByIDFunc = func(ctx context.Context, id string) (*domain.OnboardingSession, error) {
				return &session, nil
			}

			advanced, err := newOnboardingService(repo).AdvanceStep(context.Background(), session.ID, tt.next, tt.patch)
			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected %v, got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if advanced.CurrentStep != tt.next {
				t.Errorf("expected current step %q, got %q", tt.next, advanced.CurrentStep)
			}
		})
	}

	t.Run("unknown session", func(t *testing.T) {
		repo := mocks.NewMockSessionRepository()
		_, err := newOnboardingService(repo).AdvanceStep(context.Background(), "missing", domain.StepBusiness, nil)
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestOnboardingServiceImpl_CompleteOnboarding(t *testing.T) {
	t.Run("completes from the testing step", func(t *testing.T) {
		session := newTestSession(t)
		session.CurrentStep = domain.StepTesting

		completed, err := newOnboardingService(sessionRepo(&session)).CompleteOnboarding(context.Background(), session.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if completed.Status != domain.StatusCompleted {
			t.Errorf("expected completed, got %q", completed.Status)
		}
		if completed.Analytics.CompletedAt == nil {
			t.Error("expected completion timestamp")
		}
	})

	t.Run("already completed is a no-op", func(t *testing.T) {
		session := newTestSession(t)
		session.Status = domain.StatusCompleted
		repo := sessionRepo(&session)
		repo.UpdateFunc = func(ctx context.Context, s *domain.OnboardingSession) (*domain.OnboardingSession, error) {
			t.Error("unexpected update on re-complete")
			return s, nil
		}

		completed, err := newOnboardingService(repo).CompleteOnboarding(context.Background(), session.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if completed.ID != session.ID {
			t.Error("expected the stored session back")
		}
	})

	t.Run("cannot complete from an early step", func(t *testing.T) {
		session := newTestSession(t)
		_, err := newOnboardingService(sessionRepo(&session)).CompleteOnboarding(context.Background(), session.ID)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestOnboardingServiceImpl_AbandonOnboarding(t *testing.T) {
	t.Run("defaults the reason", func(t *testing.T) {
		session := newTestSession(t)
		abandoned, err := newOnboardingService(sessionRepo(&session)).AbandonOnboarding(context.Background(), session.ID, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if abandoned.Analytics.AbandonmentReason != "user_requested" {
			t.Errorf("expected default reason, got %q", abandoned.Analytics.AbandonmentReason)
		}
		if abandoned.Analytics.AbandonedAt == nil {
			t.Error("expected abandonment timestamp")
		}
	})

	t.Run("completed session cannot be abandoned", func(t *testing.T) {
		session := newTestSession(t)
		session.Status = domain.StatusCompleted
		_, err := newOnboardingService(sessionRepo(&session)).AbandonOnboarding(context.Background(), session.ID, "x")
		if !errors.Is(err, domain.ErrSessionCompleted) {
			t.Fatalf("expected ErrSessionCompleted, got %v", err)
		}
	})
}

func TestOnboardingServiceImpl_GetSession(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		session := newTestSession(t)
		got, err := newOnboardingService(sessionRepo(&session)).GetSession(context.Background(), session.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != session.ID {
			t.Errorf("expected %s, got %s", session.ID, got.ID)
		}
	})

	t.Run("absent maps to not found", func(t *testing.T) {
		repo := mocks.NewMockSessionRepository()
		_, err := newOnboardingService(repo).GetSession(context.Background(), "missing")
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestOnboardingServiceImpl_GetSessionByEmail(t *testing.T) {
	repo := mocks.NewMockSessionRepository()
	email, _ := domain.NewEmail("nobody@example.com")
	_, err := newOnboardingService(repo).GetSessionByEmail(context.Background(), email)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

// sessionRepo returns a mock whose FindByID always yields the given session.
func sessionRepo(session *domain.OnboardingSession) *mocks.MockSessionRepository {
	repo := mocks.NewMockSessionRepository()
	repo.FindByIDFunc = func(ctx context.Context, id string) (*domain.OnboardingSession, error) {
		return session, nil
	}
	return repo
}
