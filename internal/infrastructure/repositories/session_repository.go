package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// SessionRepositoryImpl implements domain.SessionRepository using GORM
type SessionRepositoryImpl struct {
	db *gorm.DB
}

// DBSession represents the database model for OnboardingSession (with GORM
// tags). Flexible sub-documents live in JSON columns.
type DBSession struct {
	ID             string         `gorm:"primaryKey;size:36"`
	UserEmail      string         `gorm:"index;size:255"`
	CurrentStep    string         `gorm:"size:32"`
	Status         string         `gorm:"index;size:32"`
	CompletedSteps datatypes.JSON `gorm:"column:completed_steps"`
	StartedAt      time.Time      `gorm:"index"`
	LastActivityAt time.Time      `gorm:"index"`
	CompletedAt    *time.Time
	StepData       datatypes.JSON `gorm:"column:step_data"`
	Metadata       datatypes.JSON `gorm:"column:metadata"`
	Analytics      datatypes.JSON `gorm:"column:analytics"`
	RecoveryToken  string         `gorm:"uniqueIndex;size:64"`
	ExpiresAt      time.Time      `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (DBSession) TableName() string {
	return "onboarding_sessions"
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) domain.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// Save implements domain.SessionRepository
func (r *SessionRepositoryImpl) Save(ctx context.Context, session *domain.OnboardingSession) (*domain.OnboardingSession, error) {
	dbSession, err := domainToDB(session)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(dbSession).Error; err != nil {
		return nil, err
	}
	return dbToDomain(dbSession)
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUserEmail implements domain.SessionRepository. Email is the natural
// lookup key for "the active session of this user"; the most recently active
// record wins when several exist.
func (r *SessionRepositoryImpl) FindByUserEmail(ctx context.Context, email domain.Email) (*domain.OnboardingSession, error) {
	var dbSession DBSession
	err := r.db.WithContext(ctx).
		Where("user_email = ?", email.String()).
		Order("last_activity_at DESC").
		First(&dbSession).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return dbToDomain(&dbSession)
}

// FindByRecoveryToken implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByRecoveryToken(ctx context.Context, token string) (*domain.OnboardingSession, error) {
	return r.findOne(ctx, "recovery_token = ?", token)
}

func (r *SessionRepositoryImpl) findOne(ctx context.Context, query string, args ...any) (*domain.OnboardingSession, error) {
	var dbSession DBSession
	err := r.db.WithContext(ctx).Where(query, args...).First(&dbSession).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return dbToDomain(&dbSession)
}

// Update implements domain.SessionRepository
func (r *SessionRepositoryImpl) Update(ctx context.Context, session *domain.OnboardingSession) (*domain.OnboardingSession, error) {
	dbSession, err := domainToDB(session)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Save(dbSession).Error; err != nil {
		return nil, err
	}
	return dbToDomain(dbSession)
}

// Delete implements domain.SessionRepository
func (r *SessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&DBSession{}, "id = ?", id).Error
}

// FindByStatus implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByStatus(ctx context.Context, status domain.SessionStatus) ([]*domain.OnboardingSession, error) {
	return r.findMany(ctx, r.db.WithContext(ctx).Where("status = ?", string(status)))
}

// FindAbandonedSessions implements domain.SessionRepository: in-progress
// sessions whose last activity is older than the threshold.
func (r *SessionRepositoryImpl) FindAbandonedSessions(ctx context.Context, inactiveFor time.Duration) ([]*domain.OnboardingSession, error) {
	cutoff := time.Now().UTC().Add(-inactiveFor)
	return r.findMany(ctx, r.db.WithContext(ctx).
		Where("status = ? AND last_activity_at < ?", string(domain.StatusInProgress), cutoff))
}

// FindExpiredSessions implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindExpiredSessions(ctx context.Context) ([]*domain.OnboardingSession, error) {
	return r.findMany(ctx, r.db.WithContext(ctx).Where("expires_at < ?", time.Now().UTC()))
}

// FindSessionsInDateRange implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindSessionsInDateRange(ctx context.Context, from, to time.Time) ([]*domain.OnboardingSession, error) {
	return r.findMany(ctx, r.db.WithContext(ctx).
		Where("started_at >= ? AND started_at <= ?", from, to))
}

func (r *SessionRepositoryImpl) findMany(ctx context.Context, tx *gorm.DB) ([]*domain.OnboardingSession, error) {
	var dbSessions []DBSession
	if err := tx.Find(&dbSessions).Error; err != nil {
		return nil, err
	}
	sessions := make([]*domain.OnboardingSession, 0, len(dbSessions))
	for i := range dbSessions {
		session, err := dbToDomain(&dbSessions[i])
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// GetAnalyticsSummary implements domain.SessionRepository. Rows are folded in
// Go so the aggregate behaves identically under postgres and the sqlite test
// driver.
func (r *SessionRepositoryImpl) GetAnalyticsSummary(ctx context.Context, filter domain.AnalyticsFilter) (*domain.AnalyticsReport, error) {
	tx := r.db.WithContext(ctx).Model(&DBSession{})
	if filter.From != nil {
		tx = tx.Where("started_at >= ?", *filter.From)
	}
	if filter.To != nil {
		tx = tx.Where("started_at <= ?", *filter.To)
	}

	var dbSessions []DBSession
	if err := tx.Find(&dbSessions).Error; err != nil {
		return nil, err
	}

	report := &domain.AnalyticsReport{
		StepDropoffRates:   map[domain.OnboardingStep]float64{},
		AbandonmentReasons: map[string]int64{},
		ConversionSources:  map[string]int64{},
	}

	entered := map[domain.OnboardingStep]int64{}
	progressed := map[domain.OnboardingStep]int64{}
	var completionTotal time.Duration

	for i := range dbSessions {
		session, err := dbToDomain(&dbSessions[i])
		if err != nil {
			return nil, err
		}
		if filter.ConversionSource != "" && session.Analytics.ConversionSource != filter.ConversionSource {
			continue
		}

		report.TotalSessions++
		switch session.Status {
		case domain.StatusCompleted:
			report.CompletedSessions++
			if session.CompletedAt != nil {
				completionTotal += session.CompletedAt.Sub(session.StartedAt)
			}
		case domain.StatusAbandoned:
			report.AbandonedSessions++
			reason := session.Analytics.AbandonmentReason
			if reason == "" {
				reason = "unknown"
			}
			report.AbandonmentReasons[reason]++
		}

		if src := session.Analytics.ConversionSource; src != "" {
			report.ConversionSources[src]++
		}

		for _, step := range domain.StepOrder {
			if step == domain.StepComplete {
				continue
			}
			if len(session.Analytics.StepTimestamps[step]) > 0 {
				entered[step]++
			}
		}
		for _, step := range session.CompletedSteps {
			progressed[step]++
		}
	}

	if report.TotalSessions > 0 {
		report.ConversionRate = 100 * float64(report.CompletedSessions) / float64(report.TotalSessions)
	}
	if report.CompletedSessions > 0 {
		report.AverageCompletionMinutes = completionTotal.Minutes() / float64(report.CompletedSessions)
	}
	for _, step := range domain.StepOrder {
		if step == domain.StepComplete {
			continue
		}
		if entered[step] == 0 {
			report.StepDropoffRates[step] = 0
			continue
		}
		report.StepDropoffRates[step] = 100 * float64(entered[step]-progressed[step]) / float64(entered[step])
	}

	return report, nil
}

// CleanupExpiredSessions implements domain.SessionRepository: hard delete of
// every session past its expiry.
func (r *SessionRepositoryImpl) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&DBSession{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// GetActiveSessionCount implements domain.SessionRepository
func (r *SessionRepositoryImpl) GetActiveSessionCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBSession{}).
		Where("status = ?", string(domain.StatusInProgress)).
		Count(&count).Error
	return count, err
}

// domainToDB converts a domain session to the database model
func domainToDB(session *domain.OnboardingSession) (*DBSession, error) {
	completedSteps, err := json.Marshal(session.CompletedSteps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completed steps: %w", err)
	}
	stepData, err := json.Marshal(session.StepData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal step data: %w", err)
	}
	metadata, err := json.Marshal(session.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	analytics, err := json.Marshal(session.Analytics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analytics: %w", err)
	}

	return &DBSession{
		ID:             session.ID,
		UserEmail:      session.UserEmail.String(),
		CurrentStep:    string(session.CurrentStep),
		Status:         string(session.Status),
		CompletedSteps: completedSteps,
		StartedAt:      session.StartedAt,
		LastActivityAt: session.LastActivityAt,
		CompletedAt:    session.CompletedAt,
		StepData:       stepData,
		Metadata:       metadata,
		Analytics:      analytics,
		RecoveryToken:  session.RecoveryToken,
		ExpiresAt:      session.ExpiresAt,
	}, nil
}

// dbToDomain converts a database model to the domain session
func dbToDomain(dbSession *DBSession) (*domain.OnboardingSession, error) {
	session := &domain.OnboardingSession{
		ID:             dbSession.ID,
		UserEmail:      domain.Email(dbSession.UserEmail),
		CurrentStep:    domain.OnboardingStep(dbSession.CurrentStep),
		Status:         domain.SessionStatus(dbSession.Status),
		StartedAt:      dbSession.StartedAt,
		LastActivityAt: dbSession.LastActivityAt,
		CompletedAt:    dbSession.CompletedAt,
		RecoveryToken:  dbSession.RecoveryToken,
		ExpiresAt:      dbSession.ExpiresAt,
	}

	if err := json.Unmarshal(dbSession.CompletedSteps, &session.CompletedSteps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completed steps: %w", err)
	}
	if err := json.Unmarshal(dbSession.StepData, &session.StepData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step data: %w", err)
	}
	if err := json.Unmarshal(dbSession.Metadata, &session.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	if err := json.Unmarshal(dbSession.Analytics, &session.Analytics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analytics: %w", err)
	}

	return session, nil
}
