package domain

import "time"

// OnboardingStep identifies one stage of the fixed onboarding sequence.
type OnboardingStep string

const (
	StepWelcome      OnboardingStep = "welcome"
	StepBusiness     OnboardingStep = "business"
	StepIntegration  OnboardingStep = "integration"
	StepVerification OnboardingStep = "verification"
	StepBotSetup     OnboardingStep = "bot-setup"
	StepTesting      OnboardingStep = "testing"
	StepComplete     OnboardingStep = "complete"
)

// StepOrder is the canonical sequence of the wizard. StepComplete is the
// terminal marker and is excluded from progress calculations.
var StepOrder = []OnboardingStep{
	StepWelcome,
	StepBusiness,
	StepIntegration,
	StepVerification,
	StepBotSetup,
	StepTesting,
	StepComplete,
}

var stepIndex = func() map[OnboardingStep]int {
	m := make(map[OnboardingStep]int, len(StepOrder))
	for i, s := range StepOrder {
		m[s] = i
	}
	return m
}()

// IsValidStep reports whether s is a member of the canonical sequence.
func IsValidStep(s OnboardingStep) bool {
	_, ok := stepIndex[s]
	return ok
}

// ValidTransition reports whether next is the canonical successor of current.
// Advance itself is ungated; use cases call this guard before advancing.
func ValidTransition(current, next OnboardingStep) bool {
	ci, ok := stepIndex[current]
	if !ok {
		return false
	}
	ni, ok := stepIndex[next]
	if !ok {
		return false
	}
	return ni == ci+1
}

// SessionStatus is the lifecycle state of an onboarding session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in-progress"
	StatusPaused     SessionStatus = "paused"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// DeviceInfo captures the client environment a session was driven from.
// Replaced wholesale, never merged.
type DeviceInfo struct {
	UserAgent string `json:"user_agent,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
}

// SessionAnalytics is the timing and provenance record embedded in a session.
type SessionAnalytics struct {
	StartedAt         time.Time                         `json:"started_at"`
	LastActivityAt    time.Time                         `json:"last_activity_at"`
	CompletedAt       *time.Time                        `json:"completed_at,omitempty"`
	AbandonedAt       *time.Time                        `json:"abandoned_at,omitempty"`
	ResumedAt         *time.Time                        `json:"resumed_at,omitempty"`
	PausedAt          *time.Time                        `json:"paused_at,omitempty"`
	StepTimestamps    map[OnboardingStep][]time.Time    `json:"step_timestamps"`
	StepDurations     map[OnboardingStep]time.Duration  `json:"step_durations"`
	DeviceInfo        *DeviceInfo                       `json:"device_info,omitempty"`
	ABTestVariants    map[string]string                 `json:"ab_test_variants"`
	ConversionSource  string                            `json:"conversion_source,omitempty"`
	AbandonmentReason string                            `json:"abandonment_reason,omitempty"`
}

// OnboardingSession is the aggregate root: one user's attempt to complete the
// signup wizard. Mutated only through the transition methods in session.go,
// each of which returns a new value.
type OnboardingSession struct {
	ID             string           `json:"id"`
	UserEmail      Email            `json:"user_email"`
	CurrentStep    OnboardingStep   `json:"current_step"`
	Status         SessionStatus    `json:"status"`
	CompletedSteps []OnboardingStep `json:"completed_steps"`
	StartedAt      time.Time        `json:"started_at"`
	LastActivityAt time.Time        `json:"last_activity_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	StepData       StepData         `json:"step_data"`
	Metadata       map[string]any   `json:"metadata"`
	Analytics      SessionAnalytics `json:"analytics"`
	RecoveryToken  string           `json:"recovery_token,omitempty"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// SessionSummary is the read-only projection produced by Summary.
type SessionSummary struct {
	SessionID           string                           `json:"session_id"`
	UserEmail           Email                            `json:"user_email"`
	Status              SessionStatus                    `json:"status"`
	CurrentStep         OnboardingStep                   `json:"current_step"`
	Progress            int                              `json:"progress"`
	CompletedSteps      []OnboardingStep                 `json:"completed_steps"`
	StartedAt           time.Time                        `json:"started_at"`
	LastActivityAt      time.Time                        `json:"last_activity_at"`
	TotalDuration       time.Duration                    `json:"total_duration"`
	StepDurations       map[OnboardingStep]time.Duration `json:"step_durations"`
	AverageStepDuration time.Duration                    `json:"average_step_duration"`
	ExpiresIn           time.Duration                    `json:"expires_in"`
	IsExpired           bool                             `json:"is_expired"`
	DeviceInfo          *DeviceInfo                      `json:"device_info,omitempty"`
	ConversionSource    string                           `json:"conversion_source,omitempty"`
	ABTestVariants      map[string]string                `json:"ab_test_variants"`
}

// AnalyticsFilter narrows aggregate analytics queries.
type AnalyticsFilter struct {
	From             *time.Time
	To               *time.Time
	ConversionSource string
}

// AnalyticsReport is the storage-level aggregate over many sessions.
type AnalyticsReport struct {
	TotalSessions            int64                      `json:"total_sessions"`
	CompletedSessions        int64                      `json:"completed_sessions"`
	AbandonedSessions        int64                      `json:"abandoned_sessions"`
	AverageCompletionMinutes float64                    `json:"average_completion_minutes"`
	ConversionRate           float64                    `json:"conversion_rate"`
	StepDropoffRates         map[OnboardingStep]float64 `json:"step_dropoff_rates"`
	AbandonmentReasons       map[string]int64           `json:"abandonment_reasons"`
	ConversionSources        map[string]int64           `json:"conversion_sources"`
}

// RecoveryResult reports the outcome of a recovery-by-token attempt.
type RecoveryResult struct {
	Session     *OnboardingSession
	WasExpired  bool
	WasExtended bool
}

// SweepResult reports the outcome of an abandonment sweep.
type SweepResult struct {
	TotalAbandoned int
	Marked         []string
	Errors         []string
}

// CleanupResult reports the outcome of a full cleanup pass. Both phases run
// independently; errors accumulate rather than aborting the pass.
type CleanupResult struct {
	ExpiredSessionsDeleted  int64
	AbandonedSessionsMarked int
	Errors                  []string
}

// SyncResult reports the outcome of a cross-device synchronization.
type SyncResult struct {
	Session      *OnboardingSession
	Synchronized bool
	Conflicts    []string
	Resolved     bool
}

// AnalyticsOverview combines the storage aggregate with the live active count.
type AnalyticsOverview struct {
	Report         *AnalyticsReport
	ActiveSessions int64
}
