package domain

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTLHours is how long a fresh session stays recoverable.
const DefaultSessionTTLHours = 24

// progressSteps is the number of non-terminal steps the progress ratio is
// computed against. StepComplete is excluded.
const progressSteps = 6

// NewOnboardingSession creates the initial session value: status in-progress,
// step welcome, a fresh recovery token and a 24h expiry window.
func NewOnboardingSession(email Email, device *DeviceInfo, conversionSource string) OnboardingSession {
	now := time.Now().UTC()

	timestamps := make(map[OnboardingStep][]time.Time, len(StepOrder))
	durations := make(map[OnboardingStep]time.Duration, len(StepOrder))
	for _, step := range StepOrder {
		timestamps[step] = nil
		durations[step] = 0
	}
	timestamps[StepWelcome] = []time.Time{now}

	return OnboardingSession{
		ID:             uuid.NewString(),
		UserEmail:      email,
		CurrentStep:    StepWelcome,
		Status:         StatusInProgress,
		CompletedSteps: []OnboardingStep{},
		StartedAt:      now,
		LastActivityAt: now,
		StepData:       StepData{},
		Metadata:       map[string]any{},
		Analytics: SessionAnalytics{
			StartedAt:        now,
			LastActivityAt:   now,
			StepTimestamps:   timestamps,
			StepDurations:    durations,
			DeviceInfo:       device,
			ABTestVariants:   map[string]string{},
			ConversionSource: conversionSource,
		},
		RecoveryToken: newRecoveryToken(),
		ExpiresAt:     now.Add(DefaultSessionTTLHours * time.Hour),
	}
}

// Advance moves the session to next. It appends the current step to the
// completed set if absent, accrues time spent on the current step, records the
// entry timestamp for next and merges patch into the step data (patch wins).
// Advancing to StepComplete completes the session; doing so twice is
// idempotent. Advance does not check that next is the canonical successor;
// callers guard with ValidTransition.
func (s OnboardingSession) Advance(next OnboardingStep, patch *StepData) OnboardingSession {
	now := time.Now().UTC()

	// Re-completing an already completed session must not double-count
	// duration or duplicate the completed-step entry.
	if next == StepComplete && s.Status == StatusCompleted {
		out := s.clone()
		out.LastActivityAt = now
		out.Analytics.LastActivityAt = now
		return out
	}

	out := s.clone()

	out.Analytics.StepDurations[s.CurrentStep] += now.Sub(s.lastEntryOf(s.CurrentStep))

	if !containsStep(out.CompletedSteps, s.CurrentStep) {
		out.CompletedSteps = append(out.CompletedSteps, s.CurrentStep)
	}

	out.CurrentStep = next
	out.Analytics.StepTimestamps[next] = append(out.Analytics.StepTimestamps[next], now)

	if patch != nil {
		out.StepData = out.StepData.Merge(*patch)
	}

	if next == StepComplete {
		out.Status = StatusCompleted
		completed := now
		out.CompletedAt = &completed
		out.Analytics.CompletedAt = &completed
	}

	out.LastActivityAt = now
	out.Analytics.LastActivityAt = now
	return out
}

// lastEntryOf returns the most recent entry timestamp for step, falling back
// to LastActivityAt when the step was never entered.
func (s OnboardingSession) lastEntryOf(step OnboardingStep) time.Time {
	entries := s.Analytics.StepTimestamps[step]
	if len(entries) == 0 {
		return s.LastActivityAt
	}
	return entries[len(entries)-1]
}

// Pause marks the session paused. Step and timing data is untouched.
func (s OnboardingSession) Pause() OnboardingSession {
	now := time.Now().UTC()
	out := s.clone()
	out.Status = StatusPaused
	out.LastActivityAt = now
	out.Analytics.LastActivityAt = now
	out.Analytics.PausedAt = &now
	return out
}

// Resume marks the session in-progress again.
func (s OnboardingSession) Resume() OnboardingSession {
	now := time.Now().UTC()
	out := s.clone()
	out.Status = StatusInProgress
	out.LastActivityAt = now
	out.Analytics.LastActivityAt = now
	out.Analytics.ResumedAt = &now
	return out
}

// Abandon terminally marks the session abandoned. The record itself persists
// until expiry cleanup deletes it.
func (s OnboardingSession) Abandon(reason string) OnboardingSession {
	now := time.Now().UTC()
	out := s.clone()
	out.Status = StatusAbandoned
	out.LastActivityAt = now
	out.Analytics.LastActivityAt = now
	out.Analytics.AbandonedAt = &now
	out.Analytics.AbandonmentReason = reason
	return out
}

// ExtendExpiry sets the expiry to now + additionalHours. Extension is always
// relative to call time, never to the previous deadline, so repeated calls do
// not stack. Non-positive hours fall back to the default TTL.
func (s OnboardingSession) ExtendExpiry(additionalHours int) OnboardingSession {
	if additionalHours <= 0 {
		additionalHours = DefaultSessionTTLHours
	}
	now := time.Now().UTC()
	out := s.clone()
	out.ExpiresAt = now.Add(time.Duration(additionalHours) * time.Hour)
	out.LastActivityAt = now
	out.Analytics.LastActivityAt = now
	return out
}

// IsExpired reports whether the expiry deadline has passed. Strict: a session
// expiring exactly now is not yet expired.
func (s OnboardingSession) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// ExpiresWithin reports whether the session expires before now + d.
func (s OnboardingSession) ExpiresWithin(d time.Duration) bool {
	return s.ExpiresAt.Before(time.Now().UTC().Add(d))
}

// RecordABTestVariant upserts one experiment assignment.
func (s OnboardingSession) RecordABTestVariant(testName, variant string) OnboardingSession {
	now := time.Now().UTC()
	out := s.clone()
	out.Analytics.ABTestVariants[testName] = variant
	out.LastActivityAt = now
	out.Analytics.LastActivityAt = now
	return out
}

// WithDeviceInfo replaces the device info wholesale.
func (s OnboardingSession) WithDeviceInfo(device *DeviceInfo) OnboardingSession {
	now := time.Now().UTC()
	out := s.clone()
	out.Analytics.DeviceInfo = device
	out.LastActivityAt = now
	out.Analytics.LastActivityAt = now
	return out
}

// WithMetadata merges entries into the operational metadata. Merge-only:
// existing keys not named in entries survive.
func (s OnboardingSession) WithMetadata(entries map[string]any) OnboardingSession {
	out := s.clone()
	for k, v := range entries {
		out.Metadata[k] = v
	}
	return out
}

// Progress returns completion as a percentage in [0,100], computed over the
// six non-terminal steps.
func (s OnboardingSession) Progress() int {
	p := int(math.Round(100 * float64(len(s.CompletedSteps)) / progressSteps))
	if p > 100 {
		p = 100
	}
	return p
}

// Summary derives the read-only analytics projection for this session.
// AverageStepDuration is the mean over steps actually spent time in; steps
// never entered contribute nothing.
func (s OnboardingSession) Summary() SessionSummary {
	now := time.Now().UTC()

	durations := make(map[OnboardingStep]time.Duration, len(s.Analytics.StepDurations))
	var total time.Duration
	var visited int
	for step, d := range s.Analytics.StepDurations {
		durations[step] = d
		if d > 0 {
			total += d
			visited++
		}
	}
	var avg time.Duration
	if visited > 0 {
		avg = total / time.Duration(visited)
	}

	variants := make(map[string]string, len(s.Analytics.ABTestVariants))
	for k, v := range s.Analytics.ABTestVariants {
		variants[k] = v
	}

	expiresIn := s.ExpiresAt.Sub(now)
	if expiresIn < 0 {
		expiresIn = 0
	}

	end := now
	if s.CompletedAt != nil {
		end = *s.CompletedAt
	}

	return SessionSummary{
		SessionID:           s.ID,
		UserEmail:           s.UserEmail,
		Status:              s.Status,
		CurrentStep:         s.CurrentStep,
		Progress:            s.Progress(),
		CompletedSteps:      append([]OnboardingStep{}, s.CompletedSteps...),
		StartedAt:           s.StartedAt,
		LastActivityAt:      s.LastActivityAt,
		TotalDuration:       end.Sub(s.StartedAt),
		StepDurations:       durations,
		AverageStepDuration: avg,
		ExpiresIn:           expiresIn,
		IsExpired:           s.IsExpired(),
		DeviceInfo:          s.Analytics.DeviceInfo,
		ConversionSource:    s.Analytics.ConversionSource,
		ABTestVariants:      variants,
	}
}

// clone returns a deep copy so transition methods never alias the maps and
// slices of the value they were called on.
func (s OnboardingSession) clone() OnboardingSession {
	out := s

	out.CompletedSteps = append([]OnboardingStep{}, s.CompletedSteps...)

	out.Metadata = make(map[string]any, len(s.Metadata))
	for k, v := range s.Metadata {
		out.Metadata[k] = v
	}

	out.StepData = s.StepData.clone()

	out.Analytics.StepTimestamps = make(map[OnboardingStep][]time.Time, len(s.Analytics.StepTimestamps))
	for step, entries := range s.Analytics.StepTimestamps {
		out.Analytics.StepTimestamps[step] = append([]time.Time(nil), entries...)
	}
	out.Analytics.StepDurations = make(map[OnboardingStep]time.Duration, len(s.Analytics.StepDurations))
	for step, d := range s.Analytics.StepDurations {
		out.Analytics.StepDurations[step] = d
	}
	out.Analytics.ABTestVariants = make(map[string]string, len(s.Analytics.ABTestVariants))
	for k, v := range s.Analytics.ABTestVariants {
		out.Analytics.ABTestVariants[k] = v
	}

	return out
}

func containsStep(steps []OnboardingStep, step OnboardingStep) bool {
	for _, s := range steps {
		if s == step {
			return true
		}
	}
	return false
}

func newRecoveryToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a UUID
		// rather than returning an empty credential.
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
