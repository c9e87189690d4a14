package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// SessionHandlers handles onboarding session HTTP requests. Thin glue: all
// business rules live in the services.
type SessionHandlers struct {
	onboardingSvc domain.OnboardingService
	sessionSvc    domain.SessionService
}

// NewSessionHandlers creates new session handlers
func NewSessionHandlers(onboardingSvc domain.OnboardingService, sessionSvc domain.SessionService) *SessionHandlers {
	return &SessionHandlers{
		onboardingSvc: onboardingSvc,
		sessionSvc:    sessionSvc,
	}
}

// StartRequest represents a wizard start request
type StartRequest struct {
	Email            string `json:"email" binding:"required,email"`
	ConversionSource string `json:"conversion_source,omitempty"`
}

// AdvanceRequest represents a step advance request
type AdvanceRequest struct {
	NextStep string           `json:"next_step" binding:"required"`
	StepData *domain.StepData `json:"step_data,omitempty"`
}

// RecoverRequest represents a recovery-by-token request
type RecoverRequest struct {
	RecoveryToken string `json:"recovery_token" binding:"required"`
}

// PauseRequest represents a pause request
type PauseRequest struct {
	Reason string `json:"reason,omitempty"`
}

// AbandonRequest represents an abandon request
type AbandonRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SyncRequest represents a cross-device synchronization request
type SyncRequest struct {
	ClientVersion int `json:"client_version"`
}

// VariantRequest represents an A/B variant assignment
type VariantRequest struct {
	TestName string `json:"test_name" binding:"required"`
	Variant  string `json:"variant" binding:"required"`
}

// Start handles wizard start, reusing an in-progress session for the email
func (h *SessionHandlers) Start(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email, err := domain.NewEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	device := &domain.DeviceInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}

	session, err := h.onboardingSvc.StartOnboarding(c.Request.Context(), email, device, req.ConversionSource)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sessionPayload(session, true)})
}

// Get returns one session
func (h *SessionHandlers) Get(c *gin.Context) {
	session, err := h.onboardingSvc.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(session, false)})
}

// Advance moves the session to the next step
func (h *SessionHandlers) Advance(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next := domain.OnboardingStep(req.NextStep)
	if !domain.IsValidStep(next) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown onboarding step"})
		return
	}

	session, err := h.onboardingSvc.AdvanceStep(c.Request.Context(), c.Param("id"), next, req.StepData)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(session, false)})
}

// Complete finishes the wizard
func (h *SessionHandlers) Complete(c *gin.Context) {
	session, err := h.onboardingSvc.CompleteOnboarding(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(session, false)})
}

// Abandon terminally abandons the session
func (h *SessionHandlers) Abandon(c *gin.Context) {
	var req AbandonRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.onboardingSvc.AbandonOnboarding(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(session, false)})
}

// Recover revives a session by its recovery token
func (h *SessionHandlers) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.sessionSvc.RecoverSession(c.Request.Context(), req.RecoveryToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"session":      sessionPayload(result.Session, false),
			"was_expired":  result.WasExpired,
			"was_extended": result.WasExtended,
		},
	})
}

// Pause pauses the session with an optional reason
func (h *SessionHandlers) Pause(c *gin.Context) {
	var req PauseRequest
	_ = c.ShouldBindJSON(&req)

	session, err := h.sessionSvc.PauseSession(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(session, false)})
}

// Resume resumes a paused session
func (h *SessionHandlers) Resume(c *gin.Context) {
	session, err := h.sessionSvc.ResumeSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(session, false)})
}

// Sync synchronizes a session across devices
func (h *SessionHandlers) Sync(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device := &domain.DeviceInfo{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}

	result, err := h.sessionSvc.SynchronizeSession(c.Request.Context(), c.Param("id"), req.ClientVersion, device)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"session":      sessionPayload(result.Session, false),
			"synchronized": result.Synchronized,
			"conflicts":    result.Conflicts,
			"resolved":     result.Resolved,
		},
	})
}

// RecordVariant records an A/B test assignment on the session
func (h *SessionHandlers) RecordVariant(c *gin.Context) {
	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionSvc.UpdateABTestVariant(c.Request.Context(), c.Param("id"), req.TestName, req.Variant)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(session, false)})
}

// Summary returns the per-session analytics projection
func (h *SessionHandlers) Summary(c *gin.Context) {
	summary, err := h.sessionSvc.GetSessionSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// Analytics returns the aggregate funnel report
func (h *SessionHandlers) Analytics(c *gin.Context) {
	filter := domain.AnalyticsFilter{ConversionSource: c.Query("source")}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp"})
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp"})
			return
		}
		filter.To = &to
	}

	overview, err := h.sessionSvc.GetSessionAnalytics(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"report":          overview.Report,
			"active_sessions": overview.ActiveSessions,
		},
	})
}

// sessionPayload shapes a session for responses. The recovery token is only
// disclosed when a session is started.
func sessionPayload(s *domain.OnboardingSession, includeToken bool) gin.H {
	payload := gin.H{
		"id":               s.ID,
		"user_email":       s.UserEmail.String(),
		"current_step":     s.CurrentStep,
		"status":           s.Status,
		"completed_steps":  s.CompletedSteps,
		"progress":         s.Progress(),
		"step_data":        s.StepData,
		"started_at":       s.StartedAt,
		"last_activity_at": s.LastActivityAt,
		"expires_at":       s.ExpiresAt,
	}
	if s.CompletedAt != nil {
		payload["completed_at"] = *s.CompletedAt
	}
	if includeToken {
		payload["recovery_token"] = s.RecoveryToken
	}
	return payload
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrUnknownStep):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidBusiness),
		errors.Is(err, domain.ErrInvalidChannel),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrInvalidBotConfig),
		errors.Is(err, domain.ErrInvalidTestResults):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionNotPaused),
		errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrSessionAbandoned),
		errors.Is(err, domain.ErrSessionExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
