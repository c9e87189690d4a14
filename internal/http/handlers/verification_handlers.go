package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// VerificationHandlers handles phone verification for the verification step
type VerificationHandlers struct {
	verificationSvc domain.VerificationService
	onboardingSvc   domain.OnboardingService
}

// NewVerificationHandlers creates new verification handlers
func NewVerificationHandlers(verificationSvc domain.VerificationService, onboardingSvc domain.OnboardingService) *VerificationHandlers {
	return &VerificationHandlers{
		verificationSvc: verificationSvc,
		onboardingSvc:   onboardingSvc,
	}
}

// SendCodeRequest represents a verification-code send request
type SendCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyCodeRequest represents a verification-code check request
type VerifyCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// SendCode generates and sends a verification code for the session
func (h *VerificationHandlers) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.Param("id")
	if _, err := h.onboardingSvc.GetSession(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.verificationSvc.SendCode(c.Request.Context(), sessionID, req.Phone); err != nil {
		if errors.Is(err, domain.ErrCodeResendLimit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "Verification code sent"},
	})
}

// VerifyCode checks a code and, on success, records the verified phone and
// advances the session past the verification step
func (h *VerificationHandlers) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.Param("id")
	ok, err := h.verificationSvc.VerifyCode(c.Request.Context(), sessionID, req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeNotFound), errors.Is(err, domain.ErrCodeExpired):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrCodeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrCodeMaxAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
		return
	}

	now := time.Now().UTC()
	patch := &domain.StepData{
		Verification: &domain.PhoneVerification{
			PhoneNumber: req.Phone,
			Verified:    true,
			VerifiedAt:  &now,
		},
	}

	session, err := h.onboardingSvc.AdvanceStep(c.Request.Context(), sessionID, domain.StepBotSetup, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(session, false)})
}
