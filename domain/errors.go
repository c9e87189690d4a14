package domain

import "errors"

// Session errors
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session has expired")
	ErrSessionNotPaused = errors.New("session is not paused")
	ErrSessionCompleted = errors.New("session is already completed")
	ErrSessionAbandoned = errors.New("session has been abandoned")
)

// Transition errors
var (
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrUnknownStep       = errors.New("unknown onboarding step")
)

// Validation errors
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidBusiness    = errors.New("invalid business info")
	ErrInvalidChannel     = errors.New("invalid channel configuration")
	ErrInvalidPhone       = errors.New("invalid phone verification data")
	ErrInvalidBotConfig   = errors.New("invalid bot configuration")
	ErrInvalidTestResults = errors.New("invalid testing results")
)

// Verification-code errors
var (
	ErrCodeExpired     = errors.New("verification code has expired")
	ErrCodeInvalid     = errors.New("invalid verification code")
	ErrCodeMaxAttempts = errors.New("maximum verification attempts exceeded")
	ErrCodeNotFound    = errors.New("verification code not found")
	ErrCodeResendLimit = errors.New("verification code resend limit exceeded")
)
