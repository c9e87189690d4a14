package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// VerificationServiceImpl implements domain.VerificationService using Redis
// persistence for codes, attempt counters and resend throttling.
type VerificationServiceImpl struct {
	notificationSvc domain.NotificationService
	redisClient     *redis.Client
	config          VerificationConfig
}

type VerificationConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

// NewVerificationService creates a new Redis-based verification service
func NewVerificationService(notificationSvc domain.NotificationService, redisClient *redis.Client, config VerificationConfig) domain.VerificationService {
	return &VerificationServiceImpl{
		notificationSvc: notificationSvc,
		redisClient:     redisClient,
		config:          config,
	}
}

// SendCode implements domain.VerificationService
func (s *VerificationServiceImpl) SendCode(ctx context.Context, sessionID, phone string) error {
	codeKey := fmt.Sprintf("verify:%s:%s", phone, sessionID)
	resendKey := fmt.Sprintf("verify:res:%s", phone)
	attemptsKey := fmt.Sprintf("verify:att:%s:%s", phone, sessionID)

	// Check resend throttle
	if canResend, waitTime, _ := s.CanResend(ctx, phone); !canResend {
		return fmt.Errorf("%w: wait %d seconds", domain.ErrCodeResendLimit, waitTime)
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	// Store code in Redis with TTL
	if err := s.redisClient.Set(ctx, codeKey, code, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification code in Redis: %w", err)
	}

	// Initialize attempts counter
	if err := s.redisClient.Set(ctx, attemptsKey, 0, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to initialize attempts counter: %w", err)
	}

	// Set resend throttle
	if err := s.redisClient.Set(ctx, resendKey, 1, s.config.ResendWindow).Err(); err != nil {
		return fmt.Errorf("failed to set resend throttle: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes()))
	if err := s.notificationSvc.SendSMS(phone, message); err != nil {
		// Clean up Redis entries if SMS fails
		s.redisClient.Del(ctx, codeKey, attemptsKey, resendKey)
		return fmt.Errorf("failed to send verification SMS: %w", err)
	}

	return nil
}

// VerifyCode implements domain.VerificationService
func (s *VerificationServiceImpl) VerifyCode(ctx context.Context, sessionID, phone, code string) (bool, error) {
	codeKey := fmt.Sprintf("verify:%s:%s", phone, sessionID)
	attemptsKey := fmt.Sprintf("verify:att:%s:%s", phone, sessionID)

	// Increment attempts counter atomically
	attempts, err := s.redisClient.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment attempts: %w", err)
	}

	if attempts > int64(s.config.MaxAttempts) {
		s.redisClient.Del(ctx, codeKey, attemptsKey)
		return false, domain.ErrCodeMaxAttempts
	}

	storedCode, err := s.redisClient.Get(ctx, codeKey).Result()
	if err == redis.Nil {
		return false, domain.ErrCodeNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to get verification code from Redis: %w", err)
	}

	if storedCode != code {
		return false, domain.ErrCodeInvalid
	}

	// Success - clean up Redis entries
	s.redisClient.Del(ctx, codeKey, attemptsKey)

	return true, nil
}

// CanResend implements domain.VerificationService with Redis-based throttling
func (s *VerificationServiceImpl) CanResend(ctx context.Context, phone string) (bool, int64, error) {
	resendKey := fmt.Sprintf("verify:res:%s", phone)

	ttl, err := s.redisClient.TTL(ctx, resendKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check resend TTL: %w", err)
	}

	// If TTL <= 0, key doesn't exist or has expired - can resend
	if ttl <= 0 {
		return true, 0, nil
	}

	return false, int64(ttl.Seconds()), nil
}

// generateSecureCode generates a cryptographically secure numeric code
func (s *VerificationServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}
