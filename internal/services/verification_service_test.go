package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fjpedrosa/caetaria-sub000/domain"
	"github.com/fjpedrosa/caetaria-sub000/internal/mocks"
)

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() {
		mr.Close()
	})

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func testVerificationConfig() VerificationConfig {
	return VerificationConfig{
		Length:       6,
		TTL:          5 * time.Minute,
		MaxAttempts:  3,
		ResendWindow: 60 * time.Second,
	}
}

func TestVerificationServiceImpl_SendCode(t *testing.T) {
	const (
		sessionID = "session-1"
		phone     = "+34600000001"
	)

	t.Run("stores code and sends SMS", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		notificationSvc := mocks.NewMockNotificationService()
		svc := NewVerificationService(notificationSvc, client, testVerificationConfig())

		if err := svc.SendCode(context.Background(), sessionID, phone); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx := context.Background()
		codeKey := fmt.Sprintf("verify:%s:%s", phone, sessionID)
		code, err := client.Get(ctx, codeKey).Result()
		if err != nil {
			t.Fatalf("expected code stored in redis: %v", err)
		}
		if len(code) != 6 {
			t.Errorf("expected a 6-digit code, got %q", code)
		}
		if ttl := client.TTL(ctx, codeKey).Val(); ttl <= 0 {
			t.Error("expected a TTL on the code key")
		}
		if len(notificationSvc.SentSMS) != 1 {
			t.Fatalf("expected one SMS, got %d", len(notificationSvc.SentSMS))
		}
		if notificationSvc.SentSMS[0].To != phone {
			t.Errorf("expected SMS to %s, got %s", phone, notificationSvc.SentSMS[0].To)
		}
	})

	t.Run("second send inside the resend window is throttled", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		svc := NewVerificationService(mocks.NewMockNotificationService(), client, testVerificationConfig())

		if err := svc.SendCode(context.Background(), sessionID, phone); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := svc.SendCode(context.Background(), sessionID, phone)
		if !errors.Is(err, domain.ErrCodeResendLimit) {
			t.Fatalf("expected ErrCodeResendLimit, got %v", err)
		}
	})

	t.Run("SMS failure cleans up redis state", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		notificationSvc := mocks.NewMockNotificationService()
		notificationSvc.SendSMSFunc = func(to, message string) error {
			return errors.New("carrier unavailable")
		}
		svc := NewVerificationService(notificationSvc, client, testVerificationConfig())

		if err := svc.SendCode(context.Background(), sessionID, phone); err == nil {
			t.Fatal("expected an error")
		}

		ctx := context.Background()
		codeKey := fmt.Sprintf("verify:%s:%s", phone, sessionID)
		if exists := client.Exists(ctx, codeKey).Val(); exists != 0 {
			t.Error("expected code key removed after SMS failure")
		}
		// Throttle must be cleared too so the user can retry immediately.
		canResend, _, err := svc.CanResend(ctx, phone)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !canResend {
			t.Error("expected resend allowed after cleanup")
		}
	})
}

func TestVerificationServiceImpl_VerifyCode(t *testing.T) {
	const (
		sessionID = "session-1"
		phone     = "+34600000001"
	)

	sendAndReadCode := func(t *testing.T, svc domain.VerificationService, client *redis.Client) string {
		t.Helper()
		if err := svc.SendCode(context.Background(), sessionID, phone); err != nil {
			t.Fatalf("send: %v", err)
		}
		codeKey := fmt.Sprintf("verify:%s:%s", phone, sessionID)
		code, err := client.Get(context.Background(), codeKey).Result()
		if err != nil {
			t.Fatalf("read code: %v", err)
		}
		return code
	}

	t.Run("correct code verifies and cleans up", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		svc := NewVerificationService(mocks.NewMockNotificationService(), client, testVerificationConfig())
		code := sendAndReadCode(t, svc, client)

		ok, err := svc.VerifyCode(context.Background(), sessionID, phone, code)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("expected verification to succeed")
		}

		// The code must be single-use.
		_, err = svc.VerifyCode(context.Background(), sessionID, phone, code)
		if !errors.Is(err, domain.ErrCodeNotFound) {
			t.Fatalf("expected ErrCodeNotFound on reuse, got %v", err)
		}
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		svc := NewVerificationService(mocks.NewMockNotificationService(), client, testVerificationConfig())
		sendAndReadCode(t, svc, client)

		ok, err := svc.VerifyCode(context.Background(), sessionID, phone, "000000")
		if ok {
			t.Error("expected verification to fail")
		}
		if !errors.Is(err, domain.ErrCodeInvalid) {
			t.Fatalf("expected ErrCodeInvalid, got %v", err)
		}
	})

	t.Run("attempts are capped", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		svc := NewVerificationService(mocks.NewMockNotificationService(), client, testVerificationConfig())
		code := sendAndReadCode(t, svc, client)

		for i := 0; i < 3; i++ {
			if _, err := svc.VerifyCode(context.Background(), sessionID, phone, "000000"); !errors.Is(err, domain.ErrCodeInvalid) {
				t.Fatalf("attempt %d: expected ErrCodeInvalid, got %v", i+1, err)
			}
		}

		// Fourth attempt exceeds the cap, even with the right code.
		_, err := svc.VerifyCode(context.Background(), sessionID, phone, code)
		if !errors.Is(err, domain.ErrCodeMaxAttempts) {
			t.Fatalf("expected ErrCodeMaxAttempts, got %v", err)
		}
	})

	t.Run("expired code is gone", func(t *testing.T) {
		client, mr := setupTestRedis(t)
		svc := NewVerificationService(mocks.NewMockNotificationService(), client, testVerificationConfig())
		code := sendAndReadCode(t, svc, client)

		mr.FastForward(6 * time.Minute)

		_, err := svc.VerifyCode(context.Background(), sessionID, phone, code)
		if !errors.Is(err, domain.ErrCodeNotFound) {
			t.Fatalf("expected ErrCodeNotFound, got %v", err)
		}
	})
}

func TestVerificationServiceImpl_CanResend(t *testing.T) {
	client, mr := setupTestRedis(t)
	svc := NewVerificationService(mocks.NewMockNotificationService(), client, testVerificationConfig())
	ctx := context.Background()

	canResend, wait, err := svc.CanResend(ctx, "+34600000002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !canResend || wait != 0 {
		t.Errorf("expected resend allowed before any send, got %v/%d", canResend, wait)
	}

	if err := svc.SendCode(ctx, "session-2", "+34600000002"); err != nil {
		t.Fatalf("send: %v", err)
	}

	canResend, wait, err = svc.CanResend(ctx, "+34600000002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canResend {
		t.Error("expected resend throttled right after a send")
	}
	if wait <= 0 || wait > 60 {
		t.Errorf("expected wait within the resend window, got %d", wait)
	}

	mr.FastForward(61 * time.Second)

	canResend, _, err = svc.CanResend(ctx, "+34600000002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !canResend {
		t.Error("expected resend allowed after the window elapsed")
	}
}
