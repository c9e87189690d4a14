package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjpedrosa/caetaria-sub000/domain"
)

// TestOnboardingFlow_CompleteWizard walks the whole funnel end to end:
// start -> business -> integration -> verification (with SMS code) ->
// bot-setup -> testing -> complete.
func TestOnboardingFlow_CompleteWizard(t *testing.T) {
	env := NewTestEnv(t)

	code, data := env.PostJSON(t, "/onboarding/start", map[string]any{
		"email":             "founder@startup.io",
		"conversion_source": "landing_page",
	})
	require.Equal(t, http.StatusCreated, code, "start should succeed: %v", data)

	sessionID, _ := data["id"].(string)
	recoveryToken, _ := data["recovery_token"].(string)
	require.NotEmpty(t, sessionID)
	require.NotEmpty(t, recoveryToken, "the start response must disclose the recovery token")

	advance := func(next string, stepData map[string]any) map[string]any {
		t.Helper()
		body := map[string]any{"next_step": next}
		if stepData != nil {
			body["step_data"] = stepData
		}
		code, data := env.PostJSON(t, "/onboarding/sessions/"+sessionID+"/advance", body)
		require.Equal(t, http.StatusOK, code, "advance to %s: %v", next, data)
		return data
	}

	advance("business", map[string]any{
		"business": map[string]any{
			"company_name": "Startup Inc",
			"industry":     "retail",
		},
	})
	advance("integration", map[string]any{
		"integration": map[string]any{
			"provider":       "whatsapp",
			"business_phone": "+34600123456",
		},
	})
	data = advance("verification", nil)
	assert.Equal(t, "verification", data["current_step"])

	// Request a verification code and fish it out of Redis, the way the SMS
	// recipient would read it off their phone.
	const phone = "+34600123456"
	code, data = env.PostJSON(t, "/onboarding/sessions/"+sessionID+"/verification/send", map[string]any{
		"phone": phone,
	})
	require.Equal(t, http.StatusOK, code, "send code: %v", data)
	require.Len(t, env.SMS.SentSMS, 1, "one SMS should have been sent")

	otp, err := env.Redis.Get(context.Background(), fmt.Sprintf("verify:%s:%s", phone, sessionID)).Result()
	require.NoError(t, err, "code should be stored in Redis")
	assert.Regexp(t, `^\d{6}$`, otp, "code should be 6 digits")

	code, data = env.PostJSON(t, "/onboarding/sessions/"+sessionID+"/verification/verify", map[string]any{
		"phone": phone,
		"code":  otp,
	})
	require.Equal(t, http.StatusOK, code, "verify code: %v", data)
	assert.Equal(t, "bot-setup", data["current_step"], "verification should advance the session")

	advance("testing", map[string]any{
		"bot_setup": map[string]any{"bot_name": "support-bot"},
	})
	advance("complete", map[string]any{
		"testing": map[string]any{
			"message_sent":      true,
			"message_delivered": true,
			"tested_at":         time.Now().UTC().Format(time.RFC3339),
		},
	})

	// The completed session reports full progress.
	code, data = env.GetJSON(t, "/onboarding/sessions/"+sessionID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(domain.StatusCompleted), data["status"])
	assert.EqualValues(t, 100, data["progress"])

	// Completing again is idempotent.
	code, _ = env.PostJSON(t, "/onboarding/sessions/"+sessionID+"/complete", nil)
	assert.Equal(t, http.StatusOK, code, "re-complete should be a no-op, not an error")

	// Analytics sees the conversion.
	code, data = env.GetJSON(t, "/onboarding/analytics")
	require.Equal(t, http.StatusOK, code)
	report, ok := data["report"].(map[string]any)
	require.True(t, ok, "expected an analytics report, got %v", data)
	assert.EqualValues(t, 1, report["completed_sessions"])
	assert.EqualValues(t, 100, report["conversion_rate"])
}

func TestOnboardingFlow_SkippingAStepFails(t *testing.T) {
	env := NewTestEnv(t)

	code, data := env.PostJSON(t, "/onboarding/start", map[string]any{"email": "hasty@startup.io"})
	require.Equal(t, http.StatusCreated, code)
	sessionID, _ := data["id"].(string)

	code, _ = env.PostJSON(t, "/onboarding/sessions/"+sessionID+"/advance", map[string]any{
		"next_step": "integration",
	})
	assert.Equal(t, http.StatusBadRequest, code, "skipping the business step should be rejected")
}

func TestOnboardingFlow_PauseAndRecover(t *testing.T) {
	env := NewTestEnv(t)

	code, data := env.PostJSON(t, "/onboarding/start", map[string]any{"email": "away@startup.io"})
	require.Equal(t, http.StatusCreated, code)
	sessionID, _ := data["id"].(string)
	recoveryToken, _ := data["recovery_token"].(string)

	code, _ = env.PostJSON(t, "/onboarding/sessions/"+sessionID+"/pause", map[string]any{"reason": "weekend"})
	require.Equal(t, http.StatusOK, code)

	// Let the session expire behind the user's back.
	expired := time.Now().UTC().Add(-time.Hour)
	err := env.DB.Table("onboarding_sessions").
		Where("id = ?", sessionID).
		Update("expires_at", expired).Error
	require.NoError(t, err)

	code, data = env.PostJSON(t, "/onboarding/recover", map[string]any{"recovery_token": recoveryToken})
	require.Equal(t, http.StatusOK, code, "recovery should revive the expired session: %v", data)
	assert.Equal(t, true, data["was_expired"])
	assert.Equal(t, true, data["was_extended"])

	session, ok := data["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(domain.StatusInProgress), session["status"], "recovery should resume a paused session")
}

func TestOnboardingFlow_StartReusesActiveSession(t *testing.T) {
	env := NewTestEnv(t)

	_, first := env.PostJSON(t, "/onboarding/start", map[string]any{"email": "repeat@startup.io"})
	_, second := env.PostJSON(t, "/onboarding/start", map[string]any{"email": "repeat@startup.io"})

	assert.Equal(t, first["id"], second["id"], "an in-progress session should be reused")
}
