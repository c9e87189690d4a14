package domain

import (
	"errors"
	"testing"
	"time"
)

func validStepData(t *testing.T) StepData {
	t.Helper()
	now := time.Now().UTC()
	return StepData{
		Business:     &BusinessInfo{CompanyName: "Acme", Industry: "retail"},
		Integration:  &ChannelConfig{Provider: "whatsapp", BusinessPhone: "+34600000000"},
		Verification: &PhoneVerification{PhoneNumber: "+34600000000", Verified: true, VerifiedAt: &now},
		BotSetup:     &BotConfig{BotName: "support-bot"},
		Testing:      &TestingResults{MessageSent: true, MessageDelivered: true, TestedAt: &now},
	}
}

func TestStepDataValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StepData)
		wantErr error
	}{
		{"all valid", func(d *StepData) {}, nil},
		{"business missing company", func(d *StepData) { d.Business.CompanyName = "" }, ErrInvalidBusiness},
		{"business missing industry", func(d *StepData) { d.Business.Industry = " " }, ErrInvalidBusiness},
		{"channel missing provider", func(d *StepData) { d.Integration.Provider = "" }, ErrInvalidChannel},
		{"channel missing phone", func(d *StepData) { d.Integration.BusinessPhone = "" }, ErrInvalidChannel},
		{"verification missing phone", func(d *StepData) { d.Verification.PhoneNumber = "" }, ErrInvalidPhone},
		{"verified without timestamp", func(d *StepData) { d.Verification.VerifiedAt = nil }, ErrInvalidPhone},
		{"bot missing name", func(d *StepData) { d.BotSetup.BotName = "" }, ErrInvalidBotConfig},
		{"delivered without sent", func(d *StepData) { d.Testing.MessageSent = false }, ErrInvalidTestResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validStepData(t)
			tt.mutate(&data)
			err := data.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStepDataComplete(t *testing.T) {
	data := validStepData(t)
	if !data.Complete() {
		t.Error("expected complete step data to report complete")
	}

	partial := validStepData(t)
	partial.Testing = nil
	if partial.Complete() {
		t.Error("expected missing payload to report incomplete")
	}

	invalid := validStepData(t)
	invalid.BotSetup.BotName = ""
	if invalid.Complete() {
		t.Error("expected invalid payload to report incomplete")
	}
}

func TestStepDataMerge(t *testing.T) {
	base := StepData{
		Business: &BusinessInfo{CompanyName: "Acme", Industry: "retail"},
	}
	patch := StepData{
		Business:    &BusinessInfo{CompanyName: "Acme Corp", Industry: "retail"},
		Integration: &ChannelConfig{Provider: "whatsapp", BusinessPhone: "+34600000000"},
	}

	merged := base.Merge(patch)

	if merged.Business.CompanyName != "Acme Corp" {
		t.Errorf("expected patch to win, got %q", merged.Business.CompanyName)
	}
	if merged.Integration == nil {
		t.Error("expected new payload to be added")
	}

	// Merge must not alias the operands.
	merged.Business.CompanyName = "mutated"
	if base.Business.CompanyName != "Acme" {
		t.Error("merge aliased the base payload")
	}
	if patch.Business.CompanyName != "Acme Corp" {
		t.Error("merge aliased the patch payload")
	}

	// Absent steps in the patch keep the existing payload.
	empty := merged.Merge(StepData{})
	if empty.Business == nil || empty.Integration == nil {
		t.Error("expected existing payloads to survive an empty patch")
	}
}
