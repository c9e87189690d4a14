package domain

import (
	"strings"
	"time"
)

// BusinessInfo is the payload collected at the business step.
type BusinessInfo struct {
	CompanyName   string `json:"company_name"`
	Industry      string `json:"industry"`
	EmployeeRange string `json:"employee_range,omitempty"`
	Website       string `json:"website,omitempty"`
	Country       string `json:"country,omitempty"`
}

func (b BusinessInfo) Validate() error {
	if strings.TrimSpace(b.CompanyName) == "" || strings.TrimSpace(b.Industry) == "" {
		return ErrInvalidBusiness
	}
	return nil
}

// ChannelConfig is the messaging-channel integration payload.
type ChannelConfig struct {
	Provider          string `json:"provider"`
	BusinessPhone     string `json:"business_phone"`
	BusinessAccountID string `json:"business_account_id,omitempty"`
	WebhookURL        string `json:"webhook_url,omitempty"`
}

func (c ChannelConfig) Validate() error {
	if strings.TrimSpace(c.Provider) == "" || strings.TrimSpace(c.BusinessPhone) == "" {
		return ErrInvalidChannel
	}
	return nil
}

// PhoneVerification records the outcome of the verification step.
type PhoneVerification struct {
	PhoneNumber string     `json:"phone_number"`
	Verified    bool       `json:"verified"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

func (p PhoneVerification) Validate() error {
	if strings.TrimSpace(p.PhoneNumber) == "" {
		return ErrInvalidPhone
	}
	if p.Verified && p.VerifiedAt == nil {
		return ErrInvalidPhone
	}
	return nil
}

// BotConfig is the bot-setup payload.
type BotConfig struct {
	BotName        string `json:"bot_name"`
	WelcomeMessage string `json:"welcome_message,omitempty"`
	Language       string `json:"language,omitempty"`
	AutoReply      bool   `json:"auto_reply"`
}

func (b BotConfig) Validate() error {
	if strings.TrimSpace(b.BotName) == "" {
		return ErrInvalidBotConfig
	}
	return nil
}

// TestingResults is the testing-step payload.
type TestingResults struct {
	MessageSent      bool       `json:"message_sent"`
	MessageDelivered bool       `json:"message_delivered"`
	TestedAt         *time.Time `json:"tested_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

func (t TestingResults) Validate() error {
	if t.MessageDelivered && !t.MessageSent {
		return ErrInvalidTestResults
	}
	return nil
}

// StepData is the sparse per-step payload mapping. Fields are nil until the
// corresponding step submits data; updates go through Merge and are additive.
type StepData struct {
	Business     *BusinessInfo      `json:"business,omitempty"`
	Integration  *ChannelConfig     `json:"integration,omitempty"`
	Verification *PhoneVerification `json:"verification,omitempty"`
	BotSetup     *BotConfig         `json:"bot_setup,omitempty"`
	Testing      *TestingResults    `json:"testing,omitempty"`
}

// Merge overlays patch onto d, shallow per step: a step payload present in
// patch wins wholesale, absent steps keep their existing payload.
func (d StepData) Merge(patch StepData) StepData {
	out := d.clone()
	if patch.Business != nil {
		b := *patch.Business
		out.Business = &b
	}
	if patch.Integration != nil {
		c := *patch.Integration
		out.Integration = &c
	}
	if patch.Verification != nil {
		v := *patch.Verification
		out.Verification = &v
	}
	if patch.BotSetup != nil {
		b := *patch.BotSetup
		out.BotSetup = &b
	}
	if patch.Testing != nil {
		t := *patch.Testing
		out.Testing = &t
	}
	return out
}

// Validate checks every payload that is present.
func (d StepData) Validate() error {
	if d.Business != nil {
		if err := d.Business.Validate(); err != nil {
			return err
		}
	}
	if d.Integration != nil {
		if err := d.Integration.Validate(); err != nil {
			return err
		}
	}
	if d.Verification != nil {
		if err := d.Verification.Validate(); err != nil {
			return err
		}
	}
	if d.BotSetup != nil {
		if err := d.BotSetup.Validate(); err != nil {
			return err
		}
	}
	if d.Testing != nil {
		if err := d.Testing.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Complete reports whether every step has submitted a valid payload.
func (d StepData) Complete() bool {
	if d.Business == nil || d.Integration == nil || d.Verification == nil ||
		d.BotSetup == nil || d.Testing == nil {
		return false
	}
	return d.Validate() == nil
}

func (d StepData) clone() StepData {
	out := StepData{}
	if d.Business != nil {
		b := *d.Business
		out.Business = &b
	}
	if d.Integration != nil {
		c := *d.Integration
		out.Integration = &c
	}
	if d.Verification != nil {
		v := *d.Verification
		out.Verification = &v
	}
	if d.BotSetup != nil {
		b := *d.BotSetup
		out.BotSetup = &b
	}
	if d.Testing != nil {
		t := *d.Testing
		out.Testing = &t
	}
	return out
}
