package domain

import (
	"errors"
	"testing"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Email
		wantErr bool
	}{
		{"simple", "a@b.com", "a@b.com", false},
		{"normalizes case and whitespace", "  User@Example.COM ", "user@example.com", false},
		{"plus addressing", "user+tag@example.com", "user+tag@example.com", false},
		{"subdomain", "user@mail.example.co.uk", "user@mail.example.co.uk", false},
		{"empty", "", "", true},
		{"missing at", "userexample.com", "", true},
		{"missing domain", "user@", "", true},
		{"missing tld", "user@example", "", true},
		{"spaces inside", "us er@example.com", "", true},
		{"double at", "user@@example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEmail(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEmail) {
					t.Errorf("expected ErrInvalidEmail, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
