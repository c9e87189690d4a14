package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// Email is a validated, normalized email address.
type Email string

// NewEmail validates and normalizes an email address. The address is trimmed
// and lowercased before validation.
func NewEmail(raw string) (Email, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if addr == "" || len(addr) > 254 || !emailPattern.MatchString(addr) {
		return "", ErrInvalidEmail
	}
	return Email(addr), nil
}

func (e Email) String() string { return string(e) }
