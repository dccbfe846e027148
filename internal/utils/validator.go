package utils

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) bool {
	return len(password) >= 8
}

// SanitizeEmail lower-cases and trims an email address. Stored emails
// are always sanitized so lookups stay case-insensitive.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
