// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	emailRegex = regexp.MustCompile(`^\w+([.+-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)
)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	cleaned, ok := NormalizePhone(phone)
	return ok && cleaned != ""
}

// NormalizePhone strips separators so the number can be handed to a carrier.
// An empty input is valid and stays empty.
func NormalizePhone(phone string) (string, bool) {
	cleaned := phoneSeparators.Replace(strings.TrimSpace(phone))
	if cleaned == "" {
		return "", true
	}
	// Allows + prefix followed by up to 15 digits
	if !phoneRegex.MatchString(cleaned) {
		return "", false
	}
	return cleaned, true
}

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// CleanString trims surrounding whitespace and optionally lowercases.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
