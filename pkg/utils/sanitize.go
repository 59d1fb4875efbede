package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	emailPattern   = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
)

// SanitizeString trims input and strips markup and control characters.
func SanitizeString(input string) string {
	return removeControlChars(stripHTML(strings.TrimSpace(input)))
}

// SanitizeEmail sanitizes email input
func SanitizeEmail(email string) string {
	// Convert to lowercase and trim
	email = strings.ToLower(strings.TrimSpace(email))

	// Remove any HTML tags
	email = stripHTML(email)

	// Remove any control characters
	email = removeControlChars(email)

	return email
}

// DigitsOnly keeps the decimal digits of a phone-like input.
func DigitsOnly(input string) string {
	var result strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SanitizeText sanitizes multi-line text input
func SanitizeText(input string) string {
	trimmed := strings.TrimSpace(stripHTML(input))

	// Remove any control characters except newlines and tabs
	var result strings.Builder
	for _, r := range trimmed {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// stripHTML removes HTML tags from string
func stripHTML(input string) string {
	return htmlTagPattern.ReplaceAllString(input, "")
}

// removeControlChars removes control characters from string
func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || r == ' ' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
