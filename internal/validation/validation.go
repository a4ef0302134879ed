// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidatePassword checks length and character mix. The upper bound is
// bcrypt's input limit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 72 {
		return fmt.Errorf("password must not exceed 72 bytes")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// NormalizeGender lowercases and checks a gender value.
func NormalizeGender(gender string) (string, error) {
	g := strings.ToLower(strings.TrimSpace(gender))
	switch g {
	case "male", "female", "other":
		return g, nil
	}
	return "", fmt.Errorf("gender must be one of male, female, other")
}

// ParseBirthdate accepts a calendar date (2006-01-02) or an RFC 3339
// timestamp, keeps only the UTC calendar date and requires it to lie
// before now.
func ParseBirthdate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("birthdate must be a date in YYYY-MM-DD format")
		}
	}
	y, m, d := t.UTC().Date()
	t = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if !t.Before(now) {
		return time.Time{}, fmt.Errorf("birthdate must be in the past")
	}
	if now.Year()-t.Year() > 150 {
		return time.Time{}, fmt.Errorf("birthdate is too far in the past")
	}
	return t, nil
}

// ValidateRating checks the 0–10 rating scale.
func ValidateRating(rating int) error {
	if rating < 0 || rating > 10 {
		return fmt.Errorf("rating must be an integer between 0 and 10")
	}
	return nil
}
