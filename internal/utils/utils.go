package utils

import (
	"errors"
	"math"
	"strings"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var (
	// ErrEmptyPhone is returned when no phone number was supplied
	ErrEmptyPhone = errors.New("phone number is required")
	// ErrInvalidPhone is returned when the phone number has too few or too many digits
	ErrInvalidPhone = errors.New("phone number must contain 7 to 15 digits")
)

// NormalizePhone reduces a phone number to its digits so every spelling of the same
// number maps to one identity. An international "00" prefix is dropped like "+".
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyPhone
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if !strings.HasPrefix(raw, "+") && strings.HasPrefix(digits, "00") {
		digits = digits[2:]
	}

	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// MaskMSISDN hides the middle of a phone number for logging
func MaskMSISDN(msisdn string) string {
	if len(msisdn) <= 6 {
		return "***"
	}
	return msisdn[:3] + strings.Repeat("*", len(msisdn)-6) + msisdn[len(msisdn)-3:]
}

// NormalizeWeight converts a percentage (e.g. 12.5) into a probability mass clamped to [0,1]
func NormalizeWeight(percentage float64) float64 {
	if math.IsNaN(percentage) || percentage <= 0 {
		return 0
	}
	w := percentage / 100
	if w > 1 {
		return 1
	}
	return w
}
