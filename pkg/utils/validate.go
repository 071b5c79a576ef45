// Package utils contains small helpers shared by the LicenseChain SDK and the
// applications embedding it: input validation, string shaping, timestamps,
// hashing, formatting, JSON and URL helpers.
package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ErrValidation is wrapped by every validation helper in this package.
var ErrValidation = errors.New("validation failed")

// LicenseKeyLength is the length of a LicenseChain license key.
const LicenseKeyLength = 32

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SupportedCurrencies lists the ISO 4217 codes accepted for product prices.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF", "CNY"}

// ValidateEmail reports whether email looks like an address (local@domain.tld).
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateLicenseKey reports whether key is exactly 32 letters or digits.
func ValidateLicenseKey(key string) bool {
	count := 0
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		count++
	}
	return count == LicenseKeyLength
}

// ValidateUUID reports whether value is an RFC 4122 UUID of version 1 through 5.
func ValidateUUID(value string) bool {
	// uuid.Parse also accepts urn and braced forms; only the canonical one is allowed here.
	if len(value) != 36 {
		return false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return false
	}
	version := id.Version()
	return version >= 1 && version <= 5 && id.Variant() == uuid.RFC4122
}

// ValidateAmount reports whether amount is a positive, finite number.
func ValidateAmount(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}

// ValidateCurrency reports whether currency is one of SupportedCurrencies (case-insensitive).
func ValidateCurrency(currency string) bool {
	upper := strings.ToUpper(currency)
	for _, c := range SupportedCurrencies {
		if c == upper {
			return true
		}
	}
	return false
}

// ValidateNotEmpty fails when value is empty after trimming whitespace.
func ValidateNotEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidation, fieldName)
	}
	return nil
}

// ValidatePositive fails when value is zero or negative.
func ValidatePositive(value float64, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrValidation, fieldName)
	}
	return nil
}

// ValidateRange fails when value lies outside [minValue, maxValue].
func ValidateRange(value, minValue, maxValue float64, fieldName string) error {
	if value < minValue || value > maxValue {
		return fmt.Errorf("%w: %s must be between %v and %v", ErrValidation, fieldName, minValue, maxValue)
	}
	return nil
}
