package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// GenerateCardNumber generates a card number with the specified prefix and
// length, ending with a Luhn check digit. Used for demo data only; issued
// cards arrive with their numbers already assigned.
func GenerateCardNumber(prefix string, length int) (string, error) {
	if length <= len(prefix) || length > 19 {
		return "", fmt.Errorf("invalid card number length: %d", length)
	}

	digits := make([]byte, length-len(prefix)-1)
	if _, err := rand.Read(digits); err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(prefix)
	for _, b := range digits {
		builder.WriteByte(b%10 + '0')
	}
	body := builder.String()

	return body + string(luhnCheckDigit(body)+'0'), nil
}

// luhnCheckDigit computes the Luhn check digit for a digit string.
func luhnCheckDigit(body string) byte {
	sum := 0
	double := true
	for i := len(body) - 1; i >= 0; i-- {
		digit := int(body[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit = digit%10 + digit/10
			}
		}
		sum += digit
		double = !double
	}
	return byte((10 - sum%10) % 10)
}

// GenerateExpiryDate generates a card expiry date (MM/YY) the given number
// of years ahead.
func GenerateExpiryDate(yearsAhead int) string {
	t := time.Now().AddDate(yearsAhead, 0, 0)
	return fmt.Sprintf("%02d/%02d", int(t.Month()), t.Year()%100)
}
