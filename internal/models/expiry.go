package models

import (
	"regexp"
	"time"

	"bankcards/internal/apperr"
)

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)

// ValidateExpiry checks that the value is a well-formed MM/YY expiry.
func ValidateExpiry(expiry string) error {
	if !expiryPattern.MatchString(expiry) {
		return apperr.Validationf("expiry must be in MM/YY format, got %q", expiry)
	}
	return nil
}

// ExpiryEnd returns the first instant after the last calendar day of the
// expiry month, in UTC. A card is expired once the current time reaches it.
func ExpiryEnd(expiry string) (time.Time, error) {
	if err := ValidateExpiry(expiry); err != nil {
		return time.Time{}, err
	}
	monthStart, err := time.Parse("01/06", expiry)
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid expiry %q: %v", expiry, err)
	}
	return monthStart.AddDate(0, 1, 0), nil
}

// IsExpired reports whether the card's expiry month has fully passed.
// Malformed expiry values count as expired so a corrupt row can never pass
// an eligibility check.
func IsExpired(expiry string, now time.Time) bool {
	end, err := ExpiryEnd(expiry)
	if err != nil {
		return true
	}
	return !now.Before(end)
}

// RefreshStatus recomputes the card status against the wall clock. It is
// pure: it returns the status the card should have and whether that differs
// from the stored one, leaving persistence to the caller. The stored status
// is only a cache; eligibility checks must use the returned value.
func RefreshStatus(card *Card, now time.Time) (CardStatus, bool) {
	if card.Status == StatusExpired {
		return StatusExpired, false
	}
	if IsExpired(card.Expiry, now) {
		return StatusExpired, true
	}
	return card.Status, false
}
