package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bankcards/internal/apperr"
)

var cardNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)

// ValidateCardNumber checks the raw card number format: exactly 16 digits.
func ValidateCardNumber(number string) error {
	if !cardNumberPattern.MatchString(number) {
		return apperr.Validationf("card number must be exactly 16 digits")
	}
	return nil
}

// ValidateHolder checks the cardholder display name length.
func ValidateHolder(holder string) error {
	if l := len(strings.TrimSpace(holder)); l < 2 || l > 100 {
		return apperr.Validationf("holder name must be between 2 and 100 characters")
	}
	return nil
}

// CardStatus is the lifecycle state of a card. EXPIRED is terminal.
type CardStatus string

const (
	StatusActive  CardStatus = "ACTIVE"
	StatusBlocked CardStatus = "BLOCKED"
	StatusExpired CardStatus = "EXPIRED"
)

// statusDisplayNames maps statuses to their presentation form. Kept outside
// the status type so the entity stays a plain tagged value.
var statusDisplayNames = map[CardStatus]string{
	StatusActive:  "Active",
	StatusBlocked: "Blocked",
	StatusExpired: "Expired",
}

// DisplayName returns the human-readable form of a status.
func DisplayName(s CardStatus) string {
	return statusDisplayNames[s]
}

// ParseCardStatus converts user input to a CardStatus, case-insensitively.
func ParseCardStatus(text string) (CardStatus, error) {
	switch CardStatus(strings.ToUpper(strings.TrimSpace(text))) {
	case StatusActive:
		return StatusActive, nil
	case StatusBlocked:
		return StatusBlocked, nil
	case StatusExpired:
		return StatusExpired, nil
	}
	return "", apperr.Validationf("unknown card status %q", text)
}

// Card represents a bank card. NumberEncrypted holds the ciphertext of the
// card number; plaintext is never stored.
type Card struct {
	ID              int64           `json:"id"`
	NumberEncrypted string          `json:"-"`
	Holder          string          `json:"holder"`
	Expiry          string          `json:"expiry"` // MM/YY
	Status          CardStatus      `json:"status"`
	Balance         decimal.Decimal `json:"balance"`
	UserID          int64           `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CardResponse is the external representation of a card. The number is
// always masked.
type CardResponse struct {
	ID                int64           `json:"id"`
	MaskedNumber      string          `json:"masked_number"`
	Holder            string          `json:"holder"`
	Expiry            string          `json:"expiry"`
	Status            CardStatus      `json:"status"`
	StatusDisplayName string          `json:"status_display_name"`
	Balance           decimal.Decimal `json:"balance"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CardPage is one page of card responses.
type CardPage struct {
	Content       []CardResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int            `json:"total_pages"`
}
