package models

import (
	"time"

	"github.com/shopspring/decimal"

	"bankcards/internal/apperr"
)

// ValidateTransferAmount rejects non-positive transfer amounts.
func ValidateTransferAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return apperr.Validationf("transfer amount must be positive")
	}
	return nil
}

// ValidateTransfer applies the transfer preconditions to two already-resolved
// cards of the same owner. Checks run in a fixed order and the first failure
// wins: self-transfer, source status, destination status, solvency. Statuses
// are recomputed against now so a stale stored EXPIRED/ACTIVE cannot leak
// through an eligibility check.
func ValidateTransfer(from, to *Card, amount decimal.Decimal, now time.Time) error {
	if from.ID == to.ID {
		return apperr.Validationf("cannot transfer to the same card")
	}
	if status, _ := RefreshStatus(from, now); status != StatusActive {
		return apperr.IneligibleStatef("source card is %s", DisplayName(status))
	}
	if status, _ := RefreshStatus(to, now); status != StatusActive {
		return apperr.IneligibleStatef("destination card is %s", DisplayName(status))
	}
	if from.Balance.LessThan(amount) {
		return apperr.ErrInsufficientFunds
	}
	return nil
}
