// Package seed creates demo users and cards at startup for local
// development. Enabled via SEED_DEMO_DATA.
package seed

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"bankcards/internal/apperr"
	"bankcards/internal/crypto"
	"bankcards/internal/models"
	"bankcards/internal/service"
	"bankcards/internal/utils"
)

// Run populates demo data: one regular user, one admin, and three cards for
// the regular user. Safe to call repeatedly; existing records are kept.
func Run(ctx context.Context, logger *logrus.Logger, users service.UserStore, auth *service.AuthService, cards *service.CardService, cipher *crypto.Cipher) error {
	demoUser, err := ensureUser(ctx, users, auth, "testuser", "test@example.com", "password123", models.RoleUser)
	if err != nil {
		return err
	}
	if _, err := ensureUser(ctx, users, auth, "cardadmin", "admin@cards.example.com", "admin123", models.RoleAdmin); err != nil {
		return err
	}

	for i := 0; i < 3; i++ {
		number, err := utils.GenerateCardNumber("4000", 16)
		if err != nil {
			return err
		}
		// Issue expects plaintext; a value that already decodes under the
		// process key would be double-encoded.
		if cipher.IsEncrypted(number) {
			logger.WithField("number", cipher.Mask(number)).Warn("Skipping already-encoded demo number")
			continue
		}

		_, err = cards.Issue(ctx, service.IssueRequest{
			Number: number,
			Holder: demoUser.Username,
			Expiry: utils.GenerateExpiryDate(2 + i),
			UserID: demoUser.ID,
		})
		if errors.Is(err, apperr.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}
	}

	logger.Info("Demo data seeded")
	return nil
}

func ensureUser(ctx context.Context, users service.UserStore, auth *service.AuthService, username, emailAddr, password string, role models.Role) (*models.User, error) {
	exists, err := users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return users.FindByUsername(ctx, username)
	}
	return auth.Register(ctx, username, emailAddr, password, role)
}
