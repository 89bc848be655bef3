package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bankcards/internal/apperr"
	"bankcards/internal/crypto"
	"bankcards/internal/models"
	"bankcards/internal/utils/email"
)

// CardStore is the persistence surface the card service needs.
type CardStore interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Card, error)
	ExistsByNumber(ctx context.Context, numberEncrypted string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status models.CardStatus) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, userID *int64, page, size int, sortBy, direction string) ([]models.Card, int64, error)
	Transfer(ctx context.Context, ownerID, fromID, toID int64, amount decimal.Decimal) error
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CardService handles card issuance, lifecycle and transfers
type CardService struct {
	cards  CardStore
	users  UserStore
	cipher *crypto.Cipher
	email  *email.Sender
	logger *logrus.Logger
}

// NewCardService initializes a new card service
func NewCardService(cards CardStore, users UserStore, cipher *crypto.Cipher, sender *email.Sender, logger *logrus.Logger) *CardService {
	return &CardService{
		cards:  cards,
		users:  users,
		cipher: cipher,
		email:  sender,
		logger: logger,
	}
}

// IssueRequest carries the fields needed to issue a card.
type IssueRequest struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"` // MM/YY
	UserID int64  `json:"user_id"`
}

// Issue creates a new active card with a zero balance for the given user.
// Privileged operation.
func (s *CardService) Issue(ctx context.Context, req IssueRequest) (*models.CardResponse, error) {
	if err := models.ValidateCardNumber(req.Number); err != nil {
		return nil, err
	}
	if err := models.ValidateHolder(req.Holder); err != nil {
		return nil, err
	}
	if err := models.ValidateExpiry(req.Expiry); err != nil {
		return nil, err
	}
	if models.IsExpired(req.Expiry, time.Now()) {
		return nil, apperr.Validationf("expiry date is in the past")
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	encrypted, err := s.cipher.Encrypt(req.Number)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encrypt card number")
		return nil, err
	}

	exists, err := s.cards.ExistsByNumber(ctx, encrypted)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflictf("card with this number already exists")
	}

	card := &models.Card{
		NumberEncrypted: encrypted,
		Holder:          req.Holder,
		Expiry:          req.Expiry,
		Status:          models.StatusActive,
		Balance:         decimal.Zero,
		UserID:          req.UserID,
	}

	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"card_id": card.ID,
		"user_id": card.UserID,
	}).Info("Card issued")
	return s.toResponse(card), nil
}

// ListOwned returns one page of the owner's cards.
func (s *CardService) ListOwned(ctx context.Context, ownerID int64, page, size int, sortBy, direction string) (*models.CardPage, error) {
	return s.list(ctx, &ownerID, page, size, sortBy, direction)
}

// ListAll returns one page across all cards. Privileged operation.
func (s *CardService) ListAll(ctx context.Context, page, size int, sortBy, direction string) (*models.CardPage, error) {
	return s.list(ctx, nil, page, size, sortBy, direction)
}

func (s *CardService) list(ctx context.Context, ownerID *int64, page, size int, sortBy, direction string) (*models.CardPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	cards, total, err := s.cards.List(ctx, ownerID, page, size, sortBy, direction)
	if err != nil {
		return nil, err
	}

	content := make([]models.CardResponse, 0, len(cards))
	for i := range cards {
		s.refreshExpiry(ctx, &cards[i])
		content = append(content, *s.toResponse(&cards[i]))
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &models.CardPage{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// GetOwned returns one of the owner's cards. A foreign card is reported as
// not found.
func (s *CardService) GetOwned(ctx context.Context, ownerID, cardID int64) (*models.CardResponse, error) {
	card, err := s.cards.GetByIDAndUser(ctx, cardID, ownerID)
	if err != nil {
		return nil, err
	}
	s.refreshExpiry(ctx, card)
	return s.toResponse(card), nil
}

// GetNumber decrypts a card number. Privileged operation; the only exposed
// path that returns plaintext.
func (s *CardService) GetNumber(ctx context.Context, cardID int64) (string, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return "", err
	}
	number, err := s.cipher.Decrypt(card.NumberEncrypted)
	if err != nil {
		s.logger.WithError(err).WithField("card_id", cardID).Error("Failed to decrypt card number")
		return "", err
	}
	s.logger.WithField("card_id", cardID).Warn("Card number decrypted for privileged caller")
	return number, nil
}

// RequestBlock is the owner's self-service block: ACTIVE -> BLOCKED.
func (s *CardService) RequestBlock(ctx context.Context, ownerID, cardID int64) (*models.CardResponse, error) {
	card, err := s.cards.GetByIDAndUser(ctx, cardID, ownerID)
	if err != nil {
		return nil, err
	}
	s.refreshExpiry(ctx, card)

	switch card.Status {
	case models.StatusExpired:
		return nil, apperr.IneligibleStatef("card is %s", models.DisplayName(card.Status))
	case models.StatusBlocked:
		return nil, apperr.Conflictf("card is already blocked")
	}

	if err := s.setStatus(ctx, card, models.StatusBlocked); err != nil {
		return nil, err
	}
	s.notifyBlocked(card)
	return s.toResponse(card), nil
}

// Block forces a card to BLOCKED. Privileged operation.
func (s *CardService) Block(ctx context.Context, cardID int64) (*models.CardResponse, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	s.refreshExpiry(ctx, card)

	switch card.Status {
	case models.StatusExpired:
		return nil, apperr.IneligibleStatef("card is %s", models.DisplayName(card.Status))
	case models.StatusBlocked:
		return nil, apperr.Conflictf("card is already blocked")
	}

	if err := s.setStatus(ctx, card, models.StatusBlocked); err != nil {
		return nil, err
	}
	s.notifyBlocked(card)
	return s.toResponse(card), nil
}

// Activate moves a blocked card back to ACTIVE. Privileged operation.
// Expired cards stay expired.
func (s *CardService) Activate(ctx context.Context, cardID int64) (*models.CardResponse, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	s.refreshExpiry(ctx, card)

	switch card.Status {
	case models.StatusExpired:
		return nil, apperr.IneligibleStatef("card is %s", models.DisplayName(card.Status))
	case models.StatusActive:
		return nil, apperr.Conflictf("card is already active")
	}

	if err := s.setStatus(ctx, card, models.StatusActive); err != nil {
		return nil, err
	}
	return s.toResponse(card), nil
}

// Delete removes a card. Hard delete, privileged operation.
func (s *CardService) Delete(ctx context.Context, cardID int64) error {
	if err := s.cards.Delete(ctx, cardID); err != nil {
		return err
	}
	s.logger.WithField("card_id", cardID).Info("Card deleted")
	return nil
}

// Transfer moves amount between two cards of the same owner.
func (s *CardService) Transfer(ctx context.Context, ownerID, fromID, toID int64, amount decimal.Decimal) error {
	if err := models.ValidateTransferAmount(amount); err != nil {
		return err
	}
	if amount.Exponent() < -2 {
		return apperr.Validationf("amount cannot have more than 2 decimal places")
	}

	if err := s.cards.Transfer(ctx, ownerID, fromID, toID, amount); err != nil {
		return err
	}

	ref := uuid.New()
	s.logger.WithFields(logrus.Fields{
		"transfer_ref": ref,
		"user_id":      ownerID,
		"from_card":    fromID,
		"to_card":      toID,
		"amount":       amount.StringFixed(2),
	}).Info("Transfer completed")

	s.notifyTransfer(ctx, ownerID, ref, amount)
	return nil
}

// refreshExpiry lazily updates the cached status of a card whose expiry
// month has passed. A failed persist only loses the cache refresh, so it is
// logged and swallowed; the in-memory card already carries the recomputed
// status.
func (s *CardService) refreshExpiry(ctx context.Context, card *models.Card) {
	status, changed := models.RefreshStatus(card, time.Now())
	if !changed {
		return
	}
	card.Status = status
	if err := s.cards.UpdateStatus(ctx, card.ID, status); err != nil {
		s.logger.WithError(err).WithField("card_id", card.ID).Warn("Failed to persist expired status")
	}
}

func (s *CardService) setStatus(ctx context.Context, card *models.Card, status models.CardStatus) error {
	if err := s.cards.UpdateStatus(ctx, card.ID, status); err != nil {
		return err
	}
	card.Status = status
	s.logger.WithFields(logrus.Fields{
		"card_id": card.ID,
		"status":  status,
	}).Info("Card status changed")
	return nil
}

func (s *CardService) toResponse(card *models.Card) *models.CardResponse {
	return &models.CardResponse{
		ID:                card.ID,
		MaskedNumber:      s.cipher.Mask(card.NumberEncrypted),
		Holder:            card.Holder,
		Expiry:            card.Expiry,
		Status:            card.Status,
		StatusDisplayName: models.DisplayName(card.Status),
		Balance:           card.Balance,
		CreatedAt:         card.CreatedAt,
	}
}

func (s *CardService) notifyBlocked(card *models.Card) {
	if s.email == nil {
		return
	}
	user, err := s.users.FindByID(context.Background(), card.UserID)
	if err != nil || user.Email == "" {
		return
	}
	masked := s.cipher.Mask(card.NumberEncrypted)
	go func() {
		if err := s.email.SendCardBlockedNotification(user.Email, user.Username, masked); err != nil {
			s.logger.WithError(err).Warn("Failed to send block notification")
		}
	}()
}

func (s *CardService) notifyTransfer(ctx context.Context, ownerID int64, ref uuid.UUID, amount decimal.Decimal) {
	if s.email == nil {
		return
	}
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil || user.Email == "" {
		return
	}
	go func() {
		if err := s.email.SendTransferNotification(user.Email, user.Username, ref.String(), amount); err != nil {
			s.logger.WithError(err).Warn("Failed to send transfer notification")
		}
	}()
}
