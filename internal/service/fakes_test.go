package service

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bankcards/internal/apperr"
	"bankcards/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			found := *user
			return &found, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (f *fakeUserStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user not found")
	}
	found := *user
	return &found, nil
}

func (f *fakeUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.FindByUsername(ctx, username)
	return err == nil, nil
}

// fakeCardStore is an in-memory CardStore. Transfer applies the same pure
// validation the Postgres implementation runs inside its transaction.
type fakeCardStore struct {
	nextID int64
	cards  map[int64]*models.Card
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: make(map[int64]*models.Card)}
}

func (f *fakeCardStore) Create(_ context.Context, card *models.Card) error {
	for _, existing := range f.cards {
		if existing.NumberEncrypted == card.NumberEncrypted {
			return apperr.Conflictf("duplicate value")
		}
	}
	f.nextID++
	card.ID = f.nextID
	card.CreatedAt = time.Now()
	stored := *card
	f.cards[card.ID] = &stored
	return nil
}

func (f *fakeCardStore) GetByID(_ context.Context, id int64) (*models.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, apperr.NotFoundf("card not found")
	}
	found := *card
	return &found, nil
}

func (f *fakeCardStore) GetByIDAndUser(_ context.Context, id, userID int64) (*models.Card, error) {
	card, ok := f.cards[id]
	if !ok || card.UserID != userID {
		return nil, apperr.NotFoundf("card not found")
	}
	found := *card
	return &found, nil
}

func (f *fakeCardStore) ExistsByNumber(_ context.Context, numberEncrypted string) (bool, error) {
	for _, card := range f.cards {
		if card.NumberEncrypted == numberEncrypted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCardStore) UpdateStatus(_ context.Context, id int64, status models.CardStatus) error {
	card, ok := f.cards[id]
	if !ok {
		return apperr.NotFoundf("card not found")
	}
	card.Status = status
	return nil
}

func (f *fakeCardStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.cards[id]; !ok {
		return apperr.NotFoundf("card not found")
	}
	delete(f.cards, id)
	return nil
}

func (f *fakeCardStore) List(_ context.Context, userID *int64, page, size int, sortBy, direction string) ([]models.Card, int64, error) {
	var cards []models.Card
	for id := int64(1); id <= f.nextID; id++ {
		card, ok := f.cards[id]
		if !ok {
			continue
		}
		if userID != nil && card.UserID != *userID {
			continue
		}
		cards = append(cards, *card)
	}
	total := int64(len(cards))
	start := page * size
	if start > len(cards) {
		start = len(cards)
	}
	end := start + size
	if end > len(cards) {
		end = len(cards)
	}
	return cards[start:end], total, nil
}

func (f *fakeCardStore) Transfer(ctx context.Context, ownerID, fromID, toID int64, amount decimal.Decimal) error {
	from, err := f.GetByIDAndUser(ctx, fromID, ownerID)
	if err != nil {
		return err
	}
	to, err := f.GetByIDAndUser(ctx, toID, ownerID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, card := range []*models.Card{from, to} {
		if status, changed := models.RefreshStatus(card, now); changed {
			card.Status = status
			f.cards[card.ID].Status = status
		}
	}

	if err := models.ValidateTransfer(from, to, amount, now); err != nil {
		return err
	}

	f.cards[fromID].Balance = from.Balance.Sub(amount)
	f.cards[toID].Balance = to.Balance.Add(amount)
	return nil
}
