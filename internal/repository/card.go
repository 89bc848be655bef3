package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bankcards/internal/apperr"
	"bankcards/internal/models"
)

const cardColumns = "id, number_encrypted, holder, expiry, status, balance, user_id, created_at"

// CardRepository provides database operations for cards
type CardRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewCardRepository initializes a new card repository
func NewCardRepository(db *sql.DB, logger *logrus.Logger) *CardRepository {
	return &CardRepository{db: db, logger: logger}
}

func scanCard(row interface{ Scan(...any) error }) (*models.Card, error) {
	card := &models.Card{}
	err := row.Scan(
		&card.ID,
		&card.NumberEncrypted,
		&card.Holder,
		&card.Expiry,
		&card.Status,
		&card.Balance,
		&card.UserID,
		&card.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return card, nil
}

// Create inserts a new card. A duplicate encrypted number surfaces as a
// conflict via the unique index.
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (number_encrypted, holder, expiry, status, balance, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		card.NumberEncrypted, card.Holder, card.Expiry, card.Status, card.Balance, card.UserID).
		Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		return wrapDBError("create card", err)
	}
	return nil
}

// GetByID retrieves a card regardless of owner (privileged lookups).
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id = $1`, cardColumns)
	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("card not found")
	}
	if err != nil {
		return nil, wrapDBError("get card", err)
	}
	return card, nil
}

// GetByIDAndUser retrieves a card scoped to its owner. A card owned by
// someone else is indistinguishable from a missing one.
func (r *CardRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id = $1 AND user_id = $2`, cardColumns)
	card, err := scanCard(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("card not found")
	}
	if err != nil {
		return nil, wrapDBError("get card by owner", err)
	}
	return card, nil
}

// ExistsByNumber reports whether a card with the encrypted number exists.
// Deterministic encryption makes this an exact lookup.
func (r *CardRepository) ExistsByNumber(ctx context.Context, numberEncrypted string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM cards WHERE number_encrypted = $1)`
	if err := r.db.QueryRowContext(ctx, query, numberEncrypted).Scan(&exists); err != nil {
		return false, wrapDBError("exists by number", err)
	}
	return exists, nil
}

// UpdateStatus persists a status change.
func (r *CardRepository) UpdateStatus(ctx context.Context, id int64, status models.CardStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cards SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return wrapDBError("update status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFoundf("card not found")
	}
	return nil
}

// Delete removes the card row. Hard delete, no cascade beyond the row.
func (r *CardRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return wrapDBError("delete card", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFoundf("card not found")
	}
	return nil
}

// List returns one page of cards plus the total count. userID of nil means
// an unscoped (privileged) listing. The sort input goes through the
// allow-list in OrderByClause.
func (r *CardRepository) List(ctx context.Context, userID *int64, page, size int, sortBy, direction string) ([]models.Card, int64, error) {
	orderBy, err := OrderByClause(sortBy, direction)
	if err != nil {
		return nil, 0, err
	}

	var (
		total int64
		rows  *sql.Rows
	)
	offset := page * size
	if userID != nil {
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE user_id = $1`, *userID).Scan(&total); err != nil {
			return nil, 0, wrapDBError("count cards", err)
		}
		query := fmt.Sprintf(`SELECT %s FROM cards WHERE user_id = $1 ORDER BY %s LIMIT $2 OFFSET $3`, cardColumns, orderBy)
		rows, err = r.db.QueryContext(ctx, query, *userID, size, offset)
	} else {
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&total); err != nil {
			return nil, 0, wrapDBError("count cards", err)
		}
		query := fmt.Sprintf(`SELECT %s FROM cards ORDER BY %s LIMIT $1 OFFSET $2`, cardColumns, orderBy)
		rows, err = r.db.QueryContext(ctx, query, size, offset)
	}
	if err != nil {
		return nil, 0, wrapDBError("list cards", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, 0, wrapDBError("scan card", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError("list cards", err)
	}

	return cards, total, nil
}

// Transfer atomically moves amount between two cards of the same owner.
// Both rows are locked FOR UPDATE in ascending id order so two concurrent
// transfers over the same pair in opposite directions cannot deadlock, and a
// bounded lock_timeout turns contention into a retryable error instead of an
// indefinite wait. Statuses are lazily refreshed inside the transaction
// before the eligibility check.
func (r *CardRepository) Transfer(ctx context.Context, ownerID, fromID, toID int64, amount decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin transfer", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SET LOCAL lock_timeout = '3s'`); err != nil {
		return wrapDBError("set lock timeout", err)
	}

	firstID, secondID := fromID, toID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := r.getForUpdateTx(ctx, tx, firstID, ownerID)
	if err != nil {
		return err
	}
	second := first
	if secondID != firstID {
		second, err = r.getForUpdateTx(ctx, tx, secondID, ownerID)
		if err != nil {
			return err
		}
	}

	from, to := first, second
	if from.ID != fromID {
		from, to = second, first
	}

	now := time.Now()
	for _, card := range []*models.Card{from, to} {
		if status, changed := models.RefreshStatus(card, now); changed {
			if err := r.updateStatusTx(ctx, tx, card.ID, status); err != nil {
				return err
			}
			card.Status = status
		}
	}

	if err := models.ValidateTransfer(from, to, amount, now); err != nil {
		return err
	}

	if err := r.updateBalanceTx(ctx, tx, from.ID, from.Balance.Sub(amount)); err != nil {
		return err
	}
	if err := r.updateBalanceTx(ctx, tx, to.ID, to.Balance.Add(amount)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapDBError("commit transfer", err)
	}
	return nil
}

func (r *CardRepository) getForUpdateTx(ctx context.Context, tx *sql.Tx, id, ownerID int64) (*models.Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id = $1 AND user_id = $2 FOR UPDATE`, cardColumns)
	card, err := scanCard(tx.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("card %d not found", id)
	}
	if err != nil {
		return nil, wrapDBError("lock card", err)
	}
	return card, nil
}

func (r *CardRepository) updateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.CardStatus) error {
	if _, err := tx.ExecContext(ctx, `UPDATE cards SET status = $1 WHERE id = $2`, status, id); err != nil {
		return wrapDBError("update status", err)
	}
	return nil
}

func (r *CardRepository) updateBalanceTx(ctx context.Context, tx *sql.Tx, id int64, balance decimal.Decimal) error {
	if _, err := tx.ExecContext(ctx, `UPDATE cards SET balance = $1 WHERE id = $2`, balance, id); err != nil {
		return wrapDBError("update balance", err)
	}
	return nil
}
