package repository

import (
	"context"
	"fmt"
	"time"

	"prepaidhaven/database"
	"prepaidhaven/models"

	"github.com/jackc/pgx/v5"
)

// CardRepository implements the service.CardRepository interface
type CardRepository struct {
	q queryable
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{q: db.Pool}
}

// newCardRepositoryWithTx creates a new card repository bound to a transaction
func newCardRepositoryWithTx(tx queryable) *CardRepository {
	return &CardRepository{q: tx}
}

// Create inserts a new card and fills in its assigned ID and creation time
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (name, bin, balance, price, locked_until, sold)
		VALUES ($1, $2, $3, $4, NULL, FALSE)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, card.Name, card.BIN, card.Balance, card.Price).
		Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card %q: %w", card.Name, err)
	}

	return nil
}

// GetByID retrieves a card by ID, or nil if it does not exist
func (r *CardRepository) GetByID(ctx context.Context, cardID int64) (*models.Card, error) {
	query := `
		SELECT id, name, bin, balance, price, locked_until, sold, created_at
		FROM cards
		WHERE id = $1
	`

	var card models.Card
	err := r.q.QueryRow(ctx, query, cardID).Scan(
		&card.ID,
		&card.Name,
		&card.BIN,
		&card.Balance,
		&card.Price,
		&card.LockedUntil,
		&card.Sold,
		&card.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", cardID, err)
	}

	return &card, nil
}

// ListAvailable returns the unsold cards whose lock has elapsed, id
// ascending. The lock boundary is inclusive: a card locked until exactly
// now is available again.
func (r *CardRepository) ListAvailable(ctx context.Context, now time.Time) ([]*models.Card, error) {
	query := `
		SELECT id, name, bin, balance, price, locked_until, sold, created_at
		FROM cards
		WHERE NOT sold AND (locked_until IS NULL OR locked_until <= $1)
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list available cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		var card models.Card
		err := rows.Scan(
			&card.ID,
			&card.Name,
			&card.BIN,
			&card.Balance,
			&card.Price,
			&card.LockedUntil,
			&card.Sold,
			&card.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// SelectAndLock claims one uniformly random available card by setting its
// lock expiry. Selection and locking happen in a single statement; SKIP
// LOCKED makes concurrent callers pass over rows already claimed by an
// uncommitted transaction, so at most one caller ever wins a given card.
// Returns nil when no card is available.
func (r *CardRepository) SelectAndLock(ctx context.Context, now time.Time, until time.Time) (*models.Card, error) {
	query := `
		UPDATE cards
		SET locked_until = $2
		WHERE id = (
			SELECT id
			FROM cards
			WHERE NOT sold AND (locked_until IS NULL OR locked_until <= $1)
			ORDER BY random()
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, bin, balance, price, locked_until, sold, created_at
	`

	var card models.Card
	err := r.q.QueryRow(ctx, query, now, until).Scan(
		&card.ID,
		&card.Name,
		&card.BIN,
		&card.Balance,
		&card.Price,
		&card.LockedUntil,
		&card.Sold,
		&card.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select and lock card: %w", err)
	}

	return &card, nil
}

// Lock sets the card's reservation expiry
func (r *CardRepository) Lock(ctx context.Context, cardID int64, until time.Time) error {
	query := `
		UPDATE cards
		SET locked_until = $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, until, cardID)
	if err != nil {
		return fmt.Errorf("failed to lock card %d: %w", cardID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("card %d not found", cardID)
	}

	return nil
}

// MarkSold removes the card from sale permanently
func (r *CardRepository) MarkSold(ctx context.Context, cardID int64) error {
	query := `
		UPDATE cards
		SET sold = TRUE
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, cardID)
	if err != nil {
		return fmt.Errorf("failed to mark card %d sold: %w", cardID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("card %d not found", cardID)
	}

	return nil
}
