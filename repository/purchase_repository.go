package repository

import (
	"context"
	"fmt"

	"prepaidhaven/database"
	"prepaidhaven/models"
)

// PurchaseRepository implements the service.PurchaseRepository interface.
// Purchases are an append-only log; there are no update or delete paths.
type PurchaseRepository struct {
	q queryable
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *database.DB) *PurchaseRepository {
	return &PurchaseRepository{q: db.Pool}
}

// newPurchaseRepositoryWithTx creates a new purchase repository bound to a transaction
func newPurchaseRepositoryWithTx(tx queryable) *PurchaseRepository {
	return &PurchaseRepository{q: tx}
}

// Create appends one purchase record
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	query := `
		INSERT INTO purchases (user_id, card_id, price, purchased_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.Exec(ctx, query,
		purchase.UserID, purchase.CardID, purchase.Price, purchase.PurchasedAt)
	if err != nil {
		return fmt.Errorf("failed to record purchase of card %d for user %d: %w",
			purchase.CardID, purchase.UserID, err)
	}

	return nil
}

// GetByUser returns the user's purchases, newest first
func (r *PurchaseRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Purchase, error) {
	query := `
		SELECT user_id, card_id, price, purchased_at
		FROM purchases
		WHERE user_id = $1
		ORDER BY purchased_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchases for user %d: %w", userID, err)
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		var purchase models.Purchase
		err := rows.Scan(
			&purchase.UserID,
			&purchase.CardID,
			&purchase.Price,
			&purchase.PurchasedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, &purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}

	return purchases, nil
}
