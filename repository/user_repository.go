package repository

import (
	"context"
	"fmt"

	"prepaidhaven/database"
	"prepaidhaven/models"
	"prepaidhaven/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository bound to a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// Ensure creates a zero-balance record for the user if none exists
func (r *UserRepository) Ensure(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to ensure user %d: %w", userID, err)
	}

	return nil
}

// GetByID retrieves a user by ID, or nil if the user is unknown
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// GetBalance returns the user's balance. Unknown users read as zero rather
// than failing.
func (r *UserRepository) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE((SELECT balance FROM users WHERE user_id = $1), 0)
	`

	var balance decimal.Decimal
	if err := r.q.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance for user %d: %w", userID, err)
	}

	return balance, nil
}

// AdjustBalance applies a signed delta atomically and returns the new balance
func (r *UserRepository) AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, query, delta, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return decimal.Zero, fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to adjust balance for user %d: %w", userID, err)
	}

	return balance, nil
}

// DeductBalance subtracts amount atomically. The balance guard lives in the
// statement itself so a concurrent debit can never drive the balance
// negative.
func (r *UserRepository) DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("deduct amount must not be negative")
	}

	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		user, getErr := r.GetByID(ctx, userID)
		if getErr != nil {
			return decimal.Zero, fmt.Errorf("failed to check user %d: %w", userID, getErr)
		}
		if user == nil {
			return decimal.Zero, fmt.Errorf("user %d not found", userID)
		}
		return decimal.Zero, fmt.Errorf("balance %s does not cover %s: %w",
			user.Balance, amount, service.ErrInsufficientFunds)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to deduct balance for user %d: %w", userID, err)
	}

	return balance, nil
}
