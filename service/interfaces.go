package service

import (
	"context"
	"time"

	"prepaidhaven/events"
	"prepaidhaven/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user balance data access
type UserRepository interface {
	// Ensure creates a zero-balance record for the user if none exists.
	// Idempotent; safe to call on every interaction.
	Ensure(ctx context.Context, userID int64) error

	// GetByID retrieves a user, or nil if the user is unknown
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// GetBalance returns the user's balance, zero for unknown users
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)

	// AdjustBalance applies a signed delta atomically and returns the new
	// balance. It does not enforce non-negative balances; callers that debit
	// must check sufficiency or use DeductBalance.
	AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error)

	// DeductBalance subtracts amount atomically, failing with
	// ErrInsufficientFunds when the balance does not cover it
	DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// CardRepository defines the interface for card catalog data access
type CardRepository interface {
	// Create inserts a new card and fills in its assigned ID
	Create(ctx context.Context, card *models.Card) error

	// GetByID retrieves a card, or nil if it does not exist
	GetByID(ctx context.Context, cardID int64) (*models.Card, error)

	// ListAvailable returns the unsold, unlocked cards, id ascending
	ListAvailable(ctx context.Context, now time.Time) ([]*models.Card, error)

	// SelectAndLock claims one uniformly random available card by setting
	// its lock expiry, all in a single statement so concurrent callers can
	// never claim the same card. Returns nil when no card is available.
	SelectAndLock(ctx context.Context, now time.Time, until time.Time) (*models.Card, error)

	// Lock sets the card's reservation expiry
	Lock(ctx context.Context, cardID int64, until time.Time) error

	// MarkSold removes the card from sale permanently
	MarkSold(ctx context.Context, cardID int64) error
}

// PurchaseRepository defines the interface for the append-only purchase log
type PurchaseRepository interface {
	// Create appends one purchase record
	Create(ctx context.Context, purchase *models.Purchase) error

	// GetByUser returns the user's purchases, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Purchase, error)
}

// EventPublisher publishes events that are deferred until commit
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork represents one transactional scope over the repositories
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	CardRepository() CardRepository
	PurchaseRepository() PurchaseRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService manages user balances
type UserService interface {
	// EnsureUser lazily creates the user record on first contact
	EnsureUser(ctx context.Context, userID int64) error

	// GetBalance returns the current balance, zero for unknown users
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)

	// Credit adds amount to the user's balance (admin load) and returns the
	// new balance. The user record is created if missing.
	Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// Purchases returns the user's purchase history, newest first
	Purchases(ctx context.Context, userID int64, limit int) ([]*models.Purchase, error)
}

// InventoryService manages the card catalog
type InventoryService interface {
	// AddCard creates a new unlocked card and returns it with its ID set
	AddCard(ctx context.Context, name, bin string, balance, price decimal.Decimal) (*models.Card, error)

	// ListAvailable returns all cards purchasable at the given instant
	ListAvailable(ctx context.Context, now time.Time) ([]*models.Card, error)

	// RemainingLock returns how long the card stays reserved, false when
	// the card is not currently locked
	RemainingLock(ctx context.Context, cardID int64, now time.Time) (time.Duration, bool, error)
}

// GamblingService awards random cards for a flat cost
type GamblingService interface {
	// Gamble debits cost from the user and claims one random available
	// card for them, as a single transaction
	Gamble(ctx context.Context, userID int64, cost decimal.Decimal) (*models.GambleResult, error)
}
