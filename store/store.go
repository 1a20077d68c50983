// Package store composes the ledger, inventory and purchase components into
// the single Store the messaging front end talks to.
package store

import (
	"context"
	"fmt"
	"time"

	"prepaidhaven/config"
	"prepaidhaven/database"
	"prepaidhaven/events"
	"prepaidhaven/models"
	"prepaidhaven/repository"
	"prepaidhaven/service"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Store owns the database connection and exposes all storefront operations.
// Construct with Open, release with Close; there is no ambient global state.
type Store struct {
	db        *database.DB
	cfg       *config.Config
	bus       *events.Bus
	users     service.UserService
	inventory service.InventoryService
	gambling  service.GamblingService
}

// Open runs schema migrations, connects the pool and wires the services.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	bus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, bus)

	store := &Store{
		db:        db,
		cfg:       cfg,
		bus:       bus,
		users:     service.NewUserService(uowFactory),
		inventory: service.NewInventoryService(uowFactory),
		gambling:  service.NewGamblingService(uowFactory, cfg),
	}

	log.WithField("environment", cfg.Environment).Info("Store opened")
	return store, nil
}

// Close releases the database connection pool.
func (s *Store) Close() {
	s.db.Close()
	log.Info("Store closed")
}

// Events returns the bus the front end subscribes to for notifications
// (admin credit messages, gamble announcements).
func (s *Store) Events() *events.Bus {
	return s.bus
}

// EnsureUser creates the user record on first contact. Idempotent.
func (s *Store) EnsureUser(ctx context.Context, userID int64) error {
	return s.users.EnsureUser(ctx, userID)
}

// GetBalance returns the user's wallet balance, zero for unknown users.
func (s *Store) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.users.GetBalance(ctx, userID)
}

// CreditUser adds amount to the user's balance. Admin-triggered.
func (s *Store) CreditUser(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.users.Credit(ctx, userID, amount)
}

// AddCard adds a card to the catalog and returns it with its assigned ID.
// Admin-triggered.
func (s *Store) AddCard(ctx context.Context, name, bin string, balance, price decimal.Decimal) (*models.Card, error) {
	return s.inventory.AddCard(ctx, name, bin, balance, price)
}

// ListAvailableCards returns every card purchasable at the given instant.
func (s *Store) ListAvailableCards(ctx context.Context, now time.Time) ([]*models.Card, error) {
	return s.inventory.ListAvailable(ctx, now)
}

// RemainingLock reports how long a card stays reserved. Display only.
func (s *Store) RemainingLock(ctx context.Context, cardID int64, now time.Time) (time.Duration, bool, error) {
	return s.inventory.RemainingLock(ctx, cardID, now)
}

// Gamble debits cost and awards one random available card.
func (s *Store) Gamble(ctx context.Context, userID int64, cost decimal.Decimal) (*models.GambleResult, error) {
	return s.gambling.Gamble(ctx, userID, cost)
}

// GambleFlat plays at the configured flat cost (the original storefront's
// fixed-price gamble button).
func (s *Store) GambleFlat(ctx context.Context, userID int64) (*models.GambleResult, error) {
	return s.gambling.Gamble(ctx, userID, s.cfg.GambleCost)
}

// Purchases returns the user's order history, newest first.
func (s *Store) Purchases(ctx context.Context, userID int64, limit int) ([]*models.Purchase, error) {
	return s.users.Purchases(ctx, userID, limit)
}
