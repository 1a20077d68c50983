package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prepaidhaven/events"
	"prepaidhaven/models"

	"github.com/shopspring/decimal"
)

// inventoryService implements the InventoryService interface
type inventoryService struct {
	uowFactory UnitOfWorkFactory
}

// NewInventoryService creates a new inventory service
func NewInventoryService(uowFactory UnitOfWorkFactory) InventoryService {
	return &inventoryService{
		uowFactory: uowFactory,
	}
}

// AddCard creates a new unlocked card and returns it with its assigned ID
func (s *inventoryService) AddCard(ctx context.Context, name, bin string, balance, price decimal.Decimal) (*models.Card, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("card name must not be empty")
	}
	if strings.TrimSpace(bin) == "" {
		return nil, fmt.Errorf("card bin must not be empty")
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("card balance must not be negative")
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("card price must not be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	card := &models.Card{
		Name:    strings.TrimSpace(name),
		BIN:     strings.TrimSpace(bin),
		Balance: balance,
		Price:   price,
	}

	if err := uow.CardRepository().Create(ctx, card); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.CardAddedEvent{
		CardID: card.ID,
		Name:   card.Name,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return card, nil
}

// ListAvailable returns all cards purchasable at the given instant
func (s *inventoryService) ListAvailable(ctx context.Context, now time.Time) ([]*models.Card, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	cards, err := uow.CardRepository().ListAvailable(ctx, now)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cards, nil
}

// RemainingLock reports how long the card stays reserved. Display only;
// availability decisions go through ListAvailable and SelectAndLock.
func (s *inventoryService) RemainingLock(ctx context.Context, cardID int64, now time.Time) (time.Duration, bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	card, err := uow.CardRepository().GetByID(ctx, cardID)
	if err != nil {
		return 0, false, err
	}
	if card == nil {
		return 0, false, fmt.Errorf("card %d not found", cardID)
	}

	if err := uow.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	remaining, locked := card.RemainingLock(now)
	return remaining, locked, nil
}
