package service

import (
	"context"
	"fmt"
	"time"

	"prepaidhaven/config"
	"prepaidhaven/events"
	"prepaidhaven/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// gamblingService implements the GamblingService interface
type gamblingService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewGamblingService creates a new gambling service
func NewGamblingService(uowFactory UnitOfWorkFactory, cfg *config.Config) GamblingService {
	return &gamblingService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// Gamble debits cost from the user and awards one uniformly random available
// card. Balance check, card claim, debit and purchase record form a single
// transaction: any failure after the card is claimed rolls everything back,
// so a card is never wasted and money is never taken without a card.
func (s *gamblingService) Gamble(ctx context.Context, userID int64, cost decimal.Decimal) (*models.GambleResult, error) {
	if cost.IsNegative() {
		return nil, fmt.Errorf("gamble cost must not be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Ensure(ctx, userID); err != nil {
		return nil, err
	}

	balance, err := uow.UserRepository().GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(cost) {
		return nil, fmt.Errorf("balance %s does not cover gamble cost %s: %w",
			balance, cost, ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	card, err := uow.CardRepository().SelectAndLock(ctx, now, now.Add(s.cfg.CardLockDuration))
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrNoCardsAvailable
	}

	if s.cfg.ConsumeOnPurchase {
		if err := uow.CardRepository().MarkSold(ctx, card.ID); err != nil {
			return nil, err
		}
		card.Sold = true
	}

	newBalance, err := uow.UserRepository().DeductBalance(ctx, userID, cost)
	if err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		UserID:      userID,
		CardID:      card.ID,
		Price:       card.Price,
		PurchasedAt: now,
	}
	if err := uow.PurchaseRepository().Create(ctx, purchase); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.CardWonEvent{
		UserID: userID,
		CardID: card.ID,
		Cost:   cost,
		Price:  card.Price,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"cardID": card.ID,
		"cost":   cost.String(),
	}).Info("Card awarded")

	return &models.GambleResult{
		Card:       card,
		Cost:       cost,
		NewBalance: newBalance,
	}, nil
}
