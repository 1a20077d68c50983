package service

import (
	"context"
	"fmt"

	"prepaidhaven/events"
	"prepaidhaven/models"

	"github.com/shopspring/decimal"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// EnsureUser lazily creates the user record on first contact. Calling it for
// an existing user is a no-op.
func (s *userService) EnsureUser(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	if err := uow.UserRepository().Ensure(ctx, userID); err != nil {
		return err
	}

	if existing == nil {
		uow.EventBus().Publish(events.UserCreatedEvent{UserID: userID})
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBalance returns the current balance, zero for unknown users
func (s *userService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.UserRepository().GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := uow.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balance, nil
}

// Credit adds amount to the user's balance and returns the new balance.
// Deposits are manual, so this is only ever triggered by the administrator.
func (s *userService) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("credit amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Ensure(ctx, userID); err != nil {
		return decimal.Zero, err
	}

	newBalance, err := uow.UserRepository().AdjustBalance(ctx, userID, amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to credit user %d: %w", userID, err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:       userID,
		ChangeAmount: amount,
		NewBalance:   newBalance,
	})

	if err := uow.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// Purchases returns the user's purchase history, newest first
func (s *userService) Purchases(ctx context.Context, userID int64, limit int) ([]*models.Purchase, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	purchases, err := uow.PurchaseRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return purchases, nil
}
