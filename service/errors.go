package service

import "errors"

var (
	// ErrInsufficientFunds is returned when a user's balance does not cover
	// the requested debit. No state is mutated.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoCardsAvailable is returned when every card is sold or locked at
	// selection time. No state is mutated.
	ErrNoCardsAvailable = errors.New("no cards available")
)
