package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one immutable acquisition fact: which user obtained which
// card, at the card's own price, at what time. Append-only; never updated.
type Purchase struct {
	UserID      int64           `db:"user_id"`
	CardID      int64           `db:"card_id"`
	Price       decimal.Decimal `db:"price"`
	PurchasedAt time.Time       `db:"purchased_at"`
}

// GambleResult is what a successful gamble returns to the front end.
type GambleResult struct {
	Card       *Card
	Cost       decimal.Decimal
	NewBalance decimal.Decimal
}
