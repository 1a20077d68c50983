package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a storefront customer with a wallet balance.
// The ID is issued by the external messaging platform; this system
// never generates user identifiers.
type User struct {
	ID        int64           `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
