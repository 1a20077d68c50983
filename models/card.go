package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card represents a prepaid card in the catalog. A card is available for
// sale when it is not sold and any reservation lock has elapsed; the lock
// is the only mutable state after creation besides the sold flag.
type Card struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	BIN         string          `db:"bin"`
	Balance     decimal.Decimal `db:"balance"`
	Price       decimal.Decimal `db:"price"`
	LockedUntil *time.Time      `db:"locked_until"`
	Sold        bool            `db:"sold"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Available reports whether the card can be listed or awarded at the given
// instant. A lock expiring exactly at now no longer reserves the card.
func (c *Card) Available(now time.Time) bool {
	if c.Sold {
		return false
	}
	return c.LockedUntil == nil || !c.LockedUntil.After(now)
}

// RemainingLock returns how long the card stays reserved from the given
// instant. The second return value is false when the card is not locked.
func (c *Card) RemainingLock(now time.Time) (time.Duration, bool) {
	if c.LockedUntil == nil {
		return 0, false
	}
	remaining := c.LockedUntil.Sub(now)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}
