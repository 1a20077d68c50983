package testutil

import (
	"time"

	"prepaidhaven/models"

	"github.com/shopspring/decimal"
)

// CreateTestCard returns an unsold, unlocked card with typical values.
func CreateTestCard(name, bin string) *models.Card {
	return &models.Card{
		Name:    name,
		BIN:     bin,
		Balance: decimal.NewFromInt(50),
		Price:   decimal.NewFromInt(10),
	}
}

// CreateTestCardWithPrice returns a card with a specific face price.
func CreateTestCardWithPrice(name, bin string, price decimal.Decimal) *models.Card {
	card := CreateTestCard(name, bin)
	card.Price = price
	return card
}

// CreateTestPurchase returns a purchase record for the given pair.
func CreateTestPurchase(userID, cardID int64, at time.Time) *models.Purchase {
	return &models.Purchase{
		UserID:      userID,
		CardID:      cardID,
		Price:       decimal.NewFromInt(10),
		PurchasedAt: at,
	}
}
