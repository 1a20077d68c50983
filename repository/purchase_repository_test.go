package repository

import (
	"context"
	"testing"
	"time"

	"prepaidhaven/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	userRepo := NewUserRepository(testDB.DB)
	cardRepo := NewCardRepository(testDB.DB)
	repo := NewPurchaseRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, userRepo.Ensure(ctx, 42))

	card1 := testutil.CreateTestCard("Visa", "411111")
	require.NoError(t, cardRepo.Create(ctx, card1))
	card2 := testutil.CreateTestCardWithPrice("MasterCard", "510000", decimal.NewFromInt(25))
	require.NoError(t, cardRepo.Create(ctx, card2))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty history", func(t *testing.T) {
		purchases, err := repo.GetByUser(ctx, 42, 10)
		require.NoError(t, err)
		assert.Empty(t, purchases)
	})

	t.Run("append and read newest first", func(t *testing.T) {
		first := testutil.CreateTestPurchase(42, card1.ID, base)
		require.NoError(t, repo.Create(ctx, first))

		second := testutil.CreateTestPurchase(42, card2.ID, base.Add(time.Hour))
		second.Price = card2.Price
		require.NoError(t, repo.Create(ctx, second))

		purchases, err := repo.GetByUser(ctx, 42, 10)
		require.NoError(t, err)
		require.Len(t, purchases, 2)

		assert.Equal(t, card2.ID, purchases[0].CardID)
		assert.True(t, purchases[0].Price.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, card1.ID, purchases[1].CardID)
		assert.True(t, purchases[1].PurchasedAt.Equal(base))
	})

	t.Run("limit applies", func(t *testing.T) {
		purchases, err := repo.GetByUser(ctx, 42, 1)
		require.NoError(t, err)
		require.Len(t, purchases, 1)
		assert.Equal(t, card2.ID, purchases[0].CardID)
	})

	t.Run("re-purchase of the same card across lock cycles is allowed", func(t *testing.T) {
		again := testutil.CreateTestPurchase(42, card1.ID, base.Add(2*time.Hour))
		require.NoError(t, repo.Create(ctx, again))

		purchases, err := repo.GetByUser(ctx, 42, 10)
		require.NoError(t, err)
		assert.Len(t, purchases, 3)
	})

	t.Run("unknown user fails the foreign key", func(t *testing.T) {
		orphan := testutil.CreateTestPurchase(999999, card1.ID, base)
		require.Error(t, repo.Create(ctx, orphan))
	})
}
