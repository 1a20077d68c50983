package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"prepaidhaven/repository/testutil"
	"prepaidhaven/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Ensure(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates zero-balance record", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 100))

		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(100), user.ID)
		assert.True(t, user.Balance.IsZero())
	})

	t.Run("idempotent on existing user", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 101))
		_, err := repo.AdjustBalance(ctx, 101, decimal.NewFromInt(30))
		require.NoError(t, err)

		// A second Ensure must not reset the balance.
		require.NoError(t, repo.Ensure(ctx, 101))

		balance, err := repo.GetBalance(ctx, 101)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(30)), "balance = %s", balance)
	})
}

func TestUserRepository_GetBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown user reads zero", func(t *testing.T) {
		balance, err := repo.GetBalance(ctx, 999999)
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("known user reads current balance", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 200))
		_, err := repo.AdjustBalance(ctx, 200, decimal.RequireFromString("12.34"))
		require.NoError(t, err)

		balance, err := repo.GetBalance(ctx, 200)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.RequireFromString("12.34")), "balance = %s", balance)
	})
}

func TestUserRepository_AdjustBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("applies signed deltas", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 300))

		balance, err := repo.AdjustBalance(ctx, 300, decimal.NewFromInt(20))
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(20)))

		balance, err = repo.AdjustBalance(ctx, 300, decimal.RequireFromString("-7.50"))
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.RequireFromString("12.50")), "balance = %s", balance)
	})

	t.Run("unknown user fails", func(t *testing.T) {
		_, err := repo.AdjustBalance(ctx, 999999, decimal.NewFromInt(1))
		require.Error(t, err)
	})

	t.Run("no lost updates under concurrent adjustments", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 301))

		const workers = 20
		delta := decimal.RequireFromString("1.25")

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.AdjustBalance(ctx, 301, delta); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent adjust failed: %v", err)
		}

		balance, err := repo.GetBalance(ctx, 301)
		require.NoError(t, err)
		expected := delta.Mul(decimal.NewFromInt(workers))
		assert.True(t, balance.Equal(expected), "balance = %s, want %s", balance, expected)
	})
}

func TestUserRepository_DeductBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("deducts when covered", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 400))
		_, err := repo.AdjustBalance(ctx, 400, decimal.NewFromInt(20))
		require.NoError(t, err)

		balance, err := repo.DeductBalance(ctx, 400, decimal.NewFromInt(5))
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(15)), "balance = %s", balance)
	})

	t.Run("exact balance is sufficient", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 401))
		_, err := repo.AdjustBalance(ctx, 401, decimal.NewFromInt(5))
		require.NoError(t, err)

		balance, err := repo.DeductBalance(ctx, 401, decimal.NewFromInt(5))
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("insufficient funds leaves balance untouched", func(t *testing.T) {
		require.NoError(t, repo.Ensure(ctx, 402))
		_, err := repo.AdjustBalance(ctx, 402, decimal.NewFromInt(3))
		require.NoError(t, err)

		_, err = repo.DeductBalance(ctx, 402, decimal.NewFromInt(5))
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrInsufficientFunds))

		balance, err := repo.GetBalance(ctx, 402)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(3)), "balance = %s", balance)
	})

	t.Run("unknown user fails without sentinel", func(t *testing.T) {
		_, err := repo.DeductBalance(ctx, 999999, decimal.NewFromInt(5))
		require.Error(t, err)
		assert.False(t, errors.Is(err, service.ErrInsufficientFunds))
	})
}
