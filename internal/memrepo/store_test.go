package memrepo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bankapp/internal/accountservice"
	"github.com/go-petr/bankapp/internal/domain"
	"github.com/go-petr/bankapp/pkg/randompkg"
)

func createRandomAccount(t *testing.T, s *Store) domain.Account {
	t.Helper()

	username := randompkg.Username()

	a, err := s.Accounts().Create(context.Background(), username, "hash")
	require.NoError(t, err)
	require.NotZero(t, a.ID)
	require.Equal(t, username, a.Username)
	require.True(t, a.Balance.IsZero())
	require.NotZero(t, a.CreatedAt)

	return a
}

func TestAccountRepo(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	accounts := s.Accounts()

	a := createRandomAccount(t, s)

	_, err := accounts.Create(ctx, a.Username, "other")
	require.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)

	got, err := accounts.GetByUsername(ctx, a.Username)
	require.NoError(t, err)
	require.Equal(t, a, got)

	_, err = accounts.GetForUpdate(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	got, err = accounts.AddBalance(ctx, a.ID, decimal.RequireFromString("10.50"))
	require.NoError(t, err)
	require.Equal(t, "10.50", got.Balance.StringFixed(2))

	_, err = accounts.AddBalance(ctx, a.ID, decimal.RequireFromString("-10.51"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	got, err = accounts.AddBalance(ctx, a.ID, decimal.RequireFromString("-10.50"))
	require.NoError(t, err)
	require.True(t, got.Balance.IsZero())

	_, err = accounts.AddBalance(ctx, a.ID+100, decimal.NewFromInt(1))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestEntryRepo(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	entries := s.Entries()

	a := createRandomAccount(t, s)
	b := createRandomAccount(t, s)

	got, err := entries.ListByAccount(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	descs := []string{domain.DescDeposit, domain.DescWithdrawal, domain.DescTransferOut(b.Username)}
	for _, d := range descs {
		_, err := entries.Create(ctx, domain.CreateEntryParams{
			AccountID:   a.ID,
			Amount:      decimal.NewFromInt(5),
			Description: d,
			CreatedAt:   time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	_, err = entries.Create(ctx, domain.CreateEntryParams{AccountID: b.ID, Amount: decimal.NewFromInt(5), Description: domain.DescTransferIn(a.Username)})
	require.NoError(t, err)

	_, err = entries.Create(ctx, domain.CreateEntryParams{AccountID: 999, Amount: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = entries.Create(ctx, domain.CreateEntryParams{AccountID: a.ID, Amount: decimal.Zero})
	require.ErrorIs(t, err, domain.ErrNonPositiveAmount)

	got, err = entries.ListByAccount(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, len(descs))

	for i := range descs {
		require.Equal(t, descs[i], got[i].Description)
		require.Equal(t, a.ID, got[i].AccountID)

		if i > 0 {
			require.Greater(t, got[i].ID, got[i-1].ID)
		}
	}

	// Mutating the returned slice leaves the store untouched.
	got[0].Description = "changed"

	again, err := entries.ListByAccount(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.DescDeposit, again[0].Description)
}

func TestExecTxRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := createRandomAccount(t, s)
	errBoom := errors.New("boom")

	err := s.ExecTx(ctx, func(accounts accountservice.AccountRepo, entries accountservice.EntryRepo) error {
		if _, err := accounts.AddBalance(ctx, a.ID, decimal.NewFromInt(100)); err != nil {
			return err
		}

		if _, err := entries.Create(ctx, domain.CreateEntryParams{AccountID: a.ID, Amount: decimal.NewFromInt(100)}); err != nil {
			return err
		}

		if _, err := accounts.Create(ctx, "rolledback", "hash"); err != nil {
			return err
		}

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := s.Accounts().GetByUsername(ctx, a.Username)
	require.NoError(t, err)
	require.True(t, got.Balance.IsZero())

	_, err = s.Accounts().GetByUsername(ctx, "rolledback")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	list, err := s.Entries().ListByAccount(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestExecTxPanicRestoresState(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := createRandomAccount(t, s)

	require.PanicsWithValue(t, "boom", func() {
		_ = s.ExecTx(ctx, func(accounts accountservice.AccountRepo, _ accountservice.EntryRepo) error {
			if _, err := accounts.AddBalance(ctx, a.ID, decimal.NewFromInt(50)); err != nil {
				return err
			}

			panic("boom")
		})
	})

	got, err := s.Accounts().GetByUsername(ctx, a.Username)
	require.NoError(t, err)
	require.True(t, got.Balance.IsZero())

	list, err := s.Entries().ListByAccount(ctx, a.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	// The lock is released after the panic.
	err = s.ExecTx(ctx, func(accounts accountservice.AccountRepo, _ accountservice.EntryRepo) error {
		_, err := accounts.AddBalance(ctx, a.ID, decimal.NewFromInt(1))
		return err
	})
	require.NoError(t, err)
}

func TestExecTxCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := createRandomAccount(t, s)

	err := s.ExecTx(ctx, func(accounts accountservice.AccountRepo, _ accountservice.EntryRepo) error {
		_, err := accounts.AddBalance(ctx, a.ID, decimal.NewFromInt(7))
		return err
	})
	require.NoError(t, err)

	got, err := s.Accounts().GetByUsername(ctx, a.Username)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(7)))
}

func TestExecTxCanceledContext(t *testing.T) {
	s := NewStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.ExecTx(ctx, func(accountservice.AccountRepo, accountservice.EntryRepo) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestExecTxConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := createRandomAccount(t, s)

	const n = 50

	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := s.ExecTx(ctx, func(accounts accountservice.AccountRepo, _ accountservice.EntryRepo) error {
				_, err := accounts.AddBalance(ctx, a.ID, decimal.NewFromInt(1))
				return err
			})
			require.NoError(t, err)
		}()
	}

	wg.Wait()

	got, err := s.Accounts().GetByUsername(ctx, a.Username)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(n)))
}
