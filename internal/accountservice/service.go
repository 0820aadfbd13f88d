// Package accountservice manages business logic layer of accounts and their ledger.
package accountservice

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bankapp/internal/domain"
	"github.com/go-petr/bankapp/pkg/errorspkg"
	"github.com/go-petr/bankapp/pkg/moneypkg"
)

// AccountRepo provides accounts data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type AccountRepo interface {
	Create(ctx context.Context, username, hashedPassword string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	// GetForUpdate returns the account and locks it until the end of the transaction.
	GetForUpdate(ctx context.Context, username string) (domain.Account, error)
	AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error)
}

// EntryRepo provides ledger entries data access layer interface needed by account service layer.
type EntryRepo interface {
	Create(ctx context.Context, arg domain.CreateEntryParams) (domain.Entry, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Entry, error)
}

// TxManager runs fn against repositories bound to a single transaction.
//
// The transaction is committed if fn returns nil and rolled back otherwise.
type TxManager interface {
	ExecTx(ctx context.Context, fn func(accounts AccountRepo, entries EntryRepo) error) error
}

// Hasher hashes plaintext passwords.
type Hasher interface {
	Hash(password string) (string, error)
}

// Service facilitates account service layer logic.
type Service struct {
	accounts AccountRepo
	entries  EntryRepo
	tx       TxManager
	hasher   Hasher
	now      func() time.Time
}

// New returns account service struct to manage account business logic.
func New(ar AccountRepo, er EntryRepo, tm TxManager, h Hasher) *Service {
	return &Service{
		accounts: ar,
		entries:  er,
		tx:       tm,
		hasher:   h,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account with zero balance for the given credentials.
func (s *Service) Register(ctx context.Context, username, password string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	_, err := s.accounts.GetByUsername(ctx, username)
	if err == nil {
		l.Info().Str("username", username).Msg("username is taken")
		return domain.Account{}, domain.ErrUsernameAlreadyExists
	}

	if !errors.Is(err, domain.ErrAccountNotFound) {
		return domain.Account{}, err
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	return s.accounts.Create(ctx, username, hashedPassword)
}

// AuthenticateLookup returns the credentials of the given username for verification.
func (s *Service) AuthenticateLookup(ctx context.Context, username string) (domain.Principal, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return domain.Principal{}, err
	}

	return domain.NewPrincipal(account), nil
}

// Get returns the account with the given username.
func (s *Service) Get(ctx context.Context, username string) (domain.Account, error) {
	return s.accounts.GetByUsername(ctx, username)
}

// Deposit adds amount to the account balance and records a deposit entry.
func (s *Service) Deposit(ctx context.Context, username, amount string) (domain.EntryResult, error) {
	amt, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.EntryResult{}, err
	}

	var result domain.EntryResult

	err = s.tx.ExecTx(ctx, func(accounts AccountRepo, entries EntryRepo) error {
		account, err := accounts.GetForUpdate(ctx, username)
		if err != nil {
			return err
		}

		result.Account, err = accounts.AddBalance(ctx, account.ID, amt)
		if err != nil {
			return err
		}

		result.Entry, err = entries.Create(ctx, s.entryParams(account.ID, amt, domain.DescDeposit))

		return err
	})
	if err != nil {
		return domain.EntryResult{}, err
	}

	return result, nil
}

// Withdraw subtracts amount from the account balance and records a withdrawal entry.
//
// It fails with domain.ErrInsufficientFunds leaving both balance and ledger untouched
// if the balance is less than amount.
func (s *Service) Withdraw(ctx context.Context, username, amount string) (domain.EntryResult, error) {
	l := zerolog.Ctx(ctx)

	amt, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.EntryResult{}, err
	}

	var result domain.EntryResult

	err = s.tx.ExecTx(ctx, func(accounts AccountRepo, entries EntryRepo) error {
		account, err := accounts.GetForUpdate(ctx, username)
		if err != nil {
			return err
		}

		if account.Balance.LessThan(amt) {
			l.Info().Str("balance", account.Balance.String()).Str("amount", amount).Msg("insufficient funds")
			return domain.ErrInsufficientFunds
		}

		result.Account, err = accounts.AddBalance(ctx, account.ID, amt.Neg())
		if err != nil {
			return err
		}

		result.Entry, err = entries.Create(ctx, s.entryParams(account.ID, amt, domain.DescWithdrawal))

		return err
	})
	if err != nil {
		return domain.EntryResult{}, err
	}

	return result, nil
}

// Transfer moves amount from one account to another within a single transaction.
//
// Both balances and both ledger entries are written or none of them is.
func (s *Service) Transfer(ctx context.Context, fromUsername, toUsername, amount string) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	amt, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.TransferResult{}, err
	}

	if fromUsername == toUsername {
		l.Info().Str("username", fromUsername).Msg("self transfer")
		return domain.TransferResult{}, domain.ErrSelfTransfer
	}

	var result domain.TransferResult

	err = s.tx.ExecTx(ctx, func(accounts AccountRepo, entries EntryRepo) error {
		from, to, err := lockPair(ctx, accounts, fromUsername, toUsername)
		if err != nil && !errors.Is(err, domain.ErrRecipientNotFound) {
			return err
		}

		if from.Balance.LessThan(amt) {
			l.Info().Str("balance", from.Balance.String()).Str("amount", amount).Msg("insufficient funds")
			return domain.ErrInsufficientFunds
		}

		if err != nil {
			l.Info().Str("to_username", toUsername).Msg(err.Error())
			return err
		}

		result.FromAccount, err = accounts.AddBalance(ctx, from.ID, amt.Neg())
		if err != nil {
			return err
		}

		result.FromEntry, err = entries.Create(ctx, s.entryParams(from.ID, amt, domain.DescTransferOut(to.Username)))
		if err != nil {
			return err
		}

		result.ToAccount, err = accounts.AddBalance(ctx, to.ID, amt)
		if err != nil {
			return err
		}

		result.ToEntry, err = entries.Create(ctx, s.entryParams(to.ID, amt, domain.DescTransferIn(from.Username)))

		return err
	})
	if err != nil {
		return domain.TransferResult{}, err
	}

	return result, nil
}

// History returns all ledger entries of the account in the order they were recorded.
func (s *Service) History(ctx context.Context, username string) ([]domain.Entry, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.entries.ListByAccount(ctx, account.ID)
}

func (s *Service) entryParams(accountID int64, amount decimal.Decimal, desc string) domain.CreateEntryParams {
	return domain.CreateEntryParams{
		AccountID:   accountID,
		Amount:      amount,
		Description: desc,
		CreatedAt:   s.now(),
	}
}

// lockPair locks both transfer accounts in username order to avoid deadlocks.
//
// A missing recipient is reported as domain.ErrRecipientNotFound along with the
// locked sender, so the sender's funds can be checked first.
func lockPair(ctx context.Context, accounts AccountRepo, from, to string) (domain.Account, domain.Account, error) {
	var (
		fromAccount, toAccount domain.Account
		recipientErr           error
	)

	lockSender := func() (err error) {
		fromAccount, err = accounts.GetForUpdate(ctx, from)
		return err
	}

	lockRecipient := func() (err error) {
		toAccount, err = accounts.GetForUpdate(ctx, to)
		if errors.Is(err, domain.ErrAccountNotFound) {
			recipientErr = domain.ErrRecipientNotFound
			return nil
		}

		return err
	}

	first, second := lockSender, lockRecipient
	if to < from {
		first, second = lockRecipient, lockSender
	}

	if err := first(); err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	if err := second(); err != nil {
		return domain.Account{}, domain.Account{}, err
	}

	return fromAccount, toAccount, recipientErr
}

func parseAmount(ctx context.Context, amount string) (decimal.Decimal, error) {
	amt, err := moneypkg.Parse(amount)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Str("amount", amount).Send()

		if errors.Is(err, moneypkg.ErrNotPositive) {
			return decimal.Zero, domain.ErrNonPositiveAmount
		}

		return decimal.Zero, domain.ErrInvalidAmount
	}

	return amt, nil
}
