// Package memrepo provides an in-process implementation of the account and entry repositories.
//
// It follows the same error contract as the PostgreSQL repositories and is used
// when the application runs with DB_DRIVER=memory and in tests.
package memrepo

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/bankapp/internal/accountservice"
	"github.com/go-petr/bankapp/internal/domain"
)

type state struct {
	nextAccountID int64
	nextEntryID   int64
	accounts      map[string]domain.Account
	usernames     map[int64]string
	entries       []domain.Entry
}

func (s *state) clone() state {
	c := state{
		nextAccountID: s.nextAccountID,
		nextEntryID:   s.nextEntryID,
		accounts:      make(map[string]domain.Account, len(s.accounts)),
		usernames:     make(map[int64]string, len(s.usernames)),
		entries:       make([]domain.Entry, len(s.entries)),
	}

	for k, v := range s.accounts {
		c.accounts[k] = v
	}

	for k, v := range s.usernames {
		c.usernames[k] = v
	}

	copy(c.entries, s.entries)

	return c
}

// Store keeps accounts and entries in memory guarded by a single mutex.
type Store struct {
	mu sync.Mutex
	st state
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		st: state{
			nextAccountID: 1,
			nextEntryID:   1,
			accounts:      make(map[string]domain.Account),
			usernames:     make(map[int64]string),
			entries:       make([]domain.Entry, 0),
		},
	}
}

// Accounts returns the account repository backed by s.
func (s *Store) Accounts() *AccountRepo {
	return &AccountRepo{mu: &s.mu, st: &s.st}
}

// Entries returns the entry repository backed by s.
func (s *Store) Entries() *EntryRepo {
	return &EntryRepo{mu: &s.mu, st: &s.st}
}

// ExecTx runs fn while holding the store lock.
//
// The state is restored to the snapshot taken before fn if fn returns an error or panics.
func (s *Store) ExecTx(ctx context.Context, fn func(accountservice.AccountRepo, accountservice.EntryRepo) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.st.clone()

	defer func() {
		if p := recover(); p != nil {
			s.st = backup
			panic(p)
		}
	}()

	err := fn(&AccountRepo{st: &s.st}, &EntryRepo{st: &s.st})
	if err != nil {
		s.st = backup
		return err
	}

	return nil
}

func lock(mu *sync.Mutex) func() {
	if mu == nil {
		return func() {}
	}

	mu.Lock()

	return mu.Unlock
}

// AccountRepo is the in-memory account repository.
//
// A nil mu means the caller already holds the store lock.
type AccountRepo struct {
	mu *sync.Mutex
	st *state
}

// Create creates the account with zero balance.
func (r *AccountRepo) Create(ctx context.Context, username, hashedPassword string) (domain.Account, error) {
	defer lock(r.mu)()

	if _, ok := r.st.accounts[username]; ok {
		return domain.Account{}, domain.ErrUsernameAlreadyExists
	}

	a := domain.Account{
		ID:             r.st.nextAccountID,
		Username:       username,
		HashedPassword: hashedPassword,
		Balance:        decimal.Zero,
		CreatedAt:      time.Now().UTC(),
	}

	r.st.nextAccountID++
	r.st.accounts[username] = a
	r.st.usernames[a.ID] = username

	return a, nil
}

// GetByUsername returns the account with the given username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	defer lock(r.mu)()

	a, ok := r.st.accounts[username]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetForUpdate returns the account with the given username.
//
// Rows are not locked individually, ExecTx serializes transactions instead.
func (r *AccountRepo) GetForUpdate(ctx context.Context, username string) (domain.Account, error) {
	return r.GetByUsername(ctx, username)
}

// AddBalance changes the account's balance by amount.
func (r *AccountRepo) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	defer lock(r.mu)()

	username, ok := r.st.usernames[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	a := r.st.accounts[username]

	balance := a.Balance.Add(amount)
	if balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	a.Balance = balance
	r.st.accounts[username] = a

	return a, nil
}

// EntryRepo is the in-memory entry repository.
type EntryRepo struct {
	mu *sync.Mutex
	st *state
}

// Create appends the entry to the ledger.
func (r *EntryRepo) Create(ctx context.Context, arg domain.CreateEntryParams) (domain.Entry, error) {
	defer lock(r.mu)()

	if _, ok := r.st.usernames[arg.AccountID]; !ok {
		return domain.Entry{}, domain.ErrAccountNotFound
	}

	if !arg.Amount.IsPositive() {
		return domain.Entry{}, domain.ErrNonPositiveAmount
	}

	e := domain.Entry{
		ID:          r.st.nextEntryID,
		AccountID:   arg.AccountID,
		Amount:      arg.Amount,
		Description: arg.Description,
		CreatedAt:   arg.CreatedAt,
	}

	r.st.nextEntryID++
	r.st.entries = append(r.st.entries, e)

	return e, nil
}

// ListByAccount returns a copy of the account's entries in insertion order.
func (r *EntryRepo) ListByAccount(ctx context.Context, accountID int64) ([]domain.Entry, error) {
	defer lock(r.mu)()

	items := []domain.Entry{}

	for _, e := range r.st.entries {
		if e.AccountID == accountID {
			items = append(items, e)
		}
	}

	return items, nil
}
