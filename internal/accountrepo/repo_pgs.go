// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bankapp/internal/domain"
	"github.com/go-petr/bankapp/pkg/dbpkg"
	"github.com/go-petr/bankapp/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// CreateQuery inserts into accounts table.
const CreateQuery = `
INSERT INTO accounts (
    username,
    hashed_password
) VALUES (
    $1, $2
) RETURNING id, username, hashed_password, balance, created_at
`

// Create creates the account with zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, username, hashedPassword string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, CreateQuery, username, hashedPassword)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			if pqErr.Constraint == "accounts_username_key" {
				return domain.Account{}, domain.ErrUsernameAlreadyExists
			}
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

// GetByUsernameQuery selects the account by username.
const GetByUsernameQuery = `
SELECT
	id,
	username,
	hashed_password,
	balance,
	created_at
FROM accounts
WHERE username = $1
`

// GetByUsername returns the account with the given username.
func (r *RepoPGS) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.get(ctx, GetByUsernameQuery, username)
}

// GetForUpdateQuery selects the account by username and locks its row.
const GetForUpdateQuery = GetByUsernameQuery + `FOR NO KEY UPDATE
`

// GetForUpdate returns the account with the given username and locks it until the end
// of the current transaction.
func (r *RepoPGS) GetForUpdate(ctx context.Context, username string) (domain.Account, error) {
	return r.get(ctx, GetForUpdateQuery, username)
}

func (r *RepoPGS) get(ctx context.Context, query, username string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, query, username)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Str("username", username).Msg(domain.ErrAccountNotFound.Error())
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

// AddBalanceQuery changes the account balance by the given amount.
const AddBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING id, username, hashed_password, balance, created_at
`

// AddBalance changes the account's balance and returns the changed account.
//
// A negative amount that would drive the balance below zero fails with
// domain.ErrInsufficientFunds.
func (r *RepoPGS) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, AddBalanceQuery, amount, id)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_balance_check" {
			return domain.Account{}, domain.ErrInsufficientFunds
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.HashedPassword,
		&a.Balance,
		&a.CreatedAt,
	)

	return a, err
}
