// Package entryrepo manages repository layer of ledger entries.
package entryrepo

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/bankapp/internal/domain"
	"github.com/go-petr/bankapp/pkg/dbpkg"
	"github.com/go-petr/bankapp/pkg/errorspkg"
)

// RepoPGS facilitates entry repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns entry RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

// CreateQuery inserts into entries table.
const CreateQuery = `
INSERT INTO
    entries (account_id, amount, description, created_at)
VALUES
    ($1, $2, $3, $4)
RETURNING id, account_id, amount, description, created_at
`

// Create creates the entry and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateEntryParams) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, CreateQuery,
		arg.AccountID,
		arg.Amount,
		arg.Description,
		arg.CreatedAt,
	)

	var e domain.Entry

	err := row.Scan(
		&e.ID,
		&e.AccountID,
		&e.Amount,
		&e.Description,
		&e.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "entries_account_id_fkey":
				return domain.Entry{}, domain.ErrAccountNotFound
			case "entries_amount_check":
				return domain.Entry{}, domain.ErrNonPositiveAmount
			}
		}

		return domain.Entry{}, errorspkg.ErrInternal
	}

	return e, nil
}

// ListByAccountQuery selects all entries of the account in insertion order.
const ListByAccountQuery = `
SELECT id, account_id, amount, description, created_at FROM entries
WHERE account_id = $1
ORDER BY id
`

// ListByAccount returns all entries for the given accountID.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID int64) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, ListByAccountQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.Amount,
			&e.Description,
			&e.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
