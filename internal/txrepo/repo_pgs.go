// Package txrepo runs account and entry repository calls within a single database transaction.
package txrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/go-petr/bankapp/internal/accountrepo"
	"github.com/go-petr/bankapp/internal/accountservice"
	"github.com/go-petr/bankapp/internal/entryrepo"
	"github.com/go-petr/bankapp/pkg/errorspkg"
)

// RepoPGS starts PostgreSQL transactions for the account service.
type RepoPGS struct {
	conn *sql.DB
}

// NewRepoPGS returns tx RepoPGS.
func NewRepoPGS(conn *sql.DB) *RepoPGS {
	return &RepoPGS{conn: conn}
}

// ExecTx executes fn within a database transaction.
//
// Errors returned by fn are passed through unchanged after the rollback.
// A panic in fn rolls the transaction back before it propagates.
func (r *RepoPGS) ExecTx(ctx context.Context, fn func(accountservice.AccountRepo, accountservice.EntryRepo) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.Error().Err(rbErr).Msg("rollback failed")
			}

			panic(p)
		}
	}()

	err = fn(accountrepo.NewRepoPGS(tx), entryrepo.NewRepoPGS(tx))
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.Error().Err(rbErr).Msg("rollback failed")
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
