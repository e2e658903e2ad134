// Package dbx holds the storage plumbing shared by the repositories: the
// DBTX interface, which lets a repository run against either a plain
// connection or an open transaction, and WithTx, which groups several
// repository calls into one transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the query surface repositories operate on. Both *sql.DB and
// *sql.Tx satisfy it, so the repomanager can bind a repository to either.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction: commit when fn returns nil, rollback
// when it returns an error or panics (the panic is rethrown). The services
// use it to keep an offer or a resolution atomic across repositories:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := repos.Matches(tx).Create(ctx, match); err != nil {
//	        return err
//	    }
//	    return repos.Users(tx).SetCurrentRequest(ctx, pairID, &match.ID)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
