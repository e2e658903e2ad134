package repomanager

import (
	"context"
	"database/sql"

	"github.com/simplylizz/wannatalk/internal/dbx"
	"github.com/simplylizz/wannatalk/internal/server/repositories/matches"
	"github.com/simplylizz/wannatalk/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to an arbitrary DBTX so that
// services can run several repository calls inside one transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Matches(db dbx.DBTX) matches.Repository
}
