package repomanager

import (
	"context"
	"database/sql"

	"github.com/dsmelov/securekey/internal/dbx"
	"github.com/dsmelov/securekey/internal/server/repositories/credentials"
	"github.com/dsmelov/securekey/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	// WithinTransaction runs fn with repositories bound to a single
	// transaction, committing on nil and rolling back on error.
	WithinTransaction(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}
