package repomanager

import (
	"context"

	"github.com/dmitrijs2005/contactkeeper/internal/dbx"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a database handle and runs
// units of work atomically.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Conn is the handle for work outside a transaction.
	Conn() dbx.DBTX
	Users(db dbx.DBTX) users.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	// Transact runs fn atomically; repositories built from tx take part in it.
	Transact(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Close() error
}
