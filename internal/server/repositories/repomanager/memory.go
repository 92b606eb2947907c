package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/contactkeeper/internal/dbx"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves repositories over a memory.Store. Handles
// are ignored; transactions are serialized.
type InMemoryRepositoryManager struct {
	store *memory.Store
	txMu  sync.Mutex
}

// NewInMemoryRepositoryManager returns a manager over store, or over a new
// empty store when store is nil.
func NewInMemoryRepositoryManager(store *memory.Store) *InMemoryRepositoryManager {
	if store == nil {
		store = memory.NewStore(nil)
	}
	return &InMemoryRepositoryManager{store: store}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Conn() dbx.DBTX {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.store.Users()
}

func (m *InMemoryRepositoryManager) Contacts(dbx.DBTX) contacts.Repository {
	return m.store.Contacts()
}

func (m *InMemoryRepositoryManager) Transact(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	return fn(ctx, nil)
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
