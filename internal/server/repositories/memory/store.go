// Package memory keeps users and contacts in process memory. It backs the
// server when no database DSN is configured and serves as a test double.
package memory

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
)

// Store holds the tables shared by the in-memory repositories.
type Store struct {
	mu sync.RWMutex
	// now stamps created_at and updated_at.
	now func() time.Time

	users      map[int64]*models.User
	nextUserID int64

	contacts      map[int64]*models.Contact
	nextContactID int64
}

// NewStore returns an empty store. A nil now uses time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		users:    make(map[int64]*models.User),
		contacts: make(map[int64]*models.Contact),
	}
}

// Users returns a users repository over the store.
func (s *Store) Users() *UsersRepository {
	return &UsersRepository{s: s}
}

// Contacts returns a contacts repository over the store.
func (s *Store) Contacts() *ContactsRepository {
	return &ContactsRepository{s: s}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyContact(c *models.Contact) *models.Contact {
	out := *c
	if c.BirthDate != nil {
		d := *c.BirthDate
		out.BirthDate = &d
	}
	if c.Info != nil {
		s := *c.Info
		out.Info = &s
	}
	return &out
}
