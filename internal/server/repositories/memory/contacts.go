package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/dmitrijs2005/contactkeeper/internal/timex"
)

// ContactsRepository implements contacts.Repository in memory.
type ContactsRepository struct {
	s *Store
}

func (r *ContactsRepository) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.existsLocked(c.Email, c.PhoneNumber, 0) {
		return nil, common.ErrDuplicateContact
	}

	r.s.nextContactID++
	now := r.s.now().UTC()
	c.ID = r.s.nextContactID
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.contacts[c.ID] = copyContact(c)

	return c, nil
}

func (r *ContactsRepository) List(ctx context.Context, f models.ContactFilter) ([]*models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.sortedLocked(f.Matches, byID)

	result := make([]*models.Contact, 0)
	for i := f.Skip; i < len(matched) && len(result) < f.Limit; i++ {
		result = append(result, matched[i])
	}
	return result, nil
}

func (r *ContactsRepository) GetByID(ctx context.Context, id, userID int64) (*models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.contacts[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return copyContact(c), nil
}

func (r *ContactsRepository) Update(ctx context.Context, id, userID int64, patch models.ContactPatch) (*models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}

	email, phone := c.Email, c.PhoneNumber
	if patch.Email != nil {
		email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		phone = *patch.PhoneNumber
	}
	if r.existsLocked(email, phone, id) {
		return nil, common.ErrDuplicateContact
	}

	patch.Apply(c)
	c.UpdatedAt = r.s.now().UTC()
	return copyContact(c), nil
}

func (r *ContactsRepository) Delete(ctx context.Context, id, userID int64) (*models.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	delete(r.s.contacts, id)
	return c, nil
}

func (r *ContactsRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.existsLocked(email, phone, 0), nil
}

func (r *ContactsRepository) UpcomingBirthdays(ctx context.Context, userID int64, from, to timex.Date) ([]*models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	match := func(c *models.Contact) bool {
		return c.UserID == userID && c.BirthDate != nil &&
			!c.BirthDate.Before(from.Time) && !c.BirthDate.After(to.Time)
	}
	byBirthDate := func(a, b *models.Contact) bool {
		if !a.BirthDate.Equal(b.BirthDate.Time) {
			return a.BirthDate.Before(b.BirthDate.Time)
		}
		return a.ID < b.ID
	}
	return r.sortedLocked(match, byBirthDate), nil
}

// existsLocked checks email and phone against every contact except skipID.
func (r *ContactsRepository) existsLocked(email, phone string, skipID int64) bool {
	for id, c := range r.s.contacts {
		if id != skipID && (c.Email == email || c.PhoneNumber == phone) {
			return true
		}
	}
	return false
}

func (r *ContactsRepository) sortedLocked(match func(*models.Contact) bool, less func(a, b *models.Contact) bool) []*models.Contact {
	out := make([]*models.Contact, 0)
	for _, c := range r.s.contacts {
		if match(c) {
			out = append(out, copyContact(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byID(a, b *models.Contact) bool { return a.ID < b.ID }
