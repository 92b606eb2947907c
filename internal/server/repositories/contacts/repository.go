// Package contacts persists address book records. Every read and mutation
// except the global uniqueness probe is filtered by the owning user.
package contacts

import (
	"context"

	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/dmitrijs2005/contactkeeper/internal/timex"
)

// Repository stores contacts. A missing or foreign contact yields common.ErrorNotFound.
type Repository interface {
	// Create inserts c and fills ID, CreatedAt and UpdatedAt. A taken email or
	// phone number yields common.ErrDuplicateContact.
	Create(ctx context.Context, c *models.Contact) (*models.Contact, error)
	List(ctx context.Context, filter models.ContactFilter) ([]*models.Contact, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Contact, error)
	Update(ctx context.Context, id, userID int64, patch models.ContactPatch) (*models.Contact, error)
	Delete(ctx context.Context, id, userID int64) (*models.Contact, error)
	// ExistsByEmailOrPhone checks every contact regardless of owner.
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	// UpcomingBirthdays returns the owner's contacts with birth_date in
	// [from, to], ascending by birth_date.
	UpcomingBirthdays(ctx context.Context, userID int64, from, to timex.Date) ([]*models.Contact, error)
}
