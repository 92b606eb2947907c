package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/dbx"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/contactkeeper/internal/timex"
)

// DefaultBirthdayDays is the look-ahead window used when none is given.
const DefaultBirthdayDays = 7

// ContactService runs contact operations on behalf of an authenticated owner.
// Contacts of other users behave as if they did not exist.
type ContactService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewContactService(m repomanager.RepositoryManager, logger logging.Logger) *ContactService {
	return &ContactService{
		repomanager: m,
		logger:      logger.With("module", "contacts"),
		now:         time.Now,
	}
}

// Create stores a contact for owner. Email and phone number must be unused
// across all contacts, not only the owner's.
func (s *ContactService) Create(ctx context.Context, owner *models.User, f models.ContactFields) (*models.Contact, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var created *models.Contact
	err := s.repomanager.Transact(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Contacts(tx)

		exists, err := repo.ExistsByEmailOrPhone(ctx, f.Email, f.PhoneNumber)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrDuplicateContact
		}

		created, err = repo.Create(ctx, &models.Contact{
			FirstName:   f.FirstName,
			LastName:    f.LastName,
			Email:       f.Email,
			PhoneNumber: f.PhoneNumber,
			BirthDate:   f.BirthDate,
			Info:        f.Info,
			UserID:      owner.ID,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateContact) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating contact: %w", err)
	}

	s.logger.Debug(ctx, "contact created", "user_id", owner.ID, "contact_id", created.ID)
	return created, nil
}

// List returns the owner's contacts matching filter, ordered by id.
func (s *ContactService) List(ctx context.Context, owner *models.User, filter models.ContactFilter) ([]*models.Contact, error) {
	filter.UserID = owner.ID
	if err := filter.Normalize(); err != nil {
		return nil, err
	}

	contacts, err := s.repomanager.Contacts(s.repomanager.Conn()).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing contacts: %w", err)
	}
	return contacts, nil
}

// Get returns one of the owner's contacts or common.ErrContactNotFound.
func (s *ContactService) Get(ctx context.Context, owner *models.User, id int64) (*models.Contact, error) {
	c, err := s.repomanager.Contacts(s.repomanager.Conn()).GetByID(ctx, id, owner.ID)
	return notFoundAs(c, err, "error getting contact")
}

// Update overwrites the fields set in patch and refreshes updated_at.
func (s *ContactService) Update(ctx context.Context, owner *models.User, id int64, patch models.ContactPatch) (*models.Contact, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repomanager.Contacts(s.repomanager.Conn()).Update(ctx, id, owner.ID, patch)
	if errors.Is(err, common.ErrDuplicateContact) {
		return nil, err
	}
	return notFoundAs(c, err, "error updating contact")
}

// Remove deletes one of the owner's contacts and returns its last state.
func (s *ContactService) Remove(ctx context.Context, owner *models.User, id int64) (*models.Contact, error) {
	c, err := s.repomanager.Contacts(s.repomanager.Conn()).Delete(ctx, id, owner.ID)
	c, err = notFoundAs(c, err, "error deleting contact")
	if err == nil {
		s.logger.Debug(ctx, "contact deleted", "user_id", owner.ID, "contact_id", id)
	}
	return c, err
}

// UpcomingBirthdays returns the owner's contacts whose birth_date lies in
// [today, today+days], ascending by birth_date.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, owner *models.User, days int) ([]*models.Contact, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be >= 1", common.ErrValidation)
	}

	today := timex.NewDate(s.now())
	contacts, err := s.repomanager.Contacts(s.repomanager.Conn()).
		UpcomingBirthdays(ctx, owner.ID, today, today.AddDays(days))
	if err != nil {
		return nil, fmt.Errorf("error getting birthdays: %w", err)
	}
	return contacts, nil
}

func notFoundAs(c *models.Contact, err error, op string) (*models.Contact, error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrContactNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
