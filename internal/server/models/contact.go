package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/timex"
)

// Contact is an address book record owned by exactly one user.
type Contact struct {
	ID          int64       `json:"id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	BirthDate   *timex.Date `json:"birth_date"`
	Info        *string     `json:"info"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	UserID      int64       `json:"-"`
}

// ContactFields is the full set of writable contact fields.
type ContactFields struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	BirthDate   *timex.Date `json:"birth_date"`
	Info        *string     `json:"info"`
}

// Validate checks every field.
func (f *ContactFields) Validate() error {
	p := ContactPatch{
		FirstName:   &f.FirstName,
		LastName:    &f.LastName,
		Email:       &f.Email,
		PhoneNumber: &f.PhoneNumber,
	}
	return p.Validate()
}

// ContactPatch is a partial update: nil fields are left untouched. The
// nullable fields use Optional so that an explicit null clears them.
type ContactPatch struct {
	FirstName   *string              `json:"first_name"`
	LastName    *string              `json:"last_name"`
	Email       *string              `json:"email"`
	PhoneNumber *string              `json:"phone_number"`
	BirthDate   Optional[timex.Date] `json:"birth_date"`
	Info        Optional[string]     `json:"info"`
}

// Empty reports whether the patch sets nothing.
func (p *ContactPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.PhoneNumber == nil && !p.BirthDate.Set && !p.Info.Set
}

// Validate checks the fields that are set.
func (p *ContactPatch) Validate() error {
	if err := checkLen("first_name", p.FirstName, 2, 50); err != nil {
		return err
	}
	if err := checkLen("last_name", p.LastName, 2, 50); err != nil {
		return err
	}
	if err := checkLen("email", p.Email, 7, 100); err != nil {
		return err
	}
	if p.Email != nil {
		if err := ValidateEmail(*p.Email); err != nil {
			return err
		}
	}
	return checkLen("phone_number", p.PhoneNumber, 7, 20)
}

// Apply overwrites the fields of c that the patch sets.
func (p *ContactPatch) Apply(c *Contact) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = *p.PhoneNumber
	}
	if p.BirthDate.Set {
		c.BirthDate = nil
		if p.BirthDate.Value != nil {
			d := *p.BirthDate.Value
			c.BirthDate = &d
		}
	}
	if p.Info.Set {
		c.Info = nil
		if p.Info.Value != nil {
			s := *p.Info.Value
			c.Info = &s
		}
	}
}

func checkLen(name string, v *string, lo, hi int) error {
	if v == nil {
		return nil
	}
	if n := utf8.RuneCountInString(*v); n < lo || n > hi {
		return fmt.Errorf("%w: %s must be %d..%d characters", common.ErrValidation, name, lo, hi)
	}
	return nil
}

// ContactFilter selects an owner's contacts for listing. Empty strings match
// everything; matching is a case-sensitive substring test.
type ContactFilter struct {
	UserID    int64
	FirstName string
	LastName  string
	Email     string
	Skip      int
	Limit     int
}

const (
	DefaultContactLimit = 100
	MaxContactLimit     = 1000
)

// Normalize applies defaults and validates pagination.
func (f *ContactFilter) Normalize() error {
	if f.Skip < 0 {
		return fmt.Errorf("%w: skip must be >= 0", common.ErrValidation)
	}
	if f.Limit == 0 {
		f.Limit = DefaultContactLimit
	}
	if f.Limit < 1 || f.Limit > MaxContactLimit {
		return fmt.Errorf("%w: limit must be 1..%d", common.ErrValidation, MaxContactLimit)
	}
	return nil
}

// Matches reports whether c passes the owner and substring filters.
func (f *ContactFilter) Matches(c *Contact) bool {
	return c.UserID == f.UserID &&
		contains(c.FirstName, f.FirstName) &&
		contains(c.LastName, f.LastName) &&
		contains(c.Email, f.Email)
}

func contains(s, sub string) bool {
	return sub == "" || strings.Contains(s, sub)
}
