// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
)

// Role is the access level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account. HashedPassword never leaves the server.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Confirmed      bool      `json:"confirmed"`
	Role           Role      `json:"role"`
	Avatar         string    `json:"avatar"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NewUser is the input of registration and account seeding.
type NewUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

const (
	usernameMaxLen = 50
	passwordMinLen = 4
	passwordMaxLen = 72
)

// Validate checks field lengths and the email format.
func (n *NewUser) Validate() error {
	n.Username = strings.TrimSpace(n.Username)
	n.Email = strings.TrimSpace(n.Email)

	if n.Username == "" || len(n.Username) > usernameMaxLen {
		return fmt.Errorf("%w: username must be 1..%d characters", common.ErrValidation, usernameMaxLen)
	}
	if err := ValidateEmail(n.Email); err != nil {
		return err
	}
	return ValidatePassword(n.Password)
}

// ValidatePassword checks the length limits of a plaintext password.
func ValidatePassword(p string) error {
	if len(p) < passwordMinLen || len(p) > passwordMaxLen {
		return fmt.Errorf("%w: password must be %d..%d bytes", common.ErrValidation, passwordMinLen, passwordMaxLen)
	}
	return nil
}

// ValidateEmail accepts a bare address such as "jane@example.com".
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return fmt.Errorf("%w: invalid email address %q", common.ErrValidation, email)
	}
	return nil
}
