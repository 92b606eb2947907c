package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
)

// ErrPasswordMismatch is returned when the confirmation differs from the password.
var ErrPasswordMismatch = errors.New("passwords do not match")

// AdminCreator persists a confirmed admin account.
type AdminCreator interface {
	CreateAdmin(ctx context.Context, in models.NewUser) (*models.User, error)
}

// SeedAdmin prompts for the admin's username, email and password (entered
// twice) and creates the account.
func SeedAdmin(ctx context.Context, reader *bufio.Reader, w io.Writer, creator AdminCreator) (*models.User, error) {
	username, err := GetSimpleText(reader, "Admin username", w)
	if err != nil {
		return nil, err
	}

	email, err := GetSimpleText(reader, "Admin email", w)
	if err != nil {
		return nil, err
	}

	password, err := GetPassword("Enter password", w)
	if err != nil {
		return nil, err
	}
	confirm, err := GetPassword("Repeat password", w)
	if err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	user, err := creator.CreateAdmin(ctx, models.NewUser{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(w, "Admin %q created (id %d)\n", user.Username, user.ID)
	return user, nil
}
