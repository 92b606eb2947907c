// Package users persists user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
)

// Repository stores users. Lookups of a missing user return common.ErrorNotFound.
type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A taken email or
	// username yields common.ErrDuplicateEmail or common.ErrDuplicateUsername.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	UpdateAvatar(ctx context.Context, email, url string) (*models.User, error)
}
