package memory

import (
	"context"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
)

// UsersRepository implements users.Repository in memory.
type UsersRepository struct {
	s *Store
}

func (r *UsersRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return nil, common.ErrDuplicateUsername
		}
	}

	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now().UTC()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	r.s.users[user.ID] = copyUser(user)

	return user, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *UsersRepository) ConfirmEmail(ctx context.Context, email string) error {
	_, err := r.update(func(u *models.User) bool { return u.Email == email }, func(u *models.User) { u.Confirmed = true })
	return err
}

func (r *UsersRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	_, err := r.update(func(u *models.User) bool { return u.ID == id }, func(u *models.User) { u.HashedPassword = hashedPassword })
	return err
}

func (r *UsersRepository) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	return r.update(func(u *models.User) bool { return u.Email == email }, func(u *models.User) { u.Avatar = url })
}

func (r *UsersRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UsersRepository) update(match func(*models.User) bool, mutate func(*models.User)) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if match(u) {
			mutate(u)
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}
